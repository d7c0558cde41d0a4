package feed_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffaelramalhorosa/techfeed/internal/feed"
	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

type fetcherFunc func(ctx context.Context, url string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (string, error) { return f(ctx, url) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func await(t *testing.T, ch <-chan feed.LoadResult) feed.LoadResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("load did not resolve")
		return feed.LoadResult{}
	}
}

func TestPipeline_LoadsScriptedFeed(t *testing.T) {
	f := fetcherFunc(func(context.Context, string) (string, error) { return threeItemFeed, nil })
	p := feed.NewPipeline(f, feed.ParserFunc(feed.ParseContentAPI), discardLogger())

	res := await(t, p.Load(context.Background(), "https://example.com/search"))
	require.NoError(t, res.Err)
	require.Len(t, res.Articles, 3)
	assert.NotEmpty(t, res.LoadID)

	assert.Equal(t, "Ünïcödé — 日本語 ✓", res.Articles[2].Headline())
	for i, a := range res.Articles {
		_, ok := a.Author()
		assert.Equal(t, i != 1, ok, "article %d", i)
	}
}

func TestPipeline_OverHTTPIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, threeItemFeed)
	}))
	defer srv.Close()

	fetcher := feed.NewHTTPFetcher(feed.DefaultConnectTimeout, feed.DefaultReadTimeout)
	p := feed.NewPipeline(fetcher, feed.ParserFunc(feed.ParseContentAPI), discardLogger())

	first := await(t, p.Load(context.Background(), srv.URL))
	second := await(t, p.Load(context.Background(), srv.URL))
	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, first.Articles, second.Articles)
	assert.NotEqual(t, first.LoadID, second.LoadID)
}

func TestPipeline_FetchErrorSkipsParse(t *testing.T) {
	var parsed atomic.Bool
	f := fetcherFunc(func(_ context.Context, url string) (string, error) {
		return "", &feed.StatusError{URL: url, Code: http.StatusNotFound}
	})
	parser := feed.ParserFunc(func(body string) ([]models.Article, error) {
		parsed.Store(true)
		return nil, nil
	})
	p := feed.NewPipeline(f, parser, discardLogger())

	res := await(t, p.Load(context.Background(), "https://example.com/missing"))
	var pe *feed.PipelineError
	require.True(t, errors.As(res.Err, &pe))
	assert.Equal(t, feed.StageFetch, pe.Stage)

	var status *feed.StatusError
	require.True(t, errors.As(res.Err, &status))
	assert.Equal(t, http.StatusNotFound, status.Code)
	assert.False(t, parsed.Load())
}

func TestPipeline_ParseError(t *testing.T) {
	f := fetcherFunc(func(context.Context, string) (string, error) { return "", nil })
	p := feed.NewPipeline(f, feed.ParserFunc(feed.ParseContentAPI), discardLogger())

	res := await(t, p.Load(context.Background(), "https://example.com/search"))
	var pe *feed.PipelineError
	require.True(t, errors.As(res.Err, &pe))
	assert.Equal(t, feed.StageParse, pe.Stage)
	assert.ErrorIs(t, res.Err, feed.ErrEmptyInput)
	assert.True(t, feed.IsParseError(res.Err))
	assert.False(t, feed.IsFetchError(res.Err))
}

func TestPipeline_NewLoadSupersedesOld(t *testing.T) {
	started := make(chan struct{})
	var calls atomic.Int32
	f := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return "", &feed.TransportError{URL: url, Err: ctx.Err()}
		}
		return threeItemFeed, nil
	})
	p := feed.NewPipeline(f, feed.ParserFunc(feed.ParseContentAPI), discardLogger())

	first := p.Load(context.Background(), "https://example.com/search")
	<-started
	second := p.Load(context.Background(), "https://example.com/search")

	old := await(t, first)
	assert.ErrorIs(t, old.Err, feed.ErrSuperseded)
	assert.Empty(t, old.Articles)

	latest := await(t, second)
	require.NoError(t, latest.Err)
	assert.Len(t, latest.Articles, 3)
	assert.Greater(t, latest.Seq, old.Seq)

	select {
	case <-first:
		t.Fatal("a load delivered more than once")
	default:
	}
}

func TestPipeline_CallerCancellation(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		<-ctx.Done()
		return "", &feed.TransportError{URL: url, Err: ctx.Err()}
	})
	p := feed.NewPipeline(f, feed.ParserFunc(feed.ParseContentAPI), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	handle := p.Load(ctx, "https://example.com/search")
	cancel()

	res := await(t, handle)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.True(t, feed.IsFetchError(res.Err))
}

func TestPipeline_CancelledLoadIsNotLoggedAsError(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, url string) (string, error) {
		<-ctx.Done()
		return "", &feed.TransportError{URL: url, Err: ctx.Err()}
	})
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := feed.NewPipeline(f, feed.ParserFunc(feed.ParseContentAPI), logger)

	ctx, cancel := context.WithCancel(context.Background())
	handle := p.Load(ctx, "https://example.com/search")
	cancel()
	await(t, handle)

	assert.NotContains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "feed fetch cancelled")
}

func TestPipeline_FailedFetchIsLoggedAsError(t *testing.T) {
	f := fetcherFunc(func(_ context.Context, url string) (string, error) {
		return "", &feed.StatusError{URL: url, Code: http.StatusBadGateway}
	})
	var logs bytes.Buffer
	p := feed.NewPipeline(f, feed.ParserFunc(feed.ParseContentAPI), slog.New(slog.NewTextHandler(&logs, nil)))

	await(t, p.Load(context.Background(), "https://example.com/search"))

	assert.Contains(t, logs.String(), "level=ERROR")
}
