package feed

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raffaelramalhorosa/techfeed/internal/metrics"
	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// LoadResult is delivered exactly once per Load. Seq orders loads started
// on the same Pipeline: a higher Seq was started later.
type LoadResult struct {
	LoadID   string
	Seq      uint64
	Articles []models.Article
	Err      error
}

// Pipeline fetches a feed and parses it. Only one load is live at a time:
// starting a new load cancels the previous one, whose handle then
// resolves with ErrSuperseded.
type Pipeline struct {
	fetcher Fetcher
	parser  Parser
	logger  *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewPipeline returns a Pipeline that runs fetcher then parser.
func NewPipeline(fetcher Fetcher, parser Parser, logger *slog.Logger) *Pipeline {
	return &Pipeline{fetcher: fetcher, parser: parser, logger: logger}
}

// Load starts a load in the background and returns its handle. The
// channel is buffered, so an abandoned handle does not leak the goroutine.
// Cancelling ctx aborts the fetch and closes its connection.
func (p *Pipeline) Load(ctx context.Context, endpoint string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	loadCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	p.cancel = cancel
	p.mu.Unlock()

	id := uuid.NewString()
	go func() {
		defer cancel()
		res := p.run(loadCtx, id, endpoint)

		p.mu.Lock()
		stale := p.seq != seq
		if !stale {
			p.cancel = nil
		}
		p.mu.Unlock()

		if stale {
			p.logger.Debug("dropping superseded load", "load_id", id)
			res = LoadResult{LoadID: id, Err: ErrSuperseded}
		}
		res.Seq = seq
		out <- res
	}()
	return out
}

func (p *Pipeline) run(ctx context.Context, id, endpoint string) LoadResult {
	logger := p.logger.With("load_id", id, "endpoint", redactURL(endpoint))
	start := time.Now()

	body, err := p.fetcher.Fetch(ctx, endpoint)
	metrics.ObserveFetch(time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("feed fetch cancelled", "error", err)
		} else {
			logger.Error("feed fetch failed", "error", err)
		}
		return LoadResult{LoadID: id, Err: &PipelineError{Stage: StageFetch, Err: err}}
	}

	articles, err := p.parser.Parse(body)
	if err != nil {
		logger.Error("feed parse failed", "error", err, "bytes", len(body))
		return LoadResult{LoadID: id, Err: &PipelineError{Stage: StageParse, Err: err}}
	}

	logger.Info("feed loaded",
		"articles", len(articles),
		"duration", time.Since(start),
	)
	return LoadResult{LoadID: id, Articles: articles}
}

// redactURL hides the api key so endpoints can be logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, key := range []string{"api-key", "apiKey", "api_key"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
