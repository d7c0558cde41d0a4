package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffaelramalhorosa/techfeed/internal/feed"
)

// stubResolver knows a fixed set of hosts and records every lookup.
type stubResolver struct {
	known   map[string]bool
	lookups []string
}

func (r *stubResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	r.lookups = append(r.lookups, host)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("lookup without deadline")
	}
	if !r.known[host] {
		return nil, errors.New("no such host")
	}
	return []string{"192.0.2.10"}, nil
}

func TestDNSProber(t *testing.T) {
	r := &stubResolver{known: map[string]bool{"content.example.com": true}}
	p := feed.NewDNSProberWithResolver(r, 2*time.Second)
	ctx := context.Background()

	assert.NoError(t, p.Probe(ctx, "https://content.example.com/search"))
	assert.NoError(t, p.Probe(ctx, "http://127.0.0.1:8080/search"))
	assert.NoError(t, p.Probe(ctx, "not a url"), "invalid urls are left to the fetcher")

	err := p.Probe(ctx, "https://feed.techfeed.invalid/search")
	assert.ErrorIs(t, err, feed.ErrOffline)

	require.Equal(t, []string{"content.example.com", "feed.techfeed.invalid"}, r.lookups)
}

func TestDNSProber_DefaultTimeout(t *testing.T) {
	r := &stubResolver{known: map[string]bool{"content.example.com": true}}
	p := feed.NewDNSProberWithResolver(r, 0)
	assert.NoError(t, p.Probe(context.Background(), "https://content.example.com/search"))
}
