package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/raffaelramalhorosa/techfeed/internal/feed"
	"github.com/raffaelramalhorosa/techfeed/internal/metrics"
	"github.com/raffaelramalhorosa/techfeed/internal/models"
	"github.com/raffaelramalhorosa/techfeed/internal/render"
	"github.com/raffaelramalhorosa/techfeed/internal/store"
)

// Poller keeps the store filled from one endpoint: once on start, then on
// every tick, plus whenever Refresh is called.
type Poller struct {
	pipeline *feed.Pipeline
	prober   feed.Prober
	store    *store.Store
	endpoint string
	interval time.Duration
	logger   *slog.Logger

	// mu serializes apply so a finished load never overwrites a newer one.
	mu      sync.Mutex
	lastSeq uint64
}

// New returns a Poller. A nil prober skips the connectivity check and an
// interval <= 0 disables periodic refresh.
func New(pipeline *feed.Pipeline, prober feed.Prober, s *store.Store, endpoint string, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		pipeline: pipeline,
		prober:   prober,
		store:    s,
		endpoint: endpoint,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the background refresh loop. It blocks until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("poller started", "interval", p.interval)

	// Run immediately on startup, then on every tick.
	p.Refresh(ctx)

	if p.interval <= 0 {
		<-ctx.Done()
		p.logger.Info("poller stopped")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh runs one full load and returns the resulting snapshot. A load
// superseded by a newer one, or abandoned because ctx ended, leaves the
// store untouched.
func (p *Poller) Refresh(ctx context.Context) models.Snapshot {
	if p.prober != nil {
		if err := p.prober.Probe(ctx, p.endpoint); err != nil {
			p.logger.Warn("connectivity check failed", "error", err)
			metrics.RecordLoad(metrics.OutcomeOffline)
			metrics.SetArticles(0)
			return p.store.Fail("", models.StateOffline, err, time.Now())
		}
	}

	res := <-p.pipeline.Load(ctx, p.endpoint)
	return p.apply(ctx, res)
}

func (p *Poller) apply(ctx context.Context, res feed.LoadResult) models.Snapshot {
	if errors.Is(res.Err, feed.ErrSuperseded) {
		metrics.RecordLoad(metrics.OutcomeSuperseded)
		return models.Snapshot{LoadID: res.LoadID, State: models.StateLoading, Err: res.Err}
	}
	if ctx.Err() != nil {
		p.logger.Debug("discarding load after cancellation", "load_id", res.LoadID)
		return models.Snapshot{LoadID: res.LoadID, State: render.Classify(res.Articles, res.Err), Err: res.Err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Seq < p.lastSeq {
		p.logger.Debug("discarding out-of-order load", "load_id", res.LoadID)
		metrics.RecordLoad(metrics.OutcomeSuperseded)
		return models.Snapshot{LoadID: res.LoadID, State: models.StateLoading, Err: feed.ErrSuperseded}
	}
	p.lastSeq = res.Seq

	now := time.Now()
	if res.Err != nil {
		metrics.RecordLoad(outcomeOf(res.Err))
		metrics.SetArticles(0)
		return p.store.Fail(res.LoadID, render.Classify(nil, res.Err), res.Err, now)
	}

	if len(res.Articles) == 0 {
		metrics.RecordLoad(metrics.OutcomeEmpty)
	} else {
		metrics.RecordLoad(metrics.OutcomeOK)
	}
	metrics.SetArticles(len(res.Articles))
	return p.store.Replace(res.LoadID, res.Articles, now)
}

func outcomeOf(err error) string {
	var pe *feed.PipelineError
	if errors.As(err, &pe) && pe.Stage == feed.StageParse {
		return metrics.OutcomeParseError
	}
	return metrics.OutcomeFetchError
}
