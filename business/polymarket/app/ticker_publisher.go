package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// isValidTicker enforces §8's per-emission invariant 0 ≤ bid ≤ ask ≤ 1;
// venue P has no native yes/no split (see domain.Ticker's doc comment), so
// the complementary yes.bid+no.ask check doesn't apply here. Ported from
// the original KalshiTickerPublisher's _is_valid_summary_stats, narrowed
// to the single-sided shape venue P actually publishes.
func isValidTicker(t domain.Ticker) bool {
	if t.Bid != nil && (t.Bid.IsNegative() || t.Bid.GreaterThan(decimal.NewFromInt(1))) {
		return false
	}
	if t.Ask != nil && (t.Ask.IsNegative() || t.Ask.GreaterThan(decimal.NewFromInt(1))) {
		return false
	}
	if t.Bid != nil && t.Ask != nil && t.Bid.GreaterThan(*t.Ask) {
		return false
	}
	return true
}

// TickerPublisher periodically emits a Ticker for every asset tracked by a
// BookStore, suppressing republication when nothing quoted changed since
// the last emission.
type TickerPublisher struct {
	log      logger.LoggerInterface
	books    *BookStore
	events   EventPublisher
	interval time.Duration

	mu   sync.Mutex
	last map[string]domain.Ticker

	stop chan struct{}
	done chan struct{}
}

// NewTickerPublisher constructs a publisher over books, firing every
// interval.
func NewTickerPublisher(log logger.LoggerInterface, books *BookStore, bus EventPublisher, interval time.Duration) *TickerPublisher {
	return &TickerPublisher{
		log:      log,
		books:    books,
		events:   bus,
		interval: interval,
		last:     make(map[string]domain.Ticker),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the publish loop until ctx is cancelled or Stop is called.
func (p *TickerPublisher) Start(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case now := <-ticker.C:
			p.publishAll(ctx, now)
		}
	}
}

// Stop requests the publish loop to exit and blocks until it does.
func (p *TickerPublisher) Stop() {
	close(p.stop)
	<-p.done
}

func (p *TickerPublisher) publishAll(ctx context.Context, now time.Time) {
	for _, assetID := range p.books.Assets() {
		snap := p.books.Get(assetID)
		if snap == nil {
			continue
		}
		t := domain.TickerFromSnapshot(snap, now)
		if !isValidTicker(t) {
			if p.log != nil {
				p.log.Warn(ctx, "ticker publisher: dropping invalid summary", "asset_id", assetID)
			}
			continue
		}
		if p.publishIfChanged(t) {
			p.events.Publish(ctx, EventTickerUpdated, t)
		}
	}
}

func (p *TickerPublisher) publishIfChanged(t domain.Ticker) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[t.AssetID]; ok && prev.Equal(t) {
		return false
	}
	p.last[t.AssetID] = t
	return true
}
