package app

import (
	"context"
	"sync"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// centsScale is the cents-denominated equivalent of the §8 invariant's
// [0,1] probability scale; centsEpsilon is ε=0.01 expressed in cents.
const (
	centsScale   = 100
	centsEpsilon = 1
)

// isValidTicker enforces §8's per-emission invariants:
// 0 ≤ bid ≤ ask ≤ 1 per side (here, per side in cents), and
// yes.bid + no.ask ≤ 1 + ε. Ported from the original KalshiTickerPublisher's
// _is_valid_summary_stats.
func isValidTicker(t domain.Ticker) bool {
	if !validQuoteSide(t.Yes) || !validQuoteSide(t.No) {
		return false
	}
	if t.Yes.Bid != nil && t.No.Ask != nil && *t.Yes.Bid+*t.No.Ask > centsScale+centsEpsilon {
		return false
	}
	return true
}

func validQuoteSide(q domain.QuoteSide) bool {
	if q.Bid != nil && (*q.Bid < 0 || *q.Bid > centsScale) {
		return false
	}
	if q.Ask != nil && (*q.Ask < 0 || *q.Ask > centsScale) {
		return false
	}
	if q.Bid != nil && q.Ask != nil && *q.Bid > *q.Ask {
		return false
	}
	return true
}

// TickerPublisher periodically emits a Ticker for every market tracked by a
// BookStore, suppressing republication when nothing quoted changed since
// the last emission. ForcePublish bypasses suppression; the Decoder does not
// call it, and its candlestick-boundary rollover only re-emits
// EventBidAskUpdated.
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
	for _, marketKey := range p.books.Markets() {
		snap := p.books.Get(marketKey)
		if snap == nil {
			continue
		}
		t := domain.TickerFromSnapshot(snap, now)
		if !isValidTicker(t) {
			if p.log != nil {
				p.log.Warn(ctx, "ticker publisher: dropping invalid summary", "market_key", marketKey)
			}
			continue
		}
		if p.publishIfChanged(t) {
			p.events.Publish(ctx, EventTickerUpdated, t)
		}
	}
}

// ForcePublish emits the current ticker for marketKey immediately,
// bypassing identity suppression.
func (p *TickerPublisher) ForcePublish(ctx context.Context, marketKey string) {
	snap := p.books.Get(marketKey)
	if snap == nil {
		return
	}
	t := domain.TickerFromSnapshot(snap, time.Now())
	if !isValidTicker(t) {
		if p.log != nil {
			p.log.Warn(ctx, "ticker publisher: dropping invalid summary", "market_key", marketKey)
		}
		return
	}
	p.mu.Lock()
	p.last[marketKey] = t
	p.mu.Unlock()
	p.events.Publish(ctx, EventTickerUpdated, t)
}

func (p *TickerPublisher) publishIfChanged(t domain.Ticker) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[t.MarketKey]; ok && prev.Equal(t) {
		return false
	}
	p.last[t.MarketKey] = t
	return true
}
