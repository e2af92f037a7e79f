package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/apperror"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// Decoder parses raw venue K WebSocket frames, applies them to a BookStore,
// and emits domain events on every change. It is the sole writer of the
// BookStore entries it touches; the IngestQueue consumer goroutine is its
// only caller, so no internal locking of decoder state is required beyond
// the sid registry (read by the venue client's subscribe confirmation
// path too).
type Decoder struct {
	log    logger.LoggerInterface
	books  *BookStore
	events EventPublisher

	mu       sync.RWMutex
	sidToKey map[int]string
	seen     sync.Map // marketKey -> struct{}, tracks first-sight for bootstrap

	candlestick sync.Map // marketKey -> int64 (minute bucket of last seen update)

	bootstrap *Bootstrapper
}

// NewDecoder constructs a Decoder writing into books and publishing to bus.
// bootstrap may be nil, in which case no best-effort REST seeding happens.
func NewDecoder(log logger.LoggerInterface, books *BookStore, bus EventPublisher, bootstrap *Bootstrapper) *Decoder {
	return &Decoder{
		log:       log,
		books:     books,
		events:    bus,
		sidToKey:  make(map[int]string),
		bootstrap: bootstrap,
	}
}

// MarketKeyFor returns the market ticker registered for sid, if known.
func (d *Decoder) MarketKeyFor(sid int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	key, ok := d.sidToKey[sid]
	return key, ok
}

// HandleFrame decodes and applies one raw JSON frame. Decode failures and
// unknown message types are logged and the frame is dropped; they never
// propagate to the caller, since a single malformed frame must not stall
// ingestion of the rest of the stream.
func (d *Decoder) HandleFrame(ctx context.Context, raw []byte, now time.Time) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.log.Warn(ctx, "failed to decode venue K frame", "error", err.Error())
		return
	}

	switch env.Type {
	case "error":
		d.handleError(ctx, env)
	case "ok":
		d.handleOk(ctx, env)
	case "orderbook_snapshot":
		d.handleSnapshot(ctx, env, now)
	case "orderbook_delta":
		d.handleDelta(ctx, env, now)
	case "ticker_v2":
		d.handleTickerV2(ctx, env)
	default:
		d.log.Info(ctx, "unknown venue K message type", "type", env.Type)
	}
}

func (d *Decoder) handleError(ctx context.Context, env wireEnvelope) {
	marketKey, _ := d.MarketKeyFor(env.Sid)
	d.log.Error(ctx, "venue K error frame", "code", env.Msg.Code, "message", env.Msg.Text, "sid", env.Sid, "app_error", apperror.CodeTransportError)
	d.events.Publish(ctx, EventError, ErrorEvent{MarketKey: marketKey, Code: env.Msg.Code, Message: env.Msg.Text})
}

func (d *Decoder) handleOk(ctx context.Context, env wireEnvelope) {
	d.mu.Lock()
	if _, ok := d.sidToKey[env.Sid]; !ok {
		d.sidToKey[env.Sid] = env.Msg.MarketTicker
		d.log.Info(ctx, "venue K subscription confirmed", "sid", env.Sid, "market_key", env.Msg.MarketTicker)
	}
	d.mu.Unlock()

	marketKey := env.Msg.MarketTicker
	if marketKey == "" {
		return
	}
	if _, alreadySeen := d.seen.LoadOrStore(marketKey, struct{}{}); !alreadySeen && d.bootstrap != nil {
		go d.bootstrap.Fetch(context.Background(), d.books, marketKey)
	}
}

func (d *Decoder) handleSnapshot(ctx context.Context, env wireEnvelope, now time.Time) {
	if env.Seq == nil {
		d.log.Warn(ctx, "orderbook_snapshot missing seq", "sid", env.Sid)
		return
	}
	marketKey, ok := d.MarketKeyFor(env.Sid)
	if !ok {
		marketKey = env.Msg.MarketTicker
	}
	if marketKey == "" {
		d.log.Warn(ctx, "orderbook_snapshot with no resolvable market key", "sid", env.Sid)
		return
	}

	yes := levelsFromPairs(env.Msg.Yes, domain.SideYes)
	no := levelsFromPairs(env.Msg.No, domain.SideNo)

	changed := d.books.ApplySnapshot(marketKey, yes, no, *env.Seq, now)
	d.maybeForcePublish(ctx, marketKey, now)
	if changed {
		d.events.Publish(ctx, EventBidAskUpdated, BidAskUpdated{MarketKey: marketKey})
	}
}

func (d *Decoder) handleDelta(ctx context.Context, env wireEnvelope, now time.Time) {
	if env.Seq == nil {
		d.log.Warn(ctx, "orderbook_delta missing seq", "sid", env.Sid)
		return
	}
	marketKey, ok := d.MarketKeyFor(env.Sid)
	if !ok {
		d.log.Warn(ctx, "orderbook_delta for unregistered sid", "sid", env.Sid)
		return
	}

	side := domain.SideYes
	if env.Msg.Side == string(domain.SideNo) {
		side = domain.SideNo
	}

	changed, err := d.books.ApplyDelta(marketKey, side, env.Msg.Price, env.Msg.Delta, *env.Seq, now)
	if err != nil {
		d.log.Error(ctx, "rejected orderbook_delta", "market_key", marketKey, "seq", *env.Seq, "error", err.Error(), "app_error", apperror.CodeSequenceGap)
		return
	}

	d.maybeForcePublish(ctx, marketKey, now)
	if changed {
		d.events.Publish(ctx, EventBidAskUpdated, BidAskUpdated{MarketKey: marketKey})
	}
}

func (d *Decoder) handleTickerV2(ctx context.Context, env wireEnvelope) {
	marketKey, ok := d.MarketKeyFor(env.Sid)
	if !ok {
		marketKey = env.Msg.MarketTicker
	}
	d.events.Publish(ctx, EventTickerUpdated, BidAskUpdated{MarketKey: marketKey})
}

// maybeForcePublish tracks the minute bucket of the most recent update per
// market and, on a bucket rollover, emits EventBidAskUpdated even when the
// cached best prices didn't change, so bid/ask subscribers (PairRegistry's
// re-evaluation) hear about the market again across a candlestick boundary.
// The Decoder holds no TickerPublisher and does not call its ForcePublish.
func (d *Decoder) maybeForcePublish(ctx context.Context, marketKey string, now time.Time) {
	bucket := now.Unix() / 60
	prev, loaded := d.candlestick.Swap(marketKey, bucket)
	if loaded && prev.(int64) != bucket {
		d.events.Publish(ctx, EventBidAskUpdated, BidAskUpdated{MarketKey: marketKey})
	}
}

func levelsFromPairs(pairs [][2]int, side domain.Side) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		levels = append(levels, domain.PriceLevel{Price: p[0], Size: p[1], Side: side})
	}
	return levels
}
