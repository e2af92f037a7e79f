package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/shopspring/decimal"
)

// Decoder parses raw venue P WebSocket frames and applies them to a
// BookStore, emitting domain events on every change. Venue P's YES and NO
// contracts are separate asset_ids, each with its own independent book; the
// decoder has no notion of pairing them, matching the original processor's
// per-asset_id orderbook map.
type Decoder struct {
	log    logger.LoggerInterface
	books  *BookStore
	events EventPublisher
}

// NewDecoder constructs a Decoder writing into books and publishing to bus.
func NewDecoder(log logger.LoggerInterface, books *BookStore, bus EventPublisher) *Decoder {
	return &Decoder{log: log, books: books, events: bus}
}

// HandleFrame decodes and applies one raw JSON frame. Decode failures and
// unknown event types are logged and the frame is dropped.
func (d *Decoder) HandleFrame(ctx context.Context, raw []byte, now time.Time) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		d.log.Warn(ctx, "failed to decode venue P frame", "error", err.Error())
		return
	}
	if frame.EventType == "" {
		d.log.Warn(ctx, "venue P frame missing event_type")
		return
	}
	if frame.AssetID == "" {
		d.log.Warn(ctx, "venue P frame missing asset_id", "event_type", frame.EventType)
		return
	}

	switch frame.EventType {
	case "book":
		d.handleBook(ctx, frame, now)
	case "price_change":
		d.handlePriceChange(ctx, frame, now)
	case "tick_size_change":
		d.handleTickSizeChange(ctx, frame, now)
	case "last_trade_price":
		d.handleLastTradePrice(ctx, frame)
	default:
		d.log.Info(ctx, "unknown venue P event_type", "event_type", frame.EventType)
	}
}

func (d *Decoder) handleBook(ctx context.Context, frame wireFrame, now time.Time) {
	bids, err := levelsFromPairs(frame.Bids, domain.SideBid)
	if err != nil {
		d.log.Warn(ctx, "malformed book bids", "asset_id", frame.AssetID, "error", err.Error())
		return
	}
	asks, err := levelsFromPairs(frame.Asks, domain.SideAsk)
	if err != nil {
		d.log.Warn(ctx, "malformed book asks", "asset_id", frame.AssetID, "error", err.Error())
		return
	}

	changed := d.books.ApplyBookSnapshot(frame.AssetID, bids, asks, frame.Hash, now)
	if changed {
		d.events.Publish(ctx, EventBidAskUpdated, BidAskUpdated{AssetID: frame.AssetID})
	}
}

func (d *Decoder) handlePriceChange(ctx context.Context, frame wireFrame, now time.Time) {
	if len(frame.Changes) == 0 {
		return
	}

	changes := make([]domain.PriceChange, 0, len(frame.Changes))
	for _, c := range frame.Changes {
		price, err := decimal.NewFromString(c.Price)
		if err != nil {
			d.log.Warn(ctx, "malformed price_change price", "asset_id", frame.AssetID, "price", c.Price)
			continue
		}
		size, err := decimal.NewFromString(c.Size)
		if err != nil {
			d.log.Warn(ctx, "malformed price_change size", "asset_id", frame.AssetID, "size", c.Size)
			continue
		}
		side := domain.SideBid
		if strings.EqualFold(c.Side, "SELL") {
			side = domain.SideAsk
		}
		changes = append(changes, domain.PriceChange{Side: side, Price: price, Size: size})
	}

	changed, err := d.books.ApplyPriceChanges(frame.AssetID, changes, now)
	if err != nil {
		d.log.Warn(ctx, "rejected price_change", "asset_id", frame.AssetID, "error", err.Error())
		return
	}
	if changed {
		d.events.Publish(ctx, EventBidAskUpdated, BidAskUpdated{AssetID: frame.AssetID})
	}
}

func (d *Decoder) handleTickSizeChange(ctx context.Context, frame wireFrame, now time.Time) {
	newTick, err := decimal.NewFromString(frame.NewTickSize)
	if err != nil {
		d.log.Warn(ctx, "malformed tick_size_change new_tick_size", "asset_id", frame.AssetID, "new_tick_size", frame.NewTickSize)
		return
	}
	if err := d.books.ApplyTickSizeChange(frame.AssetID, newTick, now); err != nil {
		d.log.Warn(ctx, "rejected tick_size_change", "asset_id", frame.AssetID, "error", err.Error())
		return
	}
	d.events.Publish(ctx, EventBidAskUpdated, BidAskUpdated{AssetID: frame.AssetID})
}

// handleLastTradePrice is a stub: the trade price is published informationally
// but never folded into the book, matching the original processor's own
// stub implementation of this event type.
func (d *Decoder) handleLastTradePrice(ctx context.Context, frame wireFrame) {
	d.events.Publish(ctx, EventTradeObserved, TradeObserved{AssetID: frame.AssetID, Price: frame.Price, Size: frame.Size})
}

func levelsFromPairs(pairs [][2]string, side domain.Side) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(pairs))
	for _, pair := range pairs {
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			return nil, err
		}
		size, err := decimal.NewFromString(pair[1])
		if err != nil {
			return nil, err
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size, Side: side})
	}
	return levels, nil
}
