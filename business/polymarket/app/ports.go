package app

import "context"

// EventPublisher is the subset of eventbus.Bus the decoder and publisher
// need; narrowed to a local interface so this package doesn't import the
// concrete bus type for testing.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) []error
}

// Event type names published by the venue P decoder and ticker publisher.
const (
	EventBidAskUpdated = "p.bid_ask_updated"
	EventError         = "p.error"
	EventTickerUpdated = "p.ticker_updated"
	EventTradeObserved = "p.trade_observed"
)

// BidAskUpdated is the payload of EventBidAskUpdated.
type BidAskUpdated struct {
	AssetID string
}

// ErrorEvent is the payload of EventError.
type ErrorEvent struct {
	AssetID string
	Message string
}

// TradeObserved is the payload of EventTradeObserved, fired on a
// last_trade_price event. Venue P's decoder does not fold trade prices into
// the book; this is informational only, matching the original client's own
// treatment of the event as log-only.
type TradeObserved struct {
	AssetID string
	Price   string
	Size    string
}
