package app

import "context"

// EventPublisher is the subset of eventbus.Bus the decoder and publisher
// need; narrowed to a local interface so this package doesn't import the
// concrete bus type for testing.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) []error
}

// Event type names published by the venue K decoder and ticker publisher.
const (
	EventBidAskUpdated = "k.bid_ask_updated"
	EventError         = "k.error"
	EventTickerUpdated = "k.ticker_updated"
)

// BidAskUpdated is the payload of EventBidAskUpdated.
type BidAskUpdated struct {
	MarketKey string
}

// ErrorEvent is the payload of EventError.
type ErrorEvent struct {
	MarketKey string
	Code      int
	Message   string
}
