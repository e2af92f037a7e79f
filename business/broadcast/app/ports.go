// Package app contains the broadcast context's application services:
// per-client subscription indexing (ChannelManager) and ticker/alert
// fan-out (Broadcaster).
package app

import "context"

// Sender is the per-client transport a ChannelManager connection is
// registered with. Implementations live in infra/ws; this package never
// imports a concrete WebSocket library.
type Sender interface {
	// Send delivers payload to the client, bounded by whatever timeout and
	// rate limit the implementation applies. A non-nil error means the
	// client is considered dead and will be disconnected.
	Send(ctx context.Context, payload []byte) error

	// Close releases the underlying connection.
	Close() error
}

// Stats mirrors channel_manager.py's get_stats() counters.
type Stats struct {
	TotalConnections      int
	MessagesSent          int
	FailedSends           int
	ActiveSubscriptions   int
	PlatformSubscriptions map[string]int
	MarketSubscriptions   map[string]int
	AllSubscribers        int
}
