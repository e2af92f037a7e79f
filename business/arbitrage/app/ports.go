// Package app contains the arbitrage context's application services:
// opportunity evaluation, pair registry, alert deduplication/settings/
// lifecycle management, and runtime settings coordination.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
)

// EventPublisher is the publish-only subset of eventbus.Bus. The services in
// this package (PairRegistry, ArbitrageManager, SettingsCoordinator) take the
// concrete *eventbus.Bus rather than this interface.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) []error
}

// Event type names published within the arbitrage context.
const (
	// EventRawAlert carries a domain.Opportunity as produced directly by
	// PairRegistry, before ArbitrageManager's deduplication; internal to
	// the arbitrage context.
	EventRawAlert = "arbitrage.raw_alert"

	// EventAlert carries a domain.Opportunity that survived
	// ArbitrageManager's deduplication; this is the externally-consumed
	// event (Broadcaster fans it out to clients).
	EventAlert = "arbitrage.alert"

	// EventKalshiUpdated and EventPolymarketUpdated are internal trigger
	// notifications: "a book changed, go find which pairs care", decoupled
	// from "which pairs reference that market key".
	EventKalshiUpdated    = "arbitrage.kalshi_updated"
	EventPolymarketUpdated = "arbitrage.polymarket_updated"

	// Settings request/response, correlated by CorrelationID.
	EventSettingsChangeRequested = "arbitrage.settings_change_requested"
	EventSettingsUpdated         = "arbitrage.settings_updated"
	EventSettingsError           = "arbitrage.settings_error"
)

// KalshiUpdated is the payload of EventKalshiUpdated.
type KalshiUpdated struct {
	MarketKey string
}

// PolymarketUpdated is the payload of EventPolymarketUpdated.
type PolymarketUpdated struct {
	AssetID string
}

// SettingsChangeRequested is the payload of EventSettingsChangeRequested.
// Nil fields mean "leave unchanged".
type SettingsChangeRequested struct {
	MinSpreadThreshold *float64
	MinTradeSize       *float64
	CorrelationID      uuid.UUID
}

// Settings is the current tunable arbitrage detection configuration.
type Settings struct {
	MinSpreadThreshold float64
	MinTradeSize       float64
}

// SettingsUpdated is the payload of EventSettingsUpdated: the settings as
// applied, the fields the request actually changed, and the requester's
// correlation id.
type SettingsUpdated struct {
	Settings      Settings
	ChangedFields []string
	CorrelationID uuid.UUID
}

// SettingsError is the payload of EventSettingsError.
type SettingsError struct {
	Message       string
	CorrelationID uuid.UUID
}

// Reporter displays or logs arbitrage opportunities and venue connection
// status; implementations are the console and TUI reporters.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends a detected opportunity to be displayed/logged.
	Report(opp domain.Opportunity)

	// UpdateConnectionStatus updates a venue connection status display.
	UpdateConnectionStatus(venue string, connected bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
