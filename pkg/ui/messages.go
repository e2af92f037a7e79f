// Package ui provides the Bubble Tea TUI for the ticker bridge.
package ui

import (
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
)

// Message types for TUI updates

// OpportunityMsg is sent when an arbitrage opportunity survives evaluation.
type OpportunityMsg struct {
	Opportunity *domain.Opportunity
}

// TickerMsg is sent when a venue publishes an updated ticker.
type TickerMsg struct {
	MarketKey string
	Platform  string
	YesBid    string
	YesAsk    string
	NoBid     string
	NoAsk     string
}

// ConnectionStatusMsg is sent when a venue connection's status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
