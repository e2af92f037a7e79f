// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
	"github.com/rohitdayanand/polykalshi-bridge/pkg/ui"
)

// TUIReporter implements Reporter for the Bubble Tea TUI, forwarding each
// opportunity to the dashboard's alert panel.
type TUIReporter struct {
	started bool
}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start initializes the TUI reporter. The TUI program itself is started
// separately in main; this reporter only sends messages to it.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.started = true
	ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
	return nil
}

// Report sends a detected opportunity to the TUI's alert panel.
func (r *TUIReporter) Report(opp domain.Opportunity) {
	if !r.started {
		return
	}
	ui.Send(ui.OpportunityMsg{Opportunity: &opp})
}

// UpdateConnectionStatus sends a venue connection status change to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(venue string, connected bool, latency time.Duration) {
	if !r.started {
		return
	}
	ui.Send(ui.ConnectionStatusMsg{
		Name:      venue,
		Connected: connected,
		Latency:   latency,
	})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	r.started = false
	return nil
}
