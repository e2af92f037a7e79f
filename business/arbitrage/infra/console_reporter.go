// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
)

var pct = decimal.NewFromInt(100)

// ConsoleReporter implements Reporter for plain-log CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Arbitrage service started")
	fmt.Fprintln(r.out, "==========================")
	return nil
}

// Report outputs a detected opportunity to the console.
func (r *ConsoleReporter) Report(opp domain.Opportunity) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Pair:           %s\n", opp.PairID)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Direction:      %s\n", opp.Direction.String())
	fmt.Fprintf(r.out, "Side:           %s\n", opp.Side.String())
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  K (%s):         %s\n", opp.KMarketKey, opp.KPrice.StringFixed(4))
	fmt.Fprintf(r.out, "  P (%s):         %s\n", opp.PAssetID, opp.PPrice.StringFixed(4))
	fmt.Fprintf(r.out, "  Spread:         %s%%\n", opp.Spread.Mul(pct).StringFixed(2))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "EXECUTION")
	fmt.Fprintf(r.out, "  Size:           %s\n", opp.ExecutionSize.StringFixed(2))
	fmt.Fprintf(r.out, "  K liquidity:    %s\n", opp.ExecutionInfo.KSize.StringFixed(2))
	fmt.Fprintf(r.out, "  P liquidity:    %s\n", opp.ExecutionInfo.PSize.StringFixed(2))
	fmt.Fprintf(r.out, "  Limiting venue: %s\n", opp.ExecutionInfo.LimitingFactor)
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdateConnectionStatus outputs a venue connection status change.
func (r *ConsoleReporter) UpdateConnectionStatus(venue string, connected bool, latency time.Duration) {
	status := "disconnected"
	if connected {
		status = fmt.Sprintf("connected (%s)", latency)
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), venue, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage service stopped")
	return nil
}
