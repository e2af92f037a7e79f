// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TickerRow represents a row in the ticker table: the latest published quote
// for one market on one venue.
type TickerRow struct {
	MarketKey string
	Platform  string
	YesBid    string
	YesAsk    string
	NoBid     string
	NoAsk     string
}

// TickersComponent renders the latest ticker for each tracked market.
type TickersComponent struct {
	rows map[string]TickerRow
	order []string
}

// NewTickersComponent creates a new tickers component.
func NewTickersComponent() *TickersComponent {
	return &TickersComponent{
		rows: make(map[string]TickerRow),
	}
}

// Upsert records the latest ticker for a market, keeping each market's
// first-seen position.
func (p *TickersComponent) Upsert(row TickerRow) {
	if _, ok := p.rows[row.MarketKey]; !ok {
		p.order = append(p.order, row.MarketKey)
	}
	p.rows[row.MarketKey] = row
}

// View renders the tickers component.
func (p *TickersComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	kalshiStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	polyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	var result string
	result = headerStyle.Render("LIVE TICKERS")
	result += "\n\n"

	if len(p.order) == 0 {
		return result + dimStyle.Render("  Waiting for ticker data...") + "\n"
	}

	result += fmt.Sprintf("  %-22s %-10s  %10s  %10s\n", "Market", "Venue", "Yes bid/ask", "No bid/ask")
	result += dimStyle.Render("  " + strings.Repeat("─", 60)) + "\n"

	// Render markets newest-first by when they were first seen (a later update
	// does not move a market), capped for dashboard height.
	max := len(p.order)
	if max > 12 {
		max = 12
	}
	for i := 0; i < max; i++ {
		row := p.rows[p.order[len(p.order)-1-i]]
		venueStyle := kalshiStyle
		if row.Platform == "polymarket" {
			venueStyle = polyStyle
		}
		result += fmt.Sprintf("  %-22s %-10s  %5s/%-5s %5s/%-5s\n",
			row.MarketKey,
			venueStyle.Render(row.Platform),
			row.YesBid, row.YesAsk,
			row.NoBid, row.NoAsk,
		)
	}

	return result
}
