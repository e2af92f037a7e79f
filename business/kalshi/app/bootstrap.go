package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/httpclient"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// marketSummary is the subset of the venue's public market-summary REST
// response the bootstrap fetch cares about.
type marketSummary struct {
	Ticker string `json:"ticker"`
	YesBid int    `json:"yes_bid"`
	YesAsk int    `json:"yes_ask"`
	Volume int    `json:"volume"`
}

// Bootstrapper performs a best-effort REST fetch of a market's current
// summary the first time its ticker is seen, so the book has a sensible
// starting best-price even before the first orderbook_snapshot frame
// arrives. Any failure is logged and swallowed: the caller falls through to
// zero-valued ticker state and the decode loop is never blocked waiting on
// this request.
type Bootstrapper struct {
	log     logger.LoggerInterface
	client  httpclient.Client
	baseURL string
}

// NewBootstrapper constructs a Bootstrapper against baseURL (the venue's
// market-summary endpoint).
func NewBootstrapper(log logger.LoggerInterface, client httpclient.Client, baseURL string) *Bootstrapper {
	return &Bootstrapper{log: log, client: client, baseURL: baseURL}
}

// Fetch attempts once to fetch the summary for marketTicker and, if nothing
// has populated the book in the meantime, seeds it as a synthetic
// single-level snapshot at seq 0. Errors are logged, not returned: callers
// invoke this in a goroutine and move on.
func (b *Bootstrapper) Fetch(ctx context.Context, books *BookStore, marketTicker string) {
	if b == nil || b.client == nil {
		return
	}

	var summary marketSummary
	resp, err := b.client.NewRequest().SetResult(&summary).Get(ctx, fmt.Sprintf("%s/%s", b.baseURL, marketTicker))
	if err != nil {
		b.log.Warn(ctx, "ticker_v2 bootstrap fetch failed", "market_key", marketTicker, "error", err.Error())
		return
	}
	if resp.IsError() {
		b.log.Warn(ctx, "ticker_v2 bootstrap fetch returned error status", "market_key", marketTicker, "status", resp.StatusCode)
		return
	}
	if books.Get(marketTicker) != nil {
		// A real snapshot already arrived while the fetch was in flight;
		// never let a stale bootstrap clobber live book state.
		return
	}

	var yes, no []domain.PriceLevel
	if summary.YesBid > 0 {
		yes = append(yes, domain.PriceLevel{Price: summary.YesBid, Size: maxInt(summary.Volume, 1), Side: domain.SideYes})
	}
	if summary.YesAsk > 0 {
		no = append(no, domain.PriceLevel{Price: 100 - summary.YesAsk, Size: maxInt(summary.Volume, 1), Side: domain.SideNo})
	}
	if len(yes) == 0 && len(no) == 0 {
		return
	}
	books.ApplySnapshot(marketTicker, yes, no, 0, time.Now())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
