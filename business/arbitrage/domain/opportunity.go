package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecutionInfo records the liquidity constraints behind an opportunity's
// ExecutionSize: how much size was available on each venue at the traded
// price, and which venue was the limiting factor.
type ExecutionInfo struct {
	KSize          decimal.Decimal `json:"k_size"`
	PSize          decimal.Decimal `json:"p_size"`
	Min            decimal.Decimal `json:"min"`
	LimitingFactor string          `json:"limiting_factor"` // "k" or "p"
}

// Opportunity is an immutable arbitrage opportunity between venue K and
// venue P for one market pair, at one instant. Field names and JSON tags
// match the wire shape clients receive on the arbitrage_alert frame.
type Opportunity struct {
	PairID        string          `json:"pair_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Spread        decimal.Decimal `json:"spread"` // 0..1
	Direction     Direction       `json:"direction"`
	Side          Side            `json:"side"`
	KPrice        decimal.Decimal `json:"k_price"`
	PPrice        decimal.Decimal `json:"p_price"`
	KMarketKey    string          `json:"k_market_key"`
	PAssetID      string          `json:"p_asset_id"`
	ExecutionSize decimal.Decimal `json:"execution_size"`
	ExecutionInfo ExecutionInfo   `json:"execution_info"`
}
