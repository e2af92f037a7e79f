// Package domain contains the core orderbook types for venue P (a
// Polymarket-style decimal-price, snapshot-then-patch prediction market).
package domain

import "github.com/shopspring/decimal"

// Side identifies which side of the book a price level rests on.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// PriceLevel is a single resting order aggregate at one decimal price. A
// level with a non-positive Size must never appear in a snapshot; it is
// removed instead.
type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
	Side  Side
}
