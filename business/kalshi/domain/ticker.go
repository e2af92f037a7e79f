package domain

import "time"

// QuoteSide is one side of a published ticker quote.
type QuoteSide struct {
	Bid    *int
	Ask    *int
	Volume int
}

// Ticker is the publishable venue K view of a market's current best quotes
// in integer cents, derived from a Snapshot. YES.Ask and NO.Ask are the synthetic
// complementary prices, not independently quoted levels.
type Ticker struct {
	MarketKey string
	Yes       QuoteSide
	No        QuoteSide
	Timestamp time.Time
}

// Equal reports whether two tickers carry the same quoted prices, ignoring
// Timestamp and Volume. Used by the publisher to suppress identical
// republishes.
func (t Ticker) Equal(other Ticker) bool {
	return t.MarketKey == other.MarketKey &&
		intPtrEqual(t.Yes.Bid, other.Yes.Bid) &&
		intPtrEqual(t.Yes.Ask, other.Yes.Ask) &&
		intPtrEqual(t.No.Bid, other.No.Bid) &&
		intPtrEqual(t.No.Ask, other.No.Ask)
}

// TickerFromSnapshot projects a Snapshot into its publishable Ticker form.
func TickerFromSnapshot(s *Snapshot, now time.Time) Ticker {
	return Ticker{
		MarketKey: s.MarketKey,
		Yes: QuoteSide{
			Bid:    s.BestYesBid,
			Ask:    s.BestYesAsk(),
			Volume: sumSize(s.YesLevels),
		},
		No: QuoteSide{
			Bid:    s.BestNoBid,
			Ask:    s.BestNoAsk(),
			Volume: sumSize(s.NoLevels),
		},
		Timestamp: now,
	}
}

func sumSize(levels map[int]PriceLevel) int {
	total := 0
	for _, lvl := range levels {
		total += lvl.Size
	}
	return total
}
