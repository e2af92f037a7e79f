package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is the publishable summary for one venue P asset. Unlike venue K,
// venue P has no YES/NO split at this layer: a prediction's "yes" and "no"
// sides are wholly separate asset_ids, each tracked as its own book and
// published as its own Ticker.
type Ticker struct {
	AssetID   string
	Bid       *decimal.Decimal
	Ask       *decimal.Decimal
	Volume    decimal.Decimal
	Timestamp time.Time
}

// Equal reports whether two tickers carry the same asset and bid/ask,
// ignoring timestamp and volume, for publish-suppression purposes.
func (t Ticker) Equal(other Ticker) bool {
	if t.AssetID != other.AssetID {
		return false
	}
	return decimalPtrEqual(t.Bid, other.Bid) && decimalPtrEqual(t.Ask, other.Ask)
}

// TickerFromSnapshot projects a Snapshot into its publishable Ticker.
func TickerFromSnapshot(s *Snapshot, now time.Time) Ticker {
	return Ticker{
		AssetID:   s.AssetID,
		Bid:       s.BestBid,
		Ask:       s.BestAsk,
		Volume:    sumSize(s.Bids).Add(sumSize(s.Asks)),
		Timestamp: now,
	}
}

func sumSize(levels map[string]PriceLevel) decimal.Decimal {
	total := decimal.Zero
	for _, lvl := range levels {
		total = total.Add(lvl.Size)
	}
	return total
}
