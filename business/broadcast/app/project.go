package app

import (
	"github.com/shopspring/decimal"

	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/domain"
	kalshidomain "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	polydomain "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
)

// ProjectKalshiTicker converts a venue K ticker (integer cents) into a
// venue-neutral TickerSnapshot (fractional dollars), reporting false if
// payload is not a kalshidomain.Ticker.
func ProjectKalshiTicker(payload any) (domain.TickerSnapshot, bool) {
	t, ok := payload.(kalshidomain.Ticker)
	if !ok {
		return domain.TickerSnapshot{}, false
	}
	return domain.TickerSnapshot{
		MarketKey: t.MarketKey,
		Platform:  domain.PlatformKalshi,
		Summary: domain.Summary{
			Yes: domain.SideSummary{
				Bid:    centsToDollars(t.Yes.Bid),
				Ask:    centsToDollars(t.Yes.Ask),
				Volume: float64(t.Yes.Volume),
			},
			No: domain.SideSummary{
				Bid:    centsToDollars(t.No.Bid),
				Ask:    centsToDollars(t.No.Ask),
				Volume: float64(t.No.Volume),
			},
		},
		Timestamp: t.Timestamp,
	}, true
}

// ProjectPolymarketTicker converts a venue P ticker (decimal-string prices,
// no native yes/no split) into a venue-neutral TickerSnapshot. Its single
// bid/ask/volume populate Summary.Yes; Summary.No is left zero, per
// domain.TickerSnapshot's documented venue P projection.
func ProjectPolymarketTicker(payload any) (domain.TickerSnapshot, bool) {
	t, ok := payload.(polydomain.Ticker)
	if !ok {
		return domain.TickerSnapshot{}, false
	}
	volume, _ := t.Volume.Float64()
	return domain.TickerSnapshot{
		MarketKey: t.AssetID,
		Platform:  domain.PlatformPolymarket,
		Summary: domain.Summary{
			Yes: domain.SideSummary{
				Bid:    decimalToFloat(t.Bid),
				Ask:    decimalToFloat(t.Ask),
				Volume: volume,
			},
		},
		Timestamp: t.Timestamp,
	}, true
}

func centsToDollars(cents *int) *float64 {
	if cents == nil {
		return nil
	}
	v := float64(*cents) / 100.0
	return &v
}

func decimalToFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v, _ := d.Float64()
	return &v
}
