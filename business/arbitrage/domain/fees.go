package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MakerFeeRate and GeneralFeeRate are the two Kalshi trading-fee tiers:
// a reduced maker rate for a fixed set of high-volume ticker series, and the
// general rate for everything else.
var (
	MakerFeeRate   = decimal.NewFromFloat(0.0175)
	GeneralFeeRate = decimal.NewFromFloat(0.07)
)

// makerFeeTickerPrefixes are the ticker series subject to the maker fee
// rate. Matching is exact-prefix, not substring containment: a ticker is a
// maker-fee ticker only if one of these strings is a prefix of it ending at
// a '.'  or the end of the string, never merely contained anywhere inside
// it. This avoids, e.g., a ticker like "KXNBASERIESAWARD-26" being caught by
// the "KXNBA" pattern when it should fall under general fees.
var makerFeeTickerPrefixes = []string{
	"KXAAAGASM", "KXGDP", "KXPAYROLLS", "KXU3", "KXEGGS", "KXCPI", "KXCPIYOY",
	"KXFEDDECISION", "KXFED", "KXNBA", "KXNBAEAST", "KXNBAWEST", "KXNBASERIES",
	"KXNBAGAME", "KXNHL", "KXNHLEAST", "KXNHLWEST", "KXNHLSERIES", "KXNHLGAME",
	"KXINDY500", "KXPGA", "KXUSOPEN", "KXPGARYDER", "KXTHEOPEN", "KXPGASOLHEIM",
	"KXFOMENSINGLES", "KXFOWOMENSINGLES", "KXWMENSINGLES", "KXWWOMENSINGLES",
	"KXUSOMENSINGLES", "KXUSOWOMENSINGLES", "KXAOMENSINGLES", "KXAOWOMENSINGLES",
	"KXNFLGAME", "KXUEFACL", "KXNBAFINALSMVP", "KXCONNSMYTHE", "KXFOMEN",
	"KXFOWOMEN", "KXNATHANSHD", "KXNATHANDOGS", "KXCLUBWC", "KXTOURDEFRANCE",
	"KXNASCARRACE", "KXATPMATCH", "KXWTAMATCH", "KXMLBASGAME", "KXMLBHRDERBY",
}

// IsMakerFeeTicker reports whether ticker belongs to a maker-fee series,
// using exact-prefix matching: prefix must match ticker from the start and
// be followed by either the end of the string or a '.' segment separator
// (Kalshi sub-market tickers are dot-separated, e.g. "KXNBA.26JAN01").
func IsMakerFeeTicker(ticker string, extraPrefixes ...string) bool {
	prefixes := makerFeeTickerPrefixes
	if len(extraPrefixes) > 0 {
		prefixes = append(append([]string{}, makerFeeTickerPrefixes...), extraPrefixes...)
	}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if matchesTickerPrefix(ticker, p) {
			return true
		}
	}
	return false
}

func matchesTickerPrefix(ticker, prefix string) bool {
	if !strings.HasPrefix(ticker, prefix) {
		return false
	}
	rest := ticker[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, ".")
}

// FeeRateForTicker returns the applicable fee rate for ticker, consulting
// extraPrefixes (typically the single configured
// venue_k.maker_fee_ticker_prefix) in addition to the built-in maker-fee
// series.
func FeeRateForTicker(ticker string, extraPrefixes ...string) decimal.Decimal {
	if IsMakerFeeTicker(ticker, extraPrefixes...) {
		return MakerFeeRate
	}
	return GeneralFeeRate
}

// TradingFee computes the Kalshi trading fee in dollars for contracts
// contracts traded at price (0..1), rounded up to the nearest cent:
// fee = ceil(rate * C * P * (1-P) * 100) / 100.
func TradingFee(rate, price decimal.Decimal, contracts int) decimal.Decimal {
	c := decimal.NewFromInt(int64(contracts))
	raw := rate.Mul(c).Mul(price).Mul(decimal.NewFromInt(1).Sub(price))
	cents := raw.Mul(decimal.NewFromInt(100)).Ceil()
	return cents.Div(decimal.NewFromInt(100))
}

// EffectiveBid returns price reduced by the per-contract fee, clamped to
// [0,1]: a seller nets less than the quoted bid once fees are paid.
func EffectiveBid(price decimal.Decimal, contracts int, ticker string, extraPrefixes ...string) decimal.Decimal {
	rate := FeeRateForTicker(ticker, extraPrefixes...)
	fee := TradingFee(rate, price, contracts)
	perContract := fee.Div(decimal.NewFromInt(int64(contracts)))
	return clamp01(price.Sub(perContract))
}

// EffectiveAsk returns price increased by the per-contract fee, clamped to
// [0,1]: a buyer pays more than the quoted ask once fees are paid.
func EffectiveAsk(price decimal.Decimal, contracts int, ticker string, extraPrefixes ...string) decimal.Decimal {
	rate := FeeRateForTicker(ticker, extraPrefixes...)
	fee := TradingFee(rate, price, contracts)
	perContract := fee.Div(decimal.NewFromInt(int64(contracts)))
	return clamp01(price.Add(perContract))
}

func clamp01(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	if d.GreaterThan(one) {
		return one
	}
	return d
}
