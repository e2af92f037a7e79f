package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// priceScale is the number of decimal places every price key is normalized
// to before being used as a map key. The original Python implementation
// keyed its book maps by the raw wire string, so two price levels
// representing the same number (e.g. "0.64" and "0.6400") landed in
// different map entries; normalizing to a fixed scale here resolves that.
const priceScale = 6

func canonicalKey(price decimal.Decimal) string {
	return price.Truncate(priceScale).String()
}

// Snapshot is an immutable orderbook state for one venue P asset. Every
// mutation produces a new Snapshot via copy-on-write.
type Snapshot struct {
	AssetID string

	Bids map[string]PriceLevel
	Asks map[string]PriceLevel

	BestBid *decimal.Decimal
	BestAsk *decimal.Decimal

	LastHash       string
	LastUpdateTime time.Time
}

// Empty returns an empty snapshot for assetID.
func Empty(assetID string) *Snapshot {
	return &Snapshot{
		AssetID: assetID,
		Bids:    map[string]PriceLevel{},
		Asks:    map[string]PriceLevel{},
	}
}

// ApplyBookSnapshot replaces the entire book for an asset, matching venue
// P's "book" event semantics (complete overwrite, not a merge).
func ApplyBookSnapshot(assetID string, bids, asks []PriceLevel, hash string, now time.Time) *Snapshot {
	next := &Snapshot{
		AssetID:        assetID,
		Bids:           make(map[string]PriceLevel, len(bids)),
		Asks:           make(map[string]PriceLevel, len(asks)),
		LastHash:       hash,
		LastUpdateTime: now,
	}
	for _, lvl := range bids {
		if lvl.Size.IsPositive() {
			next.Bids[canonicalKey(lvl.Price)] = lvl
		}
	}
	for _, lvl := range asks {
		if lvl.Size.IsPositive() {
			next.Asks[canonicalKey(lvl.Price)] = lvl
		}
	}
	recomputeBests(next)
	return next
}

// PriceChange is one (side, price, size) tuple from a price_change event.
// A zero or absent size removes the level; otherwise the level is fully
// overwritten (never incrementally adjusted, matching venue P's semantics).
type PriceChange struct {
	Side  Side
	Price decimal.Decimal
	Size  decimal.Decimal
}

// ApplyPriceChanges applies a batch of price_change tuples to prev, copy-
// on-write, and reports whether the cached best prices changed.
func ApplyPriceChanges(prev *Snapshot, changes []PriceChange, now time.Time) (*Snapshot, bool) {
	next := &Snapshot{
		AssetID:        prev.AssetID,
		Bids:           copyLevels(prev.Bids),
		Asks:           copyLevels(prev.Asks),
		LastHash:       prev.LastHash,
		LastUpdateTime: now,
	}

	for _, ch := range changes {
		levels := next.Bids
		if ch.Side == SideAsk {
			levels = next.Asks
		}
		key := canonicalKey(ch.Price)
		if ch.Size.IsZero() || ch.Size.IsNegative() {
			delete(levels, key)
		} else {
			levels[key] = PriceLevel{Price: ch.Price, Size: ch.Size, Side: ch.Side}
		}
	}

	recomputeBests(next)
	changed := !bestsEqual(prev, next)
	return next, changed
}

// ApplyTickSizeChange seeds a temporary size-1 placeholder level at
// newTickSize on both sides, matching venue P's documented behavior: the
// placeholder is expected to be overwritten by the price_change events that
// immediately follow a tick size change.
func ApplyTickSizeChange(prev *Snapshot, newTickSize decimal.Decimal, now time.Time) *Snapshot {
	next := &Snapshot{
		AssetID:        prev.AssetID,
		Bids:           copyLevels(prev.Bids),
		Asks:           copyLevels(prev.Asks),
		LastHash:       prev.LastHash,
		LastUpdateTime: now,
	}
	placeholder := PriceLevel{Price: newTickSize, Size: decimal.NewFromInt(1)}
	key := canonicalKey(newTickSize)

	bidLevel := placeholder
	bidLevel.Side = SideBid
	next.Bids[key] = bidLevel

	askLevel := placeholder
	askLevel.Side = SideAsk
	next.Asks[key] = askLevel

	recomputeBests(next)
	return next
}

func copyLevels(src map[string]PriceLevel) map[string]PriceLevel {
	dst := make(map[string]PriceLevel, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func recomputeBests(s *Snapshot) {
	s.BestBid = maxPrice(s.Bids)
	s.BestAsk = minPrice(s.Asks)
}

func maxPrice(levels map[string]PriceLevel) *decimal.Decimal {
	var best *decimal.Decimal
	for _, lvl := range levels {
		p := lvl.Price
		if best == nil || p.GreaterThan(*best) {
			best = &p
		}
	}
	return best
}

func minPrice(levels map[string]PriceLevel) *decimal.Decimal {
	var best *decimal.Decimal
	for _, lvl := range levels {
		p := lvl.Price
		if best == nil || p.LessThan(*best) {
			best = &p
		}
	}
	return best
}

func bestsEqual(a, b *Snapshot) bool {
	return decimalPtrEqual(a.BestBid, b.BestBid) && decimalPtrEqual(a.BestAsk, b.BestAsk)
}

// SnapshotBestsEqual reports whether two snapshots share the same best
// bid/ask, exported for callers outside this package (BookStore) that need
// to detect a change across a full snapshot replacement.
func SnapshotBestsEqual(a, b *Snapshot) bool {
	return bestsEqual(a, b)
}

// LevelAt returns the resting level at price on the given side, using the
// same canonical key normalization as writes, so a caller holding a price
// sourced from BestBid/BestAsk always finds the matching level.
func LevelAt(s *Snapshot, side Side, price decimal.Decimal) (PriceLevel, bool) {
	levels := s.Bids
	if side == SideAsk {
		levels = s.Asks
	}
	lvl, ok := levels[canonicalKey(price)]
	return lvl, ok
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
