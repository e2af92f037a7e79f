package domain

import "time"

// Snapshot is an immutable orderbook state for one K market. Every mutation
// produces a new Snapshot via copy-on-write; existing values are never
// mutated in place, so a reader holding one observes a fully consistent
// view regardless of concurrent writers.
type Snapshot struct {
	MarketKey string

	YesLevels map[int]PriceLevel
	NoLevels  map[int]PriceLevel

	BestYesBid *int
	BestNoBid  *int
	LastSeq    *int

	LastUpdateTime time.Time
}

// Empty returns an empty, freshly-initialized snapshot for marketKey, used
// when a subscription is confirmed before any book data has arrived.
func Empty(marketKey string) *Snapshot {
	return &Snapshot{
		MarketKey: marketKey,
		YesLevels: map[int]PriceLevel{},
		NoLevels:  map[int]PriceLevel{},
	}
}

// BestNoAsk derives the synthetic NO-ask from the best YES bid: in a binary
// market the two contracts are complementary, so selling NO at a given price
// is economically equivalent to buying YES at 100 minus that price.
func (s *Snapshot) BestNoAsk() *int {
	if s.BestYesBid == nil {
		return nil
	}
	v := 100 - *s.BestYesBid
	return &v
}

// BestYesAsk derives the synthetic YES-ask from the best NO bid.
func (s *Snapshot) BestYesAsk() *int {
	if s.BestNoBid == nil {
		return nil
	}
	v := 100 - *s.BestNoBid
	return &v
}

// ApplySnapshot replaces the entire book for a market. It returns the new
// Snapshot and whether the cached best prices changed relative to prev
// (nil-safe: prev may be nil for a market seen for the first time).
func ApplySnapshot(prev *Snapshot, marketKey string, yes, no []PriceLevel, seq int, now time.Time) (*Snapshot, bool) {
	next := &Snapshot{
		MarketKey:      marketKey,
		YesLevels:      make(map[int]PriceLevel, len(yes)),
		NoLevels:       make(map[int]PriceLevel, len(no)),
		LastSeq:        &seq,
		LastUpdateTime: now,
	}
	for _, lvl := range yes {
		if lvl.Size > 0 {
			next.YesLevels[lvl.Price] = lvl
		}
	}
	for _, lvl := range no {
		if lvl.Size > 0 {
			next.NoLevels[lvl.Price] = lvl
		}
	}
	recomputeBests(next)

	changed := prev == nil || !bestsEqual(prev, next)
	return next, changed
}

// DeltaError is returned by ApplyDelta when the delta cannot be accepted.
type DeltaError struct {
	Reason string
}

func (e *DeltaError) Error() string { return e.Reason }

// ApplyDelta applies a signed size delta to one (side, price) level of prev,
// enforcing the strict sequence contract: seq must equal prev.LastSeq+1 or
// the delta is rejected wholesale (the caller drops it and awaits a fresh
// snapshot; no local resynchronization is attempted). It returns the new
// Snapshot and whether the cached best prices changed.
func ApplyDelta(prev *Snapshot, side Side, price, delta, seq int, now time.Time) (*Snapshot, bool, error) {
	if prev == nil || prev.LastSeq == nil {
		return nil, false, &DeltaError{Reason: "delta received before any snapshot"}
	}
	if seq != *prev.LastSeq+1 {
		return nil, false, &DeltaError{Reason: "sequence gap"}
	}

	next := &Snapshot{
		MarketKey:      prev.MarketKey,
		YesLevels:      copyLevels(prev.YesLevels),
		NoLevels:       copyLevels(prev.NoLevels),
		LastSeq:        &seq,
		LastUpdateTime: now,
	}

	levels := next.YesLevels
	if side == SideNo {
		levels = next.NoLevels
	}

	existing, ok := levels[price]
	newSize := delta
	if ok {
		newSize = existing.Size + delta
	}
	if newSize <= 0 {
		delete(levels, price)
	} else {
		levels[price] = PriceLevel{Price: price, Size: newSize, Side: side}
	}

	recomputeBests(next)
	changed := !bestsEqual(prev, next)
	return next, changed, nil
}

func copyLevels(src map[int]PriceLevel) map[int]PriceLevel {
	dst := make(map[int]PriceLevel, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func recomputeBests(s *Snapshot) {
	s.BestYesBid = maxKey(s.YesLevels)
	s.BestNoBid = maxKey(s.NoLevels)
}

func maxKey(levels map[int]PriceLevel) *int {
	var best *int
	for price := range levels {
		p := price
		if best == nil || p > *best {
			best = &p
		}
	}
	return best
}

func bestsEqual(a, b *Snapshot) bool {
	return intPtrEqual(a.BestYesBid, b.BestYesBid) && intPtrEqual(a.BestNoBid, b.BestNoBid)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
