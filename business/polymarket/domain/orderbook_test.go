package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fixedTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyBookSnapshotComputesBests(t *testing.T) {
	s := ApplyBookSnapshot("asset-1", []PriceLevel{
		{Price: dec("0.64"), Size: dec("100"), Side: SideBid},
		{Price: dec("0.60"), Size: dec("50"), Side: SideBid},
	}, []PriceLevel{
		{Price: dec("0.66"), Size: dec("80"), Side: SideAsk},
		{Price: dec("0.70"), Size: dec("10"), Side: SideAsk},
	}, "hash-1", fixedTime())

	if s.BestBid == nil || !s.BestBid.Equal(dec("0.64")) {
		t.Fatalf("expected best bid 0.64, got %v", s.BestBid)
	}
	if s.BestAsk == nil || !s.BestAsk.Equal(dec("0.66")) {
		t.Fatalf("expected best ask 0.66, got %v", s.BestAsk)
	}
}

func TestApplyBookSnapshotDropsNonPositiveSizeLevels(t *testing.T) {
	s := ApplyBookSnapshot("asset-1", []PriceLevel{
		{Price: dec("0.64"), Size: dec("0"), Side: SideBid},
	}, nil, "hash-1", fixedTime())

	if len(s.Bids) != 0 {
		t.Fatalf("expected zero-size level to be dropped, got %d bids", len(s.Bids))
	}
	if s.BestBid != nil {
		t.Fatalf("expected nil best bid, got %v", s.BestBid)
	}
}

func TestCanonicalKeyMergesEquivalentPriceStrings(t *testing.T) {
	// The original implementation keyed its book by the raw wire string, so
	// "0.64" and "0.6400" silently created two separate levels. Canonical
	// keying collapses them into one.
	s := ApplyBookSnapshot("asset-1", []PriceLevel{
		{Price: dec("0.64"), Size: dec("10"), Side: SideBid},
		{Price: dec("0.6400"), Size: dec("5"), Side: SideBid},
	}, nil, "hash-1", fixedTime())

	if len(s.Bids) != 1 {
		t.Fatalf("expected 0.64 and 0.6400 to collapse into one level, got %d", len(s.Bids))
	}
}

func TestApplyPriceChangesOverwritesAndRemovesLevels(t *testing.T) {
	prev := ApplyBookSnapshot("asset-1", []PriceLevel{
		{Price: dec("0.64"), Size: dec("100"), Side: SideBid},
	}, []PriceLevel{
		{Price: dec("0.66"), Size: dec("80"), Side: SideAsk},
	}, "hash-1", fixedTime())

	next, changed := ApplyPriceChanges(prev, []PriceChange{
		{Side: SideBid, Price: dec("0.64"), Size: dec("0")},
		{Side: SideBid, Price: dec("0.62"), Size: dec("30")},
	}, fixedTime().Add(time.Second))

	if !changed {
		t.Fatalf("expected best bid to change")
	}
	if _, ok := next.Bids[canonicalKey(dec("0.64"))]; ok {
		t.Fatalf("expected 0.64 level removed")
	}
	if next.BestBid == nil || !next.BestBid.Equal(dec("0.62")) {
		t.Fatalf("expected new best bid 0.62, got %v", next.BestBid)
	}
	if len(prev.Bids) != 1 {
		t.Fatalf("expected prev snapshot untouched by copy-on-write")
	}
}

func TestApplyTickSizeChangeSeedsPlaceholderLevels(t *testing.T) {
	prev := Empty("asset-1")
	next := ApplyTickSizeChange(prev, dec("0.001"), fixedTime())

	bidLvl, ok := next.Bids[canonicalKey(dec("0.001"))]
	if !ok || !bidLvl.Size.Equal(dec("1")) {
		t.Fatalf("expected placeholder bid level of size 1, got %+v ok=%v", bidLvl, ok)
	}
	askLvl, ok := next.Asks[canonicalKey(dec("0.001"))]
	if !ok || !askLvl.Size.Equal(dec("1")) {
		t.Fatalf("expected placeholder ask level of size 1, got %+v ok=%v", askLvl, ok)
	}
}
