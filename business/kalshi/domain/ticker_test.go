package domain

import "testing"

func TestTickerFromSnapshotDerivesSyntheticAsks(t *testing.T) {
	snap, _ := ApplySnapshot(nil, "M", []PriceLevel{{Price: 73, Size: 26, Side: SideYes}}, []PriceLevel{{Price: 98, Size: 8285, Side: SideNo}}, 5, fixedTime())

	ticker := TickerFromSnapshot(snap, fixedTime())
	if ticker.Yes.Bid == nil || *ticker.Yes.Bid != 73 {
		t.Fatalf("expected yes bid 73, got %v", ticker.Yes.Bid)
	}
	if ticker.No.Ask == nil || *ticker.No.Ask != 27 {
		t.Fatalf("expected no ask 27 (100-73), got %v", ticker.No.Ask)
	}
	if ticker.No.Bid == nil || *ticker.No.Bid != 98 {
		t.Fatalf("expected no bid 98, got %v", ticker.No.Bid)
	}
	if ticker.Yes.Ask == nil || *ticker.Yes.Ask != 2 {
		t.Fatalf("expected yes ask 2 (100-98), got %v", ticker.Yes.Ask)
	}
}

func TestTickerEqualIgnoresTimestampAndVolume(t *testing.T) {
	a := Ticker{MarketKey: "M", Yes: QuoteSide{Bid: intPtr(73)}}
	b := Ticker{MarketKey: "M", Yes: QuoteSide{Bid: intPtr(73), Volume: 999}, Timestamp: fixedTime()}
	if !a.Equal(b) {
		t.Fatal("expected tickers with same prices to be equal regardless of volume/timestamp")
	}
}

func TestTickerEqualDetectsPriceChange(t *testing.T) {
	a := Ticker{MarketKey: "M", Yes: QuoteSide{Bid: intPtr(73)}}
	b := Ticker{MarketKey: "M", Yes: QuoteSide{Bid: intPtr(74)}}
	if a.Equal(b) {
		t.Fatal("expected tickers with different bids to differ")
	}
}

func intPtr(v int) *int { return &v }
