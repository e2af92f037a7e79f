package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestTickerFromSnapshotProjectsBests(t *testing.T) {
	s := ApplyBookSnapshot("asset-1", []PriceLevel{
		{Price: dec("0.64"), Size: dec("100"), Side: SideBid},
	}, []PriceLevel{
		{Price: dec("0.66"), Size: dec("80"), Side: SideAsk},
	}, "hash-1", fixedTime())

	tk := TickerFromSnapshot(s, fixedTime())
	if tk.AssetID != "asset-1" {
		t.Fatalf("expected asset-1, got %s", tk.AssetID)
	}
	if tk.Bid == nil || !tk.Bid.Equal(dec("0.64")) {
		t.Fatalf("expected bid 0.64, got %v", tk.Bid)
	}
	if tk.Ask == nil || !tk.Ask.Equal(dec("0.66")) {
		t.Fatalf("expected ask 0.66, got %v", tk.Ask)
	}
	if !tk.Volume.Equal(dec("180")) {
		t.Fatalf("expected volume 180, got %v", tk.Volume)
	}
}

func TestTickerEqualIgnoresTimestampAndVolume(t *testing.T) {
	a := Ticker{AssetID: "asset-1", Bid: ptr(dec("0.64")), Ask: ptr(dec("0.66")), Volume: dec("1")}
	b := Ticker{AssetID: "asset-1", Bid: ptr(dec("0.64")), Ask: ptr(dec("0.66")), Volume: dec("999"), Timestamp: fixedTime()}

	if !a.Equal(b) {
		t.Fatalf("expected tickers differing only in volume/timestamp to be equal")
	}
}

func TestTickerEqualDetectsPriceChange(t *testing.T) {
	a := Ticker{AssetID: "asset-1", Bid: ptr(dec("0.64"))}
	b := Ticker{AssetID: "asset-1", Bid: ptr(dec("0.65"))}

	if a.Equal(b) {
		t.Fatalf("expected bid change to be detected")
	}
}
