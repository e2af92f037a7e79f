package app

import (
	"testing"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/shopspring/decimal"
)

func discardLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBookStoreGetReturnsNilForUnknownAsset(t *testing.T) {
	b := NewBookStore(discardLogger())
	if b.Get("nope") != nil {
		t.Fatal("expected nil snapshot for unseen asset")
	}
}

func TestBookStoreApplyBookSnapshotThenPriceChange(t *testing.T) {
	b := NewBookStore(discardLogger())
	now := time.Now()

	b.ApplyBookSnapshot("A", []domain.PriceLevel{{Price: dec("0.64"), Size: dec("100"), Side: domain.SideBid}}, nil, "h1", now)

	changed, err := b.ApplyPriceChanges("A", []domain.PriceChange{{Side: domain.SideBid, Price: dec("0.65"), Size: dec("5")}}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected best price change")
	}

	snap := b.Get("A")
	if snap.BestBid == nil || !snap.BestBid.Equal(dec("0.65")) {
		t.Fatalf("expected best bid 0.65, got %v", snap.BestBid)
	}
}

func TestBookStoreApplyPriceChangesWithoutSnapshotFails(t *testing.T) {
	b := NewBookStore(discardLogger())
	_, err := b.ApplyPriceChanges("A", []domain.PriceChange{{Side: domain.SideBid, Price: dec("0.5"), Size: dec("1")}}, time.Now())
	if err == nil {
		t.Fatal("expected error applying price_change before any book snapshot")
	}
}

func TestBookStoreApplyTickSizeChangeWithoutSnapshotFails(t *testing.T) {
	b := NewBookStore(discardLogger())
	err := b.ApplyTickSizeChange("A", dec("0.001"), time.Now())
	if err == nil {
		t.Fatal("expected error applying tick_size_change before any book snapshot")
	}
}

func TestBookStoreAssetsListsTrackedKeys(t *testing.T) {
	b := NewBookStore(discardLogger())
	b.ApplyBookSnapshot("A", nil, nil, "h1", time.Now())
	b.ApplyBookSnapshot("B", nil, nil, "h1", time.Now())

	assets := b.Assets()
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
}
