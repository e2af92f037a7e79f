package app

import (
	"testing"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

func discardLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestBookStoreGetReturnsNilForUnknownMarket(t *testing.T) {
	b := NewBookStore(discardLogger())
	if b.Get("nope") != nil {
		t.Fatal("expected nil snapshot for unseen market")
	}
}

func TestBookStoreApplySnapshotThenDelta(t *testing.T) {
	b := NewBookStore(discardLogger())
	now := time.Now()

	b.ApplySnapshot("M", []domain.PriceLevel{{Price: 1, Size: 95010, Side: domain.SideYes}}, []domain.PriceLevel{{Price: 98, Size: 8285, Side: domain.SideNo}}, 5, now)

	changed, err := b.ApplyDelta("M", domain.SideYes, 73, 26, 6, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected best price change")
	}

	snap := b.Get("M")
	if snap.BestYesBid == nil || *snap.BestYesBid != 73 {
		t.Fatalf("expected best yes bid 73, got %v", snap.BestYesBid)
	}
}

func TestBookStoreApplyDeltaWithoutSnapshotFails(t *testing.T) {
	b := NewBookStore(discardLogger())
	_, err := b.ApplyDelta("M", domain.SideYes, 73, 26, 1, time.Now())
	if err == nil {
		t.Fatal("expected error applying delta before any snapshot")
	}
}

func TestBookStoreMarketsListsTrackedKeys(t *testing.T) {
	b := NewBookStore(discardLogger())
	b.ApplySnapshot("A", nil, nil, 1, time.Now())
	b.ApplySnapshot("B", nil, nil, 1, time.Now())

	markets := b.Markets()
	if len(markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(markets))
	}
}
