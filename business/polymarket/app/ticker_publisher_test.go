package app

import (
	"context"
	"testing"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
)

func TestTickerPublisherSuppressesIdenticalRepublish(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	books.ApplyBookSnapshot("A", []domain.PriceLevel{{Price: dec("0.64"), Size: dec("10"), Side: domain.SideBid}}, nil, "h1", time.Now())

	p := NewTickerPublisher(discardLogger(), books, bus, time.Hour)
	now := time.Now()

	p.publishAll(context.Background(), now)
	p.publishAll(context.Background(), now.Add(time.Second))

	if bus.count(EventTickerUpdated) != 1 {
		t.Fatalf("expected exactly one publish for unchanged book, got %d", bus.count(EventTickerUpdated))
	}
}

func TestIsValidTickerRejectsBidAboveAsk(t *testing.T) {
	bid, ask := dec("0.70"), dec("0.60")
	t2 := domain.Ticker{AssetID: "A", Bid: &bid, Ask: &ask}
	if isValidTicker(t2) {
		t.Fatal("expected bid > ask to be rejected")
	}
}

func TestIsValidTickerRejectsOutOfRangePrice(t *testing.T) {
	bad := dec("1.5")
	t2 := domain.Ticker{AssetID: "A", Bid: &bad}
	if isValidTicker(t2) {
		t.Fatal("expected a price above 1.0 to be rejected")
	}
}

func TestIsValidTickerAcceptsInRangeBidAsk(t *testing.T) {
	bid, ask := dec("0.60"), dec("0.64")
	t2 := domain.Ticker{AssetID: "A", Bid: &bid, Ask: &ask}
	if !isValidTicker(t2) {
		t.Fatal("expected a valid in-range bid/ask pair to be accepted")
	}
}

func TestTickerPublisherPublishesOnPriceChange(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	books.ApplyBookSnapshot("A", []domain.PriceLevel{{Price: dec("0.64"), Size: dec("10"), Side: domain.SideBid}}, nil, "h1", time.Now())

	p := NewTickerPublisher(discardLogger(), books, bus, time.Hour)
	p.publishAll(context.Background(), time.Now())

	books.ApplyPriceChanges("A", []domain.PriceChange{{Side: domain.SideBid, Price: dec("0.65"), Size: dec("5")}}, time.Now())
	p.publishAll(context.Background(), time.Now())

	if bus.count(EventTickerUpdated) != 2 {
		t.Fatalf("expected two publishes across a price change, got %d", bus.count(EventTickerUpdated))
	}
}
