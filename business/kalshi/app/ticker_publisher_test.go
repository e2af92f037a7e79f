package app

import (
	"context"
	"testing"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
)

func TestTickerPublisherSuppressesIdenticalRepublish(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	books.ApplySnapshot("M", []domain.PriceLevel{{Price: 73, Size: 10, Side: domain.SideYes}}, nil, 1, time.Now())

	p := NewTickerPublisher(discardLogger(), books, bus, time.Hour)
	now := time.Now()

	p.publishAll(context.Background(), now)
	p.publishAll(context.Background(), now.Add(time.Second))

	if bus.count(EventTickerUpdated) != 1 {
		t.Fatalf("expected exactly one publish for unchanged book, got %d", bus.count(EventTickerUpdated))
	}
}

func TestTickerPublisherPublishesOnPriceChange(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	books.ApplySnapshot("M", []domain.PriceLevel{{Price: 73, Size: 10, Side: domain.SideYes}}, nil, 1, time.Now())

	p := NewTickerPublisher(discardLogger(), books, bus, time.Hour)
	p.publishAll(context.Background(), time.Now())

	books.ApplyDelta("M", domain.SideYes, 74, 5, 2, time.Now())
	p.publishAll(context.Background(), time.Now())

	if bus.count(EventTickerUpdated) != 2 {
		t.Fatalf("expected two publishes across a price change, got %d", bus.count(EventTickerUpdated))
	}
}

func TestIsValidTickerRejectsBidAboveAsk(t *testing.T) {
	bid, ask := 80, 70
	t2 := domain.Ticker{MarketKey: "M", Yes: domain.QuoteSide{Bid: &bid, Ask: &ask}}
	if isValidTicker(t2) {
		t.Fatal("expected bid > ask to be rejected")
	}
}

func TestIsValidTickerRejectsOutOfRangePrice(t *testing.T) {
	bad := 150
	t2 := domain.Ticker{MarketKey: "M", Yes: domain.QuoteSide{Bid: &bad}}
	if isValidTicker(t2) {
		t.Fatal("expected a price above 100 cents to be rejected")
	}
}

func TestIsValidTickerRejectsComplementOverOnePlusEpsilon(t *testing.T) {
	yesBid, noAsk := 80, 25
	t2 := domain.Ticker{
		MarketKey: "M",
		Yes:       domain.QuoteSide{Bid: &yesBid},
		No:        domain.QuoteSide{Ask: &noAsk},
	}
	if isValidTicker(t2) {
		t.Fatal("expected yes.bid+no.ask exceeding 1+epsilon to be rejected")
	}
}

func TestIsValidTickerAcceptsComplementWithinEpsilon(t *testing.T) {
	yesBid, noAsk := 73, 27
	t2 := domain.Ticker{
		MarketKey: "M",
		Yes:       domain.QuoteSide{Bid: &yesBid},
		No:        domain.QuoteSide{Ask: &noAsk},
	}
	if !isValidTicker(t2) {
		t.Fatal("expected a complementary pair summing to exactly 1.0 to be accepted")
	}
}

func TestTickerPublisherDropsInvalidSummary(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	// yes.bid=90 and no.bid=95 sum to more than 100 cents, so the
	// synthesized yes.ask (100-no.bid=5) crosses below yes.bid (90):
	// an invalid summary the publisher must drop rather than emit.
	books.ApplySnapshot("M", []domain.PriceLevel{{Price: 90, Size: 10, Side: domain.SideYes}}, []domain.PriceLevel{{Price: 95, Size: 10, Side: domain.SideNo}}, 1, time.Now())

	p := NewTickerPublisher(discardLogger(), books, bus, time.Hour)
	p.publishAll(context.Background(), time.Now())

	if bus.count(EventTickerUpdated) != 0 {
		t.Fatalf("expected a crossed synthetic summary to be dropped, got %d publishes", bus.count(EventTickerUpdated))
	}
}

func TestTickerPublisherForcePublishBypassesSuppression(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	books.ApplySnapshot("M", []domain.PriceLevel{{Price: 73, Size: 10, Side: domain.SideYes}}, nil, 1, time.Now())

	p := NewTickerPublisher(discardLogger(), books, bus, time.Hour)
	p.publishAll(context.Background(), time.Now())
	p.ForcePublish(context.Background(), "M")

	if bus.count(EventTickerUpdated) != 2 {
		t.Fatalf("expected force publish to emit despite no price change, got %d", bus.count(EventTickerUpdated))
	}
}
