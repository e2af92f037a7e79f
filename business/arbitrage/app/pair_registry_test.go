package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
	kalshiapp "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/app"
	kalshidomain "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	polyapp "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/app"
	polydomain "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
)

func newTestRegistry(t *testing.T) (*eventbus.Bus, *kalshiapp.BookStore, *polyapp.BookStore, *PairRegistry) {
	t.Helper()
	bus := eventbus.New(discardLogger())
	kBooks := kalshiapp.NewBookStore(discardLogger())
	pBooks := polyapp.NewBookStore(discardLogger())
	evaluator := testEvaluator()
	reg := NewPairRegistry(discardLogger(), bus, evaluator, kBooks, pBooks)
	return bus, kBooks, pBooks, reg
}

func TestPairRegistryAddPairRejectsDuplicateMarketIdentifiers(t *testing.T) {
	_, _, _, reg := newTestRegistry(t)

	if err := reg.AddPair(domain.MarketPair{PairID: "p1", KTicker: "KM", PYesID: "Y1", PNoID: "N1"}); err != nil {
		t.Fatalf("unexpected error adding first pair: %v", err)
	}
	if err := reg.AddPair(domain.MarketPair{PairID: "p2", KTicker: "KM", PYesID: "Y2", PNoID: "N2"}); err == nil {
		t.Fatal("expected error reusing KTicker across pairs")
	}
}

func TestPairRegistryEvaluatesOnBidAskUpdate(t *testing.T) {
	bus, kBooks, pBooks, reg := newTestRegistry(t)
	ctx := context.Background()

	if err := reg.AddPair(domain.MarketPair{PairID: "p1", KTicker: "KM", PYesID: "Y1", PNoID: "N1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kBooks.ApplySnapshot("KM", []kalshidomain.PriceLevel{{Price: 60, Size: 500, Side: kalshidomain.SideYes}}, []kalshidomain.PriceLevel{{Price: 20, Size: 500, Side: kalshidomain.SideNo}}, 1, time.Now())
	applyPolySnapshot(pBooks, "Y1", "0.55", "0.65", "500", "500")
	applyPolySnapshot(pBooks, "N1", "0.25", "0.30", "500", "500")

	var captured []domain.Opportunity
	bus.Subscribe(EventRawAlert, func(ctx context.Context, payload any) error {
		if opp, ok := payload.(domain.Opportunity); ok {
			captured = append(captured, opp)
		}
		return nil
	})

	bus.Publish(ctx, kalshiapp.EventBidAskUpdated, kalshiapp.BidAskUpdated{MarketKey: "KM"})

	if len(captured) == 0 {
		t.Fatal("expected at least one raw alert after bid/ask update")
	}
}

func TestPairRegistryRemovePairStopsFutureEvaluation(t *testing.T) {
	bus, kBooks, pBooks, reg := newTestRegistry(t)
	ctx := context.Background()

	reg.AddPair(domain.MarketPair{PairID: "p1", KTicker: "KM", PYesID: "Y1", PNoID: "N1"})
	reg.RemovePair("p1")

	kBooks.ApplySnapshot("KM", []kalshidomain.PriceLevel{{Price: 60, Size: 500, Side: kalshidomain.SideYes}}, nil, 1, time.Now())
	applyPolySnapshot(pBooks, "Y1", "0.55", "0.65", "500", "500")
	applyPolySnapshot(pBooks, "N1", "0.25", "0.30", "500", "500")

	var count int
	bus.Subscribe(EventRawAlert, func(ctx context.Context, payload any) error {
		count++
		return nil
	})
	bus.Publish(ctx, kalshiapp.EventBidAskUpdated, kalshiapp.BidAskUpdated{MarketKey: "KM"})

	if count != 0 {
		t.Fatalf("expected no alerts for a removed pair, got %d", count)
	}
	if len(reg.Pairs()) != 0 {
		t.Fatalf("expected no pairs remaining, got %d", len(reg.Pairs()))
	}
}

func applyPolySnapshot(pBooks *polyapp.BookStore, assetID, bid, ask, bidSize, askSize string) {
	bidPrice, _ := decimal.NewFromString(bid)
	askPrice, _ := decimal.NewFromString(ask)
	bidSz, _ := decimal.NewFromString(bidSize)
	askSz, _ := decimal.NewFromString(askSize)
	pBooks.ApplyBookSnapshot(assetID,
		[]polydomain.PriceLevel{{Price: bidPrice, Size: bidSz, Side: polydomain.SideBid}},
		[]polydomain.PriceLevel{{Price: askPrice, Size: askSz, Side: polydomain.SideAsk}},
		"hash", time.Now())
}
