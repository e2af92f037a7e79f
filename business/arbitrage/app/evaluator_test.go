package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	kalshidomain "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	polydomain "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

func discardLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testEvaluator() *Evaluator {
	return NewEvaluator(EvaluatorConfig{
		MinSpreadThreshold: decimal.NewFromFloat(0.02),
		MinTradeSize:       decimal.NewFromInt(1),
	})
}

func kSnapshot(yesBid, noBid, yesSize, noSize int) *kalshidomain.Snapshot {
	snap, _ := kalshidomain.ApplySnapshot(nil, "KM", []kalshidomain.PriceLevel{
		{Price: yesBid, Size: yesSize, Side: kalshidomain.SideYes},
	}, []kalshidomain.PriceLevel{
		{Price: noBid, Size: noSize, Side: kalshidomain.SideNo},
	}, 1, time.Now())
	return snap
}

func pSnapshot(assetID string, bid, ask, bidSize, askSize string) *polydomain.Snapshot {
	bidPrice, _ := decimal.NewFromString(bid)
	askPrice, _ := decimal.NewFromString(ask)
	bidSz, _ := decimal.NewFromString(bidSize)
	askSz, _ := decimal.NewFromString(askSize)
	return polydomain.ApplyBookSnapshot(assetID,
		[]polydomain.PriceLevel{{Price: bidPrice, Size: bidSz, Side: polydomain.SideBid}},
		[]polydomain.PriceLevel{{Price: askPrice, Size: askSz, Side: polydomain.SideAsk}},
		"hash-1", time.Now())
}

func TestEvaluateReturnsEmptyWithoutFullData(t *testing.T) {
	e := testEvaluator()
	if opps := e.Evaluate("pair", "KM", nil, "Y", pSnapshot("Y", "0.5", "0.6", "10", "10"), "N", pSnapshot("N", "0.4", "0.5", "10", "10"), time.Now()); len(opps) != 0 {
		t.Fatalf("expected no opportunities without a K snapshot, got %d", len(opps))
	}
}

func TestEvaluateFindsStrategyOneOpportunity(t *testing.T) {
	e := testEvaluator()
	// K yes bid 60c is cheap to sell; P-NO ask 0.30 is cheap to buy, a large gap.
	k := kSnapshot(60, 20, 500, 500)
	pYes := pSnapshot("Y", "0.55", "0.65", "500", "500")
	pNo := pSnapshot("N", "0.25", "0.30", "500", "500")

	opps := e.Evaluate("pair-1", "KM", k, "Y", pYes, "N", pNo, time.Now())
	if len(opps) == 0 {
		t.Fatal("expected at least one opportunity")
	}
	for _, opp := range opps {
		if opp.Spread.IsNegative() || opp.Spread.GreaterThan(decimal.NewFromInt(1)) {
			t.Errorf("spread %s out of [0,1] range", opp.Spread)
		}
		if opp.PairID != "pair-1" {
			t.Errorf("PairID = %q, want pair-1", opp.PairID)
		}
	}
}

func TestEvaluateDropsBelowMinTradeSize(t *testing.T) {
	e := NewEvaluator(EvaluatorConfig{
		MinSpreadThreshold: decimal.NewFromFloat(0.01),
		MinTradeSize:       decimal.NewFromInt(1000),
	})
	k := kSnapshot(60, 20, 1, 1)
	pYes := pSnapshot("Y", "0.55", "0.65", "1", "1")
	pNo := pSnapshot("N", "0.25", "0.30", "1", "1")

	opps := e.Evaluate("pair-1", "KM", k, "Y", pYes, "N", pNo, time.Now())
	if len(opps) != 0 {
		t.Fatalf("expected opportunities to be dropped below min trade size, got %d", len(opps))
	}
}

func TestEvaluateRespectsSpreadThreshold(t *testing.T) {
	e := NewEvaluator(EvaluatorConfig{
		MinSpreadThreshold: decimal.NewFromFloat(0.99),
		MinTradeSize:       decimal.Zero,
	})
	k := kSnapshot(50, 48, 500, 500)
	pYes := pSnapshot("Y", "0.50", "0.51", "500", "500")
	pNo := pSnapshot("N", "0.48", "0.49", "500", "500")

	opps := e.Evaluate("pair-1", "KM", k, "Y", pYes, "N", pNo, time.Now())
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities to clear a 0.99 threshold, got %d", len(opps))
	}
}

func TestUpdateConfigIsAppliedOnNextEvaluate(t *testing.T) {
	e := testEvaluator()
	e.UpdateConfig(EvaluatorConfig{MinSpreadThreshold: decimal.NewFromFloat(0.99), MinTradeSize: decimal.Zero})
	if !e.Config().MinSpreadThreshold.Equal(decimal.NewFromFloat(0.99)) {
		t.Fatal("expected updated config to be visible via Config()")
	}
	k := kSnapshot(60, 20, 500, 500)
	pYes := pSnapshot("Y", "0.55", "0.65", "500", "500")
	pNo := pSnapshot("N", "0.25", "0.30", "500", "500")
	if opps := e.Evaluate("pair-1", "KM", k, "Y", pYes, "N", pNo, time.Now()); len(opps) != 0 {
		t.Fatalf("expected the updated 0.99 threshold to apply on the next Evaluate, got %d opportunities", len(opps))
	}
}
