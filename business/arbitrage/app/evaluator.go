package app

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
	kalshidomain "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	polydomain "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
)

// standardContracts is the contract count the fee schedule is evaluated
// against, matching the original calculator's own fixed assumption: fees
// are quoted per-contract, and liquidity-sizing happens independently in
// step 4.
const standardContracts = 100

var one = decimal.NewFromInt(1)

// EvaluatorConfig is the Evaluator's runtime-tunable state.
type EvaluatorConfig struct {
	MinSpreadThreshold   decimal.Decimal
	MinTradeSize         decimal.Decimal
	MakerFeeTickerPrefix string
}

// Evaluator is the pure ArbitrageEvaluator: given a (K, P-YES, P-NO)
// snapshot triple for one market pair, it produces the set of arbitrage
// opportunities currently available. It holds no callbacks and has no side
// effects; PairRegistry is the only caller, and drives it on every
// bid/ask-changed notification.
type Evaluator struct {
	cfg atomic.Pointer[EvaluatorConfig]
}

// NewEvaluator constructs an Evaluator with the given starting config.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	e := &Evaluator{}
	e.cfg.Store(&cfg)
	return e
}

// UpdateConfig atomically replaces the evaluator's thresholds; safe to call
// concurrently with Evaluate.
func (e *Evaluator) UpdateConfig(cfg EvaluatorConfig) {
	e.cfg.Store(&cfg)
}

// Config returns the evaluator's current thresholds.
func (e *Evaluator) Config() EvaluatorConfig {
	return *e.cfg.Load()
}

// Evaluate computes arbitrage opportunities for one pair from the current
// K, P-YES, and P-NO snapshots. Any of the three may be nil (no data yet
// for that market), in which case it returns no opportunities.
func (e *Evaluator) Evaluate(
	pairID string,
	kMarketKey string,
	k *kalshidomain.Snapshot,
	pYesAssetID string,
	pYes *polydomain.Snapshot,
	pNoAssetID string,
	pNo *polydomain.Snapshot,
	now time.Time,
) []domain.Opportunity {
	if k == nil || pYes == nil || pNo == nil {
		return nil
	}
	if k.BestYesBid == nil || k.BestNoBid == nil {
		return nil
	}
	if pYes.BestBid == nil || pYes.BestAsk == nil || pNo.BestBid == nil || pNo.BestAsk == nil {
		return nil
	}

	cfg := e.Config()

	kYesBid := centsToDecimal(*k.BestYesBid)
	kNoBid := centsToDecimal(*k.BestNoBid)
	kYesAsk := centsToDecimal(100 - *k.BestNoBid)
	kNoAsk := centsToDecimal(100 - *k.BestYesBid)

	pYesBid, pYesAsk := *pYes.BestBid, *pYes.BestAsk
	pNoBid, pNoAsk := *pNo.BestBid, *pNo.BestAsk

	kYesBidEff := domain.EffectiveBid(kYesBid, standardContracts, kMarketKey, cfg.MakerFeeTickerPrefix)
	kYesAskEff := domain.EffectiveAsk(kYesAsk, standardContracts, kMarketKey, cfg.MakerFeeTickerPrefix)
	kNoBidEff := domain.EffectiveBid(kNoBid, standardContracts, kMarketKey, cfg.MakerFeeTickerPrefix)
	kNoAskEff := domain.EffectiveAsk(kNoAsk, standardContracts, kMarketKey, cfg.MakerFeeTickerPrefix)

	kYesLevel, _ := k.YesLevels[*k.BestYesBid]
	kNoLevel, _ := k.NoLevels[*k.BestNoBid]
	kYesLiquidity := decimal.NewFromInt(int64(kYesLevel.Size))
	kNoLiquidity := decimal.NewFromInt(int64(kNoLevel.Size))

	pYesAskLevel, _ := polydomain.LevelAt(pYes, polydomain.SideAsk, pYesAsk)
	pYesBidLevel, _ := polydomain.LevelAt(pYes, polydomain.SideBid, pYesBid)
	pNoAskLevel, _ := polydomain.LevelAt(pNo, polydomain.SideAsk, pNoAsk)
	pNoBidLevel, _ := polydomain.LevelAt(pNo, polydomain.SideBid, pNoBid)

	var out []domain.Opportunity

	// S1: sell K-YES, buy P-NO.
	if spread := one.Sub(kYesBidEff.Add(pNoAsk)); spread.GreaterThanOrEqual(cfg.MinSpreadThreshold) {
		if opp, ok := e.buildOpportunity(pairID, now, spread, domain.DirectionKToP, domain.SideYes,
			kYesBidEff, pNoAsk, kMarketKey, pNoAssetID,
			kYesLiquidity, pNoAskLevel.Size, "k", cfg.MinTradeSize); ok {
			out = append(out, opp)
		}
	}

	// S2: sell K-NO, buy P-YES.
	if spread := one.Sub(kNoBidEff.Add(pYesAsk)); spread.GreaterThanOrEqual(cfg.MinSpreadThreshold) {
		if opp, ok := e.buildOpportunity(pairID, now, spread, domain.DirectionKToP, domain.SideNo,
			kNoBidEff, pYesAsk, kMarketKey, pYesAssetID,
			kNoLiquidity, pYesAskLevel.Size, "k", cfg.MinTradeSize); ok {
			out = append(out, opp)
		}
	}

	// S3: sell P-YES, buy K-NO.
	if spread := one.Sub(pYesBid.Add(kNoAskEff)); spread.GreaterThanOrEqual(cfg.MinSpreadThreshold) {
		if opp, ok := e.buildOpportunity(pairID, now, spread, domain.DirectionPToK, domain.SideNo,
			kNoAskEff, pYesBid, kMarketKey, pYesAssetID,
			kYesLiquidity, pYesBidLevel.Size, "p", cfg.MinTradeSize); ok {
			out = append(out, opp)
		}
	}

	// S4: sell P-NO, buy K-YES.
	if spread := one.Sub(pNoBid.Add(kYesAskEff)); spread.GreaterThanOrEqual(cfg.MinSpreadThreshold) {
		if opp, ok := e.buildOpportunity(pairID, now, spread, domain.DirectionPToK, domain.SideYes,
			kYesAskEff, pNoBid, kMarketKey, pNoAssetID,
			kNoLiquidity, pNoBidLevel.Size, "p", cfg.MinTradeSize); ok {
			out = append(out, opp)
		}
	}

	return out
}

func (e *Evaluator) buildOpportunity(
	pairID string,
	now time.Time,
	spread decimal.Decimal,
	direction domain.Direction,
	side domain.Side,
	kPrice, pPrice decimal.Decimal,
	kMarketKey, pAssetID string,
	kSize, pSize decimal.Decimal,
	limitingIfKSmaller string,
	minTradeSize decimal.Decimal,
) (domain.Opportunity, bool) {
	var minSize decimal.Decimal
	limitingFactor := limitingIfKSmaller
	switch {
	case kSize.IsPositive() && pSize.IsPositive():
		if kSize.LessThan(pSize) {
			minSize = kSize
			limitingFactor = "k"
		} else {
			minSize = pSize
			limitingFactor = "p"
		}
	default:
		minSize = decimal.Zero
	}

	if minSize.LessThan(minTradeSize) {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		PairID:        pairID,
		Timestamp:     now,
		Spread:        spread,
		Direction:     direction,
		Side:          side,
		KPrice:        kPrice,
		PPrice:        pPrice,
		KMarketKey:    kMarketKey,
		PAssetID:      pAssetID,
		ExecutionSize: minSize,
		ExecutionInfo: domain.ExecutionInfo{
			KSize:          kSize,
			PSize:          pSize,
			Min:            minSize,
			LimitingFactor: limitingFactor,
		},
	}, true
}

func centsToDecimal(cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100))
}
