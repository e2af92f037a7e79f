package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
	kalshiapp "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/app"
	polyapp "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/app"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// PairRegistry holds the set of active market pairs and reacts to
// bid/ask-changed notifications from either venue by re-evaluating every
// pair that references the changed market, publishing a fresh
// arbitrage.raw_alert for each opportunity found (ArbitrageManager
// deduplicates before republishing as the external-facing arbitrage.alert).
// It subscribes as a pure
// trigger: on a bid/ask-changed event it ignores the event's own payload
// and always re-reads the current BookStore snapshots. Each snapshot is
// internally consistent, but the three are loaded one after another, so an
// evaluation is not an atomic view across venues.
type PairRegistry struct {
	log       logger.LoggerInterface
	bus       *eventbus.Bus
	evaluator *Evaluator
	kBooks    *kalshiapp.BookStore
	pBooks    *polyapp.BookStore

	mu         sync.RWMutex
	pairs      map[string]domain.MarketPair // pairID -> pair
	byKTicker  map[string]map[string]struct{} // kTicker -> set<pairID>
	byAssetID  map[string]map[string]struct{} // assetID (yes or no) -> set<pairID>
}

// NewPairRegistry constructs a PairRegistry and subscribes it to both
// venues' bid/ask-changed events.
func NewPairRegistry(log logger.LoggerInterface, bus *eventbus.Bus, evaluator *Evaluator, kBooks *kalshiapp.BookStore, pBooks *polyapp.BookStore) *PairRegistry {
	r := &PairRegistry{
		log:       log,
		bus:       bus,
		evaluator: evaluator,
		kBooks:    kBooks,
		pBooks:    pBooks,
		pairs:     make(map[string]domain.MarketPair),
		byKTicker: make(map[string]map[string]struct{}),
		byAssetID: make(map[string]map[string]struct{}),
	}
	bus.Subscribe(kalshiapp.EventBidAskUpdated, r.handleKalshiUpdated)
	bus.Subscribe(polyapp.EventBidAskUpdated, r.handlePolymarketUpdated)
	return r
}

// AddPair registers pair, indexing it by all three of its market
// identifiers. It errors if pair_id already exists or if any of its market
// identifiers already belongs to another pair, matching the uniqueness
// invariant.
func (r *PairRegistry) AddPair(pair domain.MarketPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pairs[pair.PairID]; exists {
		return fmt.Errorf("pair %q already registered", pair.PairID)
	}
	if len(r.byKTicker[pair.KTicker]) > 0 {
		return fmt.Errorf("market identifier %q already belongs to another pair", pair.KTicker)
	}
	if len(r.byAssetID[pair.PYesID]) > 0 {
		return fmt.Errorf("market identifier %q already belongs to another pair", pair.PYesID)
	}
	if len(r.byAssetID[pair.PNoID]) > 0 {
		return fmt.Errorf("market identifier %q already belongs to another pair", pair.PNoID)
	}

	r.pairs[pair.PairID] = pair
	indexAdd(r.byKTicker, pair.KTicker, pair.PairID)
	indexAdd(r.byAssetID, pair.PYesID, pair.PairID)
	indexAdd(r.byAssetID, pair.PNoID, pair.PairID)
	return nil
}

// RemovePair drops pair and its indices. It is a no-op if the pair is not
// registered.
func (r *PairRegistry) RemovePair(pairID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair, ok := r.pairs[pairID]
	if !ok {
		return
	}
	delete(r.pairs, pairID)
	indexRemove(r.byKTicker, pair.KTicker, pairID)
	indexRemove(r.byAssetID, pair.PYesID, pairID)
	indexRemove(r.byAssetID, pair.PNoID, pairID)
}

// Pairs returns a snapshot of all currently registered pairs.
func (r *PairRegistry) Pairs() []domain.MarketPair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MarketPair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	return out
}

func (r *PairRegistry) handleKalshiUpdated(ctx context.Context, payload any) error {
	evt, ok := payload.(kalshiapp.BidAskUpdated)
	if !ok {
		return fmt.Errorf("pair registry: unexpected payload type %T for %s", payload, kalshiapp.EventBidAskUpdated)
	}
	r.bus.Publish(ctx, EventKalshiUpdated, KalshiUpdated{MarketKey: evt.MarketKey})
	for _, pairID := range r.pairIDsFor(r.byKTicker, evt.MarketKey) {
		r.evaluatePair(ctx, pairID)
	}
	return nil
}

func (r *PairRegistry) handlePolymarketUpdated(ctx context.Context, payload any) error {
	evt, ok := payload.(polyapp.BidAskUpdated)
	if !ok {
		return fmt.Errorf("pair registry: unexpected payload type %T for %s", payload, polyapp.EventBidAskUpdated)
	}
	r.bus.Publish(ctx, EventPolymarketUpdated, PolymarketUpdated{AssetID: evt.AssetID})
	for _, pairID := range r.pairIDsFor(r.byAssetID, evt.AssetID) {
		r.evaluatePair(ctx, pairID)
	}
	return nil
}

func (r *PairRegistry) pairIDsFor(index map[string]map[string]struct{}, key string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := index[key]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (r *PairRegistry) pairByID(pairID string) (domain.MarketPair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pairs[pairID]
	return p, ok
}

// evaluatePair re-reads the current atomic BookStore snapshots for pairID
// and runs the evaluator over them, publishing one arbitrage.raw_alert
// (EventRawAlert) per opportunity found.
func (r *PairRegistry) evaluatePair(ctx context.Context, pairID string) {
	pair, ok := r.pairByID(pairID)
	if !ok {
		return
	}

	k := r.kBooks.Get(pair.KTicker)
	pYes := r.pBooks.Get(pair.PYesID)
	pNo := r.pBooks.Get(pair.PNoID)
	if k == nil || pYes == nil || pNo == nil {
		return
	}

	opps := r.evaluator.Evaluate(pair.PairID, pair.KTicker, k, pair.PYesID, pYes, pair.PNoID, pNo, time.Now())
	for _, opp := range opps {
		if errs := r.bus.Publish(ctx, EventRawAlert, opp); len(errs) > 0 && r.log != nil {
			r.log.Warn(ctx, "pair registry: raw alert publish had handler errors", "pair_id", pair.PairID, "errors", len(errs))
		}
	}
}

func indexAdd(index map[string]map[string]struct{}, key, value string) {
	set, ok := index[key]
	if !ok {
		set = make(map[string]struct{})
		index[key] = set
	}
	set[value] = struct{}{}
}

func indexRemove(index map[string]map[string]struct{}, key, value string) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(index, key)
	}
}
