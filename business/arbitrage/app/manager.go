package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// opSettingsUpdate is the coordinated operation type for a settings change.
// It reuses eventbus's 2PC machinery with a single expected participant
// (the manager itself), giving settings changes the same request/validate/
// apply/respond shape as pair add/remove without inventing a parallel
// mechanism.
const opSettingsUpdate eventbus.OperationType = "settings_update"

const settingsComponentID = "arbitrage_manager"

// dedupFactor is the relative-change threshold below which a new alert for
// an already-alerted pair is suppressed: an alert is dropped if
// |spread - last_spread| / last_spread < dedupFactor.
const dedupFactor = 0.1

// ArbitrageManager wraps PairRegistry with alert deduplication, runtime
// settings, and coordinated pair lifecycle. It is the sole writer of
// Evaluator's config and the sole publisher of the external-facing
// arbitrage.alert event.
type ArbitrageManager struct {
	log       logger.LoggerInterface
	bus       *eventbus.Bus
	coord     *eventbus.CoordinationBus
	registry  *PairRegistry
	evaluator *Evaluator
	timeout   time.Duration

	mu         sync.Mutex
	lastAlert  map[string]domain.Opportunity // pairID -> last published alert
	settings   Settings
}

// NewArbitrageManager constructs an ArbitrageManager wired to registry and
// evaluator, registers it as a coordination participant for settings
// changes, and subscribes it to PairRegistry's raw alert stream and to
// settings-change requests.
func NewArbitrageManager(
	log logger.LoggerInterface,
	bus *eventbus.Bus,
	coord *eventbus.CoordinationBus,
	registry *PairRegistry,
	evaluator *Evaluator,
	timeout time.Duration,
	initial Settings,
) *ArbitrageManager {
	m := &ArbitrageManager{
		log:       log,
		bus:       bus,
		coord:     coord,
		registry:  registry,
		evaluator: evaluator,
		timeout:   timeout,
		lastAlert: make(map[string]domain.Opportunity),
		settings:  initial,
	}

	coord.RegisterComponent(settingsComponentID)
	bus.Subscribe(EventRawAlert, m.handleRawAlert)
	bus.Subscribe(EventSettingsChangeRequested, m.handleSettingsChangeRequested)
	bus.Subscribe(fmt.Sprintf("coordination.%s.prepare", opSettingsUpdate), m.handleSettingsPrepare)
	bus.Subscribe(fmt.Sprintf("coordination.%s.commit", opSettingsUpdate), m.handleSettingsCommit)
	return m
}

// Settings returns the manager's currently applied settings.
func (m *ArbitrageManager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// AddPair coordinates the addition of pair across every participating
// component via CoordinationBus, then registers it in PairRegistry only
// once the commit phase succeeds: no state becomes observable externally
// until every component has agreed.
func (m *ArbitrageManager) AddPair(ctx context.Context, pair domain.MarketPair, expectedComponents []string) eventbus.PhaseResult {
	data := map[string]any{
		"pair_id":  pair.PairID,
		"k_ticker": pair.KTicker,
		"p_yes_id": pair.PYesID,
		"p_no_id":  pair.PNoID,
	}
	result := m.coord.CoordinateOperation(ctx, eventbus.OpMarketSubscribe, pair.PairID, data, expectedComponents, m.timeout)
	if result.Success {
		if err := m.registry.AddPair(pair); err != nil && m.log != nil {
			m.log.Error(ctx, "arbitrage manager: pair coordination succeeded but local registration failed", "pair_id", pair.PairID, "error", err.Error())
		}
	}
	return result
}

// RemovePair coordinates removal of pairID across expectedComponents, then
// drops it from PairRegistry only once the commit phase succeeds.
func (m *ArbitrageManager) RemovePair(ctx context.Context, pairID string, expectedComponents []string) eventbus.PhaseResult {
	data := map[string]any{"pair_id": pairID}
	result := m.coord.CoordinateOperation(ctx, eventbus.OpMarketUnsubscribe, pairID, data, expectedComponents, m.timeout)
	if result.Success {
		m.registry.RemovePair(pairID)
		m.mu.Lock()
		delete(m.lastAlert, pairID)
		m.mu.Unlock()
	}
	return result
}

// handleRawAlert applies dedup to each opportunity PairRegistry emits and
// republishes survivors as the external-facing arbitrage.alert.
func (m *ArbitrageManager) handleRawAlert(ctx context.Context, payload any) error {
	opp, ok := payload.(domain.Opportunity)
	if !ok {
		return fmt.Errorf("arbitrage manager: unexpected payload type %T for %s", payload, EventRawAlert)
	}

	if m.isDuplicate(opp) {
		return nil
	}

	m.mu.Lock()
	m.lastAlert[opp.PairID] = opp
	m.mu.Unlock()

	m.bus.Publish(ctx, EventAlert, opp)
	return nil
}

// isDuplicate reports whether opp should be suppressed because its spread
// is within dedupFactor of the last published alert for the same pair:
// |spread - last_spread| < last_spread * dedupFactor.
func (m *ArbitrageManager) isDuplicate(opp domain.Opportunity) bool {
	m.mu.Lock()
	last, ok := m.lastAlert[opp.PairID]
	m.mu.Unlock()
	if !ok {
		return false
	}

	delta := opp.Spread.Sub(last.Spread).Abs()
	threshold := last.Spread.Mul(decimal.NewFromFloat(dedupFactor))
	return delta.LessThan(threshold)
}

// handleSettingsChangeRequested is the entry point a SettingsCoordinator
// (or any other caller) publishes to request a threshold change. The
// manager drives the request through a 2PC cycle with itself as sole
// participant, then responds on EventSettingsUpdated/EventSettingsError.
func (m *ArbitrageManager) handleSettingsChangeRequested(ctx context.Context, payload any) error {
	req, ok := payload.(SettingsChangeRequested)
	if !ok {
		return fmt.Errorf("arbitrage manager: unexpected payload type %T for %s", payload, EventSettingsChangeRequested)
	}

	data := map[string]any{}
	var changedFields []string
	if req.MinSpreadThreshold != nil {
		data["min_spread_threshold"] = *req.MinSpreadThreshold
		changedFields = append(changedFields, "min_spread_threshold")
	}
	if req.MinTradeSize != nil {
		data["min_trade_size"] = *req.MinTradeSize
		changedFields = append(changedFields, "min_trade_size")
	}

	result := m.coord.CoordinateOperation(ctx, opSettingsUpdate, req.CorrelationID.String(), data, []string{settingsComponentID}, m.timeout)
	if !result.Success {
		msg := "settings change rejected"
		if result.Err != nil {
			msg = result.Err.Error()
		}
		m.bus.Publish(ctx, EventSettingsError, SettingsError{Message: msg, CorrelationID: req.CorrelationID})
		return nil
	}

	m.bus.Publish(ctx, EventSettingsUpdated, SettingsUpdated{
		Settings:      m.Settings(),
		ChangedFields: changedFields,
		CorrelationID: req.CorrelationID,
	})
	return nil
}

// handleSettingsPrepare validates the proposed settings and ACKs or NACKs.
// Validation only; no state is mutated here.
func (m *ArbitrageManager) handleSettingsPrepare(ctx context.Context, payload any) error {
	opID, data, ok := coordinationOperationID(payload)
	if !ok {
		return fmt.Errorf("arbitrage manager: malformed coordination prepare payload")
	}

	err := validateSettingsData(data)
	m.respond(ctx, opID, err == nil, nil)
	return nil
}

// handleSettingsCommit applies the validated settings to both the manager's
// own state and the Evaluator's config, then ACKs.
func (m *ArbitrageManager) handleSettingsCommit(ctx context.Context, payload any) error {
	opID, data, ok := coordinationOperationID(payload)
	if !ok {
		return fmt.Errorf("arbitrage manager: malformed coordination commit payload")
	}

	m.mu.Lock()
	settings := m.settings
	if v, ok := data["min_spread_threshold"].(float64); ok {
		settings.MinSpreadThreshold = v
	}
	if v, ok := data["min_trade_size"].(float64); ok {
		settings.MinTradeSize = v
	}
	m.settings = settings
	m.mu.Unlock()

	cfg := m.evaluator.Config()
	cfg.MinSpreadThreshold = decimal.NewFromFloat(settings.MinSpreadThreshold)
	cfg.MinTradeSize = decimal.NewFromFloat(settings.MinTradeSize)
	m.evaluator.UpdateConfig(cfg)

	m.respond(ctx, opID, true, nil)
	return nil
}

func (m *ArbitrageManager) respond(ctx context.Context, operationID uuid.UUID, success bool, data map[string]any) {
	m.bus.Publish(ctx, "coordination.response", eventbus.ComponentResponse{
		ComponentID: settingsComponentID,
		OperationID: operationID,
		Success:     success,
		Data:        data,
	})
}

// validateSettingsData enforces the invariant from spec: thresholds in
// [0,1], trade size >= 0.
func validateSettingsData(data map[string]any) error {
	if v, ok := data["min_spread_threshold"].(float64); ok {
		if v < 0 || v > 1 {
			return fmt.Errorf("min_spread_threshold must be in [0,1], got %v", v)
		}
	}
	if v, ok := data["min_trade_size"].(float64); ok {
		if v < 0 {
			return fmt.Errorf("min_trade_size must be >= 0, got %v", v)
		}
	}
	return nil
}

// coordinationOperationID extracts the operation_id and data map CoordinationBus
// attaches to every coordination.<op>.<phase> publish.
func coordinationOperationID(payload any) (uuid.UUID, map[string]any, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return uuid.UUID{}, nil, false
	}
	opID, ok := m["operation_id"].(uuid.UUID)
	if !ok {
		return uuid.UUID{}, nil, false
	}
	data, _ := m["data"].(map[string]any)
	return opID, data, true
}
