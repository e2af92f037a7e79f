package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// OperationType enumerates the operations CoordinationBus can coordinate.
type OperationType string

const (
	OpMarketSubscribe   OperationType = "market_subscribe"
	OpMarketUnsubscribe OperationType = "market_unsubscribe"
)

// Phase is a step of the 2-phase-commit protocol.
type Phase string

const (
	PhasePrepare  Phase = "prepare"
	PhaseCommit   Phase = "commit"
	PhaseRollback Phase = "rollback"
)

// ComponentResponse is a single component's acknowledgment (or
// non-acknowledgment) of a coordination phase.
type ComponentResponse struct {
	ComponentID string
	OperationID uuid.UUID
	Success     bool
	Data        map[string]any
}

// PhaseResult is the outcome of one phase of a coordinated operation.
type PhaseResult struct {
	Success      bool
	OperationID  uuid.UUID
	Phase        Phase
	Responses    map[string]ComponentResponse
	SuccessCount int
	TotalExpected int
	Err          error
}

type pendingCoordination struct {
	operationID        uuid.UUID
	operationType      OperationType
	phase              Phase
	expectedComponents map[string]struct{}
	responses          map[string]ComponentResponse
	startTime          time.Time
	timeout            time.Duration
	eventData          map[string]any
	done               chan struct{}
	doneOnce           sync.Once
}

func (p *pendingCoordination) markDone() {
	p.doneOnce.Do(func() { close(p.done) })
}

// CoordinationBus layers acknowledgment tracking, 2-phase commit, and
// timeout-triggered rollback on top of a Bus. Components participating in a
// coordinated operation publish "coordination.response" events on the
// underlying bus; CoordinationBus correlates those by operation ID.
type CoordinationBus struct {
	bus *Bus
	log logger.LoggerInterface

	cleanupInterval time.Duration

	mu                 sync.Mutex
	pending            map[uuid.UUID]*pendingCoordination
	registeredCompMap  map[string]struct{}

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewCoordinationBus wires a CoordinationBus on top of bus and starts its
// background expiry sweep, which runs every cleanupInterval (pass 0 for a
// sensible 5s default).
func NewCoordinationBus(bus *Bus, log logger.LoggerInterface, cleanupInterval time.Duration) *CoordinationBus {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Second
	}
	cb := &CoordinationBus{
		bus:               bus,
		log:               log,
		cleanupInterval:   cleanupInterval,
		pending:           make(map[uuid.UUID]*pendingCoordination),
		registeredCompMap: make(map[string]struct{}),
		stopCleanup:       make(chan struct{}),
	}

	bus.Subscribe("coordination.response", cb.handleComponentResponse)

	go cb.cleanupLoop()
	return cb
}

// RegisterComponent marks componentID as a participant in future
// coordinated operations.
func (cb *CoordinationBus) RegisterComponent(componentID string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.registeredCompMap[componentID] = struct{}{}
}

// UnregisterComponent removes componentID from the registered set.
func (cb *CoordinationBus) UnregisterComponent(componentID string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.registeredCompMap, componentID)
}

// Shutdown stops the cleanup sweep and times out every still-pending
// operation.
func (cb *CoordinationBus) Shutdown(ctx context.Context) {
	cb.stopOnce.Do(func() { close(cb.stopCleanup) })

	cb.mu.Lock()
	ids := make([]uuid.UUID, 0, len(cb.pending))
	for id := range cb.pending {
		ids = append(ids, id)
	}
	cb.mu.Unlock()

	for _, id := range ids {
		cb.expireOperation(ctx, id)
	}
	if cb.log != nil {
		cb.log.Info(ctx, "coordination bus shutdown complete")
	}
}

// CoordinateOperation drives a full prepare-then-commit cycle across
// expectedComponents, rolling back (fire-and-forget) if either phase fails.
func (cb *CoordinationBus) CoordinateOperation(
	ctx context.Context,
	opType OperationType,
	clientID string,
	data map[string]any,
	expectedComponents []string,
	timeout time.Duration,
) PhaseResult {
	operationID := uuid.New()
	if cb.log != nil {
		cb.log.Info(ctx, "starting coordinated operation",
			"operation_id", operationID, "operation_type", opType, "client_id", clientID)
	}

	prepare := cb.executePhase(ctx, operationID, opType, PhasePrepare, clientID, data, expectedComponents, timeout)
	if !prepare.Success {
		if cb.log != nil {
			cb.log.Warn(ctx, "prepare phase failed, triggering rollback", "operation_id", operationID)
		}
		cb.broadcastFireAndForget(ctx, operationID, opType, PhaseRollback, clientID, data)
		return prepare
	}

	commit := cb.executePhase(ctx, operationID, opType, PhaseCommit, clientID, data, expectedComponents, timeout)
	if !commit.Success {
		if cb.log != nil {
			cb.log.Error(ctx, "commit phase failed, triggering rollback", "operation_id", operationID)
		}
		cb.broadcastFireAndForget(ctx, operationID, opType, PhaseRollback, clientID, data)
		return commit
	}

	if cb.log != nil {
		cb.log.Info(ctx, "coordinated operation completed", "operation_id", operationID)
	}
	return commit
}

func (cb *CoordinationBus) executePhase(
	ctx context.Context,
	operationID uuid.UUID,
	opType OperationType,
	phase Phase,
	clientID string,
	data map[string]any,
	expectedComponents []string,
	timeout time.Duration,
) PhaseResult {
	expected := make(map[string]struct{}, len(expectedComponents))
	for _, c := range expectedComponents {
		expected[c] = struct{}{}
	}

	pending := &pendingCoordination{
		operationID:        operationID,
		operationType:      opType,
		phase:              phase,
		expectedComponents: expected,
		responses:          make(map[string]ComponentResponse),
		startTime:          time.Now(),
		timeout:            timeout,
		eventData:          data,
		done:               make(chan struct{}),
	}

	cb.mu.Lock()
	cb.pending[operationID] = pending
	cb.mu.Unlock()

	eventType := fmt.Sprintf("coordination.%s.%s", opType, phase)
	cb.bus.Publish(ctx, eventType, map[string]any{
		"operation_id":        operationID,
		"client_id":           clientID,
		"data":                data,
		"expected_components": expectedComponents,
	})

	select {
	case <-pending.done:
	case <-time.After(timeout):
	case <-ctx.Done():
	}

	cb.mu.Lock()
	final, stillPending := cb.pending[operationID]
	if stillPending {
		delete(cb.pending, operationID)
	}
	cb.mu.Unlock()

	if !stillPending {
		// Already removed by expireOperation (cleanup sweep or Shutdown).
		return finalizeResult(pending)
	}

	responded := len(final.responses)
	if responded < len(final.expectedComponents) {
		return PhaseResult{
			Success:       false,
			OperationID:   operationID,
			Phase:         phase,
			Responses:     final.responses,
			TotalExpected: len(final.expectedComponents),
			Err:           fmt.Errorf("timeout waiting for %d of %d components", len(final.expectedComponents)-responded, len(final.expectedComponents)),
		}
	}
	return finalizeResult(final)
}

func finalizeResult(p *pendingCoordination) PhaseResult {
	successCount := 0
	for _, r := range p.responses {
		if r.Success {
			successCount++
		}
	}
	return PhaseResult{
		Success:       successCount == len(p.responses) && len(p.responses) == len(p.expectedComponents),
		OperationID:   p.operationID,
		Phase:         p.phase,
		Responses:     p.responses,
		SuccessCount:  successCount,
		TotalExpected: len(p.expectedComponents),
	}
}

func (cb *CoordinationBus) broadcastFireAndForget(ctx context.Context, operationID uuid.UUID, opType OperationType, phase Phase, clientID string, data map[string]any) {
	eventType := fmt.Sprintf("coordination.%s.%s", opType, phase)
	cb.bus.Publish(ctx, eventType, map[string]any{
		"operation_id": operationID,
		"client_id":    clientID,
		"data":         data,
	})
}

// handleComponentResponse correlates a "coordination.response" event with a
// pending operation, recording the component's acknowledgment and, if every
// expected component has now responded, waking the waiting
// CoordinateOperation call.
func (cb *CoordinationBus) handleComponentResponse(ctx context.Context, payload any) error {
	resp, ok := payload.(ComponentResponse)
	if !ok {
		return fmt.Errorf("coordination: unexpected response payload type %T", payload)
	}

	cb.mu.Lock()
	pending, ok := cb.pending[resp.OperationID]
	if !ok {
		cb.mu.Unlock()
		if cb.log != nil {
			cb.log.Debug(ctx, "response for unknown operation", "operation_id", resp.OperationID)
		}
		return nil
	}
	pending.responses[resp.ComponentID] = resp
	complete := len(pending.responses) >= len(pending.expectedComponents)
	cb.mu.Unlock()

	if complete {
		pending.markDone()
	}
	return nil
}

func (cb *CoordinationBus) cleanupLoop() {
	ticker := time.NewTicker(cb.cleanupInterval)
	defer ticker.Stop()
	ctx := context.Background()
	for {
		select {
		case <-ticker.C:
			cb.sweepExpired(ctx)
		case <-cb.stopCleanup:
			return
		}
	}
}

func (cb *CoordinationBus) sweepExpired(ctx context.Context) {
	now := time.Now()
	cb.mu.Lock()
	var expired []uuid.UUID
	for id, p := range cb.pending {
		if now.Sub(p.startTime) > p.timeout {
			expired = append(expired, id)
		}
	}
	cb.mu.Unlock()

	for _, id := range expired {
		cb.expireOperation(ctx, id)
	}
}

func (cb *CoordinationBus) expireOperation(ctx context.Context, operationID uuid.UUID) {
	cb.mu.Lock()
	pending, ok := cb.pending[operationID]
	if ok {
		delete(cb.pending, operationID)
	}
	cb.mu.Unlock()
	if !ok {
		return
	}

	if cb.log != nil {
		cb.log.Warn(ctx, "coordination operation timed out", "operation_id", operationID, "phase", pending.phase)
	}

	cb.bus.Publish(ctx, "coordination.timeout", map[string]any{
		"operation_id": operationID,
		"phase":        pending.phase,
	})

	if pending.phase == PhasePrepare || pending.phase == PhaseCommit {
		cb.broadcastFireAndForget(ctx, operationID, pending.operationType, PhaseRollback, "system", pending.eventData)
	}

	pending.markDone()
}
