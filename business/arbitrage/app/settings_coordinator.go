package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
)

// SettingsResult is the outcome of a SettingsCoordinator.RequestChange call.
type SettingsResult struct {
	Settings      Settings
	ChangedFields []string
	Err           error
}

// SettingsCoordinator exposes a synchronous request/response API over the
// asynchronous EventBus settings-change protocol: a caller (the admin HTTP
// layer, in the full system) calls RequestChange and blocks on a
// per-correlation-id one-shot channel until ArbitrageManager responds with
// EventSettingsUpdated or EventSettingsError, or the timeout elapses.
type SettingsCoordinator struct {
	bus     *eventbus.Bus
	timeout time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]chan SettingsResult
}

// NewSettingsCoordinator constructs a SettingsCoordinator and subscribes it
// to the settings response events.
func NewSettingsCoordinator(bus *eventbus.Bus, timeout time.Duration) *SettingsCoordinator {
	c := &SettingsCoordinator{
		bus:     bus,
		timeout: timeout,
		pending: make(map[uuid.UUID]chan SettingsResult),
	}
	bus.Subscribe(EventSettingsUpdated, c.handleUpdated)
	bus.Subscribe(EventSettingsError, c.handleError)
	return c
}

// RequestChange publishes a settings-change request and blocks until
// ArbitrageManager responds or the coordinator's timeout elapses. Either
// field may be nil to leave that setting unchanged. The returned slice
// names which fields the request actually changed.
func (c *SettingsCoordinator) RequestChange(ctx context.Context, minSpreadThreshold, minTradeSize *float64) (Settings, []string, error) {
	correlationID := uuid.New()
	ch := make(chan SettingsResult, 1)

	c.mu.Lock()
	c.pending[correlationID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, correlationID)
		c.mu.Unlock()
	}()

	c.bus.Publish(ctx, EventSettingsChangeRequested, SettingsChangeRequested{
		MinSpreadThreshold: minSpreadThreshold,
		MinTradeSize:       minTradeSize,
		CorrelationID:      correlationID,
	})

	select {
	case res := <-ch:
		return res.Settings, res.ChangedFields, res.Err
	case <-time.After(c.timeout):
		return Settings{}, nil, fmt.Errorf("settings change timed out waiting for correlation_id=%s", correlationID)
	case <-ctx.Done():
		return Settings{}, nil, ctx.Err()
	}
}

func (c *SettingsCoordinator) handleUpdated(ctx context.Context, payload any) error {
	evt, ok := payload.(SettingsUpdated)
	if !ok {
		return fmt.Errorf("settings coordinator: unexpected payload type %T for %s", payload, EventSettingsUpdated)
	}
	c.deliver(evt.CorrelationID, SettingsResult{Settings: evt.Settings, ChangedFields: evt.ChangedFields})
	return nil
}

func (c *SettingsCoordinator) handleError(ctx context.Context, payload any) error {
	evt, ok := payload.(SettingsError)
	if !ok {
		return fmt.Errorf("settings coordinator: unexpected payload type %T for %s", payload, EventSettingsError)
	}
	c.deliver(evt.CorrelationID, SettingsResult{Err: fmt.Errorf("%s", evt.Message)})
	return nil
}

func (c *SettingsCoordinator) deliver(correlationID uuid.UUID, result SettingsResult) {
	c.mu.Lock()
	ch, ok := c.pending[correlationID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- result:
	default:
	}
}
