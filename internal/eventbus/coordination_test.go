package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// respondingComponent subscribes to every coordination event for opType and
// immediately acknowledges it with the given outcome, mimicking a venue
// client or broadcaster participating in a coordinated operation.
func respondingComponent(bus *Bus, componentID string, opType OperationType, phase Phase, success bool) {
	eventType := "coordination." + string(opType) + "." + string(phase)
	bus.Subscribe(eventType, func(ctx context.Context, payload any) error {
		data := payload.(map[string]any)
		opID := data["operation_id"].(uuid.UUID)
		bus.Publish(ctx, "coordination.response", ComponentResponse{
			ComponentID: componentID,
			OperationID: opID,
			Success:     success,
		})
		return nil
	})
}

func TestCoordinateOperationSucceedsWhenAllComponentsAck(t *testing.T) {
	bus := New(nil)
	respondingComponent(bus, "kalshi", OpMarketSubscribe, PhasePrepare, true)
	respondingComponent(bus, "kalshi", OpMarketSubscribe, PhaseCommit, true)
	respondingComponent(bus, "broadcast", OpMarketSubscribe, PhasePrepare, true)
	respondingComponent(bus, "broadcast", OpMarketSubscribe, PhaseCommit, true)

	cb := NewCoordinationBus(bus, nil, time.Hour)
	defer cb.Shutdown(context.Background())

	result := cb.CoordinateOperation(
		context.Background(),
		OpMarketSubscribe,
		"client-1",
		map[string]any{"ticker": "KXPRES-24"},
		[]string{"kalshi", "broadcast"},
		2*time.Second,
	)

	if !result.Success {
		t.Fatalf("expected successful coordination, got %+v", result)
	}
	if result.Phase != PhaseCommit {
		t.Fatalf("expected result from commit phase, got %s", result.Phase)
	}
}

func TestCoordinateOperationFailsWhenComponentNacks(t *testing.T) {
	bus := New(nil)
	respondingComponent(bus, "kalshi", OpMarketSubscribe, PhasePrepare, false)

	cb := NewCoordinationBus(bus, nil, time.Hour)
	defer cb.Shutdown(context.Background())

	result := cb.CoordinateOperation(
		context.Background(),
		OpMarketSubscribe,
		"client-1",
		map[string]any{"ticker": "KXPRES-24"},
		[]string{"kalshi"},
		2*time.Second,
	)

	if result.Success {
		t.Fatal("expected coordination to fail when a component NACKs prepare")
	}
	if result.Phase != PhasePrepare {
		t.Fatalf("expected failure to surface from prepare phase, got %s", result.Phase)
	}
}

func TestCoordinateOperationBroadcastsRollbackOnPrepareNack(t *testing.T) {
	bus := New(nil)
	respondingComponent(bus, "kalshi", OpMarketSubscribe, PhasePrepare, true)
	respondingComponent(bus, "broadcast", OpMarketSubscribe, PhasePrepare, false)

	var rollbacks []string
	bus.Subscribe("coordination."+string(OpMarketSubscribe)+"."+string(PhaseRollback), func(ctx context.Context, payload any) error {
		data := payload.(map[string]any)
		rollbacks = append(rollbacks, data["client_id"].(string))
		return nil
	})

	cb := NewCoordinationBus(bus, nil, time.Hour)
	defer cb.Shutdown(context.Background())

	result := cb.CoordinateOperation(
		context.Background(),
		OpMarketSubscribe,
		"client-1",
		map[string]any{"ticker": "KXPRES-24"},
		[]string{"kalshi", "broadcast"},
		2*time.Second,
	)

	if result.Success {
		t.Fatal("expected coordination to fail when one component NACKs prepare")
	}
	if len(rollbacks) != 1 || rollbacks[0] != "client-1" {
		t.Fatalf("expected a single rollback broadcast for client-1, got %v", rollbacks)
	}
}

func TestCoordinateOperationTimesOutWhenComponentSilent(t *testing.T) {
	bus := New(nil)
	// No responder registered: prepare phase should time out.
	cb := NewCoordinationBus(bus, nil, time.Hour)
	defer cb.Shutdown(context.Background())

	result := cb.CoordinateOperation(
		context.Background(),
		OpMarketSubscribe,
		"client-1",
		map[string]any{"ticker": "KXPRES-24"},
		[]string{"kalshi"},
		50*time.Millisecond,
	)

	if result.Success {
		t.Fatal("expected coordination to fail on timeout")
	}
	if result.Err == nil {
		t.Fatal("expected a timeout error to be set")
	}
}
