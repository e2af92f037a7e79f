package app

import (
	"context"
	"testing"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
)

func TestSettingsCoordinatorRequestChangeEndToEnd(t *testing.T) {
	_, _, mgr := newTestManagerForCoordinator(t)
	bus := mgr.bus
	coordinator := NewSettingsCoordinator(bus, time.Second)

	newThreshold := 0.15
	settings, changedFields, err := coordinator.RequestChange(context.Background(), &newThreshold, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.MinSpreadThreshold != newThreshold {
		t.Fatalf("MinSpreadThreshold = %v, want %v", settings.MinSpreadThreshold, newThreshold)
	}
	if len(changedFields) != 1 || changedFields[0] != "min_spread_threshold" {
		t.Fatalf("ChangedFields = %v, want [min_spread_threshold]", changedFields)
	}
}

func TestSettingsCoordinatorRequestChangeSurfacesValidationError(t *testing.T) {
	_, _, mgr := newTestManagerForCoordinator(t)
	bus := mgr.bus
	coordinator := NewSettingsCoordinator(bus, time.Second)

	bad := -1.0
	_, _, err := coordinator.RequestChange(context.Background(), nil, &bad)
	if err == nil {
		t.Fatal("expected a validation error for a negative min trade size")
	}
}

func TestSettingsCoordinatorTimesOutWithNoManager(t *testing.T) {
	bus := eventbus.New(discardLogger())
	coordinator := NewSettingsCoordinator(bus, 20*time.Millisecond)

	v := 0.1
	_, _, err := coordinator.RequestChange(context.Background(), &v, nil)
	if err == nil {
		t.Fatal("expected a timeout error with no manager subscribed")
	}
}

func newTestManagerForCoordinator(t *testing.T) (*eventbus.Bus, *PairRegistry, *ArbitrageManager) {
	return newTestManager(t)
}
