package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPublishSubscribeDelivery(t *testing.T) {
	bus := New(nil)
	var got int32

	bus.Subscribe("k.orderbook_update", func(ctx context.Context, payload any) error {
		atomic.AddInt32(&got, payload.(int32))
		return nil
	})

	bus.Publish(context.Background(), "k.orderbook_update", int32(5))
	if atomic.LoadInt32(&got) != 5 {
		t.Fatalf("expected handler to receive payload, got %d", got)
	}
}

func TestWildcardSubscriberReceivesEverything(t *testing.T) {
	bus := New(nil)
	var count int32

	bus.Subscribe(Wildcard, func(ctx context.Context, payload any) error {
		atomic.AddInt32(&count, 1)
		return nil
	})

	bus.Publish(context.Background(), "k.error", nil)
	bus.Publish(context.Background(), "p.orderbook_update", nil)

	if atomic.LoadInt32(&count) != 2 {
		t.Fatalf("expected wildcard subscriber to see both events, got %d", count)
	}
}

func TestPublishIsolatesHandlerFailures(t *testing.T) {
	bus := New(nil)
	var secondRan int32

	bus.Subscribe("k.error", func(ctx context.Context, payload any) error {
		return errors.New("boom")
	})
	bus.Subscribe("k.error", func(ctx context.Context, payload any) error {
		atomic.AddInt32(&secondRan, 1)
		return nil
	})

	errs := bus.Publish(context.Background(), "k.error", nil)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(errs))
	}
	if atomic.LoadInt32(&secondRan) != 1 {
		t.Fatal("expected second handler to still run despite first handler's error")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New(nil)
	var count int32

	sub := bus.Subscribe("k.error", func(ctx context.Context, payload any) error {
		atomic.AddInt32(&count, 1)
		return nil
	})

	bus.Publish(context.Background(), "k.error", nil)
	if !bus.Unsubscribe(sub) {
		t.Fatal("expected Unsubscribe to find the subscription")
	}
	bus.Publish(context.Background(), "k.error", nil)

	if atomic.LoadInt32(&count) != 1 {
		t.Fatalf("expected only the first publish to be observed, got %d", count)
	}
}

func TestStatsTracksSubscribersAndCounts(t *testing.T) {
	bus := New(nil)
	bus.Subscribe("k.error", func(ctx context.Context, payload any) error { return nil })
	bus.Subscribe("k.error", func(ctx context.Context, payload any) error { return nil })
	bus.Subscribe(Wildcard, func(ctx context.Context, payload any) error { return nil })

	bus.Publish(context.Background(), "k.error", nil)
	bus.Publish(context.Background(), "k.error", nil)

	stats := bus.Stats()
	if stats.SubscribersByType["k.error"] != 2 {
		t.Fatalf("expected 2 subscribers for k.error, got %d", stats.SubscribersByType["k.error"])
	}
	if stats.WildcardSubscribers != 1 {
		t.Fatalf("expected 1 wildcard subscriber, got %d", stats.WildcardSubscribers)
	}
	if stats.EventCounts["k.error"] != 2 {
		t.Fatalf("expected event count 2, got %d", stats.EventCounts["k.error"])
	}
}
