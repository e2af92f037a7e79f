package ingestqueue

import (
	"context"
	"testing"
	"time"
)

func TestQueuePutGetOrder(t *testing.T) {
	q := New[int]("test", 4, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		q.Put(ctx, i, nil)
	}

	for i := 0; i < 3; i++ {
		item, ok := q.Get(ctx)
		if !ok {
			t.Fatalf("expected item %d, got none", i)
		}
		if item.Frame != i {
			t.Fatalf("expected frame %d, got %d", i, item.Frame)
		}
	}
}

func TestQueueDropsOnOverflow(t *testing.T) {
	q := New[int]("test", 2, nil)
	ctx := context.Background()

	q.Put(ctx, 1, nil)
	q.Put(ctx, 2, nil)
	q.Put(ctx, 3, nil) // dropped

	if got := q.DropCount(); got != 1 {
		t.Fatalf("expected 1 drop, got %d", got)
	}
	if got := q.Len(); got != 2 {
		t.Fatalf("expected len 2, got %d", got)
	}

	first, ok := q.Get(ctx)
	if !ok || first.Frame != 1 {
		t.Fatalf("expected first surviving item to be 1, got %+v ok=%v", first, ok)
	}
}

func TestQueueCloseDrainsThenStops(t *testing.T) {
	q := New[string]("test", 4, nil)
	ctx := context.Background()

	q.Put(ctx, "a", nil)
	q.Close()

	item, ok := q.Get(ctx)
	if !ok || item.Frame != "a" {
		t.Fatalf("expected to drain queued item after close, got %+v ok=%v", item, ok)
	}

	_, ok = q.Get(ctx)
	if ok {
		t.Fatal("expected Get to report ok=false once closed and drained")
	}
}

func TestQueueGetRespectsContextCancellation(t *testing.T) {
	q := New[int]("test", 4, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := q.Get(ctx)
	if ok {
		t.Fatal("expected Get to return ok=false on context deadline with an empty queue")
	}
}
