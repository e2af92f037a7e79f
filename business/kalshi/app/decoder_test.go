package app

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingBus) Publish(ctx context.Context, eventType string, payload any) []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func (r *recordingBus) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n
}

func TestDecoderSnapshotThenDeltaUpdatesBestPrices(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus, nil)
	ctx := context.Background()
	now := time.Now()

	okFrame := []byte(`{"type":"ok","sid":1,"msg":{"market_ticker":"M"}}`)
	d.HandleFrame(ctx, okFrame, now)

	snapFrame := []byte(`{"type":"orderbook_snapshot","sid":1,"seq":5,"msg":{"yes":[[1,95010]],"no":[[98,8285],[97,28659]]}}`)
	d.HandleFrame(ctx, snapFrame, now)

	deltaFrame := []byte(`{"type":"orderbook_delta","sid":1,"seq":6,"msg":{"price":73,"delta":26,"side":"yes"}}`)
	d.HandleFrame(ctx, deltaFrame, now)

	snap := books.Get("M")
	if snap == nil {
		t.Fatal("expected book state for market M")
	}
	if snap.BestYesBid == nil || *snap.BestYesBid != 73 {
		t.Fatalf("expected best yes bid 73, got %v", snap.BestYesBid)
	}
	if snap.BestNoBid == nil || *snap.BestNoBid != 98 {
		t.Fatalf("expected best no bid 98, got %v", snap.BestNoBid)
	}
	if bus.count(EventBidAskUpdated) == 0 {
		t.Fatal("expected at least one bid/ask updated event")
	}
}

func TestDecoderRejectsSequenceGapWithoutCrashing(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus, nil)
	ctx := context.Background()
	now := time.Now()

	d.HandleFrame(ctx, []byte(`{"type":"ok","sid":1,"msg":{"market_ticker":"M"}}`), now)
	d.HandleFrame(ctx, []byte(`{"type":"orderbook_snapshot","sid":1,"seq":5,"msg":{"yes":[[1,10]],"no":[]}}`), now)
	// seq 8 skips 6,7 — should be rejected and not applied.
	d.HandleFrame(ctx, []byte(`{"type":"orderbook_delta","sid":1,"seq":8,"msg":{"price":50,"delta":5,"side":"yes"}}`), now)

	snap := books.Get("M")
	if _, ok := snap.YesLevels[50]; ok {
		t.Fatal("expected sequence-gapped delta to be rejected")
	}
	if *snap.LastSeq != 5 {
		t.Fatalf("expected last seq to remain 5, got %d", *snap.LastSeq)
	}
}

func TestDecoderIgnoresUnknownMessageType(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus, nil)

	d.HandleFrame(context.Background(), []byte(`{"type":"mystery","sid":1}`), time.Now())
	if len(books.Markets()) != 0 {
		t.Fatal("expected no book state created for unknown message type")
	}
}

func TestDecoderHandlesMalformedJSONWithoutPanicking(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus, nil)

	d.HandleFrame(context.Background(), []byte(`{not json`), time.Now())
}
