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

func TestDecoderBookThenPriceChangeUpdatesBestPrices(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus)
	ctx := context.Background()
	now := time.Now()

	bookFrame := []byte(`{"event_type":"book","asset_id":"A","bids":[["0.64","100"]],"asks":[["0.66","100"]]}`)
	d.HandleFrame(ctx, bookFrame, now)

	changeFrame := []byte(`{"event_type":"price_change","asset_id":"A","changes":[{"price":"0.64","side":"BUY","size":"0"}]}`)
	d.HandleFrame(ctx, changeFrame, now)

	snap := books.Get("A")
	if snap == nil {
		t.Fatal("expected book state for asset A")
	}
	if len(snap.Bids) != 0 {
		t.Fatalf("expected empty bids after removal, got %d", len(snap.Bids))
	}
	if snap.BestBid != nil {
		t.Fatalf("expected nil best bid, got %v", snap.BestBid)
	}
	if bus.count(EventBidAskUpdated) == 0 {
		t.Fatal("expected at least one bid/ask updated event")
	}
}

func TestDecoderPriceChangeWithoutBookIsLoggedAndDropped(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus)

	frame := []byte(`{"event_type":"price_change","asset_id":"A","changes":[{"price":"0.64","side":"BUY","size":"10"}]}`)
	d.HandleFrame(context.Background(), frame, time.Now())

	if books.Get("A") != nil {
		t.Fatal("expected no book state created from a price_change with no prior book")
	}
}

func TestDecoderTickSizeChangeSeedsPlaceholders(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus)
	ctx := context.Background()
	now := time.Now()

	d.HandleFrame(ctx, []byte(`{"event_type":"book","asset_id":"A","bids":[],"asks":[]}`), now)
	d.HandleFrame(ctx, []byte(`{"event_type":"tick_size_change","asset_id":"A","old_tick_size":"0.01","new_tick_size":"0.001"}`), now)

	snap := books.Get("A")
	if len(snap.Bids) != 1 || len(snap.Asks) != 1 {
		t.Fatalf("expected one placeholder level per side, got bids=%d asks=%d", len(snap.Bids), len(snap.Asks))
	}
}

func TestDecoderLastTradePriceEmitsInformationalEventOnly(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus)

	d.HandleFrame(context.Background(), []byte(`{"event_type":"last_trade_price","asset_id":"A","price":"0.64","size":"10"}`), time.Now())

	if books.Get("A") != nil {
		t.Fatal("expected last_trade_price to never create book state")
	}
	if bus.count(EventTradeObserved) != 1 {
		t.Fatal("expected exactly one trade-observed event")
	}
}

func TestDecoderIgnoresUnknownEventType(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus)

	d.HandleFrame(context.Background(), []byte(`{"event_type":"mystery","asset_id":"A"}`), time.Now())
	if len(books.Assets()) != 0 {
		t.Fatal("expected no book state created for unknown event type")
	}
}

func TestDecoderHandlesMalformedJSONWithoutPanicking(t *testing.T) {
	books := NewBookStore(discardLogger())
	bus := &recordingBus{}
	d := NewDecoder(discardLogger(), books, bus)

	d.HandleFrame(context.Background(), []byte(`{not json`), time.Now())
}
