// Package eventbus implements a typed publish/subscribe hub used to
// decouple venue ingestion from arbitrage evaluation and broadcast, plus a
// 2-phase-commit coordination layer built on top of it.
package eventbus

import (
	"context"
	"sort"
	"sync"

	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// Handler receives an event's payload. Handlers run concurrently with each
// other and are isolated from each other's panics/errors: one failing
// handler never prevents the rest from running.
type Handler func(ctx context.Context, payload any) error

// Wildcard subscribes to every event type published on the bus.
const Wildcard = "*"

// Stats summarizes bus activity for operator dashboards and tests.
type Stats struct {
	TotalSubscribers    int
	EventTypes          int
	WildcardSubscribers int
	EventCounts         map[string]int64
	SubscribersByType   map[string]int
}

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a concurrency-safe, in-process event bus. The zero value is not
// usable; construct with New.
type Bus struct {
	log logger.LoggerInterface

	mu          sync.RWMutex
	subscribers map[string][]subscription
	wildcards   []subscription
	eventCounts map[string]int64
	nextID      uint64
}

// New creates an empty Bus.
func New(log logger.LoggerInterface) *Bus {
	return &Bus{
		log:         log,
		subscribers: make(map[string][]subscription),
		eventCounts: make(map[string]int64),
	}
}

// Subscription is an opaque handle returned by Subscribe, used to Unsubscribe
// later.
type Subscription struct {
	eventType string
	id        uint64
}

// Subscribe registers handler for eventType ("*" for every event type) and
// returns a handle that can be passed to Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscription{id: b.nextID, handler: handler}

	if eventType == Wildcard {
		b.wildcards = append(b.wildcards, sub)
	} else {
		b.subscribers[eventType] = append(b.subscribers[eventType], sub)
	}

	return Subscription{eventType: eventType, id: sub.id}
}

// Unsubscribe removes a previously-registered subscription. Returns false if
// the subscription was already removed or never existed.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	var list []subscription
	if sub.eventType == Wildcard {
		list = b.wildcards
	} else {
		list = b.subscribers[sub.eventType]
	}

	for i, s := range list {
		if s.id == sub.id {
			list = append(list[:i], list[i+1:]...)
			if sub.eventType == Wildcard {
				b.wildcards = list
			} else {
				b.subscribers[sub.eventType] = list
			}
			return true
		}
	}
	return false
}

// Publish delivers payload to every subscriber of eventType plus every
// wildcard subscriber, concurrently. It returns the errors raised by failing
// handlers (nil if every handler succeeded), never aborting on the first
// failure.
func (b *Bus) Publish(ctx context.Context, eventType string, payload any) []error {
	b.mu.Lock()
	b.eventCounts[eventType]++
	b.mu.Unlock()

	b.mu.RLock()
	handlers := make([]subscription, 0, len(b.subscribers[eventType])+len(b.wildcards))
	handlers = append(handlers, b.subscribers[eventType]...)
	handlers = append(handlers, b.wildcards...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		if b.log != nil {
			b.log.Debug(ctx, "event published with no subscribers", "event_type", eventType)
		}
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, sub := range handlers {
		wg.Add(1)
		go func(s subscription) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					errs = append(errs, panicError{eventType: eventType, value: r})
					mu.Unlock()
				}
			}()
			if err := s.handler(ctx, payload); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(sub)
	}
	wg.Wait()

	if len(errs) > 0 && b.log != nil {
		b.log.Warn(ctx, "event handlers returned errors", "event_type", eventType, "error_count", len(errs))
	}
	return errs
}

// Stats reports subscriber counts and per-event publish counts.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subsByType := make(map[string]int, len(b.subscribers))
	total := len(b.wildcards)
	for et, subs := range b.subscribers {
		subsByType[et] = len(subs)
		total += len(subs)
	}

	counts := make(map[string]int64, len(b.eventCounts))
	for k, v := range b.eventCounts {
		counts[k] = v
	}

	return Stats{
		TotalSubscribers:    total,
		EventTypes:          len(b.subscribers),
		WildcardSubscribers: len(b.wildcards),
		EventCounts:         counts,
		SubscribersByType:   subsByType,
	}
}

// ClearAll removes every subscription and resets counters. Intended for
// tests.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string][]subscription)
	b.wildcards = nil
	b.eventCounts = make(map[string]int64)
}

type panicError struct {
	eventType string
	value     any
}

func (p panicError) Error() string {
	return "eventbus: handler panicked for " + p.eventType
}

// eventTypesSorted returns registered event types in a stable order.
func (b *Bus) eventTypesSorted() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.subscribers))
	for et := range b.subscribers {
		out = append(out, et)
	}
	sort.Strings(out)
	return out
}
