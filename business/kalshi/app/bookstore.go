// Package app hosts the venue K application services: the order book store,
// the wire-message decoder, and the ticker publisher.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// BookStore holds one atomically-swapped Snapshot per market. Readers never
// block: Get loads the current pointer with no locking. Writes are
// serialized per market via a per-entry mutex so ApplySnapshot/ApplyDelta
// calls for the same market never race each other, while different markets
// proceed fully in parallel.
type BookStore struct {
	log     logger.LoggerInterface
	entries sync.Map // marketKey -> *bookEntry
}

type bookEntry struct {
	mu  sync.Mutex
	ptr atomic.Pointer[domain.Snapshot]
}

// NewBookStore constructs an empty BookStore.
func NewBookStore(log logger.LoggerInterface) *BookStore {
	return &BookStore{log: log}
}

// Get returns the current snapshot for a market, or nil if none has been
// received yet.
func (b *BookStore) Get(marketKey string) *domain.Snapshot {
	e, ok := b.entries.Load(marketKey)
	if !ok {
		return nil
	}
	return e.(*bookEntry).ptr.Load()
}

func (b *BookStore) entryFor(marketKey string) *bookEntry {
	e, _ := b.entries.LoadOrStore(marketKey, &bookEntry{})
	return e.(*bookEntry)
}

// ApplySnapshot installs a full-book snapshot for marketKey and reports
// whether the cached best prices changed.
func (b *BookStore) ApplySnapshot(marketKey string, yes, no []domain.PriceLevel, seq int, now time.Time) bool {
	entry := b.entryFor(marketKey)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	prev := entry.ptr.Load()
	next, changed := domain.ApplySnapshot(prev, marketKey, yes, no, seq, now)
	entry.ptr.Store(next)
	return changed
}

// ApplyDelta applies a single level delta for marketKey. It returns whether
// the cached best prices changed and an error if the delta was rejected
// (no prior snapshot, or a sequence gap).
func (b *BookStore) ApplyDelta(marketKey string, side domain.Side, price, delta, seq int, now time.Time) (bool, error) {
	entry := b.entryFor(marketKey)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	prev := entry.ptr.Load()
	next, changed, err := domain.ApplyDelta(prev, side, price, delta, seq, now)
	if err != nil {
		return false, err
	}
	entry.ptr.Store(next)
	return changed, nil
}

// Markets returns the set of market keys currently tracked.
func (b *BookStore) Markets() []string {
	var keys []string
	b.entries.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}
