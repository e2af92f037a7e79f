// Package app hosts the venue P application services: the order book store,
// the wire-message decoder, and the ticker publisher.
package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/shopspring/decimal"
)

// BookStore holds one atomically-swapped Snapshot per asset_id. Readers
// never block; writes are serialized per asset via a per-entry mutex.
// Unlike venue K, a venue P asset has no prior-snapshot guarantee for
// price_change/tick_size_change frames: both require a preceding book
// snapshot to exist, matching the original client's own "need book message
// first" guard.
type BookStore struct {
	log     logger.LoggerInterface
	entries sync.Map // assetID -> *bookEntry
}

type bookEntry struct {
	mu  sync.Mutex
	ptr atomic.Pointer[domain.Snapshot]
}

// NewBookStore constructs an empty BookStore.
func NewBookStore(log logger.LoggerInterface) *BookStore {
	return &BookStore{log: log}
}

// Get returns the current snapshot for an asset, or nil if none received.
func (b *BookStore) Get(assetID string) *domain.Snapshot {
	e, ok := b.entries.Load(assetID)
	if !ok {
		return nil
	}
	return e.(*bookEntry).ptr.Load()
}

func (b *BookStore) entryFor(assetID string) *bookEntry {
	e, _ := b.entries.LoadOrStore(assetID, &bookEntry{})
	return e.(*bookEntry)
}

// ApplyBookSnapshot installs a full-book snapshot for assetID and reports
// whether the cached best prices changed relative to the prior snapshot.
func (b *BookStore) ApplyBookSnapshot(assetID string, bids, asks []domain.PriceLevel, hash string, now time.Time) bool {
	entry := b.entryFor(assetID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	prev := entry.ptr.Load()
	next := domain.ApplyBookSnapshot(assetID, bids, asks, hash, now)
	entry.ptr.Store(next)
	return prev == nil || !domain.SnapshotBestsEqual(prev, next)
}

// ApplyPriceChanges applies a batch of price_change tuples for assetID. It
// returns whether the cached best prices changed and an error if no prior
// book snapshot exists for this asset.
func (b *BookStore) ApplyPriceChanges(assetID string, changes []domain.PriceChange, now time.Time) (bool, error) {
	entry := b.entryFor(assetID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	prev := entry.ptr.Load()
	if prev == nil {
		return false, fmt.Errorf("no orderbook state for asset_id=%s, need book message first", assetID)
	}
	next, changed := domain.ApplyPriceChanges(prev, changes, now)
	entry.ptr.Store(next)
	return changed, nil
}

// ApplyTickSizeChange seeds placeholder levels at newTickSize for assetID.
// It errors if no prior book snapshot exists for this asset.
func (b *BookStore) ApplyTickSizeChange(assetID string, newTickSize decimal.Decimal, now time.Time) error {
	entry := b.entryFor(assetID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	prev := entry.ptr.Load()
	if prev == nil {
		return fmt.Errorf("no orderbook state for asset_id=%s, need book message first", assetID)
	}
	next := domain.ApplyTickSizeChange(prev, newTickSize, now)
	entry.ptr.Store(next)
	return nil
}

// Assets returns the set of asset_ids currently tracked.
func (b *BookStore) Assets() []string {
	var keys []string
	b.entries.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}
