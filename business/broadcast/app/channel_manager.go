package app

import (
	"context"
	"sync"

	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// ChannelManager tracks client connections and their subscription filters,
// and maintains derived index caches (platform, market, all-subscribers)
// for cheap recipient lookup on broadcast. Grounded on
// original_source/backend/channel_manager.py; the custom-filter linear
// scan and cache-invalidation-flag design are carried over as-is.
type ChannelManager struct {
	log logger.LoggerInterface

	mu            sync.RWMutex
	connections   map[string]Sender
	subscriptions map[string][]domain.SubscriptionFilter

	platformCache map[string]map[string]struct{}
	marketCache   map[string]map[string]struct{}
	allCache      map[string]struct{}
	cacheDirty    bool

	totalConnections    int
	messagesSent        int
	failedSends         int
	activeSubscriptions int
}

// NewChannelManager constructs an empty ChannelManager.
func NewChannelManager(log logger.LoggerInterface) *ChannelManager {
	return &ChannelManager{
		log:           log,
		connections:   make(map[string]Sender),
		subscriptions: make(map[string][]domain.SubscriptionFilter),
		platformCache: make(map[string]map[string]struct{}),
		marketCache:   make(map[string]map[string]struct{}),
		cacheDirty:    true,
	}
}

// AddConnection registers a new client under clientID, sending through
// sender.
func (cm *ChannelManager) AddConnection(clientID string, sender Sender) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[clientID] = sender
	cm.subscriptions[clientID] = nil
	cm.invalidateCacheLocked()
	cm.totalConnections = len(cm.connections)
	if cm.log != nil {
		cm.log.Info(context.Background(), "broadcast: connection added", "client_id", clientID, "total", cm.totalConnections)
	}
}

// RemoveConnection drops clientID and its subscriptions. Safe to call
// more than once for the same clientID.
func (cm *ChannelManager) RemoveConnection(clientID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, clientID)
	delete(cm.subscriptions, clientID)
	cm.invalidateCacheLocked()
	cm.totalConnections = len(cm.connections)
	if cm.log != nil {
		cm.log.Info(context.Background(), "broadcast: connection removed", "client_id", clientID, "total", cm.totalConnections)
	}
}

// Subscribe adds filter to clientID's active subscriptions.
func (cm *ChannelManager) Subscribe(clientID string, filter domain.SubscriptionFilter) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.subscriptions[clientID] = append(cm.subscriptions[clientID], filter)
	cm.invalidateCacheLocked()
	cm.activeSubscriptions = cm.countActiveSubscriptionsLocked()
}

// Unsubscribe removes every subscription on clientID matching subType,
// platform, and marketID (empty platform/marketID match any). Reports
// whether any subscription was removed.
func (cm *ChannelManager) Unsubscribe(clientID string, subType domain.SubscriptionType, platform, marketID string) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	filters, ok := cm.subscriptions[clientID]
	if !ok {
		return false
	}

	kept := filters[:0:0]
	for _, f := range filters {
		matches := f.Type == subType &&
			(platform == "" || f.Platform == platform) &&
			(marketID == "" || f.MarketID == marketID)
		if !matches {
			kept = append(kept, f)
		}
	}

	removed := len(filters) - len(kept)
	if removed == 0 {
		return false
	}
	cm.subscriptions[clientID] = kept
	cm.invalidateCacheLocked()
	cm.activeSubscriptions = cm.countActiveSubscriptionsLocked()
	return true
}

func (cm *ChannelManager) countActiveSubscriptionsLocked() int {
	total := 0
	for _, filters := range cm.subscriptions {
		total += len(filters)
	}
	return total
}

func (cm *ChannelManager) invalidateCacheLocked() {
	cm.cacheDirty = true
	cm.platformCache = make(map[string]map[string]struct{})
	cm.marketCache = make(map[string]map[string]struct{})
	cm.allCache = nil
}

func (cm *ChannelManager) rebuildCachesLocked() {
	if !cm.cacheDirty {
		return
	}

	cm.platformCache = make(map[string]map[string]struct{})
	cm.marketCache = make(map[string]map[string]struct{})
	all := make(map[string]struct{})

	for clientID, filters := range cm.subscriptions {
		for _, f := range filters {
			switch f.Type {
			case domain.SubscriptionAll:
				all[clientID] = struct{}{}
			case domain.SubscriptionPlatform:
				if f.Platform != "" {
					if cm.platformCache[f.Platform] == nil {
						cm.platformCache[f.Platform] = make(map[string]struct{})
					}
					cm.platformCache[f.Platform][clientID] = struct{}{}
				}
			case domain.SubscriptionMarket:
				if f.MarketID != "" {
					if cm.marketCache[f.MarketID] == nil {
						cm.marketCache[f.MarketID] = make(map[string]struct{})
					}
					cm.marketCache[f.MarketID][clientID] = struct{}{}
				}
			}
		}
	}

	cm.allCache = all
	cm.cacheDirty = false
}

// Recipients computes the set of client IDs that should receive t: the
// union of all-subscribers, the platform index, the market index, and any
// CUSTOM subscription whose predicate accepts t.
func (cm *ChannelManager) Recipients(t domain.TickerSnapshot) []string {
	cm.mu.Lock()
	cm.rebuildCachesLocked()

	recipients := make(map[string]struct{}, len(cm.allCache))
	for id := range cm.allCache {
		recipients[id] = struct{}{}
	}
	for id := range cm.platformCache[t.Platform] {
		recipients[id] = struct{}{}
	}
	for id := range cm.marketCache[t.MarketKey] {
		recipients[id] = struct{}{}
	}
	for clientID, filters := range cm.subscriptions {
		for _, f := range filters {
			if f.Type == domain.SubscriptionCustom && f.Matches(t) {
				recipients[clientID] = struct{}{}
			}
		}
	}
	cm.mu.Unlock()

	out := make([]string, 0, len(recipients))
	for id := range recipients {
		out = append(out, id)
	}
	return out
}

// Sender returns the registered Sender for clientID, or nil if not
// connected.
func (cm *ChannelManager) Sender(clientID string) Sender {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[clientID]
}

// RecordSent and RecordFailed update delivery counters after a broadcast
// attempt; Broadcaster calls these rather than mutating stats directly so
// ChannelManager stays the single owner of its own counters.
func (cm *ChannelManager) RecordSent(n int) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.messagesSent += n
}

func (cm *ChannelManager) RecordFailed(n int) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.failedSends += n
}

// Stats returns a snapshot of the channel manager's counters and cache
// shapes.
func (cm *ChannelManager) Stats() Stats {
	cm.mu.Lock()
	cm.rebuildCachesLocked()
	defer cm.mu.Unlock()

	platformStats := make(map[string]int, len(cm.platformCache))
	for platform, set := range cm.platformCache {
		platformStats[platform] = len(set)
	}
	marketStats := make(map[string]int, len(cm.marketCache))
	for market, set := range cm.marketCache {
		marketStats[market] = len(set)
	}

	return Stats{
		TotalConnections:      cm.totalConnections,
		MessagesSent:          cm.messagesSent,
		FailedSends:           cm.failedSends,
		ActiveSubscriptions:   cm.activeSubscriptions,
		PlatformSubscriptions: platformStats,
		MarketSubscriptions:   marketStats,
		AllSubscribers:        len(cm.allCache),
	}
}
