package domain

// SubscriptionType enumerates the ways a client can subscribe to ticker
// updates, grounded on channel_manager.py's SubscriptionType.
type SubscriptionType string

const (
	SubscriptionAll      SubscriptionType = "all"
	SubscriptionPlatform SubscriptionType = "platform"
	SubscriptionMarket   SubscriptionType = "market"
	SubscriptionCustom   SubscriptionType = "custom"
)

// PriceRange bounds a CUSTOM subscription's accepted yes-bid price.
type PriceRange struct {
	Min float64
	Max float64
}

// CustomPredicate is a caller-supplied filter function for CUSTOM
// subscriptions that need matching logic beyond min_volume/price_range.
type CustomPredicate func(TickerSnapshot) bool

// SubscriptionFilter is one subscription a client has active. A client may
// hold several at once (e.g. one ALL plus a CUSTOM volume filter).
type SubscriptionFilter struct {
	Type       SubscriptionType
	Platform   string
	MarketID   string
	MinVolume  *float64
	PriceRange *PriceRange
	Custom     CustomPredicate
}

// AllSubscription creates a subscription matching every ticker update.
func AllSubscription() SubscriptionFilter {
	return SubscriptionFilter{Type: SubscriptionAll}
}

// PlatformSubscription creates a subscription matching every update from
// platform.
func PlatformSubscription(platform string) SubscriptionFilter {
	return SubscriptionFilter{Type: SubscriptionPlatform, Platform: platform}
}

// MarketSubscription creates a subscription matching updates for one
// market key.
func MarketSubscription(marketKey string) SubscriptionFilter {
	return SubscriptionFilter{Type: SubscriptionMarket, MarketID: marketKey}
}

// VolumeFilterSubscription creates a CUSTOM subscription that only accepts
// tickers whose combined yes+no volume is at least minVolume.
func VolumeFilterSubscription(minVolume float64, platform string) SubscriptionFilter {
	return SubscriptionFilter{Type: SubscriptionCustom, Platform: platform, MinVolume: &minVolume}
}

// PriceRangeSubscription creates a CUSTOM subscription that only accepts
// tickers whose yes-bid price falls within [min, max].
func PriceRangeSubscription(min, max float64, platform string) SubscriptionFilter {
	return SubscriptionFilter{Type: SubscriptionCustom, Platform: platform, PriceRange: &PriceRange{Min: min, Max: max}}
}

// Matches reports whether a CUSTOM filter accepts t. Only meaningful when
// Type is SubscriptionCustom; ALL/PLATFORM/MARKET matching is handled by
// ChannelManager's index caches instead.
func (f SubscriptionFilter) Matches(t TickerSnapshot) bool {
	if f.MinVolume != nil {
		totalVolume := t.Summary.Yes.Volume + t.Summary.No.Volume
		if totalVolume < *f.MinVolume {
			return false
		}
	}
	if f.PriceRange != nil {
		if t.Summary.Yes.Bid == nil {
			return false
		}
		price := *t.Summary.Yes.Bid
		if price < f.PriceRange.Min || price > f.PriceRange.Max {
			return false
		}
	}
	if f.Custom != nil {
		return f.Custom(t)
	}
	return true
}
