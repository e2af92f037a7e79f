package app

// wireFrame is the envelope for every venue P inbound frame, discriminated
// by EventType. Prices and sizes travel the wire as decimal strings.
type wireFrame struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Market    string `json:"market,omitempty"`

	// book
	Bids [][2]string `json:"bids,omitempty"`
	Asks [][2]string `json:"asks,omitempty"`
	Hash string      `json:"hash,omitempty"`

	// price_change
	Changes []wirePriceChange `json:"changes,omitempty"`

	// tick_size_change
	OldTickSize string `json:"old_tick_size,omitempty"`
	NewTickSize string `json:"new_tick_size,omitempty"`

	// last_trade_price
	Price string `json:"price,omitempty"`
	Size  string `json:"size,omitempty"`
}

type wirePriceChange struct {
	Price string `json:"price"`
	Side  string `json:"side"`
	Size  string `json:"size"`
}
