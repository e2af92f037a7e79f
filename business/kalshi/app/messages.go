package app

// wireEnvelope is the outer shape of every venue K frame: type and sid sit
// at the top level, seq (when present) sits alongside them, and the
// type-specific payload is nested under msg.
type wireEnvelope struct {
	Type string          `json:"type"`
	Sid  int             `json:"sid"`
	Seq  *int            `json:"seq"`
	Msg  wirePayload     `json:"msg"`
}

// wirePayload is a union of every field any message type's msg body can
// carry; only the fields relevant to Type are populated.
type wirePayload struct {
	// error
	Code int    `json:"code"`
	Text string `json:"msg"`

	// ok
	MarketTicker string `json:"market_ticker"`

	// orderbook_snapshot
	Yes [][2]int `json:"yes"`
	No  [][2]int `json:"no"`

	// orderbook_delta
	Price int    `json:"price"`
	Delta int    `json:"delta"`
	Side  string `json:"side"`

	// ticker_v2
	YesBid      *int `json:"yes_bid"`
	YesAsk      *int `json:"yes_ask"`
	Volume      int  `json:"volume"`
	VolumeDelta int  `json:"volume_delta"`
	TS          int64 `json:"ts"`
}
