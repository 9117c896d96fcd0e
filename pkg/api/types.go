package api

// API response types for REST endpoints and WebSocket messages

// PriceLevel represents one aggregated book level
type PriceLevel struct {
	Price int64 `json:"price"` // Price in ticks
	Qty   int64 `json:"qty"`   // Total remaining size in lots
	Count int   `json:"count"` // Number of resting orders
}

// BookSnapshot represents the current resting state of both sides
type BookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`      // Sorted high to low
	Asks      []PriceLevel `json:"asks"`      // Sorted low to high
	Timestamp int64        `json:"timestamp"` // Unix milliseconds
}

// OrderInfo represents one order in a snapshot
type OrderInfo struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	Kind       string `json:"kind"`
	Price      int64  `json:"price"`
	StopPrice  int64  `json:"stopPrice,omitempty"`
	Qty        int64  `json:"qty"`
	Filled     int64  `json:"filled"`
	Remaining  int64  `json:"remaining"`
	Status     string `json:"status"`
	TIF        string `json:"tif"`
}

// TradeInfo represents one executed trade
type TradeInfo struct {
	Seq         uint64 `json:"seq"`
	Symbol      string `json:"symbol"`
	BuyOrderID  string `json:"buyOrderId"`
	SellOrderID string `json:"sellOrderId"`
	Price       int64  `json:"price"`
	Qty         int64  `json:"qty"`
	Timestamp   int64  `json:"timestamp"` // Unix milliseconds
}

// MarketDataInfo represents the top-of-book summary
type MarketDataInfo struct {
	Symbol         string `json:"symbol"`
	LastTradePrice int64  `json:"lastTradePrice"`
	BestBid        int64  `json:"bestBid"`
	BestAsk        int64  `json:"bestAsk"`
	MidPrice       int64  `json:"midPrice"`
	BidOrders      int    `json:"bidOrders"`
	AskOrders      int    `json:"askOrders"`
	StopOrders     int    `json:"stopOrders"`
	TradeCount     int    `json:"tradeCount"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WSSubscribeRequest is a client subscription message
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// WSOrderEvent streams an order lifecycle transition
type WSOrderEvent struct {
	Type  string    `json:"type"`
	Event string    `json:"event"`
	Order OrderInfo `json:"order"`
}

// WSTradeEvent streams an executed trade
type WSTradeEvent struct {
	Type  string    `json:"type"`
	Trade TradeInfo `json:"trade"`
}
