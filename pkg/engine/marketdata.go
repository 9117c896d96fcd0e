package engine

// MarketData is a top-of-book summary taken at a consistent point in time.
type MarketData struct {
	Symbol         string `json:"symbol"`
	LastTradePrice int64  `json:"last_trade_price"`
	BestBid        int64  `json:"best_bid"`
	BestAsk        int64  `json:"best_ask"`
	MidPrice       int64  `json:"mid_price"`
	BidOrders      int    `json:"bid_orders"`
	AskOrders      int    `json:"ask_orders"`
	StopOrders     int    `json:"stop_orders"`
	TradeCount     int    `json:"trade_count"`
}

// MarketData snapshots the current market state. Zero values mean the
// corresponding side is empty or no trade has happened yet.
func (e *Engine) MarketData() MarketData {
	e.mu.Lock()
	defer e.mu.Unlock()

	md := MarketData{
		Symbol:         e.symbol,
		LastTradePrice: e.lastTradePrice,
		BidOrders:      e.bids.Len(),
		AskOrders:      e.asks.Len(),
		StopOrders:     e.stops.Len(),
		TradeCount:     e.ledger.Len(),
	}
	if px, ok := e.bids.BestPrice(); ok {
		md.BestBid = px
	}
	if px, ok := e.asks.BestPrice(); ok {
		md.BestAsk = px
	}
	if md.BestBid != 0 && md.BestAsk != 0 {
		md.MidPrice = (md.BestBid + md.BestAsk) / 2
	}
	return md
}
