package engine

// matchMarket runs an incoming market order against the opposing book,
// consuming best-first until filled or the book is exhausted. There is no
// price gate and no resting: a market order is fully transient. Whatever
// cannot fill is dropped; market orders expire when liquidity runs out.
func (e *Engine) matchMarket(o *Order) {
	opp := e.asks
	if o.Side == Sell {
		opp = e.bids
	}

	var consumed []*Order
	opp.Walk(func(r *Order) bool {
		qty := min(o.Remaining(), r.Remaining())
		e.recordTrade(o, r, qty)
		if r.Status == StatusFilled {
			consumed = append(consumed, r)
		}
		return o.Status != StatusFilled
	})
	for _, r := range consumed {
		opp.Remove(r)
	}

	if o.Status == StatusNew {
		// No liquidity at all.
		e.log.Infow("market_order_expired", "order_id", o.ID, "qty", o.Qty)
		e.cancel(o)
	} else if o.Status == StatusPartiallyFilled {
		e.log.Infow("market_remainder_dropped", "order_id", o.ID, "remaining", o.Remaining())
	}
}
