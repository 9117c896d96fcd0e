package engine

// matchLimit runs an incoming limit order against the opposing book in
// price-time priority.
//
// The walk visits resting orders best-first and stops at the first order the
// incoming price cannot cross; book ordering guarantees price only worsens
// from there. Fully consumed resting orders are collected during the walk and
// removed afterwards, so iteration is never invalidated mid-walk and a
// rejected path leaves the book untouched.
func (e *Engine) matchLimit(o *Order) {
	opp, own := e.asks, e.bids
	if o.Side == Sell {
		opp, own = e.bids, e.asks
	}

	if o.TIF == FOK {
		e.matchFOK(o, opp)
		return
	}

	var consumed []*Order
	opp.Walk(func(r *Order) bool {
		if !crosses(o, r) {
			return false
		}
		switch {
		case o.Remaining() < r.Remaining():
			// Incoming fully satisfied; maker stays on the book.
			e.recordTrade(o, r, o.Remaining())
			return false
		case o.Remaining() > r.Remaining():
			// Maker consumed whole; keep walking with the updated incoming.
			e.recordTrade(o, r, r.Remaining())
			consumed = append(consumed, r)
			return true
		default:
			e.recordTrade(o, r, o.Remaining())
			consumed = append(consumed, r)
			return false
		}
	})
	for _, r := range consumed {
		opp.Remove(r)
	}

	e.settleRemainder(o, own)
}

// settleRemainder applies the time-in-force rules after the walk: GTC, DAY
// and GTD rest whatever is left; IOC and FOK never rest, and if they matched
// nothing at all they are cancelled outright. A partially filled IOC keeps
// its partial-fill status; the dead remainder is simply discarded.
func (e *Engine) settleRemainder(o *Order, own *Book) {
	immediate := o.TIF == IOC || o.TIF == FOK
	if o.Status != StatusFilled && !immediate {
		e.rest(o, own)
		return
	}
	if o.Status == StatusNew && immediate {
		e.log.Infow("order_unfillable", "order_id", o.ID, "tif", o.TIF.String())
		e.cancel(o)
	}
}

// matchFOK implements the fill-or-kill guarantee: either the crossable depth
// covers the whole order and it executes atomically, or nothing happens and
// the order is cancelled. The availability check walks the book without
// mutating anything, so a failed FOK leaves zero trace.
func (e *Engine) matchFOK(o *Order, opp *Book) {
	var avail int64
	opp.Walk(func(r *Order) bool {
		if !crosses(o, r) {
			return false
		}
		avail += r.Remaining()
		return avail < o.Qty
	})
	if avail < o.Qty {
		e.log.Infow("fok_insufficient_depth", "order_id", o.ID, "qty", o.Qty, "available", avail)
		e.cancel(o)
		return
	}

	var consumed []*Order
	opp.Walk(func(r *Order) bool {
		if !crosses(o, r) {
			return false
		}
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
}

// crosses reports whether the incoming order's limit price is marketable
// against a resting order: a buy crosses at or above the ask, a sell at or
// below the bid.
func crosses(incoming, resting *Order) bool {
	if incoming.Side == Buy {
		return incoming.Price >= resting.Price
	}
	return incoming.Price <= resting.Price
}
