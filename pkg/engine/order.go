package engine

import (
	"fmt"
	"sync/atomic"
)

// Side of an order. Values mirror the sign of the position delta.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int8(s))
}

// Opposite returns the counter side.
func (s Side) Opposite() Side { return -s }

// Kind is the order type. Stop and StopLimit orders are dormant until a trade
// at their trigger price converts them to Market or Limit respectively.
type Kind uint8

const (
	Limit Kind = iota
	Market
	Stop
	StopLimit
)

func (k Kind) String() string {
	switch k {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case Stop:
		return "STOP"
	case StopLimit:
		return "STOP_LIMIT"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Status is the order lifecycle state. StatusFilled and StatusCancelled are terminal:
// once reached, quantity fields never change again.
type Status uint8

const (
	StatusNew Status = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPartiallyFilled:
		return "PARTIALLY_FULFILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// TimeInForce controls what happens to the unfilled remainder of a limit
// order. Day and GTD rest exactly like GTC; time-based expiry is not part of
// the matching core.
type TimeInForce uint8

const (
	GTC TimeInForce = iota
	IOC
	FOK
	Day
	GTD
)

func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	case Day:
		return "DAY"
	case GTD:
		return "GTD"
	}
	return fmt.Sprintf("TimeInForce(%d)", uint8(t))
}

// orderSeq hands out insertion tie-breakers. Strictly increasing, never
// reused, so two orders at the same price always have a total order.
var orderSeq atomic.Uint64

// Order is the unit the core operates on. Prices are integer ticks, sizes
// integer lots. Handlers mutate FilledQty and Status in place while the
// order rests in exactly one container (side book or stop registry).
type Order struct {
	ID         string
	CustomerID string
	Symbol     string
	Side       Side
	Kind       Kind
	Price      int64 // limit price in ticks; zero for Market
	StopPrice  int64 // trigger price for Stop / StopLimit
	Qty        int64
	FilledQty  int64
	Status     Status
	TIF        TimeInForce

	seq        uint64 // insertion tie-breaker, assigned on first book insert
	next, prev *Order // intrusive FIFO links within a price level
}

// Remaining is the quantity still open for matching.
func (o *Order) Remaining() int64 { return o.Qty - o.FilledQty }

// Terminal reports whether the order can never fill again.
func (o *Order) Terminal() bool { return o.Status == StatusFilled || o.Status == StatusCancelled }

// fill applies a matched quantity. Over-filling or filling a terminal order
// indicates book corruption and fails loudly.
func (o *Order) fill(qty int64) {
	if o.Terminal() {
		panic(fmt.Sprintf("engine: fill on %s order %s", o.Status, o.ID))
	}
	if qty <= 0 || qty > o.Remaining() {
		panic(fmt.Sprintf("engine: fill qty %d out of range for order %s (remaining %d)", qty, o.ID, o.Remaining()))
	}
	o.FilledQty += qty
	if o.FilledQty == o.Qty {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%s side=%s kind=%s px=%d stop=%d qty=%d filled=%d status=%s tif=%s}",
		o.ID, o.Side, o.Kind, o.Price, o.StopPrice, o.Qty, o.FilledQty, o.Status, o.TIF)
}
