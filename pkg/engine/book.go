package engine

import "fmt"

// level is one price level: a FIFO queue of resting orders at the same
// price, earliest insertion first.
type level struct {
	price int64
	head  *Order
	tail  *Order
	count int
}

func (l *level) push(o *Order) {
	if l.head == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	l.count++
}

func (l *level) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	l.count--
}

// PriceLevel is the aggregate view of one price level, used by snapshots
// and the inspection API.
type PriceLevel struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
	Count int   `json:"count"`
}

// Book holds the resting orders of one side in price-time priority. Best for
// a buy book is the highest price, for a sell book the lowest; within a price
// level, earliest insertion matches first. Orders are unique by id; inserting
// a duplicate indicates book corruption and fails loudly.
//
// The same structure doubles as the conditional registry for dormant stop
// orders: membership and scan order are what matter there, not priority.
type Book struct {
	side   Side
	levels *levelTree
	byID   map[string]*Order
	count  int
}

// NewBook creates an empty book for one side.
func NewBook(side Side) *Book {
	return &Book{
		side:   side,
		levels: newLevelTree(),
		byID:   make(map[string]*Order),
	}
}

func (b *Book) Side() Side { return b.side }

// Len is the number of resting orders.
func (b *Book) Len() int { return b.count }

// Contains reports whether an order with the given id is resting here.
func (b *Book) Contains(id string) bool {
	_, ok := b.byID[id]
	return ok
}

// Insert adds an order at its price level. The insertion sequence number is
// assigned on first insert and survives moves between containers, so a stop
// order keeps its time priority when it converts and re-enters a side book.
func (b *Book) Insert(o *Order) {
	if _, ok := b.byID[o.ID]; ok {
		panic(fmt.Sprintf("engine: duplicate order id %s", o.ID))
	}
	if o.seq == 0 {
		o.seq = orderSeq.Add(1)
	}
	b.levels.upsert(o.Price).push(o)
	b.byID[o.ID] = o
	b.count++
}

// Remove takes an order out of the book by identity. Returns false if the
// order is not present.
func (b *Book) Remove(o *Order) bool {
	cur, ok := b.byID[o.ID]
	if !ok || cur != o {
		return false
	}
	lvl := b.levels.find(o.Price)
	if lvl == nil {
		panic(fmt.Sprintf("engine: order %s indexed but level %d missing", o.ID, o.Price))
	}
	lvl.unlink(o)
	if lvl.head == nil {
		b.levels.delete(lvl.price)
	}
	delete(b.byID, o.ID)
	b.count--
	return true
}

// Best returns the highest-priority resting order, or nil when empty.
func (b *Book) Best() *Order {
	var best *Order
	b.Walk(func(o *Order) bool {
		best = o
		return false
	})
	return best
}

// BestPrice returns the best resting price, or false when empty.
func (b *Book) BestPrice() (int64, bool) {
	best := b.Best()
	if best == nil {
		return 0, false
	}
	return best.Price, true
}

// Walk visits resting orders best-first until fn returns false. A fresh walk
// starts from the best order each call. fn may remove the order it is
// visiting (the walk resolves its successor first) but must not change a
// resting order's price without removing and reinserting it.
func (b *Book) Walk(fn func(*Order) bool) {
	visit := func(lvl *level) bool {
		for o := lvl.head; o != nil; {
			nxt := o.next
			if !fn(o) {
				return false
			}
			o = nxt
		}
		return true
	}
	if b.side == Buy {
		b.levels.descend(visit)
	} else {
		b.levels.ascend(visit)
	}
}

// Snapshot copies all resting orders in priority order.
func (b *Book) Snapshot() []Order {
	out := make([]Order, 0, b.count)
	b.Walk(func(o *Order) bool {
		out = append(out, *o)
		return true
	})
	return out
}

// Levels aggregates the book into price levels, best-first. Quantities are
// summed from live orders so partial fills are always reflected.
func (b *Book) Levels() []PriceLevel {
	out := make([]PriceLevel, 0, b.levels.len())
	visit := func(lvl *level) bool {
		var qty int64
		for o := lvl.head; o != nil; o = o.next {
			qty += o.Remaining()
		}
		out = append(out, PriceLevel{Price: lvl.price, Qty: qty, Count: lvl.count})
		return true
	}
	if b.side == Buy {
		b.levels.descend(visit)
	} else {
		b.levels.ascend(visit)
	}
	return out
}
