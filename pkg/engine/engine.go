package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/veldt-exchange/matchcore/pkg/util"
)

// Engine is the matching core for one instrument session. It exclusively
// owns the two side books, the conditional (stop) registry, and the trade
// ledger. Matching is single-threaded: one mutex guards the whole set,
// because a single incoming order can touch both books, the ledger, and the
// registry transitively.
type Engine struct {
	mu sync.Mutex

	symbol string
	bids   *Book
	asks   *Book
	stops  *Book // conditional registry: dormant Stop / StopLimit orders
	ledger *Ledger

	clock     util.Clock
	log       *zap.SugaredLogger
	listeners []Listener

	// Cascade work queue. Trades appended to the ledger can trigger stop
	// orders; those are re-queued here and matched iteratively, so the call
	// stack does not grow with cascade depth.
	queue    []*Order
	draining bool

	tradeSeq       uint64
	lastTradePrice int64
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c util.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

func WithListener(l Listener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

// WithTradeSeq starts trade sequencing after seq. A session resuming an
// existing journal seeds this with the journal's last sequence, so new trades
// append after the old ones instead of reusing their keys.
func WithTradeSeq(seq uint64) Option {
	return func(e *Engine) { e.tradeSeq = seq }
}

// New creates an engine for one instrument.
func New(symbol string, opts ...Option) *Engine {
	e := &Engine{
		symbol: symbol,
		bids:   NewBook(Buy),
		asks:   NewBook(Sell),
		stops:  NewBook(Sell),
		ledger: NewLedger(),
		clock:  util.RealClock{},
		log:    zap.NewNop().Sugar(),
	}
	e.ledger.notify(e.onTrade)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Symbol() string { return e.symbol }

// Match runs an incoming order through the core: dispatch by kind, walk the
// opposing book, record trades, rest or cancel the remainder, and drain any
// stop-trigger cascade the trades set off. The order, the books, the ledger,
// and the registry are all settled by the time Match returns.
func (e *Engine) Match(o *Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.emitOrder(OrderAccepted, o)
	e.enqueue(o)
}

// enqueue adds an order to the work queue and drains it unless a drain is
// already in progress higher up the stack.
func (e *Engine) enqueue(o *Order) {
	e.queue = append(e.queue, o)
	if e.draining {
		return
	}
	e.draining = true
	defer func() { e.draining = false }()
	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.dispatch(next)
	}
}

// dispatch routes one order to its handler. Unknown kinds are logged and
// ignored without touching any state.
func (e *Engine) dispatch(o *Order) {
	switch o.Kind {
	case Limit:
		e.matchLimit(o)
	case Market:
		e.matchMarket(o)
	case Stop, StopLimit:
		// Dormant until a trade crosses the trigger price.
		e.stops.Insert(o)
		e.emitOrder(OrderRested, o)
	default:
		e.log.Warnw("unknown_order_kind", "order_id", o.ID, "kind", uint8(o.Kind))
	}
}

// onTrade runs once per ledger append. It scans the registry for stop orders
// whose trigger is satisfied by the trade price, converts each exactly once
// (Stop becomes Market, StopLimit becomes Limit), and re-queues it for
// matching. A converted order has left the registry and no longer matches
// the scan, so a cascade terminates once every triggerable order has fired.
func (e *Engine) onTrade(t Trade) {
	var fired []*Order
	e.stops.Walk(func(o *Order) bool {
		if stopTriggered(o, t.Price) {
			fired = append(fired, o)
		}
		return true
	})
	for _, o := range fired {
		e.stops.Remove(o)
		switch o.Kind {
		case Stop:
			o.Kind = Market
		case StopLimit:
			o.Kind = Limit
		}
		e.log.Infow("stop_triggered",
			"order_id", o.ID,
			"side", o.Side.String(),
			"stop_price", o.StopPrice,
			"trade_price", t.Price,
			"now", o.Kind.String(),
		)
		e.emitOrder(StopTriggered, o)
		e.queue = append(e.queue, o)
	}
}

// stopTriggered is the trigger predicate: a sell stop fires when the market
// trades at or below its stop price, a buy stop at or above.
func stopTriggered(o *Order, tradePrice int64) bool {
	if o.Kind != Stop && o.Kind != StopLimit {
		return false
	}
	if o.Side == Sell {
		return tradePrice <= o.StopPrice
	}
	return tradePrice >= o.StopPrice
}

// recordTrade executes one fill step between the incoming (taker) order and
// a resting (maker) order: both sides' filled quantities advance by qty and
// the trade lands in the ledger, which raises the trigger scan. The maker's
// price is recorded; price improvement accrues to the order that was already
// in the book. A maker with no price (a defensive case, market orders never
// rest) falls back to the taker's price.
func (e *Engine) recordTrade(taker, maker *Order, qty int64) {
	if taker.Side == maker.Side {
		panic("engine: cannot trade two orders on the same side")
	}
	buy, sell := taker, maker
	if taker.Side == Sell {
		buy, sell = maker, taker
	}
	price := maker.Price
	if price == 0 {
		price = taker.Price
	}

	taker.fill(qty)
	maker.fill(qty)
	e.lastTradePrice = price

	e.tradeSeq++
	t := Trade{
		Seq:         e.tradeSeq,
		Symbol:      e.symbol,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Price:       price,
		Qty:         qty,
		At:          e.clock.Now(),
	}

	e.emitFill(taker)
	e.emitFill(maker)

	e.ledger.Append(t)
	e.emitTrade(t)
}

// rest places the unfilled remainder of an order into its own side's book.
func (e *Engine) rest(o *Order, own *Book) {
	own.Insert(o)
	e.emitOrder(OrderRested, o)
}

// cancel marks an order cancelled; its remaining quantity is fixed from this
// point on.
func (e *Engine) cancel(o *Order) {
	o.Status = StatusCancelled
	e.emitOrder(OrderCancelled, o)
}

func (e *Engine) emitFill(o *Order) {
	if o.Status == StatusFilled {
		e.emitOrder(OrderFilled, o)
	} else {
		e.emitOrder(OrderPartiallyFilled, o)
	}
}

func (e *Engine) emitOrder(typ OrderEventType, o *Order) {
	if len(e.listeners) == 0 {
		return
	}
	ev := OrderEvent{Type: typ, Order: *o}
	for _, l := range e.listeners {
		l.OnOrder(ev)
	}
}

func (e *Engine) emitTrade(t Trade) {
	for _, l := range e.listeners {
		l.OnTrade(t)
	}
}

// ---- Query surface ----
//
// Snapshots are taken under the engine lock, never mid-walk, so they always
// reflect a consistent point-in-time view.

// Bids copies the resting buy orders, best-first.
func (e *Engine) Bids() []Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bids.Snapshot()
}

// Asks copies the resting sell orders, best-first.
func (e *Engine) Asks() []Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.asks.Snapshot()
}

// Stops copies the dormant conditional orders.
func (e *Engine) Stops() []Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops.Snapshot()
}

// Trades copies the ledger in replay order.
func (e *Engine) Trades() []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Trades()
}

// Depth returns both sides aggregated into price levels, best-first.
func (e *Engine) Depth() (bids, asks []PriceLevel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bids.Levels(), e.asks.Levels()
}
