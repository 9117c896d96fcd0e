package engine

// Ledger is the append-only trade record for one instrument session. Trades
// arrive in strictly increasing Seq order (time, then price, then quantity
// never reorder within the single-threaded core), so the slice itself is the
// replay order.
//
// The ledger carries a side-channel notification back to the engine: every
// append raises the stop-trigger scan. This is how one trade can cascade
// into further matching.
type Ledger struct {
	trades   []Trade
	onAppend func(Trade)
}

func NewLedger() *Ledger { return &Ledger{} }

// notify registers the post-append hook. The engine sets this once at
// construction; it is not an ownership relation.
func (l *Ledger) notify(fn func(Trade)) { l.onAppend = fn }

// Append records a trade and raises the trigger scan.
func (l *Ledger) Append(t Trade) {
	l.trades = append(l.trades, t)
	if l.onAppend != nil {
		l.onAppend(t)
	}
}

func (l *Ledger) Len() int { return len(l.trades) }

// Last returns the most recent trade.
func (l *Ledger) Last() (Trade, bool) {
	if len(l.trades) == 0 {
		return Trade{}, false
	}
	return l.trades[len(l.trades)-1], true
}

// Trades copies the full ledger in replay order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
