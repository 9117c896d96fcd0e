package engine

import (
	"fmt"
	"testing"
)

// recorder captures engine notifications for assertions.
type recorder struct {
	orders []OrderEvent
	trades []Trade
}

func (r *recorder) OnOrder(ev OrderEvent) { r.orders = append(r.orders, ev) }
func (r *recorder) OnTrade(t Trade)       { r.trades = append(r.trades, t) }

func TestStopRestsDormant(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("stop1", Sell, Stop, 0, 10, GTC).withStop(95))

	if n := len(e.Stops()); n != 1 {
		t.Fatalf("registry has %d orders, want 1", n)
	}
	if n := len(e.Trades()); n != 0 {
		t.Errorf("got %d trades from a dormant stop, want 0", n)
	}
	if len(e.Bids()) != 0 || len(e.Asks()) != 0 {
		t.Error("dormant stop leaked into a side book")
	}
}

func (o *Order) withStop(px int64) *Order {
	o.StopPrice = px
	return o
}

func TestStopTriggerPredicate(t *testing.T) {
	tests := []struct {
		name       string
		side       Side
		stopPrice  int64
		tradePrice int64
		want       bool
	}{
		{"sell fires at stop", Sell, 95, 95, true},
		{"sell fires below stop", Sell, 95, 90, true},
		{"sell holds above stop", Sell, 95, 96, false},
		{"buy fires at stop", Buy, 105, 105, true},
		{"buy fires above stop", Buy, 105, 110, true},
		{"buy holds below stop", Buy, 105, 104, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := order("s", tt.side, Stop, 0, 10, GTC).withStop(tt.stopPrice)
			if got := stopTriggered(o, tt.tradePrice); got != tt.want {
				t.Errorf("stopTriggered = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSellStopFiresAndMatchesInSameCall(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("b1", Buy, Limit, 99, 10, GTC))
	e.Match(order("b2", Buy, Limit, 98, 10, GTC))
	e.Match(order("stop1", Sell, Stop, 0, 10, GTC).withStop(99))

	// This sell trades at 99, which satisfies the trigger; the stop converts
	// to a market sell and takes the next bid before Match returns.
	e.Match(order("s1", Sell, Limit, 99, 10, GTC))

	trades := e.Trades()
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2 (direct + triggered)", len(trades))
	}
	if trades[0].Price != 99 || trades[0].SellOrderID != "s1" {
		t.Errorf("trade 0 = %+v, want s1 at 99", trades[0])
	}
	if trades[1].Price != 98 || trades[1].SellOrderID != "stop1" {
		t.Errorf("trade 1 = %+v, want stop1 at 98", trades[1])
	}
	if n := len(e.Stops()); n != 0 {
		t.Errorf("registry has %d orders after trigger, want 0", n)
	}
}

func TestBuyStopFires(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("s1", Sell, Limit, 100, 10, GTC))
	stop := order("stop1", Buy, Stop, 0, 10, GTC).withStop(100)
	e.Match(stop)

	// Trade at 100 fires the buy stop; the book is then empty, so the
	// converted market order expires.
	e.Match(order("b1", Buy, Limit, 100, 10, GTC))

	if n := len(e.Trades()); n != 1 {
		t.Fatalf("got %d trades, want 1", n)
	}
	if stop.Kind != Market {
		t.Errorf("kind = %s after trigger, want %s", stop.Kind, Market)
	}
	if stop.Status != StatusCancelled {
		t.Errorf("status = %s, want %s (no liquidity left)", stop.Status, StatusCancelled)
	}
	if n := len(e.Stops()); n != 0 {
		t.Errorf("registry has %d orders, want 0", n)
	}
}

func TestStopLimitConvertsToLimit(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("b1", Buy, Limit, 95, 10, GTC))
	e.Match(order("b2", Buy, Limit, 94, 5, GTC))
	sl := order("sl1", Sell, StopLimit, 94, 8, GTC).withStop(95)
	e.Match(sl)

	// Trade at 95 fires the stop-limit; it re-enters as a plain limit sell
	// at 94, takes b2, and rests its remainder.
	e.Match(order("s1", Sell, Limit, 95, 10, GTC))

	trades := e.Trades()
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[1].SellOrderID != "sl1" || trades[1].Price != 94 || trades[1].Qty != 5 {
		t.Errorf("triggered trade = %+v, want sl1 5@94", trades[1])
	}

	if sl.Kind != Limit {
		t.Errorf("kind = %s, want %s", sl.Kind, Limit)
	}
	asks := e.Asks()
	if len(asks) != 1 || asks[0].ID != "sl1" || asks[0].Remaining() != 3 {
		t.Errorf("asks = %v, want sl1 with remaining 3", asks)
	}
}

func TestStopCascadeChains(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("b1", Buy, Limit, 100, 10, GTC))
	e.Match(order("b2", Buy, Limit, 90, 10, GTC))
	e.Match(order("b3", Buy, Limit, 80, 10, GTC))
	e.Match(order("stopA", Sell, Stop, 0, 10, GTC).withStop(95))
	e.Match(order("stopB", Sell, Stop, 0, 10, GTC).withStop(85))

	// The incoming sell prints 100 then 90; 90 fires stopA, whose market
	// sell prints 80, which fires stopB in turn.
	e.Match(order("s1", Sell, Limit, 90, 20, GTC))

	trades := e.Trades()
	if len(trades) != 3 {
		t.Fatalf("got %d trades, want 3", len(trades))
	}
	wantPrices := []int64{100, 90, 80}
	for i, px := range wantPrices {
		if trades[i].Price != px {
			t.Errorf("trade %d price = %d, want %d", i, trades[i].Price, px)
		}
	}
	if trades[2].SellOrderID != "stopA" {
		t.Errorf("trade 2 sell = %s, want stopA", trades[2].SellOrderID)
	}

	// stopB fired into an empty bid book and expired.
	if n := len(e.Stops()); n != 0 {
		t.Errorf("registry has %d orders, want 0", n)
	}
	if len(e.Bids()) != 0 {
		t.Errorf("bid book not exhausted: %v", e.Bids())
	}
}

func TestStopFiresAtMostOnce(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("b1", Buy, Limit, 95, 5, GTC))
	stop := order("stop1", Sell, Stop, 0, 20, GTC).withStop(95)
	e.Match(stop)

	e.Match(order("s1", Sell, Limit, 95, 5, GTC))

	// The trigger fired, filled 5 against nothing more, and the remainder
	// was dropped. Later trades at the trigger price must not revive it.
	firstCount := len(e.Trades())
	e.Match(order("b2", Buy, Limit, 95, 5, GTC))
	e.Match(order("s2", Sell, Limit, 95, 5, GTC))

	if got := len(e.Trades()); got != firstCount+1 {
		t.Fatalf("got %d trades after second print, want %d", got, firstCount+1)
	}
	for _, tr := range e.Trades()[firstCount:] {
		if tr.SellOrderID == "stop1" || tr.BuyOrderID == "stop1" {
			t.Error("converted stop traded again after leaving the registry")
		}
	}
}

func TestUnknownKindLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t)
	e.Match(order("b1", Buy, Limit, 100, 10, GTC))

	bogus := order("x", Sell, Kind(9), 100, 10, GTC)
	e.Match(bogus)

	if n := len(e.Trades()); n != 0 {
		t.Errorf("got %d trades from an unknown kind, want 0", n)
	}
	if len(e.Bids()) != 1 || len(e.Asks()) != 0 || len(e.Stops()) != 0 {
		t.Error("unknown kind changed book state")
	}
	if bogus.Status != StatusNew {
		t.Errorf("status = %s, want %s", bogus.Status, StatusNew)
	}
}

func TestRecordTradeSameSidePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on same-side trade")
		}
	}()
	e := newTestEngine(t)
	e.recordTrade(
		order("a", Buy, Limit, 100, 10, GTC),
		order("b", Buy, Limit, 100, 10, GTC),
		10,
	)
}

func TestFillTerminalOrderPanics(t *testing.T) {
	o := order("a", Buy, Limit, 100, 10, GTC)
	o.fill(10)
	if o.Status != StatusFilled {
		t.Fatalf("status = %s, want %s", o.Status, StatusFilled)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on fill of a terminal order")
		}
	}()
	o.fill(1)
}

func TestFillBeyondRemainingPanics(t *testing.T) {
	o := order("a", Buy, Limit, 100, 10, GTC)
	o.fill(4)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on over-fill")
		}
	}()
	o.fill(7)
}

func TestListenerSeesLifecycle(t *testing.T) {
	rec := &recorder{}
	e := New("BTC-USD", WithListener(rec))

	e.Match(order("s1", Sell, Limit, 100, 10, GTC))
	e.Match(order("b1", Buy, Limit, 100, 10, GTC))

	if len(rec.trades) != 1 {
		t.Fatalf("listener saw %d trades, want 1", len(rec.trades))
	}

	var types []OrderEventType
	for _, ev := range rec.orders {
		types = append(types, ev.Type)
	}
	want := []OrderEventType{
		OrderAccepted, OrderRested, // s1
		OrderAccepted, OrderFilled, OrderFilled, // b1 taker fill, s1 maker fill
	}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}

	// Events carry copies: the resting order's later state is not reflected.
	if rec.orders[1].Order.Status != StatusNew {
		t.Errorf("rested event status = %s, want %s", rec.orders[1].Order.Status, StatusNew)
	}
}

func TestMarketDataSnapshot(t *testing.T) {
	e := newTestEngine(t)

	e.Match(order("b1", Buy, Limit, 98, 10, GTC))
	e.Match(order("s1", Sell, Limit, 102, 10, GTC))
	e.Match(order("s2", Sell, Limit, 100, 5, GTC))
	e.Match(order("b2", Buy, Limit, 100, 5, GTC)) // prints at 100

	md := e.MarketData()
	if md.Symbol != "BTC-USD" {
		t.Errorf("symbol = %s, want BTC-USD", md.Symbol)
	}
	if md.LastTradePrice != 100 {
		t.Errorf("last price = %d, want 100", md.LastTradePrice)
	}
	if md.BestBid != 98 || md.BestAsk != 102 {
		t.Errorf("top of book = %d / %d, want 98 / 102", md.BestBid, md.BestAsk)
	}
	if md.MidPrice != 100 {
		t.Errorf("mid = %d, want 100", md.MidPrice)
	}
	if md.TradeCount != 1 {
		t.Errorf("trade count = %d, want 1", md.TradeCount)
	}
}

// BenchmarkEngineMatch measures matching throughput against a book with
// realistic depth, alternating crossing IOC orders.
func BenchmarkEngineMatch(b *testing.B) {
	e := New("BTC-USD")

	for i := 0; i < 100; i++ {
		e.Match(order(fmt.Sprintf("bid-%d", i), Buy, Limit, int64(1000-i), 1000000, GTC))
		e.Match(order(fmt.Sprintf("ask-%d", i), Sell, Limit, int64(1100+i), 1000000, GTC))
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		side := Buy
		price := int64(1100)
		if i%2 == 0 {
			side = Sell
			price = 1000
		}
		e.Match(order(fmt.Sprintf("bench-%d", i), side, Limit, price, 10, IOC))
	}
}
