package engine

import "go.uber.org/zap"

// OrderEventType labels the lifecycle notifications the core emits.
type OrderEventType uint8

const (
	OrderAccepted OrderEventType = iota
	OrderRested
	OrderCancelled
	OrderFilled
	OrderPartiallyFilled
	StopTriggered
)

func (t OrderEventType) String() string {
	switch t {
	case OrderAccepted:
		return "order_accepted"
	case OrderRested:
		return "order_rested"
	case OrderCancelled:
		return "order_cancelled"
	case OrderFilled:
		return "order_filled"
	case OrderPartiallyFilled:
		return "order_partially_filled"
	case StopTriggered:
		return "stop_triggered"
	}
	return "order_event_unknown"
}

// OrderEvent is a point-in-time copy of an order at a lifecycle transition.
type OrderEvent struct {
	Type  OrderEventType `json:"type"`
	Order Order          `json:"order"`
}

// Listener receives engine notifications. Purely informational: the core
// behaves identically with zero listeners. Callbacks run synchronously on
// the matching goroutine and must not block or call back into the engine.
type Listener interface {
	OnOrder(OrderEvent)
	OnTrade(Trade)
}

// NopListener discards all notifications.
type NopListener struct{}

func (NopListener) OnOrder(OrderEvent) {}
func (NopListener) OnTrade(Trade)      {}

// LogListener writes every notification as a structured log line.
type LogListener struct {
	log *zap.SugaredLogger
}

func NewLogListener(log *zap.SugaredLogger) *LogListener {
	return &LogListener{log: log}
}

func (l *LogListener) OnOrder(ev OrderEvent) {
	l.log.Infow(ev.Type.String(),
		"order_id", ev.Order.ID,
		"side", ev.Order.Side.String(),
		"kind", ev.Order.Kind.String(),
		"price", ev.Order.Price,
		"stop_price", ev.Order.StopPrice,
		"qty", ev.Order.Qty,
		"filled", ev.Order.FilledQty,
		"status", ev.Order.Status.String(),
		"tif", ev.Order.TIF.String(),
	)
}

func (l *LogListener) OnTrade(t Trade) {
	l.log.Infow("trade_executed",
		"seq", t.Seq,
		"symbol", t.Symbol,
		"buy_order_id", t.BuyOrderID,
		"sell_order_id", t.SellOrderID,
		"price", t.Price,
		"qty", t.Qty,
	)
}
