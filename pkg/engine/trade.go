package engine

import (
	"fmt"
	"time"
)

// Trade is the immutable record of one completed match. Price is the resting
// side's price; when the resting side carries no price the incoming order's
// price is used instead. Seq is strictly increasing per engine and orders the
// ledger for deterministic replay.
type Trade struct {
	Seq         uint64    `json:"seq"`
	Symbol      string    `json:"symbol"`
	BuyOrderID  string    `json:"buy_order_id"`
	SellOrderID string    `json:"sell_order_id"`
	Price       int64     `json:"price"`
	Qty         int64     `json:"qty"`
	At          time.Time `json:"at"`
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade{seq=%d buy=%s sell=%s px=%d qty=%d}",
		t.Seq, t.BuyOrderID, t.SellOrderID, t.Price, t.Qty)
}
