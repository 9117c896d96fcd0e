package journal

import (
	"testing"
	"time"

	"github.com/veldt-exchange/matchcore/pkg/engine"
)

func tradeN(seq uint64) engine.Trade {
	return engine.Trade{
		Seq:         seq,
		Symbol:      "BTC-USD",
		BuyOrderID:  "b1",
		SellOrderID: "s1",
		Price:       int64(100 + seq),
		Qty:         10,
		At:          time.Unix(1700000000, 0).UTC(),
	}
}

func TestJournalAppendReplay(t *testing.T) {
	j, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	for seq := uint64(1); seq <= 5; seq++ {
		if err := j.Append(tradeN(seq)); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}

	var got []engine.Trade
	if err := j.Replay(func(tr engine.Trade) error {
		got = append(got, tr)
		return nil
	}); err != nil {
		t.Fatalf("replay: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("replayed %d trades, want 5", len(got))
	}
	for i, tr := range got {
		want := tradeN(uint64(i + 1))
		if tr.Seq != want.Seq || tr.Price != want.Price || tr.Symbol != want.Symbol {
			t.Errorf("trade %d = %+v, want %+v", i, tr, want)
		}
	}
}

func TestJournalReplayIsSequenceOrdered(t *testing.T) {
	j, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	// Out-of-order appends still replay by sequence: the key encodes it.
	for _, seq := range []uint64{3, 1, 2} {
		if err := j.Append(tradeN(seq)); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}

	var seqs []uint64
	if err := j.Replay(func(tr engine.Trade) error {
		seqs = append(seqs, tr.Seq)
		return nil
	}); err != nil {
		t.Fatalf("replay: %v", err)
	}
	for i, s := range seqs {
		if s != uint64(i+1) {
			t.Fatalf("replay order = %v, want ascending from 1", seqs)
		}
	}
}

func TestJournalLen(t *testing.T) {
	j, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	if n, _ := j.Len(); n != 0 {
		t.Errorf("fresh journal Len = %d, want 0", n)
	}

	j.OnTrade(tradeN(1))
	j.OnTrade(tradeN(2))

	n, err := j.Len()
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
}

func TestJournalAppendsAcrossSessions(t *testing.T) {
	dir := t.TempDir()

	// One engine session against the shared journal: open, resume the
	// sequence, print a single trade, close.
	session := func(id string, price int64) {
		j, err := Open(dir, nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer j.Close()

		lastSeq, err := j.LastSeq()
		if err != nil {
			t.Fatalf("last seq: %v", err)
		}

		e := engine.New("BTC-USD", engine.WithTradeSeq(lastSeq), engine.WithListener(j))
		e.Match(&engine.Order{ID: id + "-s", Side: engine.Sell, Kind: engine.Limit, Price: price, Qty: 1, TIF: engine.GTC})
		e.Match(&engine.Order{ID: id + "-b", Side: engine.Buy, Kind: engine.Limit, Price: price, Qty: 1, TIF: engine.GTC})
	}

	session("one", 100)
	session("two", 200)

	j, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	var seqs []uint64
	var prices []int64
	if err := j.Replay(func(tr engine.Trade) error {
		seqs = append(seqs, tr.Seq)
		prices = append(prices, tr.Price)
		return nil
	}); err != nil {
		t.Fatalf("replay: %v", err)
	}

	if len(seqs) != 2 {
		t.Fatalf("journal holds %d trades after two sessions, want 2 (prices=%v)", len(seqs), prices)
	}
	if seqs[0] != 1 || seqs[1] != 2 {
		t.Errorf("seqs = %v, want [1 2]", seqs)
	}
	if prices[0] != 100 || prices[1] != 200 {
		t.Errorf("prices = %v, want [100 200]", prices)
	}
}

func TestJournalSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.Append(tradeN(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	j2, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()

	n, err := j2.Len()
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if n != 1 {
		t.Errorf("Len after reopen = %d, want 1", n)
	}
}
