package engine

import "testing"

func TestLedgerAppendAndReplayOrder(t *testing.T) {
	l := NewLedger()

	if _, ok := l.Last(); ok {
		t.Error("empty ledger reported a last trade")
	}

	for i := 1; i <= 3; i++ {
		l.Append(Trade{Seq: uint64(i), Price: int64(100 + i), Qty: 1})
	}

	if l.Len() != 3 {
		t.Errorf("Len = %d, want 3", l.Len())
	}
	last, ok := l.Last()
	if !ok || last.Seq != 3 {
		t.Errorf("Last = %+v ok=%v, want seq 3", last, ok)
	}

	trades := l.Trades()
	for i, tr := range trades {
		if tr.Seq != uint64(i+1) {
			t.Errorf("trade %d seq = %d, want %d", i, tr.Seq, i+1)
		}
	}

	// The returned slice is a copy.
	trades[0].Seq = 999
	if got, _ := l.Last(); got.Seq != 3 {
		t.Error("mutating the copy changed the ledger")
	}
}

func TestLedgerNotifiesOnAppend(t *testing.T) {
	l := NewLedger()
	var seen []uint64
	l.notify(func(tr Trade) { seen = append(seen, tr.Seq) })

	l.Append(Trade{Seq: 1})
	l.Append(Trade{Seq: 2})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("notifications = %v, want [1 2]", seen)
	}
}
