// Package journal persists the trade ledger to a pebble keyspace. Trades are
// keyed by their engine sequence number, so an ascending scan replays the
// ledger deterministically. Book state is never persisted; the journal is an
// append-only record of executions only.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/veldt-exchange/matchcore/pkg/engine"
)

type Journal struct {
	db  *pebble.DB
	log *zap.SugaredLogger
}

// keys: t:<8-byte big-endian seq>
func tradeKey(seq uint64) []byte {
	key := make([]byte, 2+8)
	copy(key, "t:")
	binary.BigEndian.PutUint64(key[2:], seq)
	return key
}

func Open(path string, log *zap.SugaredLogger) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Journal{db: db, log: log}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Append writes one trade. Appends are synced; a trade reported to callers
// is on disk.
func (j *Journal) Append(t engine.Trade) error {
	val, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trade %d: %w", t.Seq, err)
	}
	if err := j.db.Set(tradeKey(t.Seq), val, pebble.Sync); err != nil {
		return fmt.Errorf("append trade %d: %w", t.Seq, err)
	}
	return nil
}

// Replay walks the journal in sequence order. Stops at the first error fn
// returns.
func (j *Journal) Replay(fn func(engine.Trade) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("t:"),
		UpperBound: []byte("t;"), // ';' is the byte after ':'
	})
	if err != nil {
		return fmt.Errorf("journal iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var t engine.Trade
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return fmt.Errorf("corrupt journal entry: %w", err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return iter.Error()
}

// LastSeq returns the highest journaled trade sequence, or 0 when empty.
// Seed the engine with it on startup so a new session continues the keyspace
// instead of overwriting it.
func (j *Journal) LastSeq() (uint64, error) {
	var last uint64
	err := j.Replay(func(t engine.Trade) error {
		last = t.Seq
		return nil
	})
	return last, err
}

// Len counts journaled trades.
func (j *Journal) Len() (int, error) {
	n := 0
	err := j.Replay(func(engine.Trade) error {
		n++
		return nil
	})
	return n, err
}

// OnTrade makes the journal an engine listener: every executed trade is
// appended as it happens. Failures are logged, never propagated into the
// matching path.
func (j *Journal) OnTrade(t engine.Trade) {
	if err := j.Append(t); err != nil {
		j.log.Errorw("journal_append_failed", "seq", t.Seq, "err", err)
	}
}

func (j *Journal) OnOrder(engine.OrderEvent) {}

var _ engine.Listener = (*Journal)(nil)
