package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/veldt-exchange/matchcore/params"
	"github.com/veldt-exchange/matchcore/pkg/engine"
)

// Start feeds generated orders into the engine from a background goroutine
// at roughly cfg.Rate orders per second, in 100ms batches. It stops after
// cfg.Orders orders (if positive) or when the context is cancelled; the
// returned cancel func stops it early.
func Start(ctx context.Context, eng *engine.Engine, cfg params.Feed, log *zap.SugaredLogger) context.CancelFunc {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	gen := NewGenerator(eng.Symbol(), cfg)

	const interval = 100 * time.Millisecond
	batch := cfg.Rate / 10
	if batch < 1 {
		batch = 1
	}

	feedCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		start := time.Now()
		log.Infow("feeder_started", "rate", cfg.Rate, "batch", batch, "target_orders", cfg.Orders)

		for {
			select {
			case <-feedCtx.Done():
				elapsed := time.Since(start)
				log.Infow("feeder_stopped",
					"orders", gen.Generated(),
					"elapsed", elapsed.Round(time.Millisecond).String(),
					"orders_per_sec", float64(gen.Generated())/elapsed.Seconds())
				return
			case <-ticker.C:
				for i := 0; i < batch; i++ {
					if cfg.Orders > 0 && gen.Generated() >= cfg.Orders {
						cancel()
						break
					}
					eng.Match(gen.Next())
				}
			}
		}
	}()
	return cancel
}
