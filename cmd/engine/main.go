package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veldt-exchange/matchcore/params"
	"github.com/veldt-exchange/matchcore/pkg/api"
	"github.com/veldt-exchange/matchcore/pkg/engine"
	"github.com/veldt-exchange/matchcore/pkg/feed"
	"github.com/veldt-exchange/matchcore/pkg/journal"
	"github.com/veldt-exchange/matchcore/pkg/sink"
	"github.com/veldt-exchange/matchcore/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	// Setup logging (write to both console and file)
	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Trade journal ----
	jnl, err := journal.Open(cfg.JournalPath, sugar)
	if err != nil {
		sugar.Fatalw("journal_open_failed", "path", cfg.JournalPath, "err", err)
	}
	defer jnl.Close()

	lastSeq, err := jnl.LastSeq()
	if err != nil {
		sugar.Fatalw("journal_replay_failed", "err", err)
	}
	sugar.Infow("journal_opened", "path", cfg.JournalPath, "last_seq", lastSeq)

	// ---- WebSocket hub ----
	hub := api.NewHub(sugar)

	// ---- Matching engine ----
	// Trade sequencing resumes after the journal so appends never collide
	// with a previous session's keys.
	opts := []engine.Option{
		engine.WithLogger(sugar),
		engine.WithTradeSeq(lastSeq),
		engine.WithListener(jnl),
		engine.WithListener(hub),
	}

	var kafkaSink *sink.KafkaPublisher
	if cfg.Kafka.Enabled {
		kafkaSink = sink.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, sugar)
		defer kafkaSink.Close()
		opts = append(opts, engine.WithListener(kafkaSink))
		sugar.Infow("kafka_sink_enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	if os.Getenv("VERBOSE") == "true" {
		opts = append(opts, engine.WithListener(engine.NewLogListener(sugar)))
		sugar.Info("verbose event logging enabled")
	}

	eng := engine.New(cfg.Symbol, opts...)
	sugar.Infow("engine_started", "symbol", cfg.Symbol)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API Server ----
	apiServer := api.NewServerWithHub(eng, hub, sugar)
	go func() {
		sugar.Infow("api_server_starting", "addr", cfg.APIAddr)
		if err := apiServer.Start(cfg.APIAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	// ---- Order feeder (optional) ----
	// Enable with FEED_ENABLED=true; tune via FEED_* vars or FEED_SCENARIO file.
	if cfg.Feed.Enabled {
		sugar.Infow("feeder_enabled",
			"orders", cfg.Feed.Orders,
			"rate", cfg.Feed.Rate,
			"price_range", []int64{cfg.Feed.MinPrice, cfg.Feed.MaxPrice})
		cancelFeeder := feed.Start(ctx, eng, cfg.Feed, sugar)
		defer cancelFeeder()
	} else {
		sugar.Info("feeder_disabled - engine idle until orders arrive")
	}

	// Progress logging loop
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var lastTrades int
	for {
		select {
		case <-ctx.Done():
			md := eng.MarketData()
			sugar.Infow("engine_stopping",
				"trades", md.TradeCount,
				"bids", md.BidOrders,
				"asks", md.AskOrders,
				"stops", md.StopOrders,
				"last_price", md.LastTradePrice)
			return
		case <-ticker.C:
			md := eng.MarketData()
			if md.TradeCount == lastTrades {
				continue
			}
			sugar.Infow("engine_progress",
				"trades", md.TradeCount,
				"trades_since_last_log", md.TradeCount-lastTrades,
				"best_bid", md.BestBid,
				"best_ask", md.BestAsk,
				"last_price", md.LastTradePrice)
			lastTrades = md.TradeCount
		}
	}
}
