package params

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// Feed controls the synthetic order-flow generator. Probabilities are in
// [0, 1]; prices are integer ticks, quantities integer lots.
type Feed struct {
	Enabled   bool    `yaml:"enabled"`
	Orders    int     `yaml:"orders"`    // total orders to generate, 0 = unbounded
	Rate      int     `yaml:"rate"`      // orders per second
	Seed      int64   `yaml:"seed"`      // 0 = time-seeded
	Customers int     `yaml:"customers"` // simulated customer accounts
	MinPrice  int64   `yaml:"min_price"`
	MaxPrice  int64   `yaml:"max_price"`
	MinQty    int64   `yaml:"min_qty"`
	MaxQty    int64   `yaml:"max_qty"`
	BuyBias   float64 `yaml:"buy_bias"`   // probability an order is a buy
	LimitBias float64 `yaml:"limit_bias"` // probability an order is a limit
	StopRatio float64 `yaml:"stop_ratio"` // probability an order is conditional
	IOCRatio  float64 `yaml:"ioc_ratio"`  // probability a limit order is IOC
	FOKRatio  float64 `yaml:"fok_ratio"`  // probability a limit order is FOK
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type Config struct {
	Symbol      string
	LogFile     string
	APIAddr     string
	JournalPath string
	Kafka       Kafka
	Feed        Feed
}

func Default() Config {
	return Config{
		Symbol:      "BTC-USD",
		LogFile:     "data/engine.log",
		APIAddr:     ":8080",
		JournalPath: "data/journal",
		Kafka: Kafka{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "trades",
		},
		Feed: DefaultFeed(),
	}
}

// DefaultFeed mirrors the biases of the reference load profile: mostly
// limit orders, slightly more buys than sells, a thin tail of stops.
func DefaultFeed() Feed {
	return Feed{
		Enabled:   true,
		Orders:    100_000,
		Rate:      10_000,
		Customers: 50,
		MinPrice:  7_500,
		MaxPrice:  10_700,
		MinQty:    100,
		MaxQty:    500,
		BuyBias:   0.55,
		LimitBias: 0.70,
		StopRatio: 0.02,
		IOCRatio:  0.05,
		FOKRatio:  0.02,
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.APIAddr = v
	}
	if v := os.Getenv("JOURNAL_PATH"); v != "" {
		cfg.JournalPath = v
	}
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.Kafka.Enabled = v == "true"
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("FEED_ENABLED"); v != "" {
		cfg.Feed.Enabled = v == "true"
	}
	if v := os.Getenv("FEED_ORDERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feed.Orders = n
		}
	}
	if v := os.Getenv("FEED_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feed.Rate = n
		}
	}
	if v := os.Getenv("FEED_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Feed.Seed = n
		}
	}

	// Scenario file overrides the env-derived feed settings wholesale. The
	// operator asked for it explicitly, so a broken file is worth a warning
	// even though the run continues on env-derived settings.
	if path := os.Getenv("FEED_SCENARIO"); path != "" {
		feed, err := LoadFeedFile(path)
		if err != nil {
			log.Printf("feed scenario %s ignored: %v", path, err)
		} else {
			cfg.Feed = feed
		}
	}

	return cfg
}

// LoadFeedFile reads a YAML feed scenario.
func LoadFeedFile(path string) (Feed, error) {
	feed := DefaultFeed()
	data, err := os.ReadFile(path)
	if err != nil {
		return feed, fmt.Errorf("read feed scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &feed); err != nil {
		return feed, fmt.Errorf("parse feed scenario: %w", err)
	}
	if err := feed.Validate(); err != nil {
		return feed, err
	}
	return feed, nil
}

// Validate rejects scenarios the generator cannot honor.
func (f Feed) Validate() error {
	if f.MinPrice <= 0 || f.MaxPrice < f.MinPrice {
		return fmt.Errorf("feed scenario: bad price range [%d, %d]", f.MinPrice, f.MaxPrice)
	}
	if f.MinQty <= 0 || f.MaxQty < f.MinQty {
		return fmt.Errorf("feed scenario: bad qty range [%d, %d]", f.MinQty, f.MaxQty)
	}
	for _, p := range []float64{f.BuyBias, f.LimitBias, f.StopRatio, f.IOCRatio, f.FOKRatio} {
		if p < 0 || p > 1 {
			return fmt.Errorf("feed scenario: probability %v out of [0, 1]", p)
		}
	}
	return nil
}
