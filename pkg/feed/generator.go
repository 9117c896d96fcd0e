// Package feed generates synthetic order flow for load testing the matching
// core. The mix of sides, kinds and time-in-force values is configurable per
// scenario; a fixed seed makes a run reproducible.
package feed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/veldt-exchange/matchcore/params"
	"github.com/veldt-exchange/matchcore/pkg/engine"
)

type Generator struct {
	symbol    string
	cfg       params.Feed
	customers []string
	rng       *rand.Rand
	generated int
}

func NewGenerator(symbol string, cfg params.Feed) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	n := cfg.Customers
	if n <= 0 {
		n = 1
	}
	customers := make([]string, n)
	for i := range customers {
		customers[i] = fmt.Sprintf("cust-%s", uuid.NewString()[:8])
	}
	return &Generator{
		symbol:    symbol,
		cfg:       cfg,
		customers: customers,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Next produces one random order. Market orders carry no limit price; stop
// orders get a trigger a little away from their limit price so realistic
// trade streams actually fire them.
func (g *Generator) Next() *engine.Order {
	cfg := g.cfg
	price := cfg.MinPrice + g.rng.Int63n(cfg.MaxPrice-cfg.MinPrice+1)
	qty := cfg.MinQty + g.rng.Int63n(cfg.MaxQty-cfg.MinQty+1)

	side := engine.Sell
	if g.rng.Float64() < cfg.BuyBias {
		side = engine.Buy
	}

	o := &engine.Order{
		ID:         uuid.NewString(),
		CustomerID: g.customers[g.rng.Intn(len(g.customers))],
		Symbol:     g.symbol,
		Side:       side,
		Qty:        qty,
		TIF:        engine.GTC,
	}

	switch {
	case g.rng.Float64() < cfg.StopRatio:
		o.StopPrice = price
		if g.rng.Intn(2) == 0 {
			o.Kind = engine.Stop
		} else {
			o.Kind = engine.StopLimit
			// Limit a touch beyond the trigger, direction depends on side.
			if side == engine.Sell {
				o.Price = price - g.rng.Int63n(5) - 1
			} else {
				o.Price = price + g.rng.Int63n(5) + 1
			}
		}
	case g.rng.Float64() < cfg.LimitBias:
		o.Kind = engine.Limit
		o.Price = price
		r := g.rng.Float64()
		switch {
		case r < cfg.FOKRatio:
			o.TIF = engine.FOK
		case r < cfg.FOKRatio+cfg.IOCRatio:
			o.TIF = engine.IOC
		}
	default:
		o.Kind = engine.Market
	}

	g.generated++
	return o
}

// Generated is the number of orders produced so far.
func (g *Generator) Generated() int { return g.generated }
