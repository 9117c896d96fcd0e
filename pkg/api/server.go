package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/veldt-exchange/matchcore/pkg/engine"
)

// Server exposes a read-only inspection surface over the engine: book depth,
// resting orders, the trade ledger, the stop registry, and a WebSocket event
// stream. Orders never enter the engine through this server.
type Server struct {
	eng    *engine.Engine
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

func NewServer(eng *engine.Engine, log *zap.SugaredLogger) *Server {
	return NewServerWithHub(eng, nil, log)
}

// NewServerWithHub reuses a hub built elsewhere, typically one already
// registered as an engine listener before the engine was constructed.
func NewServerWithHub(eng *engine.Engine, hub *Hub, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if hub == nil {
		hub = NewHub(log)
	}
	s := &Server{
		eng:    eng,
		router: mux.NewRouter(),
		hub:    hub,
		log:    log,
	}
	s.setupRoutes()
	return s
}

// Hub returns the WebSocket hub; register it as an engine listener to stream
// events to connected clients.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/book", s.handleGetBook).Methods("GET")
	api.HandleFunc("/book/orders", s.handleGetBookOrders).Methods("GET")
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/stops", s.handleGetStops).Methods("GET")
	api.HandleFunc("/marketdata", s.handleGetMarketData).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the CORS-wrapped root handler.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start runs the server; it blocks until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bids, asks := s.eng.Depth()
	respondJSON(w, BookSnapshot{
		Symbol:    s.eng.Symbol(),
		Bids:      toLevels(bids),
		Asks:      toLevels(asks),
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *Server) handleGetBookOrders(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Bids []OrderInfo `json:"bids"`
		Asks []OrderInfo `json:"asks"`
	}{
		Bids: toOrders(s.eng.Bids()),
		Asks: toOrders(s.eng.Asks()),
	}
	respondJSON(w, resp)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.eng.Trades()

	// Optional ?limit=N keeps only the most recent N trades.
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		if n < len(trades) {
			trades = trades[len(trades)-n:]
		}
	}

	out := make([]TradeInfo, len(trades))
	for i, t := range trades {
		out[i] = toTrade(t)
	}
	respondJSON(w, out)
}

func (s *Server) handleGetStops(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, toOrders(s.eng.Stops()))
}

func (s *Server) handleGetMarketData(w http.ResponseWriter, r *http.Request) {
	md := s.eng.MarketData()
	respondJSON(w, MarketDataInfo{
		Symbol:         md.Symbol,
		LastTradePrice: md.LastTradePrice,
		BestBid:        md.BestBid,
		BestAsk:        md.BestAsk,
		MidPrice:       md.MidPrice,
		BidOrders:      md.BidOrders,
		AskOrders:      md.AskOrders,
		StopOrders:     md.StopOrders,
		TradeCount:     md.TradeCount,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

func toLevels(in []engine.PriceLevel) []PriceLevel {
	out := make([]PriceLevel, len(in))
	for i, l := range in {
		out[i] = PriceLevel{Price: l.Price, Qty: l.Qty, Count: l.Count}
	}
	return out
}

func toOrders(in []engine.Order) []OrderInfo {
	out := make([]OrderInfo, len(in))
	for i, o := range in {
		out[i] = toOrder(o)
	}
	return out
}

func toOrder(o engine.Order) OrderInfo {
	return OrderInfo{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Symbol:     o.Symbol,
		Side:       o.Side.String(),
		Kind:       o.Kind.String(),
		Price:      o.Price,
		StopPrice:  o.StopPrice,
		Qty:        o.Qty,
		Filled:     o.FilledQty,
		Remaining:  o.Remaining(),
		Status:     o.Status.String(),
		TIF:        o.TIF.String(),
	}
}

func toTrade(t engine.Trade) TradeInfo {
	return TradeInfo{
		Seq:         t.Seq,
		Symbol:      t.Symbol,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price,
		Qty:         t.Qty,
		Timestamp:   t.At.UnixMilli(),
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
