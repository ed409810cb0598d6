package server

import "net/http"

// registerRoutes wires all REST endpoints onto the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/accounts", s.handleAccounts)
	mux.HandleFunc("/api/balances", s.handleBalances)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/trades", s.handleTrades)
	mux.HandleFunc("/api/prices", s.handlePrices)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/chart", s.handleChart)
	mux.HandleFunc("/api/chart.png", s.handleChartPNG)
	mux.HandleFunc("/api/cache/clear", s.handleCacheClear)
}
