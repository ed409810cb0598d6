package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
)

// handleHealth returns service health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion returns build version information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// handleAccounts lists all configured accounts with their last balance
// snapshots.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": s.app.Registry.ListAll(),
	})
}

func fetchOptionsFrom(r *http.Request) interfaces.FetchOptions {
	opts := interfaces.FetchOptions{
		SkipCache: QueryBool(r, "refresh"),
		Symbol:    r.URL.Query().Get("symbol"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	return opts
}

// handleBalances aggregates balances across all enabled accounts.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	result := s.app.Portfolio.FetchBalances(r.Context(), fetchOptionsFrom(r))
	WriteJSON(w, http.StatusOK, result)
}

// handlePositions aggregates open positions across all enabled accounts.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	result := s.app.Portfolio.FetchPositions(r.Context(), fetchOptionsFrom(r))
	WriteJSON(w, http.StatusOK, result)
}

// handleTrades aggregates trade history across all enabled accounts.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	result := s.app.Portfolio.FetchTrades(r.Context(), fetchOptionsFrom(r))
	WriteJSON(w, http.StatusOK, result)
}

// handlePrices returns current ticker prices for the supported symbols.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Portfolio.FetchPrices(r.Context()))
}

// handleStats returns per-model trading statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	stats, err := s.app.Portfolio.ComputeStats(r.Context(), fetchOptionsFrom(r))
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

func chartOptionsFrom(r *http.Request) interfaces.ChartOptions {
	opts := interfaces.ChartOptions{
		IncludeBenchmark: true,
		SkipCache:        QueryBool(r, "refresh"),
	}
	if r.URL.Query().Get("benchmark") == "false" {
		opts.IncludeBenchmark = false
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && size > 0 {
		opts.Size = size
	}
	return opts
}

// handleChart returns the unified chart dataset as JSON.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	series, err := s.app.Chart.BuildChart(r.Context(), chartOptionsFrom(r))
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, series)
}

// handleChartPNG renders the chart as a PNG image.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	png, err := s.app.Chart.RenderPNG(r.Context(), chartOptionsFrom(r))
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleCacheClear drops every cached entry, TTL and durable alike.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.app.Cache.ClearAll()
	s.logger.Info().Msg("Cache cleared via API")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
