package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfglabs/modeldesk/internal/app"
	"github.com/rfglabs/modeldesk/internal/cache"
	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
	"github.com/rfglabs/modeldesk/internal/registry"
)

// stubPortfolio implements interfaces.PortfolioService for handler tests.
type stubPortfolio struct {
	lastOpts interfaces.FetchOptions
	result   models.AggregateResult
	statsErr error
}

func (s *stubPortfolio) FetchBalances(_ context.Context, opts interfaces.FetchOptions) models.AggregateResult {
	s.lastOpts = opts
	return s.result
}

func (s *stubPortfolio) FetchPositions(_ context.Context, opts interfaces.FetchOptions) models.AggregateResult {
	s.lastOpts = opts
	return s.result
}

func (s *stubPortfolio) FetchTrades(_ context.Context, opts interfaces.FetchOptions) models.AggregateResult {
	s.lastOpts = opts
	return s.result
}

func (s *stubPortfolio) FetchPrices(context.Context) models.PriceBoard {
	return models.PriceBoard{Success: true, SuccessfulCount: 1, Prices: []models.TickerPrice{{Symbol: "BTCUSDT", Price: 97000}}}
}

func (s *stubPortfolio) ComputeStats(context.Context, interfaces.FetchOptions) ([]models.ModelStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return []models.ModelStats{{UID: "uid-1", TradeCount: 4, WinRate: 50}}, nil
}

// stubChart implements interfaces.ChartService.
type stubChart struct {
	lastOpts interfaces.ChartOptions
	err      error
}

func (s *stubChart) BuildChart(_ context.Context, opts interfaces.ChartOptions) (*models.ChartSeries, error) {
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return &models.ChartSeries{
		Labels:    []string{"2026-01-15 10:00:00"},
		Datasets:  []models.Dataset{},
		AxisRange: models.AxisRange{Min: 8000, Max: 11000},
	}, nil
}

func (s *stubChart) RenderPNG(_ context.Context, opts interfaces.ChartOptions) ([]byte, error) {
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

func testServer(t *testing.T) (*Server, *stubPortfolio, *stubChart) {
	t.Helper()
	portfolio := &stubPortfolio{result: models.AggregateResult{Success: true, SuccessfulCount: 1}}
	chartStub := &stubChart{}

	a := &app.App{
		Config: common.NewDefaultConfig(),
		Logger: common.NewSilentLogger(),
		Cache:  cache.New(common.CacheConfig{}),
		Registry: registry.New([]common.AccountConfig{
			{ID: "alpha", DisplayName: "Model Alpha", UID: "uid-1", Enabled: true},
		}),
		Portfolio: portfolio,
		Chart:     chartStub,
	}
	return NewServer(a), portfolio, chartStub
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestVersionEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/version")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["version"])
}

func TestAccountsEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/accounts")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Accounts []models.Account `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, "uid-1", body.Accounts[0].UID)
}

func TestBalancesEndpoint(t *testing.T) {
	srv, portfolio, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/balances")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, portfolio.lastOpts.SkipCache)

	var body models.AggregateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func TestRefreshQuerySkipsCache(t *testing.T) {
	srv, portfolio, _ := testServer(t)
	doRequest(t, srv, http.MethodGet, "/api/trades?refresh=true&symbol=BTCUSDT&limit=250")

	assert.True(t, portfolio.lastOpts.SkipCache)
	assert.Equal(t, "BTCUSDT", portfolio.lastOpts.Symbol)
	assert.Equal(t, 250, portfolio.lastOpts.Limit)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/balances")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestPricesEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/prices")

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.PriceBoard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Prices, 1)
	assert.Equal(t, "BTCUSDT", body.Prices[0].Symbol)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stats []models.ModelStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Stats, 1)
	assert.Equal(t, 50.0, body.Stats[0].WinRate)
}

func TestStatsEndpointUpstreamFailure(t *testing.T) {
	srv, portfolio, _ := testServer(t)
	portfolio.statsErr = fmt.Errorf("all account requests failed")

	rec := doRequest(t, srv, http.MethodGet, "/api/stats")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestChartEndpoint(t *testing.T) {
	srv, _, chartStub := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/chart")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, chartStub.lastOpts.IncludeBenchmark, "benchmark on by default")

	var body models.ChartSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 8000.0, body.AxisRange.Min)
}

func TestChartEndpointOptions(t *testing.T) {
	srv, _, chartStub := testServer(t)
	doRequest(t, srv, http.MethodGet, "/api/chart?benchmark=false&size=50&refresh=true")

	assert.False(t, chartStub.lastOpts.IncludeBenchmark)
	assert.Equal(t, 50, chartStub.lastOpts.Size)
	assert.True(t, chartStub.lastOpts.SkipCache)
}

func TestChartPNGEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/chart.png")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, rec.Body.Bytes())
}

func TestChartEndpointFailure(t *testing.T) {
	srv, _, chartStub := testServer(t)
	chartStub.err = fmt.Errorf("no accounts configured")

	rec := doRequest(t, srv, http.MethodGet, "/api/chart")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCacheClearEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)

	srv.app.Cache.Set(models.CategoryBalance, "payload")
	rec := doRequest(t, srv, http.MethodPost, "/api/cache/clear")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, srv.app.Cache.Get(models.CategoryBalance))
}

func TestCacheClearRequiresPost(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/cache/clear")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCorrelationIDHeader(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/health")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodOptions, "/api/balances")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
