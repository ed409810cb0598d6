package chart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfglabs/modeldesk/internal/cache"
	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
	"github.com/rfglabs/modeldesk/internal/registry"
)

type mockRecorder struct {
	recordsFunc func(ctx context.Context, uid string, size int) ([]models.BalanceRecord, error)
	calls       int
}

func (m *mockRecorder) GetBalanceRecords(ctx context.Context, uid string, size int) ([]models.BalanceRecord, error) {
	m.calls++
	if m.recordsFunc != nil {
		return m.recordsFunc(ctx, uid, size)
	}
	return nil, nil
}

type mockExchange struct {
	historyFunc func(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]models.Candle, error)
}

func (m *mockExchange) GetBalance(context.Context, models.Account) (*models.BalanceData, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockExchange) GetPositions(context.Context, models.Account) (*models.PositionsData, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockExchange) GetTrades(context.Context, models.Account, interfaces.TradeParams) (*models.TradesData, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockExchange) GetTickerPrice(context.Context, string) (*models.TickerPrice, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockExchange) GetMarkPriceHistory(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]models.Candle, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, symbol, interval, startMs, endMs)
	}
	return nil, nil
}

func chartTestService(reg *registry.Registry, exchange *mockExchange, rec *mockRecorder) *Service {
	c := cache.New(common.CacheConfig{})
	return NewService(reg, exchange, rec, c, common.NewSilentLogger(), common.ChartConfig{
		BenchmarkSymbol:   "BTCUSDT",
		BenchmarkInterval: "5m",
		HistoryStartMs:    1700000000000,
	})
}

func chartTestRegistry() *registry.Registry {
	return registry.New([]common.AccountConfig{
		{ID: "alpha", DisplayName: "Model Alpha", ColorTag: "#ff0000", UID: "uid-1", Enabled: true, InitialCapital: 10000},
		{ID: "beta", DisplayName: "Model Beta", ColorTag: "#00ff00", UID: "uid-2", Enabled: true, InitialCapital: 10000},
	})
}

func TestBuildChartNoAccounts(t *testing.T) {
	svc := chartTestService(registry.New(nil), &mockExchange{}, &mockRecorder{})
	_, err := svc.BuildChart(context.Background(), interfaces.ChartOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no accounts configured")
}

func TestBuildChartAssemblesModelSeries(t *testing.T) {
	rec := &mockRecorder{
		recordsFunc: func(_ context.Context, uid string, _ int) ([]models.BalanceRecord, error) {
			return []models.BalanceRecord{
				{Timestamp: "2026-01-15 10:00:00", TotalAsset: 10000},
				{Timestamp: "2026-01-15 10:05:00", TotalAsset: 10100},
			}, nil
		},
	}
	svc := chartTestService(chartTestRegistry(), &mockExchange{}, rec)

	series, err := svc.BuildChart(context.Background(), interfaces.ChartOptions{})
	require.NoError(t, err)

	require.Len(t, series.Datasets, 2)
	assert.Equal(t, "Model Alpha", series.Datasets[0].Label)
	assert.Equal(t, "#ff0000", series.Datasets[0].Color)
	assert.Equal(t, "uid-1", series.Datasets[0].UID)
	assert.Len(t, series.Labels, 2)
}

func TestBuildChartRecorderFailureSkipsModel(t *testing.T) {
	rec := &mockRecorder{
		recordsFunc: func(_ context.Context, uid string, _ int) ([]models.BalanceRecord, error) {
			if uid == "uid-2" {
				return nil, fmt.Errorf("recorder down")
			}
			return []models.BalanceRecord{{Timestamp: "2026-01-15 10:00:00", TotalAsset: 10000}}, nil
		},
	}
	svc := chartTestService(chartTestRegistry(), &mockExchange{}, rec)

	series, err := svc.BuildChart(context.Background(), interfaces.ChartOptions{})
	require.NoError(t, err, "one model failing must not fail the chart")
	require.Len(t, series.Datasets, 1)
	assert.Equal(t, "uid-1", series.Datasets[0].UID)
}

func TestBuildChartBenchmarkBuyAndHold(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	rec := &mockRecorder{
		recordsFunc: func(_ context.Context, _ string, _ int) ([]models.BalanceRecord, error) {
			return []models.BalanceRecord{
				{Timestamp: base.Format("2006-01-02 15:04:05"), TotalAsset: 10000},
				{Timestamp: base.Add(10 * time.Minute).Format("2006-01-02 15:04:05"), TotalAsset: 10100},
			}, nil
		},
	}
	exchange := &mockExchange{
		historyFunc: func(_ context.Context, symbol, interval string, startMs, _ int64) ([]models.Candle, error) {
			assert.Equal(t, "BTCUSDT", symbol)
			assert.Equal(t, "5m", interval)
			assert.Equal(t, int64(1700000000000), startMs)
			return []models.Candle{
				{OpenTime: base.UnixMilli(), Close: 50000},
				{OpenTime: base.Add(10 * time.Minute).UnixMilli(), Close: 55000},
			}, nil
		},
	}
	svc := chartTestService(chartTestRegistry(), exchange, rec)

	series, err := svc.BuildChart(context.Background(), interfaces.ChartOptions{IncludeBenchmark: true})
	require.NoError(t, err)

	require.Len(t, series.Datasets, 3)
	bench := series.Datasets[2]
	assert.Equal(t, "BTCUSDT Buy & Hold", bench.Label)

	// qty = 10000 / 50000 = 0.2; values 10000 and 11000.
	require.Len(t, bench.Data, 2)
	assert.InDelta(t, 10000.0, *bench.Data[0], 1e-6)
	assert.InDelta(t, 11000.0, *bench.Data[1], 1e-6)
}

func TestBuildChartBenchmarkFailureDegrades(t *testing.T) {
	rec := &mockRecorder{
		recordsFunc: func(_ context.Context, _ string, _ int) ([]models.BalanceRecord, error) {
			return []models.BalanceRecord{{Timestamp: "2026-01-15 10:00:00", TotalAsset: 10000}}, nil
		},
	}
	exchange := &mockExchange{
		historyFunc: func(context.Context, string, string, int64, int64) ([]models.Candle, error) {
			return nil, fmt.Errorf("exchange unreachable")
		},
	}
	svc := chartTestService(chartTestRegistry(), exchange, rec)

	series, err := svc.BuildChart(context.Background(), interfaces.ChartOptions{IncludeBenchmark: true})
	require.NoError(t, err)
	assert.Len(t, series.Datasets, 2, "chart ships without the overlay")
}

func TestBuildChartCachesRecords(t *testing.T) {
	rec := &mockRecorder{
		recordsFunc: func(_ context.Context, _ string, _ int) ([]models.BalanceRecord, error) {
			return []models.BalanceRecord{{Timestamp: "2026-01-15 10:00:00", TotalAsset: 10000}}, nil
		},
	}
	svc := chartTestService(chartTestRegistry(), &mockExchange{}, rec)

	_, err := svc.BuildChart(context.Background(), interfaces.ChartOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calls)

	_, err = svc.BuildChart(context.Background(), interfaces.ChartOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calls, "second build served from cache")

	_, err = svc.BuildChart(context.Background(), interfaces.ChartOptions{SkipCache: true})
	require.NoError(t, err)
	assert.Equal(t, 4, rec.calls, "refresh bypasses the cache")
}

func TestRenderPNGProducesImage(t *testing.T) {
	rec := &mockRecorder{
		recordsFunc: func(_ context.Context, _ string, _ int) ([]models.BalanceRecord, error) {
			return []models.BalanceRecord{
				{Timestamp: "2026-01-15 10:00:00", TotalAsset: 10000},
				{Timestamp: "2026-01-15 10:05:00", TotalAsset: 10100},
				{Timestamp: "2026-01-15 10:10:00", TotalAsset: 10050},
			}, nil
		},
	}
	svc := chartTestService(chartTestRegistry(), &mockExchange{}, rec)

	png, err := svc.RenderPNG(context.Background(), interfaces.ChartOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, png[:4])
}
