// Package chart assembles the unified performance chart: per-model equity
// series from the balance recorder, reconciled onto one timeline with a
// buy-and-hold price benchmark overlay.
package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/rfglabs/modeldesk/internal/cache"
	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
	"github.com/rfglabs/modeldesk/internal/registry"
)

const (
	apiRecords = "recorder/balance_records"

	defaultRecordSize = 200

	// History window opens at the first recorded model observation.
	defaultHistoryStartMs = int64(1762216200000) // 2025-11-04 00:30 UTC

	// Benchmark capital when no account declares an initial stake.
	defaultBenchmarkCapital = 10000.0

	benchmarkColor = "#f7931a"
)

// Service implements ChartService.
type Service struct {
	registry *registry.Registry
	exchange interfaces.ExchangeClient
	recorder interfaces.RecorderClient
	cache    *cache.Cache
	logger   *common.Logger
	cfg      common.ChartConfig
	now      func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new chart service.
func NewService(
	reg *registry.Registry,
	exchange interfaces.ExchangeClient,
	recorder interfaces.RecorderClient,
	c *cache.Cache,
	logger *common.Logger,
	cfg common.ChartConfig,
	opts ...Option,
) *Service {
	s := &Service{
		registry: reg,
		exchange: exchange,
		recorder: recorder,
		cache:    c,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) strategy() TimelineStrategy {
	if s.cfg.Timeline == string(TimelineReference) {
		return TimelineReference
	}
	return TimelineUnion
}

// BuildChart assembles the chart dataset for all enabled accounts.
// Per-model recorder failures degrade to a skipped series; a benchmark
// failure degrades to a chart without the overlay. Only an empty registry
// is an error.
func (s *Service) BuildChart(ctx context.Context, opts interfaces.ChartOptions) (*models.ChartSeries, error) {
	accounts := s.registry.ListEnabled()
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured")
	}

	size := opts.Size
	if size <= 0 {
		size = defaultRecordSize
	}

	series := make([]models.ModelSeries, 0, len(accounts))
	for _, account := range accounts {
		records, err := s.recordsFor(ctx, account, size, opts.SkipCache)
		if err != nil {
			s.logger.Warn().
				Str("account", account.DisplayName).
				Str("uid", account.UID).
				Err(err).
				Msg("Balance records fetch failed")
			continue
		}
		series = append(series, models.ModelSeries{
			Label:  account.DisplayName,
			Color:  account.ColorTag,
			UID:    account.UID,
			Points: recordPoints(records),
		})
	}

	var benchmark *models.BenchmarkSeries
	if opts.IncludeBenchmark {
		b, err := s.buildBenchmark(ctx, accounts)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Benchmark series unavailable")
		} else {
			benchmark = b
		}
	}

	return reconcile(series, benchmark, s.strategy(), s.cfg.GetAxisTiers(), s.logger), nil
}

// recordsFor fetches one account's equity records, serving the durable
// cache when permitted.
func (s *Service) recordsFor(ctx context.Context, account models.Account, size int, skipCache bool) ([]models.BalanceRecord, error) {
	if !skipCache {
		if cached, ok := s.cache.GetAPI(apiRecords, account.UID).([]models.BalanceRecord); ok {
			return cached, nil
		}
	}

	records, err := s.recorder.GetBalanceRecords(ctx, account.UID, size)
	if err != nil {
		return nil, err
	}
	s.cache.SetAPI(apiRecords, account.UID, records)
	return records, nil
}

func recordPoints(records []models.BalanceRecord) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, len(records))
	for _, r := range records {
		points = append(points, models.SeriesPoint{Timestamp: r.Timestamp, Value: r.TotalAsset})
	}
	return points
}

// buildBenchmark derives the buy-and-hold overlay: buy at the first candle
// close with the benchmark capital, hold, and mark to each close.
func (s *Service) buildBenchmark(ctx context.Context, accounts []models.Account) (*models.BenchmarkSeries, error) {
	symbol := s.cfg.BenchmarkSymbol
	if symbol == "" {
		symbol = "BTCUSDT"
	}
	interval := s.cfg.BenchmarkInterval
	if interval == "" {
		interval = "5m"
	}
	startMs := s.cfg.HistoryStartMs
	if startMs <= 0 {
		startMs = defaultHistoryStartMs
	}

	candles, err := s.exchange.GetMarkPriceHistory(ctx, symbol, interval, startMs, s.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("benchmark candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("benchmark candles: empty series for %s", symbol)
	}

	capital := defaultBenchmarkCapital
	if len(accounts) > 0 && accounts[0].InitialCapital > 0 {
		capital = accounts[0].InitialCapital
	}

	firstClose := candles[0].Close
	if firstClose <= 0 {
		return nil, fmt.Errorf("benchmark candles: non-positive first close %v", firstClose)
	}
	qty := capital / firstClose

	points := make([]models.SeriesPoint, 0, len(candles))
	for _, c := range candles {
		points = append(points, models.SeriesPoint{
			Timestamp: time.UnixMilli(c.OpenTime).UTC().Format("2006-01-02 15:04:05"),
			Value:     qty * c.Close,
		})
	}

	return &models.BenchmarkSeries{
		Label:  fmt.Sprintf("%s Buy & Hold", symbol),
		Color:  benchmarkColor,
		Points: points,
	}, nil
}
