package interfaces

import (
	"context"

	"github.com/rfglabs/modeldesk/internal/models"
)

// FetchOptions controls a fan-out fetch across accounts.
type FetchOptions struct {
	SkipCache bool
	Symbol    string
	Limit     int
}

// PortfolioService aggregates account data across all enabled accounts.
// Aggregate calls never return an error: all failures are absorbed into
// the result per account.
type PortfolioService interface {
	FetchBalances(ctx context.Context, opts FetchOptions) models.AggregateResult
	FetchPositions(ctx context.Context, opts FetchOptions) models.AggregateResult
	FetchTrades(ctx context.Context, opts FetchOptions) models.AggregateResult
	FetchPrices(ctx context.Context) models.PriceBoard
	ComputeStats(ctx context.Context, opts FetchOptions) ([]models.ModelStats, error)
}

// ChartOptions controls chart assembly.
type ChartOptions struct {
	Size             int  // records per model requested from the recorder
	IncludeBenchmark bool // overlay the buy-and-hold benchmark
	SkipCache        bool
}

// ChartService assembles the unified chart dataset from per-model equity
// series plus the price benchmark.
type ChartService interface {
	BuildChart(ctx context.Context, opts ChartOptions) (*models.ChartSeries, error)
	RenderPNG(ctx context.Context, opts ChartOptions) ([]byte, error)
}
