package portfolio

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
)

// ComputeStats derives per-model trading statistics from the canonical
// trade history. PnL sums use decimal arithmetic; float accumulation
// drifts over long histories.
func (s *Service) ComputeStats(ctx context.Context, opts interfaces.FetchOptions) ([]models.ModelStats, error) {
	result := s.FetchTrades(ctx, opts)
	if !result.Success {
		return nil, errFromAggregate(result)
	}

	stats := make([]models.ModelStats, 0, len(result.Accounts))
	for _, entry := range result.Accounts {
		stat := models.ModelStats{
			UID:         entry.Account.UID,
			DisplayName: entry.Account.DisplayName,
		}

		summary, ok := entry.Data.(models.TradesSummary)
		if ok && entry.Success {
			fillTradeStats(&stat, summary.Trades)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

func fillTradeStats(stat *models.ModelStats, trades []models.Trade) {
	stat.TradeCount = len(trades)
	if len(trades) == 0 {
		return
	}

	total := decimal.Zero
	best := trades[0].RealizedPnl
	worst := trades[0].RealizedPnl

	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.RealizedPnl))
		if t.RealizedPnl > 0 {
			stat.Wins++
		} else {
			stat.Losses++
		}
		if t.RealizedPnl > best {
			best = t.RealizedPnl
		}
		if t.RealizedPnl < worst {
			worst = t.RealizedPnl
		}
	}

	stat.RealizedPnl, _ = total.Round(8).Float64()
	stat.WinRate = float64(stat.Wins) / float64(len(trades)) * 100
	stat.BestTrade = best
	stat.WorstTrade = worst
}

func errFromAggregate(result models.AggregateResult) error {
	if result.Error != "" {
		return errors.New(result.Error)
	}
	return errors.New("aggregate fetch failed")
}
