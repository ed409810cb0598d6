package portfolio

import (
	"github.com/samber/lo"

	"github.com/rfglabs/modeldesk/internal/models"
)

// normalizeBalance reduces a balance response to the USDT asset record.
// A missing USDT entry yields the zeroed placeholder so the payload stays
// schema-complete.
func normalizeBalance(data *models.BalanceData) models.BalanceSummary {
	summary := models.EmptyBalanceSummary()
	summary.TotalUsdtValue = float64(data.TotalUsdtValue)

	usdt, found := lo.Find(data.ActiveBalances, func(b models.AssetBalance) bool {
		return b.Asset == "USDT"
	})
	if !found {
		return summary
	}

	summary.Balance = float64(usdt.Balance)
	summary.AvailableBalance = float64(usdt.AvailableBalance)
	summary.CrossWalletBalance = float64(usdt.CrossWalletBalance)
	summary.CrossUnPnl = float64(usdt.CrossUnPnl)
	summary.MaxWithdrawAmount = float64(usdt.MaxWithdrawAmount)
	summary.MarginAvailable = usdt.MarginAvailable
	summary.UpdateTimeMs = usdt.UpdateTime
	return summary
}

func snapshotFrom(summary models.BalanceSummary) models.BalanceSnapshot {
	return models.BalanceSnapshot{
		Asset:              summary.Asset,
		Balance:            summary.Balance,
		AvailableBalance:   summary.AvailableBalance,
		CrossWalletBalance: summary.CrossWalletBalance,
		CrossUnPnl:         summary.CrossUnPnl,
		MaxWithdrawAmount:  summary.MaxWithdrawAmount,
		MarginAvailable:    summary.MarginAvailable,
		UpdateTimeMs:       summary.UpdateTimeMs,
	}
}

// normalizePositions keeps only positions with a non-zero size. The raw
// count is preserved alongside the active count.
func normalizePositions(data *models.PositionsData) models.PositionsSummary {
	active := lo.FilterMap(data.Positions, func(p models.WirePosition, _ int) (models.Position, bool) {
		if p.PositionAmt == 0 {
			return models.Position{}, false
		}
		return models.Position{
			Symbol:           p.Symbol,
			PositionAmt:      float64(p.PositionAmt),
			EntryPrice:       float64(p.EntryPrice),
			MarkPrice:        float64(p.MarkPrice),
			UnrealizedProfit: float64(p.UnRealizedProfit),
			LiquidationPrice: float64(p.LiquidationPrice),
			Leverage:         float64(p.Leverage),
			MarginType:       p.MarginType,
			PositionSide:     p.PositionSide,
			Notional:         float64(p.Notional),
			UpdateTimeMs:     p.UpdateTime,
		}, true
	})
	if active == nil {
		active = []models.Position{}
	}

	total := data.TotalPositions
	if total == 0 {
		total = len(data.Positions)
	}
	return models.PositionsSummary{
		TotalPositions:  total,
		ActivePositions: len(active),
		Positions:       active,
	}
}

// normalizeTrades maps closed trades to the canonical form. Direction
// LONG becomes side BUY and SHORT becomes SELL, with the direction kept.
// Quote quantity is derived from entry price when the exchange omits it,
// and zero-PnL records are dropped as non-events.
func normalizeTrades(data *models.TradesData) models.TradesSummary {
	trades := lo.FilterMap(data.Trades, func(t models.ClosedTrade, _ int) (models.Trade, bool) {
		if t.NetPnl == 0 {
			return models.Trade{}, false
		}

		side := models.SideBuy
		if t.Direction == models.DirectionShort {
			side = models.SideSell
		}

		quoteQty := float64(t.QuoteQty)
		if quoteQty == 0 {
			quoteQty = float64(t.EntryPrice) * float64(t.Quantity)
		}

		return models.Trade{
			ID:          t.ID,
			Symbol:      t.Symbol,
			Side:        side,
			Direction:   t.Direction,
			EntryPrice:  float64(t.EntryPrice),
			ExitPrice:   float64(t.ExitPrice),
			Quantity:    float64(t.Quantity),
			QuoteQty:    quoteQty,
			RealizedPnl: float64(t.NetPnl),
			TimeMs:      t.Time,
		}, true
	})
	if trades == nil {
		trades = []models.Trade{}
	}

	total := data.TotalTrades
	if total == 0 {
		total = len(data.Trades)
	}
	return models.TradesSummary{
		TotalTrades: total,
		Trades:      trades,
	}
}
