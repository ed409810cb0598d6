// Package interfaces defines the contracts between clients, services, and
// the server layer.
package interfaces

import (
	"context"

	"github.com/rfglabs/modeldesk/internal/models"
)

// TradeParams narrows a trade-history query.
type TradeParams struct {
	Symbol string
	Limit  int
}

// ExchangeClient talks to the exchange account and market-data APIs.
// Account endpoints are scoped by the account's server-side UID; signed
// endpoints consult the account's addresses via the client's Signer.
type ExchangeClient interface {
	GetBalance(ctx context.Context, account models.Account) (*models.BalanceData, error)
	GetPositions(ctx context.Context, account models.Account) (*models.PositionsData, error)
	GetTrades(ctx context.Context, account models.Account, params TradeParams) (*models.TradesData, error)
	GetTickerPrice(ctx context.Context, symbol string) (*models.TickerPrice, error)

	// GetMarkPriceHistory fetches the full candle range [startMs, endMs]
	// in capped chunks and returns the merged, deduplicated, ascending
	// series. A failed chunk fails the whole fetch; no partial series is
	// returned.
	GetMarkPriceHistory(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]models.Candle, error)
}

// RecorderClient talks to the balance-record API that tracks per-model
// equity over time.
type RecorderClient interface {
	GetBalanceRecords(ctx context.Context, uid string, size int) ([]models.BalanceRecord, error)
}
