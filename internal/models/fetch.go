package models

// Category identifies one account-data family served by the exchange.
type Category string

const (
	CategoryBalance   Category = "balance"
	CategoryTrades    Category = "trades"
	CategoryPositions Category = "positions"
)

// AccountResult is the per-account outcome of a category fetch.
// Data is always schema-complete: on failure it carries the category's
// zeroed default payload so consumers never branch on absence.
type AccountResult struct {
	Account   Account     `json:"account"`
	Data      interface{} `json:"data"`
	Success   bool        `json:"success"`
	FromCache bool        `json:"from_cache"`
	Error     string      `json:"error,omitempty"`
}

// AggregateResult is the outcome of fetching one category across all
// enabled accounts. Accounts preserves registry order and contains exactly
// one entry per enabled account, success or failure. Success is true when
// at least one account succeeded; callers inspect entries for per-account
// status.
type AggregateResult struct {
	Success         bool            `json:"success"`
	Accounts        []AccountResult `json:"accounts"`
	SuccessfulCount int             `json:"successful_count"`
	FailedCount     int             `json:"failed_count"`
	Error           string          `json:"error,omitempty"`
}

// BalanceSummary is the normalized balance payload for one account:
// the USDT asset record, or a zeroed placeholder when absent.
type BalanceSummary struct {
	Asset              string  `json:"asset"`
	Balance            float64 `json:"balance"`
	AvailableBalance   float64 `json:"available_balance"`
	CrossWalletBalance float64 `json:"cross_wallet_balance"`
	CrossUnPnl         float64 `json:"cross_un_pnl"`
	MaxWithdrawAmount  float64 `json:"max_withdraw_amount"`
	MarginAvailable    bool    `json:"margin_available"`
	UpdateTimeMs       int64   `json:"update_time_ms"`
	TotalUsdtValue     float64 `json:"total_usdt_value"`
}

// EmptyBalanceSummary returns the zeroed balance default.
func EmptyBalanceSummary() BalanceSummary {
	return BalanceSummary{Asset: "USDT"}
}

// Position is one open futures position.
type Position struct {
	Symbol           string  `json:"symbol"`
	PositionAmt      float64 `json:"position_amt"`
	EntryPrice       float64 `json:"entry_price"`
	MarkPrice        float64 `json:"mark_price"`
	UnrealizedProfit float64 `json:"unrealized_profit"`
	LiquidationPrice float64 `json:"liquidation_price"`
	Leverage         float64 `json:"leverage"`
	MarginType       string  `json:"margin_type"`
	PositionSide     string  `json:"position_side"`
	Notional         float64 `json:"notional"`
	UpdateTimeMs     int64   `json:"update_time_ms"`
}

// PositionsSummary is the normalized positions payload: only positions
// with a non-zero size survive, with both raw and active counts reported.
type PositionsSummary struct {
	TotalPositions  int        `json:"total_positions"`
	ActivePositions int        `json:"active_positions"`
	Positions       []Position `json:"positions"`
}

// EmptyPositionsSummary returns the zeroed positions default.
func EmptyPositionsSummary() PositionsSummary {
	return PositionsSummary{Positions: []Position{}}
}

// Trade side values after canonical mapping.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// Trade is one closed trade in canonical form. Side is derived from the
// exchange direction vocabulary (LONG -> BUY, SHORT -> SELL); the original
// direction is preserved alongside.
type Trade struct {
	ID          int64   `json:"id"`
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"`
	Direction   string  `json:"direction"`
	EntryPrice  float64 `json:"entry_price"`
	ExitPrice   float64 `json:"exit_price"`
	Quantity    float64 `json:"quantity"`
	QuoteQty    float64 `json:"quote_qty"`
	RealizedPnl float64 `json:"realized_pnl"`
	TimeMs      int64   `json:"time_ms"`
}

// TradesSummary is the normalized trades payload. Trades whose realized
// PnL is exactly zero are treated as non-events and filtered out;
// TotalTrades counts the unfiltered upstream set.
type TradesSummary struct {
	TotalTrades int     `json:"total_trades"`
	Trades      []Trade `json:"trades"`
}

// EmptyTradesSummary returns the zeroed trades default.
func EmptyTradesSummary() TradesSummary {
	return TradesSummary{Trades: []Trade{}}
}
