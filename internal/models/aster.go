package models

// Wire types for the exchange account APIs. Numeric fields arrive as
// strings or numbers depending on endpoint version, hence FlexFloat.

// AssetBalance is one asset entry in a balance response.
type AssetBalance struct {
	AccountAlias       string    `json:"accountAlias"`
	Asset              string    `json:"asset"`
	Balance            FlexFloat `json:"balance"`
	CrossWalletBalance FlexFloat `json:"crossWalletBalance"`
	CrossUnPnl         FlexFloat `json:"crossUnPnl"`
	AvailableBalance   FlexFloat `json:"availableBalance"`
	MaxWithdrawAmount  FlexFloat `json:"maxWithdrawAmount"`
	MarginAvailable    bool      `json:"marginAvailable"`
	UpdateTime         int64     `json:"updateTime"`
}

// BalanceData is the balance-by-uid response payload.
type BalanceData struct {
	UID            string         `json:"uid"`
	WalletName     string         `json:"wallet_name"`
	TotalUsdtValue FlexFloat      `json:"total_usdt_value"`
	ActiveBalances []AssetBalance `json:"active_balances"`
}

// WirePosition is one position entry in a positions-by-uid response.
type WirePosition struct {
	Symbol           string    `json:"symbol"`
	PositionAmt      FlexFloat `json:"positionAmt"`
	EntryPrice       FlexFloat `json:"entryPrice"`
	MarkPrice        FlexFloat `json:"markPrice"`
	UnRealizedProfit FlexFloat `json:"unRealizedProfit"`
	LiquidationPrice FlexFloat `json:"liquidationPrice"`
	Leverage         FlexFloat `json:"leverage"`
	MarginType       string    `json:"marginType"`
	PositionSide     string    `json:"positionSide"`
	Notional         FlexFloat `json:"notional"`
	UpdateTime       int64     `json:"updateTime"`
}

// PositionsData is the positions-by-uid response payload.
type PositionsData struct {
	UID            string         `json:"uid"`
	WalletName     string         `json:"wallet_name"`
	TotalPositions int            `json:"total_positions"`
	Positions      []WirePosition `json:"positions"`
}

// ClosedTrade is one closed-position trade record: the canonical trades
// contract for this system. Direction uses the exchange vocabulary
// (LONG/SHORT); NetPnl is the realized profit including fees.
type ClosedTrade struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	EntryPrice FlexFloat `json:"entry_price"`
	ExitPrice  FlexFloat `json:"exit_price"`
	Quantity   FlexFloat `json:"quantity"`
	QuoteQty   FlexFloat `json:"quote_qty"`
	NetPnl     FlexFloat `json:"net_pnl"`
	Time       int64     `json:"time"`
}

// TradesData is the trades-by-uid response payload.
type TradesData struct {
	UID         string        `json:"uid"`
	WalletName  string        `json:"wallet_name"`
	TotalTrades int           `json:"total_trades"`
	Trades      []ClosedTrade `json:"trades"`
}
