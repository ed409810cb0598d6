package models

// ModelStats summarizes the realized trading performance of one model,
// derived from its filtered trade history.
type ModelStats struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"display_name"`
	TradeCount  int     `json:"trade_count"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	RealizedPnl float64 `json:"realized_pnl"`
	BestTrade   float64 `json:"best_trade"`
	WorstTrade  float64 `json:"worst_trade"`
}
