package models

// Account is one AI-trading-model account from the registry.
// Identity fields are immutable after load; Balance is the only part the
// fetch layer overwrites, and it is replaced wholesale on each successful
// balance fetch.
type Account struct {
	ID             string  `json:"id"`
	DisplayName    string  `json:"display_name"`
	ColorTag       string  `json:"color_tag"`
	IconRef        string  `json:"icon_ref"`
	UID            string  `json:"uid"`
	PublicAddress  string  `json:"public_address"`
	SignerAddress  string  `json:"signer_address"`
	Enabled        bool    `json:"enabled"`
	InitialCapital float64 `json:"initial_capital"`

	Balance BalanceSnapshot `json:"balance"`
}

// BalanceSnapshot is the last known balance state for an account.
type BalanceSnapshot struct {
	Asset              string  `json:"asset"`
	Balance            float64 `json:"balance"`
	AvailableBalance   float64 `json:"available_balance"`
	CrossWalletBalance float64 `json:"cross_wallet_balance"`
	CrossUnPnl         float64 `json:"cross_un_pnl"`
	MaxWithdrawAmount  float64 `json:"max_withdraw_amount"`
	MarginAvailable    bool    `json:"margin_available"`
	UpdateTimeMs       int64   `json:"update_time_ms"`
}
