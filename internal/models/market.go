package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexFloat handles JSON values that may be either a number or a string.
// Exchange payloads mix the two freely ("12.5" vs 12.5).
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Candle is one mark-price kline. The wire form is a positional array
// [openTime, open, high, low, close, volume, closeTime, ...]; OpenTime is
// the primary key when merging chunks.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// UnmarshalJSON decodes the exchange's positional kline array.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("kline is not an array: %w", err)
	}
	if len(raw) < 6 {
		return fmt.Errorf("kline has %d elements, want at least 6", len(raw))
	}

	if err := json.Unmarshal(raw[0], &c.OpenTime); err != nil {
		return fmt.Errorf("kline open time: %w", err)
	}

	fields := []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
	for i, dst := range fields {
		var v FlexFloat
		if err := json.Unmarshal(raw[i+1], &v); err != nil {
			return fmt.Errorf("kline field %d: %w", i+1, err)
		}
		*dst = float64(v)
	}

	if len(raw) > 6 {
		// Close time is informational; tolerate its absence.
		_ = json.Unmarshal(raw[6], &c.CloseTime)
	}
	return nil
}

// TickerPrice is a current-price quote for one symbol.
type TickerPrice struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	TimeMs int64   `json:"time_ms"`
}

// PriceBoard partitions ticker-price results by outcome.
type PriceBoard struct {
	Success         bool          `json:"success"`
	Prices          []TickerPrice `json:"prices"`
	Failed          []TickerPrice `json:"failed"`
	SuccessfulCount int           `json:"successful_count"`
	FailedCount     int           `json:"failed_count"`
}

// BalanceRecord is one timestamped equity observation for a model,
// produced by the balance recorder API.
type BalanceRecord struct {
	Timestamp  string  `json:"timestamp"`
	TotalAsset float64 `json:"total_asset"`
}
