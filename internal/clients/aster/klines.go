package aster

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/rfglabs/modeldesk/internal/models"
)

const (
	// maxKlinesPerRequest is the upstream per-request candle cap.
	maxKlinesPerRequest = 1500
	// maxChunkIterations bounds the windowed loop. Hitting it means the
	// upstream stopped advancing, which is worth surfacing, not hiding.
	maxChunkIterations = 500

	defaultStepMs = 5 * 60 * 1000 // 5m
)

// intervalToMs converts an interval string ("5m", "1h", "3d") to
// milliseconds: numeric prefix times the unit multiplier. Unrecognized
// units fall back to a 5-minute step.
func intervalToMs(interval string) int64 {
	if len(interval) < 2 {
		return defaultStepMs
	}

	value, err := strconv.ParseInt(interval[:len(interval)-1], 10, 64)
	if err != nil || value <= 0 {
		return defaultStepMs
	}

	switch interval[len(interval)-1] {
	case 's':
		return value * 1000
	case 'm':
		return value * 60 * 1000
	case 'h':
		return value * 60 * 60 * 1000
	case 'd':
		return value * 24 * 60 * 60 * 1000
	case 'w':
		return value * 7 * 24 * 60 * 60 * 1000
	default:
		return defaultStepMs
	}
}

// getMarkPriceKlines fetches a single window of mark-price candles.
func (c *Client) getMarkPriceKlines(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("startTime", strconv.FormatInt(startMs, 10))
	params.Set("endTime", strconv.FormatInt(endMs, 10))
	params.Set("limit", strconv.Itoa(limit))

	var candles []models.Candle
	if err := c.get(ctx, "/fapi/v3/markPriceKlines", params, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

// GetMarkPriceHistory fetches the full candle range [startMs, endMs] in
// capped windows, then deduplicates by open time (last value wins) and
// sorts ascending. Any failed window aborts the whole fetch: downstream
// valuation assumes a contiguous series, so no partial result is returned.
func (c *Client) GetMarkPriceHistory(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]models.Candle, error) {
	step := intervalToMs(interval)
	seen := make(map[int64]models.Candle)

	start := startMs
	iterations := 0
	for start <= endMs {
		if iterations >= maxChunkIterations {
			c.logger.Warn().
				Str("symbol", symbol).
				Str("interval", interval).
				Int("iterations", iterations).
				Int64("window_start", start).
				Msg("Mark price history hit iteration bound before covering range")
			break
		}
		iterations++

		remaining := (endMs-start)/step + 1
		size := int(remaining)
		if size > maxKlinesPerRequest {
			size = maxKlinesPerRequest
		}

		chunkEnd := start + step*int64(size-1)
		if chunkEnd > endMs {
			chunkEnd = endMs
		}

		candles, err := c.getMarkPriceKlines(ctx, symbol, interval, start, chunkEnd, size)
		if err != nil {
			return nil, fmt.Errorf("mark price chunk [%d, %d]: %w", start, chunkEnd, err)
		}
		if len(candles) == 0 {
			break
		}

		for _, candle := range candles {
			seen[candle.OpenTime] = candle
		}

		start = candles[len(candles)-1].OpenTime + step
	}

	merged := lo.Values(seen)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].OpenTime < merged[j].OpenTime
	})

	c.logger.Debug().
		Str("symbol", symbol).
		Str("interval", interval).
		Int("candles", len(merged)).
		Int("chunks", iterations).
		Msg("Mark price history fetched")

	return merged, nil
}
