// Package recorder provides a client for the balance-record API, which
// tracks per-model account equity over time.
package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/models"
)

const (
	DefaultBaseURL = "https://testapi.rfgmeme.ai"
	DefaultTimeout = 30 * time.Second
)

// Client implements the RecorderClient interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new recorder client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type recordRequest struct {
	UID  string `json:"uid"`
	Size int    `json:"size"`
}

type wireRecord struct {
	WrtTime     string `json:"wrt_time"`
	BalanceJSON struct {
		TotalAsset models.FlexFloat `json:"total_asset"`
	} `json:"balance_json"`
}

type recordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Records []wireRecord `json:"records"`
	} `json:"data"`
}

// GetBalanceRecords fetches up to size equity records for a model UID.
// The upstream returns newest-first; the result is reversed into
// chronological order.
func (c *Client) GetBalanceRecords(ctx context.Context, uid string, size int) ([]models.BalanceRecord, error) {
	body, err := json.Marshal(recordRequest{UID: uid, Size: size})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/app/v1/trader_balance_record", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("uid", uid).Int("size", size).Msg("Balance record request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("balance record request failed: status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded recordResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !decoded.Success {
		msg := decoded.Message
		if msg == "" {
			msg = "unknown API error"
		}
		return nil, fmt.Errorf("balance record api error: %s", msg)
	}

	records := make([]models.BalanceRecord, 0, len(decoded.Data.Records))
	for i := len(decoded.Data.Records) - 1; i >= 0; i-- {
		r := decoded.Data.Records[i]
		records = append(records, models.BalanceRecord{
			Timestamp:  r.WrtTime,
			TotalAsset: float64(r.BalanceJSON.TotalAsset),
		})
	}

	return records, nil
}
