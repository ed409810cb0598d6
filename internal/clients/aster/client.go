// Package aster provides a client for the Aster futures APIs: account data
// scoped by model UID plus public market data (ticker prices and mark-price
// klines).
package aster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
)

const (
	DefaultBaseURL   = "https://fapi.asterdex.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the ExchangeClient interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	signer     Signer
	now        func() time.Time
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithSigner sets the request-signing collaborator for authenticated
// endpoints.
func WithSigner(signer Signer) ClientOption {
	return func(c *Client) {
		c.signer = signer
	}
}

// WithClock overrides the time source (signing timestamps and nonces).
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Aster client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		signer:  NoopSigner{},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a transport-level API error (non-2xx status).
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aster API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// envelope is the standard response wrapper on account endpoints.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get performs a rate-limited GET request and decodes the raw body into
// result. Used by public market-data endpoints, which return bare JSON.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Aster API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// getEnveloped performs a GET against an account endpoint, unwrapping the
// {success, data, message} envelope. A 2xx response carrying success=false
// is an application-level error.
func (c *Client) getEnveloped(ctx context.Context, path string, params url.Values, result interface{}) error {
	var env envelope
	if err := c.get(ctx, path, params, &env); err != nil {
		return err
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "unknown API error"
		}
		return fmt.Errorf("api error on %s: %s", path, msg)
	}

	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// accountParams builds the (optionally signed) query parameters for an
// account-scoped request.
func (c *Client) accountParams(account models.Account, params map[string]interface{}) (url.Values, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	if account.PublicAddress == "" || account.SignerAddress == "" {
		// Unsigned endpoint variant; plain parameters.
		values := url.Values{}
		for k, v := range stringifyParams(params) {
			values.Set(k, v)
		}
		return values, nil
	}
	return signParams(params, account, c.signer, c.now)
}

// GetBalance retrieves the balance payload for one account.
func (c *Client) GetBalance(ctx context.Context, account models.Account) (*models.BalanceData, error) {
	params, err := c.accountParams(account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sign balance request: %w", err)
	}

	var data models.BalanceData
	if err := c.getEnveloped(ctx, "/aster/balance/"+account.UID, params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPositions retrieves the positions payload for one account.
func (c *Client) GetPositions(ctx context.Context, account models.Account) (*models.PositionsData, error) {
	params, err := c.accountParams(account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sign positions request: %w", err)
	}

	var data models.PositionsData
	if err := c.getEnveloped(ctx, "/aster/positions/"+account.UID, params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTrades retrieves the closed-trades payload for one account.
func (c *Client) GetTrades(ctx context.Context, account models.Account, p interfaces.TradeParams) (*models.TradesData, error) {
	raw := map[string]interface{}{}
	if p.Symbol != "" {
		raw["symbol"] = p.Symbol
	}
	if p.Limit > 0 {
		raw["limit"] = p.Limit
	}

	params, err := c.accountParams(account, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to sign trades request: %w", err)
	}

	var data models.TradesData
	if err := c.getEnveloped(ctx, "/aster/trades/"+account.UID, params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// tickerPriceResponse is the public ticker/price payload.
type tickerPriceResponse struct {
	Symbol string           `json:"symbol"`
	Price  models.FlexFloat `json:"price"`
	Time   int64            `json:"time"`
}

// GetTickerPrice retrieves the current price for a symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (*models.TickerPrice, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp tickerPriceResponse
	if err := c.get(ctx, "/fapi/v3/ticker/price", params, &resp); err != nil {
		return nil, err
	}

	return &models.TickerPrice{
		Symbol: resp.Symbol,
		Price:  float64(resp.Price),
		TimeMs: resp.Time,
	}, nil
}
