// Package portfolio aggregates account data (balances, positions, trade
// history) across all enabled accounts in the registry.
package portfolio

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rfglabs/modeldesk/internal/cache"
	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
	"github.com/rfglabs/modeldesk/internal/registry"
)

// Durable cache API names, keyed per account UID.
const (
	apiBalance   = "aster/balance"
	apiTrades    = "aster/trades"
	apiPositions = "aster/positions"
)

// Service implements PortfolioService.
type Service struct {
	registry    *registry.Registry
	exchange    interfaces.ExchangeClient
	cache       *cache.Cache
	logger      *common.Logger
	maxInFlight int
}

// NewService creates a new portfolio service. maxInFlight bounds the
// fan-out concurrency; 1 means strict sequential fetching in registry
// order, the rate-limit-friendly default.
func NewService(
	reg *registry.Registry,
	exchange interfaces.ExchangeClient,
	c *cache.Cache,
	logger *common.Logger,
	maxInFlight int,
) *Service {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Service{
		registry:    reg,
		exchange:    exchange,
		cache:       c,
		logger:      logger,
		maxInFlight: maxInFlight,
	}
}

// fetchOne retrieves and normalizes one account's payload for a category.
type fetchOne func(ctx context.Context, account models.Account) (interface{}, error)

// fetchAll drives "fetch category X for all enabled accounts". The result
// always contains one entry per enabled account in registry order; a
// per-account failure yields a schema-complete empty payload and never
// aborts the batch. Overall success means at least one account succeeded.
func (s *Service) fetchAll(
	ctx context.Context,
	category models.Category,
	apiName string,
	skipCache bool,
	emptyPayload func() interface{},
	fetch fetchOne,
) models.AggregateResult {
	enabled := s.registry.ListEnabled()
	if len(enabled) == 0 {
		s.logger.Warn().Str("category", string(category)).Msg("No accounts configured")
		return models.AggregateResult{
			Success:  false,
			Accounts: []models.AccountResult{},
			Error:    "no accounts configured",
		}
	}

	if !skipCache {
		// Aggregate TTL cache first, then the durable per-account cache.
		if cached, ok := s.cache.Get(category).(models.AggregateResult); ok {
			return cached
		}
		if s.cache.AllPresent(apiName, enabled) {
			return s.aggregateFromCache(apiName, enabled)
		}
	}

	results := make([]models.AccountResult, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)

	for i, account := range enabled {
		i, account := i, account
		g.Go(func() error {
			if !skipCache {
				if cached := s.cache.GetAPI(apiName, account.UID); cached != nil {
					results[i] = models.AccountResult{
						Account:   account,
						Data:      cached,
						Success:   true,
						FromCache: true,
					}
					return nil
				}
			}

			data, err := fetch(gctx, account)
			if err != nil {
				s.logger.Error().
					Str("category", string(category)).
					Str("account", account.DisplayName).
					Str("uid", account.UID).
					Err(err).
					Msg("Account fetch failed")
				results[i] = models.AccountResult{
					Account: account,
					Data:    emptyPayload(),
					Success: false,
					Error:   err.Error(),
				}
				return nil
			}

			s.cache.SetAPI(apiName, account.UID, data)
			results[i] = models.AccountResult{
				Account: account,
				Data:    data,
				Success: true,
			}
			return nil
		})
	}
	// Worker errors are absorbed into per-account results.
	_ = g.Wait()

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}

	result := models.AggregateResult{
		Success:         successful > 0,
		Accounts:        results,
		SuccessfulCount: successful,
		FailedCount:     len(results) - successful,
	}
	if successful == 0 {
		result.Error = "all account requests failed"
	} else {
		s.cache.Set(category, result)
	}

	s.logger.Info().
		Str("category", string(category)).
		Int("accounts", len(results)).
		Int("successful", successful).
		Int("failed", result.FailedCount).
		Msg("Account fan-out completed")

	return result
}

// aggregateFromCache assembles an aggregate result entirely from durable
// cache entries. Nothing is marked as newly fetched.
func (s *Service) aggregateFromCache(apiName string, accounts []models.Account) models.AggregateResult {
	results := make([]models.AccountResult, len(accounts))
	for i, account := range accounts {
		results[i] = models.AccountResult{
			Account:   account,
			Data:      s.cache.GetAPI(apiName, account.UID),
			Success:   true,
			FromCache: true,
		}
	}

	s.logger.Debug().
		Str("api", apiName).
		Int("accounts", len(accounts)).
		Msg("Aggregate served from cache")

	return models.AggregateResult{
		Success:         true,
		Accounts:        results,
		SuccessfulCount: len(results),
	}
}

// FetchBalances aggregates normalized balances for all enabled accounts
// and overwrites each account's registry balance snapshot on success.
func (s *Service) FetchBalances(ctx context.Context, opts interfaces.FetchOptions) models.AggregateResult {
	return s.fetchAll(ctx, models.CategoryBalance, apiBalance, opts.SkipCache,
		func() interface{} { return models.EmptyBalanceSummary() },
		func(ctx context.Context, account models.Account) (interface{}, error) {
			data, err := s.exchange.GetBalance(ctx, account)
			if err != nil {
				return nil, err
			}
			summary := normalizeBalance(data)
			if err := s.registry.UpdateBalanceSnapshot(account.UID, snapshotFrom(summary)); err != nil {
				s.logger.Warn().Str("uid", account.UID).Err(err).Msg("Balance snapshot update skipped")
			}
			return summary, nil
		})
}

// FetchPositions aggregates active positions for all enabled accounts.
func (s *Service) FetchPositions(ctx context.Context, opts interfaces.FetchOptions) models.AggregateResult {
	return s.fetchAll(ctx, models.CategoryPositions, apiPositions, opts.SkipCache,
		func() interface{} { return models.EmptyPositionsSummary() },
		func(ctx context.Context, account models.Account) (interface{}, error) {
			data, err := s.exchange.GetPositions(ctx, account)
			if err != nil {
				return nil, err
			}
			return normalizePositions(data), nil
		})
}

// FetchTrades aggregates canonical trade history for all enabled accounts.
func (s *Service) FetchTrades(ctx context.Context, opts interfaces.FetchOptions) models.AggregateResult {
	params := interfaces.TradeParams{Symbol: opts.Symbol, Limit: opts.Limit}
	if params.Limit <= 0 {
		params.Limit = 1000
	}
	return s.fetchAll(ctx, models.CategoryTrades, apiTrades, opts.SkipCache,
		func() interface{} { return models.EmptyTradesSummary() },
		func(ctx context.Context, account models.Account) (interface{}, error) {
			data, err := s.exchange.GetTrades(ctx, account, params)
			if err != nil {
				return nil, err
			}
			return normalizeTrades(data), nil
		})
}
