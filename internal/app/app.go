// Package app wires configuration, clients, cache, registry, and services
// into one application object shared by the server entrypoint and tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rfglabs/modeldesk/internal/cache"
	"github.com/rfglabs/modeldesk/internal/clients/aster"
	"github.com/rfglabs/modeldesk/internal/clients/recorder"
	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/registry"
	"github.com/rfglabs/modeldesk/internal/services/chart"
	"github.com/rfglabs/modeldesk/internal/services/portfolio"
)

// App holds all initialized clients and services.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Cache       *cache.Cache
	Registry    *registry.Registry
	Exchange    interfaces.ExchangeClient
	Recorder    interfaces.RecorderClient
	Portfolio   interfaces.PortfolioService
	Chart       interfaces.ChartService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes the application from configuration. configPath may be
// empty, in which case MODELDESK_CONFIG, then the binary directory, then
// the development default are tried in order.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("MODELDESK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "modeldesk.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/modeldesk.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	responseCache := cache.New(config.Cache, cache.WithLogger(logger))

	accountRegistry := registry.New(config.Accounts)
	if len(accountRegistry.ListEnabled()) == 0 {
		logger.Warn().Msg("No enabled accounts configured - aggregate endpoints will be empty")
	}

	exchangeClient := aster.NewClient(
		aster.WithBaseURL(config.Clients.Aster.BaseURL),
		aster.WithRateLimit(config.Clients.Aster.RateLimit),
		aster.WithTimeout(config.Clients.Aster.GetTimeout()),
		aster.WithLogger(logger),
	)

	recorderClient := recorder.NewClient(
		recorder.WithBaseURL(config.Clients.Recorder.BaseURL),
		recorder.WithTimeout(config.Clients.Recorder.GetTimeout()),
		recorder.WithLogger(logger),
	)

	portfolioService := portfolio.NewService(
		accountRegistry,
		exchangeClient,
		responseCache,
		logger,
		config.Fetch.GetMaxInFlight(),
	)

	chartService := chart.NewService(
		accountRegistry,
		exchangeClient,
		recorderClient,
		responseCache,
		logger,
		config.Chart,
	)

	logger.Info().
		Str("environment", config.Environment).
		Int("accounts", len(accountRegistry.ListAll())).
		Int("enabled", len(accountRegistry.ListEnabled())).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return &App{
		Config:      config,
		Logger:      logger,
		Cache:       responseCache,
		Registry:    accountRegistry,
		Exchange:    exchangeClient,
		Recorder:    recorderClient,
		Portfolio:   portfolioService,
		Chart:       chartService,
		StartupTime: startupStart,
	}, nil
}
