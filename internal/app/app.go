// Package app wires configuration, storage, clients and services into one
// shared application core.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cardfolio/cardfolio/internal/clients/boc"
	"github.com/cardfolio/cardfolio/internal/clients/pricefeed"
	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/interfaces"
	"github.com/cardfolio/cardfolio/internal/services/ranking"
	"github.com/cardfolio/cardfolio/internal/services/valuation"
	"github.com/cardfolio/cardfolio/internal/storage"
)

// App holds all initialized services and clients. It is the shared core used
// by cmd/cardfolio-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	FeedClient       interfaces.PriceFeedClient
	RatesClient      interfaces.ExchangeRateClient
	RankingService   interfaces.RankingService
	ValuationService interfaces.ValuationService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Check provided path, CARDFOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("CARDFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "cardfolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/cardfolio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Feed.APIKey == "" {
		logger.Warn().Msg("Feed API key not configured - price collection may be rejected upstream")
	}

	feedClient := pricefeed.NewClient(config.Feed, logger)

	var ratesClient interfaces.ExchangeRateClient
	if config.Rates.Enabled {
		ratesClient = boc.NewClient(config.Rates, logger)
	}

	rankingService := ranking.NewService(storageManager, feedClient, ratesClient, config, logger)
	valuationService := valuation.NewService(storageManager, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		FeedClient:       feedClient,
		RatesClient:      ratesClient,
		RankingService:   rankingService,
		ValuationService: valuationService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartRefreshScheduler launches the background price refresh goroutine.
func (a *App) StartRefreshScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	go startRefreshScheduler(ctx, a.RankingService, a.Logger, a.Config.Feed.GetRefreshInterval())
}
