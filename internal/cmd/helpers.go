package cmd

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/config"
	"github.com/domainsweep/domainsweep/internal/core/checker"
	"github.com/domainsweep/domainsweep/internal/core/engine"
	"github.com/domainsweep/domainsweep/internal/core/store"
	"github.com/domainsweep/domainsweep/internal/observability"
)

// loadConfig decodes and validates the merged viper settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens and migrates the result cache database. Failures are
// logged and tolerated: the cache is an optimization, not a requirement.
func openStore(ctx context.Context, cfg *config.Config) *store.Store {
	if !cfg.Cache.Enabled {
		return nil
	}

	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		observability.CLILogger.Warn("Result cache unavailable, continuing without it", zap.Error(err))
		return nil
	}
	if err := s.Migrate(ctx); err != nil {
		observability.CLILogger.Warn("Result cache migration failed, continuing without it", zap.Error(err))
		_ = s.Close()
		return nil
	}
	return s
}

// storeOrNil avoids handing a typed nil pointer to the checker interface.
func storeOrNil(s *store.Store) checker.CacheStore {
	if s == nil {
		return nil
	}
	return s
}

// buildChecker assembles the rate limiter and domain checker from config.
func buildChecker(cfg *config.Config, cacheStore checker.CacheStore, useCache bool, logger *zap.Logger) (*checker.DomainChecker, error) {
	limiter, err := engine.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Period())
	if err != nil {
		return nil, err
	}

	return &checker.DomainChecker{
		Limiter: limiter,

		Store:    cacheStore,
		UseCache: useCache && cacheStore != nil,
		CachePolicy: checker.CachePolicy{
			AvailableTTL: cfg.Cache.AvailableTTL,
			TakenTTL:     cfg.Cache.TakenTTL,
			ErrorTTL:     cfg.Cache.ErrorTTL,
		},

		APIKey:       cfg.API.Key,
		APIHost:      cfg.API.Host,
		BaseURL:      cfg.API.BaseURL,
		EndpointPath: cfg.API.EndpointPath,

		MaxRetries:     cfg.Retry.MaxRetries,
		BackoffFactor:  cfg.Retry.BackoffFactor,
		RequestTimeout: cfg.RequestTimeout(),

		ToolVersion: versionInfo.Version,
		Logger:      logger,
	}, nil
}
