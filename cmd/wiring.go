package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"student-loan-sim/config"
	"student-loan-sim/repository"
	"student-loan-sim/service"
)

// app is the service graph shared by the server and the CLI commands.
type app struct {
	service *service.SimulationService
	cleanup func()
}

// newApp builds the simulation service from cfg. reg may be nil, in which
// case no metrics are recorded.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	var cache repository.CacheRepository
	var cleanup func()
	if !cfg.Redis.Enabled {
		memoryCache := repository.NewMemoryCache()
		cache = memoryCache
		cleanup = func() { memoryCache.Close() }
	} else {
		redisCache := repository.NewRedisCache(repository.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			redisCache.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis result cache", "addr", cfg.Redis.Addr)
		cache = redisCache
		cleanup = func() { redisCache.Close() }
	}

	providers := []service.HistoricalReturnsProvider{}
	if cfg.Returns.DataDir != "" {
		providers = append(providers, service.NewPriceSeriesProvider(cfg.Returns.DataDir))
	}
	providers = append(providers, service.NewIndexTableProvider())
	returns := service.NewCachedProvider(service.NewChainProvider(providers...), cache, cfg.Returns.CacheTTL)

	opts := []service.SimulationServiceOption{
		service.WithReturnsProvider(returns),
		service.WithLimits(cfg.Limits()),
		service.WithDefaults(cfg.Simulation.Defaults),
		service.WithDefaultLookback(cfg.Returns.LookbackYears),
		service.WithCacheTTL(cfg.Redis.TTL),
		service.WithLogger(logger),
	}
	if reg != nil {
		opts = append(opts, service.WithMetrics(service.NewMetrics(reg)))
	}
	if cfg.Explain.Enabled {
		apiKey := cfg.Explain.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			logger.Warn("explanations enabled without an API key, using the built-in template")
		}
		opts = append(opts, service.WithExplainer(service.NewExplanationService(apiKey, cfg.Explain.APIURL, cfg.Explain.Model)))
	}

	svc := service.NewSimulationService(
		service.NewMonteCarlo(cfg.Simulation.Workers),
		repository.NewRunRepositoryMemory(cfg.Simulation.HistorySize),
		cache,
		opts...,
	)
	return &app{service: svc, cleanup: cleanup}, nil
}
