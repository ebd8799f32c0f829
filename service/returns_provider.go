package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"student-loan-sim/domain"
	"student-loan-sim/repository"
)

// HistoricalReturnsProvider resolves an investment vehicle to its annualised
// mean return and variation over a lookback window. Failures to find usable
// data are reported as ErrDataUnavailable.
type HistoricalReturnsProvider interface {
	HistoricalReturns(ctx context.Context, ticker string, lookbackYears int) (domain.HistoricalReturns, error)
}

// ChainProvider asks each provider in turn and returns the first usable
// answer. Errors other than ErrDataUnavailable stop the chain.
type ChainProvider struct {
	providers []HistoricalReturnsProvider
}

func NewChainProvider(providers ...HistoricalReturnsProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (c *ChainProvider) HistoricalReturns(
	ctx context.Context,
	ticker string,
	lookbackYears int,
) (domain.HistoricalReturns, error) {
	var reasons []string
	for _, p := range c.providers {
		r, err := p.HistoricalReturns(ctx, ticker, lookbackYears)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrDataUnavailable) {
			return domain.HistoricalReturns{}, err
		}
		reasons = append(reasons, err.Error())
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no providers configured")
	}
	return domain.HistoricalReturns{}, &DataUnavailableError{
		Ticker: ticker,
		Reason: strings.Join(reasons, "; "),
	}
}

// CachedProvider memoises another provider in the cache repository.
type CachedProvider struct {
	next   HistoricalReturnsProvider
	cache  repository.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProvider(
	next HistoricalReturnsProvider,
	cache repository.CacheRepository,
	ttl time.Duration,
) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, logger: slog.Default()}
}

func (c *CachedProvider) HistoricalReturns(
	ctx context.Context,
	ticker string,
	lookbackYears int,
) (domain.HistoricalReturns, error) {
	key := fmt.Sprintf("returns:%s:%d", strings.ToUpper(ticker), lookbackYears)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var r domain.HistoricalReturns
		if err := json.Unmarshal([]byte(raw), &r); err == nil {
			return r, nil
		}
		c.logger.Warn("discarding unreadable cached returns", "key", key)
	}

	r, err := c.next.HistoricalReturns(ctx, ticker, lookbackYears)
	if err != nil {
		return domain.HistoricalReturns{}, err
	}

	if raw, err := json.Marshal(r); err == nil {
		if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
			c.logger.Warn("failed to cache historical returns", "key", key, "error", err)
		}
	}
	return r, nil
}

// ApplyHistoricalReturns copies a lookup result onto the investment fields
// of params.
func ApplyHistoricalReturns(params domain.SimulationParameters, r domain.HistoricalReturns) domain.SimulationParameters {
	params.InvestmentRate = r.MeanReturn
	params.InvestmentRateSigma = r.Variation
	return params
}
