package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"student-loan-sim/domain"
	"student-loan-sim/repository"
)

// variationConvention is part of every cache key so cached summaries never
// outlive a change in how variations map to standard deviations.
const variationConvention = "sigma=variation/2"

type SimulationService struct {
	runner    *MonteCarlo
	runs      repository.RunRepository
	cache     repository.CacheRepository
	returns   HistoricalReturnsProvider
	explainer *ExplanationService
	metrics   *Metrics
	limits    Limits
	defaults  domain.SimulationParameters
	lookback  int
	cacheTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

type SimulationServiceOption func(*SimulationService)

func WithReturnsProvider(p HistoricalReturnsProvider) SimulationServiceOption {
	return func(s *SimulationService) { s.returns = p }
}

func WithExplainer(e *ExplanationService) SimulationServiceOption {
	return func(s *SimulationService) { s.explainer = e }
}

func WithMetrics(m *Metrics) SimulationServiceOption {
	return func(s *SimulationService) { s.metrics = m }
}

func WithLimits(l Limits) SimulationServiceOption {
	return func(s *SimulationService) { s.limits = l }
}

func WithDefaults(p domain.SimulationParameters) SimulationServiceOption {
	return func(s *SimulationService) { s.defaults = p }
}

// WithDefaultLookback sets the lookback window used when a request names a
// ticker without one.
func WithDefaultLookback(years int) SimulationServiceOption {
	return func(s *SimulationService) {
		if years > 0 {
			s.lookback = years
		}
	}
}

func WithCacheTTL(ttl time.Duration) SimulationServiceOption {
	return func(s *SimulationService) { s.cacheTTL = ttl }
}

func WithLogger(l *slog.Logger) SimulationServiceOption {
	return func(s *SimulationService) { s.logger = l }
}

// NewSimulationService creates a SimulationService backed by the given run
// history and result cache.
func NewSimulationService(
	runner *MonteCarlo,
	runs repository.RunRepository,
	cache repository.CacheRepository,
	opts ...SimulationServiceOption,
) *SimulationService {
	s := &SimulationService{
		runner:   runner,
		runs:     runs,
		cache:    cache,
		limits:   DefaultLimits(),
		defaults: DefaultParameters(),
		lookback: DefaultLookbackYears,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run resolves the request into parameters, runs the batch and stores the
// record. Seeded runs are served from the cache when possible.
func (s *SimulationService) Run(
	ctx context.Context,
	req domain.SimulationRequest,
	progress ProgressFunc,
) (domain.RunRecord, error) {
	params, err := s.resolveParameters(ctx, req)
	if err != nil {
		return domain.RunRecord{}, err
	}
	if err := s.validate(params, req.Simulations); err != nil {
		s.metrics.observeRun(RunResultInvalid, 0, 0)
		return domain.RunRecord{}, err
	}

	seed := rand.Uint64()
	cacheable := req.Seed != nil
	if cacheable {
		seed = *req.Seed
	}

	record := domain.RunRecord{
		ID:               uuid.NewString(),
		CreatedAt:        s.now().UTC(),
		Parameters:       params,
		Simulations:      req.Simulations,
		Seed:             seed,
		Workers:          s.runner.Workers,
		InvestmentTicker: req.InvestmentTicker,
	}

	key := cacheKey(params, req.Simulations, seed)
	if cacheable && s.cache != nil {
		if summary, ok := s.cachedSummary(ctx, key); ok {
			record.Summary = summary
			record.Cached = true
			s.metrics.observeRun(RunResultCached, 0, 0)
			return s.finish(ctx, record), nil
		}
	}

	started := time.Now()
	result, err := s.runner.Run(ctx, params, req.Simulations, seed, progress)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.metrics.observeRun(RunResultCancelled, 0, 0)
		} else {
			s.metrics.observeRun(RunResultError, 0, 0)
		}
		return domain.RunRecord{}, err
	}
	elapsed := time.Since(started)
	s.metrics.observeRun(RunResultOK, req.Simulations, elapsed)
	s.logger.Info("simulation finished",
		"run_id", record.ID,
		"simulations", req.Simulations,
		"seed", seed,
		"elapsed", elapsed,
		"recommendation", result.Recommendation)

	record.Summary = NewRunSummary(result, HistogramBins)

	if cacheable && s.cache != nil {
		// Caching is an optimisation; a failure must not fail the run.
		if raw, err := json.Marshal(record.Summary); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache simulation summary", "run_id", record.ID, "error", err)
			}
		}
	}

	return s.finish(ctx, record), nil
}

func (s *SimulationService) finish(ctx context.Context, record domain.RunRecord) domain.RunRecord {
	if s.explainer != nil {
		record.Explanation = s.explainer.Explain(ctx, record)
	}
	if err := s.runs.Save(ctx, record); err != nil {
		s.logger.Warn("failed to save simulation run", "run_id", record.ID, "error", err)
	}
	return record
}

// Trace simulates a single path with year-by-year detail. For a given seed
// it is the first path of a Run with the same seed.
func (s *SimulationService) Trace(_ context.Context, req domain.TraceRequest) (domain.PathTrace, error) {
	if err := s.validate(req.Parameters, 1); err != nil {
		return domain.PathTrace{}, err
	}
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	return SimulatePathTrace(req.Parameters, NewRandomSource(seed, 0)), nil
}

func (s *SimulationService) Get(ctx context.Context, id string) (domain.RunRecord, error) {
	record, ok, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("find run %s: %w", id, err)
	}
	if !ok {
		return domain.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return record, nil
}

// Defaults returns the parameters offered to a new user.
func (s *SimulationService) Defaults() domain.SimulationParameters {
	return s.defaults
}

// DefaultLookback is the lookback window applied when a request has none.
func (s *SimulationService) DefaultLookback() int {
	return s.lookback
}

func (s *SimulationService) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	return s.runs.List(ctx, limit)
}

// HistoricalReturns exposes the configured provider to the presentation
// layer.
func (s *SimulationService) HistoricalReturns(
	ctx context.Context,
	ticker string,
	lookbackYears int,
) (domain.HistoricalReturns, error) {
	if s.returns == nil {
		return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: "no returns provider configured"}
	}
	if lookbackYears <= 0 {
		lookbackYears = s.lookback
	}
	r, err := s.returns.HistoricalReturns(ctx, ticker, lookbackYears)
	if err != nil {
		s.metrics.observeLookup(RunResultUnavailable)
		return domain.HistoricalReturns{}, err
	}
	s.metrics.observeLookup(RunResultOK)
	return r, nil
}

func (s *SimulationService) resolveParameters(
	ctx context.Context,
	req domain.SimulationRequest,
) (domain.SimulationParameters, error) {
	params := req.Parameters
	if req.InvestmentTicker == "" || req.InvestmentTicker == domain.CustomTicker {
		return params, nil
	}
	r, err := s.HistoricalReturns(ctx, req.InvestmentTicker, req.LookbackYears)
	if err != nil {
		s.metrics.observeRun(RunResultUnavailable, 0, 0)
		return domain.SimulationParameters{}, fmt.Errorf("resolve investment returns: %w", err)
	}
	return ApplyHistoricalReturns(params, r), nil
}

func (s *SimulationService) validate(params domain.SimulationParameters, count int) error {
	if err := ValidateParameters(params); err != nil {
		return err
	}
	if err := validateSimulationCount(count); err != nil {
		return err
	}
	return s.limits.check(params, count)
}

func (s *SimulationService) cachedSummary(ctx context.Context, key string) (domain.RunSummary, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.RunSummary{}, false
	}
	var summary domain.RunSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.logger.Warn("discarding unreadable cached summary", "key", key, "error", err)
		return domain.RunSummary{}, false
	}
	return summary, true
}

func cacheKey(params domain.SimulationParameters, count int, seed uint64) string {
	raw, _ := json.Marshal(struct {
		Params     domain.SimulationParameters `json:"p"`
		Count      int                         `json:"n"`
		Seed       uint64                      `json:"s"`
		Chunk      int                         `json:"c"`
		Bins       int                         `json:"b"`
		Convention string                      `json:"v"`
	}{params, count, seed, PathsPerChunk, HistogramBins, variationConvention})
	return fmt.Sprintf("sim:%016x", xxhash.Sum64(raw))
}
