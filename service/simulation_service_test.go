package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"student-loan-sim/domain"
	"student-loan-sim/repository"
)

type MockRunRepository struct {
	SaveCalled int
	ForceError bool
	records    map[string]domain.RunRecord
}

func (m *MockRunRepository) Save(_ context.Context, record domain.RunRecord) error {
	m.SaveCalled++
	if m.ForceError {
		return errors.New("save error")
	}
	if m.records == nil {
		m.records = make(map[string]domain.RunRecord)
	}
	m.records[record.ID] = record
	return nil
}

func (m *MockRunRepository) FindByID(_ context.Context, id string) (domain.RunRecord, bool, error) {
	if m.ForceError {
		return domain.RunRecord{}, false, errors.New("find error")
	}
	record, ok := m.records[id]
	return record, ok, nil
}

func (m *MockRunRepository) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	out := make([]domain.RunRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func seedPtr(s uint64) *uint64 { return &s }

func newTestService(repo repository.RunRepository, opts ...SimulationServiceOption) *SimulationService {
	return NewSimulationService(NewMonteCarlo(2), repo, repository.NewMemoryCache(), opts...)
}

func TestSimulationServiceRun(t *testing.T) {
	repo := &MockRunRepository{}
	svc := newTestService(repo)

	record, err := svc.Run(context.Background(), domain.SimulationRequest{
		Parameters:  DefaultParameters(),
		Simulations: 1000,
		Seed:        seedPtr(42),
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID == "" || record.Seed != 42 || record.Cached {
		t.Errorf("unexpected record header %+v", record)
	}
	if record.Summary.Simulations != 1000 {
		t.Errorf("expected 1000 simulations, got %d", record.Summary.Simulations)
	}
	if repo.SaveCalled != 1 {
		t.Errorf("expected repository Save to be called once, got %d", repo.SaveCalled)
	}
}

func TestSimulationServiceRun_SeededRunIsCached(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := newTestService(&MockRunRepository{}, WithMetrics(metrics))
	req := domain.SimulationRequest{Parameters: DefaultParameters(), Simulations: 800, Seed: seedPtr(7)}

	first, err := svc.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.Cached {
		t.Errorf("expected second run to be served from cache")
	}
	if first.ID == second.ID {
		t.Errorf("expected each run to get its own id")
	}
	if !reflect.DeepEqual(first.Summary, second.Summary) {
		t.Errorf("expected cached summary to equal the computed one")
	}
	if got := testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(RunResultCached)); got != 1 {
		t.Errorf("expected one cached run recorded, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.PathsTotal); got != 800 {
		t.Errorf("expected 800 simulated paths, got %v", got)
	}
}

func TestSimulationServiceRun_UnseededRunsDiffer(t *testing.T) {
	svc := newTestService(&MockRunRepository{})
	req := domain.SimulationRequest{Parameters: DefaultParameters(), Simulations: 200}

	a, err := svc.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Cached || b.Cached {
		t.Errorf("expected unseeded runs to bypass the cache")
	}
	if a.Seed == b.Seed {
		t.Errorf("expected distinct random seeds")
	}
}

func TestSimulationServiceRun_Invalid(t *testing.T) {
	repo := &MockRunRepository{}
	svc := newTestService(repo, WithLimits(Limits{MaxSimulations: 100, MaxPaybackYears: 40}))

	params := DefaultParameters()
	params.RepaymentRate = 3
	if _, err := svc.Run(context.Background(), domain.SimulationRequest{Parameters: params, Simulations: 10}, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := svc.Run(context.Background(), domain.SimulationRequest{Parameters: DefaultParameters(), Simulations: 101}, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected limit violation, got %v", err)
	}
	if repo.SaveCalled != 0 {
		t.Errorf("expected nothing saved for invalid requests")
	}
}

func TestSimulationServiceRun_SaveFailureKeepsResult(t *testing.T) {
	svc := newTestService(&MockRunRepository{ForceError: true})

	record, err := svc.Run(context.Background(), domain.SimulationRequest{Parameters: DefaultParameters(), Simulations: 50}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Summary.Simulations != 50 {
		t.Errorf("expected a complete summary, got %+v", record.Summary)
	}
}

func TestSimulationServiceRun_InvestmentTicker(t *testing.T) {
	svc := newTestService(&MockRunRepository{}, WithReturnsProvider(NewIndexTableProvider()))

	params := DefaultParameters()
	record, err := svc.Run(context.Background(), domain.SimulationRequest{
		Parameters:       params,
		Simulations:      100,
		InvestmentTicker: "SPY",
		LookbackYears:    20,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Parameters.InvestmentRate != 0.104 || record.Parameters.InvestmentRateSigma != 0.34 {
		t.Errorf("expected SPY returns to be applied, got %+v", record.Parameters)
	}
	if record.InvestmentTicker != "SPY" {
		t.Errorf("expected ticker on the record, got %q", record.InvestmentTicker)
	}

	custom, err := svc.Run(context.Background(), domain.SimulationRequest{
		Parameters:       params,
		Simulations:      100,
		InvestmentTicker: domain.CustomTicker,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if custom.Parameters.InvestmentRate != params.InvestmentRate {
		t.Errorf("expected custom ticker to keep the entered rate")
	}

	_, err = svc.Run(context.Background(), domain.SimulationRequest{
		Parameters:       params,
		Simulations:      100,
		InvestmentTicker: "UNKNOWN",
	}, nil)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestSimulationServiceRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(&MockRunRepository{}).Run(ctx, domain.SimulationRequest{
		Parameters:  DefaultParameters(),
		Simulations: 1000,
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSimulationServiceRun_Explanation(t *testing.T) {
	svc := newTestService(&MockRunRepository{}, WithExplainer(NewExplanationService("", "", "")))

	record, err := svc.Run(context.Background(), domain.SimulationRequest{Parameters: DefaultParameters(), Simulations: 100}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Explanation != FallbackExplanation(record) {
		t.Errorf("expected template explanation without an API key, got %q", record.Explanation)
	}
}

func TestSimulationServiceTrace_IsFirstPathOfRun(t *testing.T) {
	svc := newTestService(&MockRunRepository{})
	params := DefaultParameters()

	trace, err := svc.Trace(context.Background(), domain.TraceRequest{Parameters: params, Seed: seedPtr(123)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := NewMonteCarlo(3).Run(context.Background(), params, 600, 123, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trace.Outcome.TotalRepayments != result.Repayments[0] || trace.Outcome.FinalInvestment != result.Investments[0] {
		t.Errorf("expected trace %+v to match first path (%v, %v)",
			trace.Outcome, result.Repayments[0], result.Investments[0])
	}
	if len(trace.Years) == 0 || len(trace.Years) > params.PaybackYears {
		t.Errorf("unexpected number of years %d", len(trace.Years))
	}
}

func TestSimulationServiceGet(t *testing.T) {
	repo := &MockRunRepository{}
	svc := newTestService(repo)

	record, err := svc.Run(context.Background(), domain.SimulationRequest{Parameters: DefaultParameters(), Simulations: 10}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != record.ID {
		t.Errorf("expected %s, got %s", record.ID, got.ID)
	}

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSimulationServiceHistoricalReturns(t *testing.T) {
	if _, err := newTestService(&MockRunRepository{}).HistoricalReturns(context.Background(), "SPY", 20); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable without a provider, got %v", err)
	}

	svc := newTestService(&MockRunRepository{}, WithReturnsProvider(NewIndexTableProvider()))
	r, err := svc.HistoricalReturns(context.Background(), "SPY", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.LookbackYears != DefaultLookbackYears {
		t.Errorf("expected default lookback, got %d", r.LookbackYears)
	}
}

func TestCacheKey(t *testing.T) {
	params := DefaultParameters()
	base := cacheKey(params, 100, 1)

	if base != cacheKey(params, 100, 1) {
		t.Errorf("expected stable cache keys")
	}
	params.ChildProb = 0.2
	for _, other := range []string{cacheKey(params, 100, 1), cacheKey(DefaultParameters(), 101, 1), cacheKey(DefaultParameters(), 100, 2)} {
		if other == base {
			t.Errorf("expected different inputs to produce different keys")
		}
	}
}

func TestSimulationServiceHistoricalReturns_ConfiguredLookback(t *testing.T) {
	svc := newTestService(&MockRunRepository{},
		WithReturnsProvider(NewIndexTableProvider()),
		WithDefaultLookback(5))

	if svc.DefaultLookback() != 5 {
		t.Errorf("expected lookback 5, got %d", svc.DefaultLookback())
	}

	r, err := svc.HistoricalReturns(context.Background(), "SPY", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.LookbackYears != 5 {
		t.Errorf("expected the configured 5-year window, got %d", r.LookbackYears)
	}

	record, err := svc.Run(context.Background(), domain.SimulationRequest{
		Parameters:       DefaultParameters(),
		Simulations:      10,
		InvestmentTicker: "SPY",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Parameters.InvestmentRate != 0.145 {
		t.Errorf("expected the 5-year SPY return, got %v", record.Parameters.InvestmentRate)
	}
}

func TestWithDefaultLookback_IgnoresNonPositive(t *testing.T) {
	svc := newTestService(&MockRunRepository{}, WithDefaultLookback(0))
	if svc.DefaultLookback() != DefaultLookbackYears {
		t.Errorf("expected %d, got %d", DefaultLookbackYears, svc.DefaultLookback())
	}
}
