package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"student-loan-sim/domain"
	"student-loan-sim/repository"
)

// geometricPrices returns n daily prices whose every 252-day window gains
// exactly yearly.
func geometricPrices(n int, yearly float64) []PricePoint {
	start := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	step := math.Pow(1+yearly, 1.0/(TradingDaysPerYear-1))
	prices := make([]PricePoint, n)
	for i := range prices {
		prices[i] = PricePoint{Date: start.AddDate(0, 0, i), Close: 100 * math.Pow(step, float64(i))}
	}
	return prices
}

func pricesCSV(prices []PricePoint) string {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")
	for _, p := range prices {
		fmt.Fprintf(&b, "%s,1,1,1,999,%.10f,1000\n", p.Date.Format(time.DateOnly), p.Close)
	}
	return b.String()
}

func TestReturnsFromPrices_ConstantGrowth(t *testing.T) {
	r, err := ReturnsFromPrices(geometricPrices(3*TradingDaysPerYear+10, 0.08), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Observations != 3 {
		t.Errorf("expected 3 yearly returns, got %d", r.Observations)
	}
	if math.Abs(r.MeanReturn-0.08) > 1e-9 {
		t.Errorf("expected mean 0.08, got %v", r.MeanReturn)
	}
	if r.Variation > 1e-9 {
		t.Errorf("expected no variation, got %v", r.Variation)
	}
}

func TestReturnsFromPrices_Variation(t *testing.T) {
	// Two yearly windows: +10% then +30%.
	prices := append(geometricPrices(TradingDaysPerYear, 0.1), geometricPrices(TradingDaysPerYear, 0.3)...)
	for i := range prices[TradingDaysPerYear:] {
		p := &prices[TradingDaysPerYear+i]
		p.Date = prices[TradingDaysPerYear-1].Date.AddDate(0, 0, i+1)
		p.Close *= 2
	}

	r, err := ReturnsFromPrices(prices, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(r.MeanReturn-0.2) > 1e-9 {
		t.Errorf("expected mean 0.2, got %v", r.MeanReturn)
	}
	// Population std dev of {0.1, 0.3} is 0.1.
	if math.Abs(r.Variation-0.2) > 1e-9 {
		t.Errorf("expected variation 0.2, got %v", r.Variation)
	}
}

func TestReturnsFromPrices_LookbackWindow(t *testing.T) {
	// Calendar-daily prices over ~4 years; one year of lookback holds a
	// single full window.
	r, err := ReturnsFromPrices(geometricPrices(4*365, 0.05), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Observations != 1 || r.LookbackYears != 1 {
		t.Errorf("expected one observation over one year, got %+v", r)
	}
}

func TestReturnsFromPrices_NotEnoughData(t *testing.T) {
	if _, err := ReturnsFromPrices(nil, 20); err == nil {
		t.Errorf("expected error for empty series")
	}
	if _, err := ReturnsFromPrices(geometricPrices(TradingDaysPerYear-1, 0.1), 20); err == nil {
		t.Errorf("expected error for less than a year of prices")
	}
}

func TestReadPriceSeries(t *testing.T) {
	csv := `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-03,1,1,1,50,101.5,10
2024-01-02,1,1,1,50,100,10
2024-01-04,1,1,1,50,null,10
2024-01-05,1,1,1,50,0,10
2024-01-08,1,1,1,50,102,10
`
	prices, err := ReadPriceSeries(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 3 {
		t.Fatalf("expected 3 usable rows, got %d", len(prices))
	}
	if prices[0].Close != 100 || prices[1].Close != 101.5 || prices[2].Close != 102 {
		t.Errorf("expected sorted adjusted closes, got %+v", prices)
	}
}

func TestReadPriceSeries_CloseOnly(t *testing.T) {
	prices, err := ReadPriceSeries(strings.NewReader("date,close\n2024-01-02,10\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 1 || prices[0].Close != 10 {
		t.Errorf("unexpected prices %+v", prices)
	}

	if _, err := ReadPriceSeries(strings.NewReader("Date,Volume\n2024-01-02,10\n")); err == nil {
		t.Errorf("expected error without a close column")
	}
	if _, err := ReadPriceSeries(strings.NewReader("Date,Close\nyesterday,10\n")); err == nil {
		t.Errorf("expected error for a malformed date")
	}
}

func TestPriceSeriesProvider(t *testing.T) {
	dir := t.TempDir()
	data := pricesCSV(geometricPrices(2*TradingDaysPerYear, 0.07))
	if err := os.WriteFile(filepath.Join(dir, "VWRL.L.csv"), []byte(data), 0o644); err != nil {
		t.Fatalf("write price file: %v", err)
	}
	provider := NewPriceSeriesProvider(dir)

	r, err := provider.HistoricalReturns(context.Background(), "vwrl.l", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Ticker != "VWRL.L" || r.Source != "price_series" || r.Observations != 2 {
		t.Errorf("unexpected result %+v", r)
	}
	if math.Abs(r.MeanReturn-0.07) > 1e-6 {
		t.Errorf("expected mean 0.07, got %v", r.MeanReturn)
	}

	for _, ticker := range []string{"SPY", "../secrets", ""} {
		if _, err := provider.HistoricalReturns(context.Background(), ticker, 10); !errors.Is(err, ErrDataUnavailable) {
			t.Errorf("%q: expected ErrDataUnavailable, got %v", ticker, err)
		}
	}
}

func TestIndexTableProvider(t *testing.T) {
	provider := NewIndexTableProvider()

	r, err := provider.HistoricalReturns(context.Background(), "sp500", 22)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Ticker != "SPY" || r.LookbackYears != 20 || r.MeanReturn != 0.104 || r.Variation != 0.34 {
		t.Errorf("unexpected result %+v", r)
	}

	if _, err := provider.HistoricalReturns(context.Background(), "SPY", 2); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable for a short lookback, got %v", err)
	}
	if _, err := provider.HistoricalReturns(context.Background(), "NOPE", 20); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable for unknown ticker, got %v", err)
	}
}

type stubReturnsProvider struct {
	result domain.HistoricalReturns
	err    error
	calls  int
}

func (s *stubReturnsProvider) HistoricalReturns(context.Context, string, int) (domain.HistoricalReturns, error) {
	s.calls++
	return s.result, s.err
}

func TestChainProvider(t *testing.T) {
	missing := &stubReturnsProvider{err: &DataUnavailableError{Ticker: "X", Reason: "missing"}}
	found := &stubReturnsProvider{result: domain.HistoricalReturns{Ticker: "X", MeanReturn: 0.05}}

	r, err := NewChainProvider(missing, found).HistoricalReturns(context.Background(), "X", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MeanReturn != 0.05 || missing.calls != 1 || found.calls != 1 {
		t.Errorf("expected fallthrough to second provider, got %+v", r)
	}

	broken := &stubReturnsProvider{err: errors.New("disk on fire")}
	after := &stubReturnsProvider{}
	if _, err := NewChainProvider(broken, after).HistoricalReturns(context.Background(), "X", 10); err == nil || errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected the hard error to be returned, got %v", err)
	}
	if after.calls != 0 {
		t.Errorf("expected chain to stop at a hard error")
	}

	if _, err := NewChainProvider().HistoricalReturns(context.Background(), "X", 10); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable from empty chain, got %v", err)
	}
}

func TestCachedProvider(t *testing.T) {
	next := &stubReturnsProvider{result: domain.HistoricalReturns{Ticker: "SPY", MeanReturn: 0.1, Variation: 0.3}}
	provider := NewCachedProvider(next, repository.NewMemoryCache(), time.Hour)

	for range 3 {
		r, err := provider.HistoricalReturns(context.Background(), "spy", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r != next.result {
			t.Errorf("expected %+v, got %+v", next.result, r)
		}
	}
	if next.calls != 1 {
		t.Errorf("expected a single upstream lookup, got %d", next.calls)
	}
}

func TestApplyHistoricalReturns(t *testing.T) {
	params := ApplyHistoricalReturns(DefaultParameters(), domain.HistoricalReturns{MeanReturn: 0.07, Variation: 0.3})
	if params.InvestmentRate != 0.07 || params.InvestmentRateSigma != 0.3 {
		t.Errorf("expected investment fields to be replaced, got %+v", params)
	}
}
