package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"student-loan-sim/domain"
)

// TradingDaysPerYear is the window length of one yearly return.
const TradingDaysPerYear = 252

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9^._-]{1,20}$`)

type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeriesProvider computes returns from daily closing prices stored as
// <Dir>/<TICKER>.csv with a Date column and an "Adj Close" or "Close"
// column.
type PriceSeriesProvider struct {
	Dir string
}

func NewPriceSeriesProvider(dir string) *PriceSeriesProvider {
	return &PriceSeriesProvider{Dir: dir}
}

func (p *PriceSeriesProvider) HistoricalReturns(
	ctx context.Context,
	ticker string,
	lookbackYears int,
) (domain.HistoricalReturns, error) {
	if !tickerPattern.MatchString(ticker) || strings.Contains(ticker, "..") {
		return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: "malformed ticker"}
	}
	if lookbackYears < 1 {
		return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: "lookback must be at least one year"}
	}
	if err := ctx.Err(); err != nil {
		return domain.HistoricalReturns{}, err
	}

	f, err := os.Open(filepath.Join(p.Dir, strings.ToUpper(ticker)+".csv"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: "no price file"}
		}
		return domain.HistoricalReturns{}, fmt.Errorf("open price file for %s: %w", ticker, err)
	}
	defer f.Close()

	prices, err := ReadPriceSeries(f)
	if err != nil {
		return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: err.Error()}
	}

	r, err := ReturnsFromPrices(prices, lookbackYears)
	if err != nil {
		return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: err.Error()}
	}
	r.Ticker = strings.ToUpper(ticker)
	r.Source = "price_series"
	return r, nil
}

// ReadPriceSeries parses a CSV of daily prices sorted by date. Rows with a
// missing or non-positive close are skipped.
func ReadPriceSeries(r io.Reader) ([]PricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateCol, closeCol, adjCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		case "adj close", "adj_close", "adjclose":
			adjCol = i
		}
	}
	if adjCol >= 0 {
		closeCol = adjCol
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, errors.New("price file needs Date and Close columns")
	}

	var prices []PricePoint
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read prices: %w", err)
		}
		if len(rec) <= max(dateCol, closeCol) {
			continue
		}
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", rec[dateCol], err)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(rec[closeCol]), 64)
		if err != nil || math.IsNaN(closePrice) || math.IsInf(closePrice, 0) || closePrice <= 0 {
			continue
		}
		prices = append(prices, PricePoint{Date: date, Close: closePrice})
	}

	slices.SortFunc(prices, func(a, b PricePoint) int { return a.Date.Compare(b.Date) })
	return prices, nil
}

// ReturnsFromPrices keeps the prices of the last lookbackYears (ending at
// the latest observation) and measures non-overlapping yearly returns
// counted back from the most recent close. Variation is twice the
// population standard deviation of those returns.
func ReturnsFromPrices(prices []PricePoint, lookbackYears int) (domain.HistoricalReturns, error) {
	if len(prices) == 0 {
		return domain.HistoricalReturns{}, errors.New("empty price series")
	}
	cutoff := prices[len(prices)-1].Date.AddDate(-lookbackYears, 0, 0)
	start, _ := slices.BinarySearchFunc(prices, cutoff, func(p PricePoint, t time.Time) int {
		return p.Date.Compare(t)
	})
	window := prices[start:]

	var yearly []float64
	for i := len(window) - TradingDaysPerYear; i >= 0; i -= TradingDaysPerYear {
		first := window[i].Close
		last := window[i+TradingDaysPerYear-1].Close
		yearly = append(yearly, (last-first)/first)
	}
	if len(yearly) == 0 {
		return domain.HistoricalReturns{}, errors.New("not enough historical data for one full year")
	}

	return domain.HistoricalReturns{
		LookbackYears: lookbackYears,
		MeanReturn:    mean(yearly),
		Variation:     2 * stdDev(yearly),
		Observations:  len(yearly),
	}, nil
}
