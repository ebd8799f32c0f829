package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDataUnavailable  = errors.New("historical data unavailable")
	ErrRunNotFound      = errors.New("run not found")
)

// ParameterError reports the first constraint a request violates.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

type DataUnavailableError struct {
	Ticker string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no usable data for %s: %s", e.Ticker, e.Reason)
}

func (e *DataUnavailableError) Unwrap() error { return ErrDataUnavailable }
