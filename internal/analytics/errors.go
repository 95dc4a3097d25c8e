package analytics

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPortfolio   = errors.New("portfolio has no holdings")
	ErrInvalidHolding   = errors.New("invalid holding")
	ErrUnknownRiskModel = errors.New("unknown risk model")
)

// ValidationError describes the field of a holding that cannot be priced
type ValidationError struct {
	Symbol string
	Field  string
	Value  float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("holding %q: %s must be a non-negative finite number that fits in a float64, got %v", e.Symbol, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidHolding }
