/*
Package ratemath provides the pure numeric routines shared by the costing,
billing, and rate-recommendation engines.

PURPOSE:
  All money and quantity math in this system flows through this package:
  - Quantize: round-half-up rounding for monetary outputs
  - Percentile / Median: linear-interpolation statistics over sorted samples
  - ConvertRate: daily <-> hourly labor rate conversion

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal throughout; no binary floating point for money
  2. Totality: percentile/median on empty input return zero, never an error
     (sparse data is a normal condition, handled upstream as absence)
  3. No collaborators: this package imports nothing from the rest of the repo

SEE ALSO:
  - costing: cost formulas built on these primitives
  - rates: recommendation statistics built on Percentile/Median
*/
package ratemath

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TYPE - Closed variant for labor rate units
// =============================================================================

// RateType identifies how a labor unit rate is expressed.
type RateType string

const (
	RateDaily  RateType = "daily"
	RateHourly RateType = "hourly"
)

// ErrUnknownRateType is returned when a rate type string is not one of the
// closed variants. Callers converting historical entries skip such entries
// rather than failing the whole computation.
var ErrUnknownRateType = errors.New("unknown rate type")

// ParseRateType converts a wire string into a RateType.
func ParseRateType(s string) (RateType, error) {
	switch RateType(s) {
	case RateDaily, RateHourly:
		return RateType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRateType, s)
	}
}

// DefaultHoursPerDay is the assumed working hours in one daily rate.
var DefaultHoursPerDay = decimal.NewFromFloat(8.0)

// =============================================================================
// ROUNDING
// =============================================================================

// MoneyPlaces is the number of fractional digits carried by monetary amounts.
const MoneyPlaces = 2

// Quantize rounds an amount to the given number of fractional digits using
// round-half-up. Every monetary output passes through this before being
// returned or persisted.
func Quantize(x decimal.Decimal, places int32) decimal.Decimal {
	return x.Round(places)
}

// QuantizeMoney rounds to the standard 2 monetary fractional digits.
func QuantizeMoney(x decimal.Decimal) decimal.Decimal {
	return Quantize(x, MoneyPlaces)
}

// =============================================================================
// PERCENTILE STATISTICS
// =============================================================================

// Percentile computes the linear-interpolation percentile of an ascending
// sorted sample. p is in [0, 1]. An empty sample yields zero; this is the
// documented fallback for sparse data, not an error.
func Percentile(sorted []decimal.Decimal, p float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return sorted[0]
	}

	k := decimal.NewFromFloat(p).Mul(decimal.NewFromInt(int64(n - 1)))
	f := k.Floor()
	fi := int(f.IntPart())
	ci := fi + 1
	if ci > n-1 {
		ci = n - 1
	}
	if fi == ci {
		return sorted[fi]
	}

	// Weighted blend of the two neighbouring samples.
	c := decimal.NewFromInt(int64(ci))
	d0 := sorted[fi].Mul(c.Sub(k))
	d1 := sorted[ci].Mul(k.Sub(f))
	return QuantizeMoney(d0.Add(d1))
}

// Median is the 0.5 percentile. For an odd-length sample this is the middle
// element; for an even-length sample the mean of the two middle elements.
func Median(sorted []decimal.Decimal) decimal.Decimal {
	return Percentile(sorted, 0.5)
}

// =============================================================================
// RATE CONVERSION
// =============================================================================

// ConvertRate converts a labor rate between daily and hourly units using the
// given hours-per-day assumption. Identity when units match. The result is
// quantized to 2 places.
func ConvertRate(rate decimal.Decimal, from, to RateType, hoursPerDay decimal.Decimal) (decimal.Decimal, error) {
	switch from {
	case RateDaily, RateHourly:
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownRateType, from)
	}
	switch to {
	case RateDaily, RateHourly:
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownRateType, to)
	}

	if from == to {
		return rate, nil
	}
	if hoursPerDay.Sign() <= 0 {
		hoursPerDay = DefaultHoursPerDay
	}
	if from == RateDaily {
		return QuantizeMoney(rate.Div(hoursPerDay)), nil
	}
	return QuantizeMoney(rate.Mul(hoursPerDay)), nil
}
