package ratemath_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/cost-engine/ratemath"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sample(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, dec(v))
	}
	return out
}

// =============================================================================
// QUANTIZE TESTS
// =============================================================================

func TestQuantize_RoundHalfUp(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   string
	}{
		{"1.005", 2, "1.01"},
		{"1.004", 2, "1.00"},
		{"2.5", 0, "3"},
		{"123.456", 2, "123.46"},
		{"0", 2, "0"},
	}

	for _, c := range cases {
		got := ratemath.Quantize(dec(c.in), c.places)
		assert.True(t, got.Equal(dec(c.want)), "Quantize(%s, %d) = %s, want %s", c.in, c.places, got, c.want)
	}
}

// =============================================================================
// PERCENTILE TESTS
// =============================================================================

func TestPercentile_EmptySample_ReturnsZero(t *testing.T) {
	// Empty input is a documented "no data" fallback, not an error.
	got := ratemath.Percentile(nil, 0.5)
	assert.True(t, got.IsZero())
}

func TestPercentile_MedianOfOddSample_IsMiddleElement(t *testing.T) {
	// GIVEN: ascending odd-length sample
	// WHEN: taking the 0.5 percentile
	// THEN: result equals the conventional median (middle element)
	vals := sample("100", "200", "300", "400", "500")

	got := ratemath.Median(vals)

	assert.True(t, got.Equal(dec("300")), "median = %s, want 300", got)
}

func TestPercentile_MedianOfEvenSample_AveragesMiddlePair(t *testing.T) {
	vals := sample("100", "200", "300", "400")

	got := ratemath.Median(vals)

	assert.True(t, got.Equal(dec("250")), "median = %s, want 250", got)
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	// Quartiles of [10, 20, 30, 40]: k = 3*0.25 = 0.75 → 10*0.25 + 20*0.75
	vals := sample("10", "20", "30", "40")

	p25 := ratemath.Percentile(vals, 0.25)
	p75 := ratemath.Percentile(vals, 0.75)

	assert.True(t, p25.Equal(dec("17.5")), "p25 = %s, want 17.5", p25)
	assert.True(t, p75.Equal(dec("32.5")), "p75 = %s, want 32.5", p75)
}

func TestPercentile_SingleSample_ReturnsIt(t *testing.T) {
	vals := sample("180000")

	assert.True(t, ratemath.Percentile(vals, 0.25).Equal(dec("180000")))
	assert.True(t, ratemath.Percentile(vals, 0.75).Equal(dec("180000")))
}

// =============================================================================
// RATE CONVERSION TESTS
// =============================================================================

func TestConvertRate_DailyToHourly_DividesByHoursPerDay(t *testing.T) {
	got, err := ratemath.ConvertRate(dec("180000"), ratemath.RateDaily, ratemath.RateHourly, dec("8"))

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("22500")), "got %s, want 22500", got)
}

func TestConvertRate_HourlyToDaily_MultipliesByHoursPerDay(t *testing.T) {
	got, err := ratemath.ConvertRate(dec("22500"), ratemath.RateHourly, ratemath.RateDaily, dec("8"))

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("180000")), "got %s, want 180000", got)
}

func TestConvertRate_SameUnit_Identity(t *testing.T) {
	got, err := ratemath.ConvertRate(dec("180000"), ratemath.RateDaily, ratemath.RateDaily, dec("8"))

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("180000")))
}

func TestConvertRate_UnknownUnit_Fails(t *testing.T) {
	_, err := ratemath.ConvertRate(dec("100"), ratemath.RateType("weekly"), ratemath.RateHourly, dec("8"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ratemath.ErrUnknownRateType)
}

func TestParseRateType(t *testing.T) {
	rt, err := ratemath.ParseRateType("daily")
	require.NoError(t, err)
	assert.Equal(t, ratemath.RateDaily, rt)

	_, err = ratemath.ParseRateType("zero")
	assert.ErrorIs(t, err, ratemath.ErrUnknownRateType)
}
