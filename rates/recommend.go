/*
Package rates recommends fair labor unit rates from recent site history
blended with the standard trade table.

PURPOSE:
  Given a trade, a target rate unit, and a lookback window, pull historical
  labor entries, convert them to the requested unit, and recommend:

    sample >= 5          median of history
    0 < sample < 5       0.7 x median + 0.3 x standard (when standard known)
    0 < sample < 5       median (no standard available)
    sample == 0          standard rate (when standard known)
    otherwise            zero, "no recommendation possible"

  Confidence is a deterministic step function of sample size - a heuristic
  for display, not a statistical confidence interval.

SPARSE DATA:
  Entries that fail unit conversion are skipped silently; an empty sample is
  a normal condition reported as absence (nil median/quartiles), never an
  error.

SEE ALSO:
  - ratemath: percentile and conversion primitives
  - reference: standard trade table
*/
package rates

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/ratemath"
	"github.com/buildledger/cost-engine/reference"
)

// DefaultLookbackDays bounds the history window when the caller gives none.
const DefaultLookbackDays = 180

// StandardSource resolves a trade name to its standard rate for a unit.
// reference.Directory is the production implementation.
type StandardSource interface {
	StandardRate(trade string, rt ratemath.RateType) (decimal.Decimal, bool)
}

// Directory adapts the static reference tables to StandardSource.
type Directory struct{}

func (Directory) StandardRate(name string, rt ratemath.RateType) (decimal.Decimal, bool) {
	t, ok := reference.LookupTrade(name)
	if !ok {
		return decimal.Decimal{}, false
	}
	return t.StandardRate(rt), true
}

// Recommender computes labor-rate recommendations. Stateless between calls.
type Recommender struct {
	History   ledger.LaborHistoryStore
	Standards StandardSource

	// HoursPerDay for unit conversion. Zero means the 8h default.
	HoursPerDay decimal.Decimal

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewRecommender(history ledger.LaborHistoryStore) *Recommender {
	return &Recommender{History: history, Standards: Directory{}}
}

// RecommendInput parameterizes one recommendation request.
type RecommendInput struct {
	Trade          string
	RateType       ratemath.RateType
	TaskCodePrefix string // optional
	ProjectID      *int64 // optional
	LookbackDays   int    // <= 0 means DefaultLookbackDays
}

// Recommendation is constructed fresh per request and never persisted.
// Median and quartiles are nil when no history was usable.
type Recommendation struct {
	RecommendedRate   decimal.Decimal
	RateType          ratemath.RateType
	SampleSize        int
	HistoricalMedian  *decimal.Decimal
	P25               *decimal.Decimal
	P75               *decimal.Decimal
	StandardReference *decimal.Decimal
	Confidence        float64
	Notes             []string
}

var (
	blendHistoryWeight  = decimal.NewFromFloat(0.7)
	blendStandardWeight = decimal.NewFromFloat(0.3)
)

// Recommend builds a rate recommendation for a trade.
func (r *Recommender) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	lookback := in.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	since := now.AddDate(0, 0, -lookback)

	entries, err := r.History.FindLaborHistory(ctx, ledger.LaborHistoryQuery{
		Trade:          in.Trade,
		Since:          since,
		ProjectID:      in.ProjectID,
		TaskCodePrefix: in.TaskCodePrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find labor history: %v", ledger.ErrUnavailable, err)
	}

	hoursPerDay := r.HoursPerDay
	if hoursPerDay.Sign() <= 0 {
		hoursPerDay = ratemath.DefaultHoursPerDay
	}

	// Convert to the requested unit; unconvertible entries are skipped, not
	// counted as errors.
	values := make([]decimal.Decimal, 0, len(entries))
	for _, e := range entries {
		v, err := ratemath.ConvertRate(e.UnitRate, e.RateType, in.RateType, hoursPerDay)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	rec := &Recommendation{
		RateType:   in.RateType,
		SampleSize: len(values),
	}

	if rec.SampleSize > 0 {
		median := ratemath.QuantizeMoney(ratemath.Median(values))
		p25 := ratemath.Percentile(values, 0.25)
		p75 := ratemath.Percentile(values, 0.75)
		rec.HistoricalMedian = &median
		rec.P25 = &p25
		rec.P75 = &p75
	}

	if r.Standards != nil {
		if std, ok := r.Standards.StandardRate(in.Trade, in.RateType); ok {
			std = ratemath.QuantizeMoney(std)
			rec.StandardReference = &std
		} else {
			rec.Notes = append(rec.Notes, fmt.Sprintf("trade %q not in standard trade table", in.Trade))
		}
	}

	switch {
	case rec.SampleSize >= 5:
		rec.RecommendedRate = *rec.HistoricalMedian
		rec.Notes = append(rec.Notes, fmt.Sprintf("median of %d records over last %d days", rec.SampleSize, lookback))
	case rec.SampleSize > 0 && rec.StandardReference != nil:
		blended := rec.HistoricalMedian.Mul(blendHistoryWeight).
			Add(rec.StandardReference.Mul(blendStandardWeight))
		rec.RecommendedRate = ratemath.QuantizeMoney(blended)
		rec.Notes = append(rec.Notes, "sparse history: blended median with standard rate (0.7/0.3)")
	case rec.SampleSize > 0:
		rec.RecommendedRate = *rec.HistoricalMedian
		rec.Notes = append(rec.Notes, "sparse history: using median, no standard available")
	case rec.StandardReference != nil:
		rec.RecommendedRate = *rec.StandardReference
		rec.Notes = append(rec.Notes, "no history: using standard rate")
	default:
		rec.RecommendedRate = decimal.Zero.Round(ratemath.MoneyPlaces)
		rec.Notes = append(rec.Notes, "no recommendation possible: no history or standard rate")
	}

	rec.Confidence = confidence(rec.SampleSize)
	return rec, nil
}

// confidence is a step function of sample size, non-decreasing across the
// breakpoints {0, 1, 5, 10, 20}.
func confidence(sampleSize int) float64 {
	switch {
	case sampleSize >= 20:
		return 0.9
	case sampleSize >= 10:
		return 0.75
	case sampleSize >= 5:
		return 0.6
	case sampleSize >= 1:
		return 0.45
	default:
		return 0.2
	}
}
