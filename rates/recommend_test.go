package rates_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/ledger/store"
	"github.com/buildledger/cost-engine/ratemath"
	"github.com/buildledger/cost-engine/rates"
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

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

var testToday = date(2025, time.June, 1)

func newTestRecommender(mem *store.Memory) *rates.Recommender {
	r := rates.NewRecommender(mem)
	r.Now = func() time.Time { return testToday }
	return r
}

// seedHistory writes one labor entry per rate, dated inside the lookback
// window, all for the same trade and task code.
func seedHistory(t *testing.T, mem *store.Memory, trade, taskCode string, rt ratemath.RateType, ratesIn ...string) int64 {
	t.Helper()
	ctx := context.Background()
	p := &ledger.Project{ClientID: 1, Name: "history", TaxMode: costing.TaxTaxable}
	require.NoError(t, mem.SaveProject(ctx, p))

	for i, rate := range ratesIn {
		wl := &ledger.WorkLog{
			ProjectID: p.ID,
			WorkDate:  testToday.AddDate(0, 0, -(i + 1)),
			Items: []ledger.WorkItem{{
				TaskCode: taskCode,
				Labor: []ledger.LaborEntry{{
					Trade:    trade,
					Persons:  1,
					Hours:    dec("1"),
					RateType: rt,
					UnitRate: dec(rate),
				}},
			}},
		}
		require.NoError(t, mem.SaveWorkLog(ctx, wl))
	}
	return p.ID
}

// =============================================================================
// SELECTION LADDER TESTS
// =============================================================================

func TestRecommend_NoHistory_UsesStandardRate(t *testing.T) {
	// GIVEN: no history for 목공, standard daily rate 180,000
	// THEN: recommended 180000.00, sample 0, confidence 0.2
	mem := store.NewMemory()
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "목공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.True(t, rec.RecommendedRate.Equal(dec("180000")), "got %s", rec.RecommendedRate)
	assert.Equal(t, 0, rec.SampleSize)
	assert.InDelta(t, 0.2, rec.Confidence, 1e-9)
	assert.Nil(t, rec.HistoricalMedian)
	require.NotNil(t, rec.StandardReference)
	assert.True(t, rec.StandardReference.Equal(dec("180000")))
	assert.Contains(t, rec.Notes, "no history: using standard rate")
}

func TestRecommend_RichHistory_UsesMedian(t *testing.T) {
	mem := store.NewMemory()
	seedHistory(t, mem, "목공", "02.02.001", ratemath.RateDaily,
		"170000", "175000", "180000", "185000", "190000")
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "목공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, rec.SampleSize)
	assert.True(t, rec.RecommendedRate.Equal(dec("180000")), "got %s", rec.RecommendedRate)
	require.NotNil(t, rec.P25)
	require.NotNil(t, rec.P75)
	assert.True(t, rec.P25.Equal(dec("175000")), "p25 %s", rec.P25)
	assert.True(t, rec.P75.Equal(dec("185000")), "p75 %s", rec.P75)
	assert.InDelta(t, 0.6, rec.Confidence, 1e-9)
}

func TestRecommend_SparseHistory_BlendsWithStandard(t *testing.T) {
	// GIVEN: 2 entries (median 200,000) and standard 180,000
	// THEN: 0.7 x 200000 + 0.3 x 180000 = 194,000.00
	mem := store.NewMemory()
	seedHistory(t, mem, "목공", "02.02.001", ratemath.RateDaily, "190000", "210000")
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "목공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, rec.SampleSize)
	assert.True(t, rec.RecommendedRate.Equal(dec("194000")), "got %s", rec.RecommendedRate)
	assert.InDelta(t, 0.45, rec.Confidence, 1e-9)
}

func TestRecommend_SparseHistoryUnknownTrade_UsesMedian(t *testing.T) {
	mem := store.NewMemory()
	seedHistory(t, mem, "견출공", "04.01.001", ratemath.RateDaily, "155000")
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "견출공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, rec.SampleSize)
	assert.True(t, rec.RecommendedRate.Equal(dec("155000")))
	assert.Nil(t, rec.StandardReference)
	assert.Contains(t, rec.Notes, `trade "견출공" not in standard trade table`)
}

func TestRecommend_NothingKnown_ZeroWithNote(t *testing.T) {
	mem := store.NewMemory()
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "무명공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.True(t, rec.RecommendedRate.IsZero())
	assert.Equal(t, 0, rec.SampleSize)
	assert.InDelta(t, 0.2, rec.Confidence, 1e-9)
	assert.Contains(t, rec.Notes, "no recommendation possible: no history or standard rate")
}

// =============================================================================
// CONVERSION AND FILTER TESTS
// =============================================================================

func TestRecommend_ConvertsHourlyHistoryToDaily(t *testing.T) {
	// 22,500/h x 8h = 180,000/day
	mem := store.NewMemory()
	seedHistory(t, mem, "목공", "02.02.001", ratemath.RateHourly,
		"22500", "22500", "22500", "22500", "22500")
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "목공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, rec.SampleSize)
	assert.True(t, rec.RecommendedRate.Equal(dec("180000")), "got %s", rec.RecommendedRate)
}

func TestRecommend_UnconvertibleEntriesSkippedSilently(t *testing.T) {
	mem := store.NewMemory()
	projectID := seedHistory(t, mem, "목공", "02.02.001", ratemath.RateDaily, "180000")

	// One entry with a corrupt rate type sneaks into history.
	wl := &ledger.WorkLog{
		ProjectID: projectID,
		WorkDate:  testToday.AddDate(0, 0, -3),
		Items: []ledger.WorkItem{{
			TaskCode: "02.02.001",
			Labor: []ledger.LaborEntry{{
				Trade: "목공", Persons: 1, Hours: dec("1"),
				RateType: ratemath.RateType("weekly"), UnitRate: dec("900000"),
			}},
		}},
	}
	require.NoError(t, mem.SaveWorkLog(context.Background(), wl))
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:    "목공",
		RateType: ratemath.RateDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, rec.SampleSize, "corrupt entry skipped, not an error")
}

func TestRecommend_LookbackWindowExcludesOldEntries(t *testing.T) {
	mem := store.NewMemory()
	projectID := seedHistory(t, mem, "목공", "02.02.001", ratemath.RateDaily, "180000")

	old := &ledger.WorkLog{
		ProjectID: projectID,
		WorkDate:  testToday.AddDate(0, 0, -400),
		Items: []ledger.WorkItem{{
			TaskCode: "02.02.001",
			Labor: []ledger.LaborEntry{{
				Trade: "목공", Persons: 1, Hours: dec("1"),
				RateType: ratemath.RateDaily, UnitRate: dec("100000"),
			}},
		}},
	}
	require.NoError(t, mem.SaveWorkLog(context.Background(), old))
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:        "목공",
		RateType:     ratemath.RateDaily,
		LookbackDays: 180,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, rec.SampleSize)
}

func TestRecommend_TaskCodePrefixFilter(t *testing.T) {
	mem := store.NewMemory()
	seedHistory(t, mem, "목공", "02.02.001", ratemath.RateDaily, "200000")
	seedHistory(t, mem, "목공", "05.01.001", ratemath.RateDaily, "150000")
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:          "목공",
		RateType:       ratemath.RateDaily,
		TaskCodePrefix: "02.",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, rec.SampleSize)
	require.NotNil(t, rec.HistoricalMedian)
	assert.True(t, rec.HistoricalMedian.Equal(dec("200000")))
}

func TestRecommend_ProjectFilter(t *testing.T) {
	mem := store.NewMemory()
	firstProject := seedHistory(t, mem, "타일공", "05.01.001", ratemath.RateDaily, "180000")
	seedHistory(t, mem, "타일공", "05.01.001", ratemath.RateDaily, "240000", "240000")
	r := newTestRecommender(mem)

	rec, err := r.Recommend(context.Background(), rates.RecommendInput{
		Trade:     "타일공",
		RateType:  ratemath.RateDaily,
		ProjectID: &firstProject,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, rec.SampleSize)
}

// =============================================================================
// CONFIDENCE TESTS
// =============================================================================

func TestRecommend_ConfidenceNonDecreasingInSampleSize(t *testing.T) {
	// Breakpoints {0, 1, 5, 10, 20} must yield non-decreasing confidence.
	mem := store.NewMemory()
	r := newTestRecommender(mem)
	trade := "철근공"

	prev := -1.0
	sizes := []int{0, 1, 5, 10, 20}
	for i, n := range sizes {
		fresh := store.NewMemory()
		if n > 0 {
			values := make([]string, n)
			for j := range values {
				values[j] = "190000"
			}
			seedHistory(t, fresh, trade, "02.01.001", ratemath.RateDaily, values...)
		}
		r = newTestRecommender(fresh)

		rec, err := r.Recommend(context.Background(), rates.RecommendInput{
			Trade:    trade,
			RateType: ratemath.RateDaily,
		})
		require.NoError(t, err)
		assert.Equal(t, n, rec.SampleSize)
		assert.GreaterOrEqual(t, rec.Confidence, prev, "breakpoint %d (n=%d)", i, n)
		prev = rec.Confidence
	}

	assert.InDelta(t, 0.9, prev, 1e-9, "20 samples reach the top step")
}
