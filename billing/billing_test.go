package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/cost-engine/billing"
	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/ledger/store"
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

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestProject(t *testing.T, mem *store.Memory) *ledger.Project {
	t.Helper()
	p := &ledger.Project{
		ClientID:       1,
		Name:           "Riverside Apartments",
		ContractAmount: dec("100000000"),
		AdvanceRate:    dec("10.0"),
		DefectRate:     dec("3.0"),
		TaxMode:        costing.TaxTaxable,
	}
	require.NoError(t, mem.SaveProject(context.Background(), p))
	return p
}

// seedWorkLog writes one log with a labor, an equipment, and a material entry.
func seedWorkLog(t *testing.T, mem *store.Memory, projectID int64, day time.Time) {
	t.Helper()
	wl := &ledger.WorkLog{
		ProjectID: projectID,
		WorkDate:  day,
		Weather:   "clear",
		Items: []ledger.WorkItem{{
			TaskCode: "02.03.001",
			TaskName: "concrete pour",
			Quantity: dec("12"),
			Unit:     "m3",
			Labor: []ledger.LaborEntry{{
				Trade:    "formwork carpenter",
				Persons:  3,
				Hours:    dec("8"),
				RateType: ratemath.RateDaily,
				UnitRate: dec("180000"),
			}},
			Equipment: []ledger.EquipmentEntry{{
				Name:            "concrete pump",
				Units:           1,
				Hours:           dec("2"),
				HourlyRate:      dec("50000"),
				MinHours:        dec("4.0"),
				MobilizationFee: dec("100000"),
			}},
			Materials: []ledger.MaterialEntry{{
				Name:      "ready-mix concrete",
				Quantity:  dec("10"),
				Unit:      "m3",
				UnitPrice: dec("20000"),
				WasteRate: dec("0.03"),
			}},
		}},
	}
	require.NoError(t, mem.SaveWorkLog(context.Background(), wl))
}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return date(year, time.June, 15) }
}

// =============================================================================
// AGGREGATOR TESTS
// =============================================================================

func TestAggregate_EmptyPeriod_ZeroSnapshot(t *testing.T) {
	// GIVEN: a project with no work logs in the period
	// WHEN: aggregating
	// THEN: a zero snapshot with empty record lists, not an error
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	agg := billing.NewAggregator(mem)

	snap, err := agg.Aggregate(context.Background(), p.ID, date(2025, 1, 1), date(2025, 1, 31))

	require.NoError(t, err)
	assert.True(t, snap.LaborCost.IsZero())
	assert.True(t, snap.EquipmentCost.IsZero())
	assert.True(t, snap.MaterialCost.IsZero())
	assert.True(t, snap.TotalSupplyAmount.IsZero())
	assert.Equal(t, 0, snap.WorkLogCount())
	assert.Equal(t, 0, snap.WorkItemCount())
}

func TestAggregate_SumsCategories(t *testing.T) {
	// Labor 3x8x180000 = 4,320,000; equipment floored to 4h ->
	// 4x50000+100000 = 300,000; material 10x20000 = 200,000 (no waste
	// re-applied at aggregation time).
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	seedWorkLog(t, mem, p.ID, date(2025, 3, 10))
	agg := billing.NewAggregator(mem)

	snap, err := agg.Aggregate(context.Background(), p.ID, date(2025, 3, 1), date(2025, 3, 31))

	require.NoError(t, err)
	assert.True(t, snap.LaborCost.Equal(dec("4320000")), "labor %s", snap.LaborCost)
	assert.True(t, snap.EquipmentCost.Equal(dec("300000")), "equipment %s", snap.EquipmentCost)
	assert.True(t, snap.MaterialCost.Equal(dec("200000")), "material %s", snap.MaterialCost)
	assert.True(t, snap.TotalSupplyAmount.Equal(dec("4820000")), "total %s", snap.TotalSupplyAmount)
	assert.Equal(t, 1, snap.WorkLogCount())
	assert.Equal(t, 1, snap.WorkItemCount())
}

func TestAggregate_PeriodBoundariesInclusive(t *testing.T) {
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	seedWorkLog(t, mem, p.ID, date(2025, 3, 1))
	seedWorkLog(t, mem, p.ID, date(2025, 3, 31))
	seedWorkLog(t, mem, p.ID, date(2025, 4, 1)) // outside
	agg := billing.NewAggregator(mem)

	snap, err := agg.Aggregate(context.Background(), p.ID, date(2025, 3, 1), date(2025, 3, 31))

	require.NoError(t, err)
	assert.Equal(t, 2, snap.WorkLogCount())
}

func TestAggregate_LaborRecomputedFromInputs(t *testing.T) {
	// GIVEN: a labor entry whose stored total is stale
	// THEN: aggregation trusts persons x hours x rate, not the stored value
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	wl := &ledger.WorkLog{
		ProjectID: p.ID,
		WorkDate:  date(2025, 5, 2),
		Items: []ledger.WorkItem{{
			TaskCode: "04.01.001",
			Labor: []ledger.LaborEntry{{
				Trade:     "plasterer",
				Persons:   2,
				Hours:     dec("1"),
				RateType:  ratemath.RateDaily,
				UnitRate:  dec("170000"),
				TotalCost: dec("999999"), // stale
			}},
		}},
	}
	require.NoError(t, mem.SaveWorkLog(context.Background(), wl))
	agg := billing.NewAggregator(mem)

	snap, err := agg.Aggregate(context.Background(), p.ID, date(2025, 5, 1), date(2025, 5, 31))

	require.NoError(t, err)
	assert.True(t, snap.LaborCost.Equal(dec("340000")), "labor %s", snap.LaborCost)
}

func TestAggregate_InvertedPeriod_Rejected(t *testing.T) {
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	agg := billing.NewAggregator(mem)

	_, err := agg.Aggregate(context.Background(), p.ID, date(2025, 2, 1), date(2025, 1, 1))

	assert.ErrorIs(t, err, ledger.ErrInvalidPeriod)
}

// =============================================================================
// INVOICE BUILDER TESTS
// =============================================================================

func newTestBuilder(mem *store.Memory, year int) *billing.Builder {
	b := billing.NewBuilder(mem, billing.NewAggregator(mem), mem)
	b.Now = fixedClock(year)
	return b
}

func TestCreateInvoice_HeaderAndLines(t *testing.T) {
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	seedWorkLog(t, mem, p.ID, date(2025, 3, 10))
	b := newTestBuilder(mem, 2025)

	res, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID:  p.ID,
		PeriodFrom: date(2025, 3, 1),
		PeriodTo:   date(2025, 3, 31),
		Sequence:   1,
		VATRate:    dec("10.0"),
	})

	require.NoError(t, err)
	inv := res.Invoice
	assert.Equal(t, billing.FormatInvoiceNumber(2025, p.ID, 1), inv.InvoiceNumber)
	assert.True(t, inv.SupplyAmount.Equal(dec("4820000")), "supply %s", inv.SupplyAmount)
	assert.True(t, inv.VATAmount.Equal(dec("482000")), "vat %s", inv.VATAmount)
	assert.True(t, inv.TotalAmount.Equal(inv.SupplyAmount.Add(inv.VATAmount)), "total invariant")

	// Fixed category order: labor, equipment, material; no zero rows.
	require.Len(t, res.Lines, 3)
	assert.Equal(t, billing.LineLabor, res.Lines[0].Description)
	assert.Equal(t, billing.LineEquipment, res.Lines[1].Description)
	assert.Equal(t, billing.LineMaterial, res.Lines[2].Description)
	for i, line := range res.Lines {
		assert.Equal(t, i+1, line.LineNumber)
	}
}

func TestCreateInvoice_LineAmountsSumToHeader(t *testing.T) {
	// Lines use the invoice's own VAT rate, so per-field sums match the
	// header exactly, for any rate.
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	seedWorkLog(t, mem, p.ID, date(2025, 3, 10))
	b := newTestBuilder(mem, 2025)

	res, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID:  p.ID,
		PeriodFrom: date(2025, 3, 1),
		PeriodTo:   date(2025, 3, 31),
		Sequence:   1,
		VATRate:    dec("7.5"),
	})

	require.NoError(t, err)
	supply, vat, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, line := range res.Lines {
		supply = supply.Add(line.SupplyAmount)
		vat = vat.Add(line.VATAmount)
		total = total.Add(line.TotalAmount)
	}
	assert.True(t, supply.Equal(res.Invoice.SupplyAmount), "supply %s vs %s", supply, res.Invoice.SupplyAmount)
	assert.True(t, vat.Equal(res.Invoice.VATAmount), "vat %s vs %s", vat, res.Invoice.VATAmount)
	assert.True(t, total.Equal(res.Invoice.TotalAmount), "total %s vs %s", total, res.Invoice.TotalAmount)
}

func TestCreateInvoice_FractionalCents_LastLineAbsorbsRounding(t *testing.T) {
	// GIVEN: two categories of 100.05 each. At 10% VAT each line alone
	// rounds to 10.01, but the header rounds 200.10 once to 20.01.
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	wl := &ledger.WorkLog{
		ProjectID: p.ID,
		WorkDate:  date(2025, 5, 7),
		Items: []ledger.WorkItem{{
			TaskCode: "07.01.001",
			Labor: []ledger.LaborEntry{{
				Trade: "painter", Persons: 1, Hours: dec("1"),
				RateType: ratemath.RateHourly, UnitRate: dec("100.05"),
			}},
			Materials: []ledger.MaterialEntry{{
				Name: "primer", Quantity: dec("1"), Unit: "L",
				UnitPrice: dec("100.05"),
			}},
		}},
	}
	require.NoError(t, mem.SaveWorkLog(context.Background(), wl))
	b := newTestBuilder(mem, 2025)

	res, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID:  p.ID,
		PeriodFrom: date(2025, 5, 1),
		PeriodTo:   date(2025, 5, 31),
		Sequence:   1,
	})

	require.NoError(t, err)
	assert.True(t, res.Invoice.VATAmount.Equal(dec("20.01")), "header vat %s", res.Invoice.VATAmount)

	supply, vat, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, line := range res.Lines {
		supply = supply.Add(line.SupplyAmount)
		vat = vat.Add(line.VATAmount)
		total = total.Add(line.TotalAmount)
	}
	assert.True(t, supply.Equal(res.Invoice.SupplyAmount), "supply %s vs %s", supply, res.Invoice.SupplyAmount)
	assert.True(t, vat.Equal(res.Invoice.VATAmount), "vat %s vs %s", vat, res.Invoice.VATAmount)
	assert.True(t, total.Equal(res.Invoice.TotalAmount), "total %s vs %s", total, res.Invoice.TotalAmount)

	// Each line total still equals its own supply plus vat.
	for _, line := range res.Lines {
		assert.True(t, line.TotalAmount.Equal(line.SupplyAmount.Add(line.VATAmount)),
			"line %d total invariant", line.LineNumber)
	}
}

func TestCreateInvoice_ZeroCategoriesOmitted(t *testing.T) {
	// GIVEN: a period with labor only
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	wl := &ledger.WorkLog{
		ProjectID: p.ID,
		WorkDate:  date(2025, 4, 2),
		Items: []ledger.WorkItem{{
			TaskCode: "04.01.001",
			Labor: []ledger.LaborEntry{{
				Trade: "plasterer", Persons: 1, Hours: dec("1"),
				RateType: ratemath.RateDaily, UnitRate: dec("170000"),
			}},
		}},
	}
	require.NoError(t, mem.SaveWorkLog(context.Background(), wl))
	b := newTestBuilder(mem, 2025)

	res, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID:  p.ID,
		PeriodFrom: date(2025, 4, 1),
		PeriodTo:   date(2025, 4, 30),
		Sequence:   1,
	})

	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, billing.LineLabor, res.Lines[0].Description)
	assert.Equal(t, 1, res.Lines[0].LineNumber)
}

func TestCreateInvoice_UnknownProject_NotFound(t *testing.T) {
	mem := store.NewMemory()
	b := newTestBuilder(mem, 2025)

	_, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID:  42,
		PeriodFrom: date(2025, 3, 1),
		PeriodTo:   date(2025, 3, 31),
	})

	assert.True(t, ledger.IsNotFound(err), "got %v", err)
}

func TestCreateInvoice_DuplicateNumber_Conflict(t *testing.T) {
	// Two invoices for the same project/sequence/year collide on number;
	// the sink reports a conflict the caller retries with the next sequence.
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	seedWorkLog(t, mem, p.ID, date(2025, 3, 10))
	b := newTestBuilder(mem, 2025)

	in := billing.CreateInvoiceInput{
		ProjectID:  p.ID,
		PeriodFrom: date(2025, 3, 1),
		PeriodTo:   date(2025, 3, 31),
		Sequence:   1,
	}
	_, err := b.CreateInvoice(context.Background(), in)
	require.NoError(t, err)

	_, err = b.CreateInvoice(context.Background(), in)
	assert.True(t, ledger.IsConflict(err), "got %v", err)

	in.Sequence = 2
	_, err = b.CreateInvoice(context.Background(), in)
	assert.NoError(t, err, "retry with next sequence succeeds")
}

func TestCreateInvoice_SequenceAssignedFromSource(t *testing.T) {
	mem := store.NewMemory()
	p := newTestProject(t, mem)
	seedWorkLog(t, mem, p.ID, date(2025, 3, 10))
	b := newTestBuilder(mem, 2025)
	b.Sequences = mem

	first, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID: p.ID, PeriodFrom: date(2025, 3, 1), PeriodTo: date(2025, 3, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Invoice.Sequence)

	second, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID: p.ID, PeriodFrom: date(2025, 3, 16), PeriodTo: date(2025, 3, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Invoice.Sequence)
}

func TestCreateInvoice_ExemptProject_ZeroVAT(t *testing.T) {
	mem := store.NewMemory()
	p := &ledger.Project{
		ClientID: 1, Name: "School Annex",
		TaxMode: costing.TaxExempt,
	}
	require.NoError(t, mem.SaveProject(context.Background(), p))
	seedWorkLog(t, mem, p.ID, date(2025, 3, 10))
	b := newTestBuilder(mem, 2025)

	res, err := b.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ProjectID:  p.ID,
		PeriodFrom: date(2025, 3, 1),
		PeriodTo:   date(2025, 3, 31),
		Sequence:   1,
	})

	require.NoError(t, err)
	assert.True(t, res.Invoice.VATAmount.IsZero())
	assert.True(t, res.Invoice.TotalAmount.Equal(res.Invoice.SupplyAmount))
	for _, line := range res.Lines {
		assert.True(t, line.VATAmount.IsZero())
	}
}

func TestFormatInvoiceNumber_ZeroPadding(t *testing.T) {
	assert.Equal(t, "INV-2025-007-01", billing.FormatInvoiceNumber(2025, 7, 1))
	assert.Equal(t, "INV-2026-123-12", billing.FormatInvoiceNumber(2026, 123, 12))
}
