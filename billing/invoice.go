/*
invoice.go - Invoice generation from an aggregation snapshot

PURPOSE:
  Builds an invoice header plus category lines from one period aggregation
  and hands ownership of the set to the persistence sink.

NUMBERING:
  Invoice numbers follow INV-{year}-{projectID:03d}-{sequence:02d}, using the
  calendar year at creation time (not the period's year). Generation is not
  atomic across concurrent callers; the sink's uniqueness constraint is the
  backstop, surfaced as ErrConflict for retry with the next sequence.

LINES:
  Up to three lines in fixed order: labor, equipment, material. Zero-cost
  categories are omitted. Line VAT uses the same rate and tax mode as the
  invoice header; the last line absorbs the rounding remainder so line
  amounts always sum to the header amounts (DESIGN.md records this choice).
*/
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
)

// Builder creates invoices from period aggregations.
type Builder struct {
	Projects   ledger.ProjectStore
	Aggregator *Aggregator
	Sink       ledger.InvoiceSink

	// Sequences supplies the next billing round when the caller does not.
	// Optional; without it an unset sequence defaults to 1.
	Sequences ledger.SequenceSource

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewBuilder(projects ledger.ProjectStore, agg *Aggregator, sink ledger.InvoiceSink) *Builder {
	return &Builder{Projects: projects, Aggregator: agg, Sink: sink}
}

// CreateInvoiceInput parameterizes one invoice generation.
type CreateInvoiceInput struct {
	ProjectID  int64
	PeriodFrom time.Time
	PeriodTo   time.Time

	// Sequence is the progress-billing round. Zero means "assign": from
	// Sequences when configured, otherwise 1.
	Sequence int

	// VATRate in percent. Zero means the 10% default.
	VATRate decimal.Decimal

	// TaxMode of the invoice. Empty means the project's default, or taxable
	// when the project has none.
	TaxMode costing.TaxMode
}

// InvoiceResult is the generated invoice with its lines and the snapshot it
// was built from.
type InvoiceResult struct {
	Invoice  ledger.Invoice
	Lines    []ledger.InvoiceLine
	Snapshot *ledger.AggregationSnapshot
}

// CreateInvoice aggregates the period and persists an invoice with category
// lines. Returns ErrNotFound for an unknown project and ErrConflict when the
// invoice number already exists.
func (b *Builder) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*InvoiceResult, error) {
	project, err := b.Projects.GetProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	seq := in.Sequence
	if seq <= 0 {
		if b.Sequences != nil {
			seq, err = b.Sequences.NextSequence(ctx, in.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("%w: next sequence: %v", ledger.ErrUnavailable, err)
			}
		} else {
			seq = 1
		}
	}

	vatRate := in.VATRate
	if vatRate.IsZero() {
		vatRate = costing.DefaultVATRate
	}
	mode := in.TaxMode
	if mode == "" {
		mode = project.TaxMode
	}
	if mode == "" {
		mode = costing.TaxTaxable
	}

	snap, err := b.Aggregator.Aggregate(ctx, in.ProjectID, in.PeriodFrom, in.PeriodTo)
	if err != nil {
		return nil, err
	}

	vat, err := costing.VAT(snap.TotalSupplyAmount, vatRate, mode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}

	inv := ledger.Invoice{
		ProjectID:     in.ProjectID,
		InvoiceNumber: FormatInvoiceNumber(now.Year(), in.ProjectID, seq),
		IssueDate:     now,
		PeriodFrom:    in.PeriodFrom,
		PeriodTo:      in.PeriodTo,
		Sequence:      seq,
		TaxMode:       mode,
		VATRate:       vatRate,
		SupplyAmount:  vat.SupplyAmount,
		VATAmount:     vat.VATAmount,
		TotalAmount:   vat.TotalAmount,
	}

	lines, err := categoryLines(snap, vatRate, mode, vat.VATAmount)
	if err != nil {
		return nil, err
	}

	if err := b.Sink.SaveInvoice(ctx, &inv, lines); err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv, Lines: lines, Snapshot: snap}, nil
}

// FormatInvoiceNumber renders INV-{year}-{projectID:03d}-{sequence:02d}.
func FormatInvoiceNumber(year int, projectID int64, sequence int) string {
	return fmt.Sprintf("INV-%d-%03d-%02d", year, projectID, sequence)
}

// Category descriptions on invoice lines, in their fixed order.
const (
	LineLabor     = "Labor"
	LineEquipment = "Equipment"
	LineMaterial  = "Material"
)

// categoryLines splits a snapshot into invoice lines. Quantizing each line's
// VAT independently can drift a cent from the header VAT, which was quantized
// once on the period total; the last line absorbs that remainder so per-field
// sums across lines equal the header exactly.
func categoryLines(snap *ledger.AggregationSnapshot, vatRate decimal.Decimal, mode costing.TaxMode, headerVAT decimal.Decimal) ([]ledger.InvoiceLine, error) {
	categories := []struct {
		description string
		amount      decimal.Decimal
	}{
		{LineLabor, snap.LaborCost},
		{LineEquipment, snap.EquipmentCost},
		{LineMaterial, snap.MaterialCost},
	}

	var lines []ledger.InvoiceLine
	lineNumber := 1
	for _, c := range categories {
		if c.amount.Sign() <= 0 {
			continue
		}
		vat, err := costing.VAT(c.amount, vatRate, mode)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ledger.InvoiceLine{
			LineNumber:   lineNumber,
			Description:  c.description,
			SupplyAmount: vat.SupplyAmount,
			VATAmount:    vat.VATAmount,
			TotalAmount:  vat.TotalAmount,
		})
		lineNumber++
	}

	if len(lines) > 0 {
		allocated := decimal.Zero
		for _, line := range lines[:len(lines)-1] {
			allocated = allocated.Add(line.VATAmount)
		}
		last := &lines[len(lines)-1]
		last.VATAmount = headerVAT.Sub(allocated)
		last.TotalAmount = last.SupplyAmount.Add(last.VATAmount)
	}
	return lines, nil
}
