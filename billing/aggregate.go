/*
Package billing aggregates recorded work into period cost totals and turns
them into invoices.

PURPOSE:
  Two engines live here:
  - Aggregator: sums labor/equipment/material costs for a project period
  - Builder:    creates an invoice plus category lines from an aggregation

AGGREGATION RULES (aggregate.go):
  - Labor cost is RECOMPUTED from persons x hours x unit rate, never read
    from the entry's stored total; edits after creation cannot skew totals.
  - Equipment cost applies the minimum call-hours floor per entry.
  - Material cost is quantity x unit price; the waste surcharge applies at
    individual-entry calculation time only, NOT during aggregation. This
    asymmetry is deliberate and preserved (DESIGN.md).
  - An empty period returns a zero snapshot, not an error.

CONCURRENCY:
  Every call re-reads the repository; there is no caching and no snapshot
  isolation. Callers wanting a reproducible total around invoice generation
  must bound the call in their own transaction or lock.

SEE ALSO:
  - invoice.go: invoice generation consuming the snapshot
  - costing: the per-entry cost rules
*/
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/ratemath"
)

// Aggregator sums period costs from the work ledger.
type Aggregator struct {
	Logs ledger.WorkLogStore
}

func NewAggregator(logs ledger.WorkLogStore) *Aggregator {
	return &Aggregator{Logs: logs}
}

// Aggregate pulls all work logs for the project dated within [from, to]
// inclusive and sums costs per category. The snapshot is a pure function of
// the repository's state at call time.
func (a *Aggregator) Aggregate(ctx context.Context, projectID int64, from, to time.Time) (*ledger.AggregationSnapshot, error) {
	if to.Before(from) {
		return nil, &ledger.PeriodError{From: from, To: to}
	}

	logs, err := a.Logs.FindWorkLogs(ctx, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: find work logs: %v", ledger.ErrUnavailable, err)
	}

	snap := &ledger.AggregationSnapshot{
		ProjectID:     projectID,
		PeriodFrom:    from,
		PeriodTo:      to,
		LaborCost:     decimal.Zero,
		EquipmentCost: decimal.Zero,
		MaterialCost:  decimal.Zero,
		WorkLogs:      logs,
	}

	for _, wl := range logs {
		for _, item := range wl.Items {
			for _, le := range item.Labor {
				cost, err := costing.LaborCost(le.Persons, le.Hours, le.UnitRate)
				if err != nil {
					return nil, fmt.Errorf("labor entry %d: %w", le.ID, err)
				}
				snap.LaborCost = snap.LaborCost.Add(cost)
			}
			for _, ee := range item.Equipment {
				res, err := costing.EquipmentCost(ee.Units, ee.Hours, ee.HourlyRate, ee.MinHours, ee.MobilizationFee)
				if err != nil {
					return nil, fmt.Errorf("equipment entry %d: %w", ee.ID, err)
				}
				snap.EquipmentCost = snap.EquipmentCost.Add(res.TotalCost)
			}
			for _, me := range item.Materials {
				// Waste surcharge intentionally not re-applied here.
				snap.MaterialCost = snap.MaterialCost.Add(me.Quantity.Mul(me.UnitPrice))
			}
		}
	}

	snap.LaborCost = ratemath.QuantizeMoney(snap.LaborCost)
	snap.EquipmentCost = ratemath.QuantizeMoney(snap.EquipmentCost)
	snap.MaterialCost = ratemath.QuantizeMoney(snap.MaterialCost)
	snap.TotalSupplyAmount = snap.LaborCost.Add(snap.EquipmentCost).Add(snap.MaterialCost)
	return snap, nil
}
