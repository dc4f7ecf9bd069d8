/*
Package ledger defines the domain model of the site work ledger: projects,
daily work logs with their itemized cost entries, invoices, and the
repository interfaces the engines consume.

PURPOSE:
  This is the shared vocabulary of the system. Engines (billing, rates) are
  pure functions over these types plus a repository; they hold no ambient
  state of their own.

KEY CONCEPTS IN THIS FILE (types.go):
  - Project:    a contracted construction site
  - WorkLog:    one day of recorded work on a project
  - WorkItem:   one task performed that day, with labor/equipment/material
                entries attached
  - Invoice:    a periodic progress bill aggregated from work logs
  - AggregationSnapshot: a read-only period summary, never persisted

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary and quantity field
  2. Recomputation: entry totals are derived from their inputs at use time,
     never trusted from a stale stored value
  3. Type safety: rate types and tax modes are closed variants, not strings

SEE ALSO:
  - store.go: repository interfaces
  - errors.go: error taxonomy shared across engines
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ratemath"
)

// =============================================================================
// PROJECT
// =============================================================================

// Project is a contracted construction site. ContractAmount, AdvanceRate and
// DefectRate feed progress-payment calculations; TaxMode is the default VAT
// treatment for invoices generated against the project.
type Project struct {
	ID             int64
	ClientID       int64
	Name           string
	Address        string
	ContractAmount decimal.Decimal
	AdvanceRate    decimal.Decimal // percent, e.g. 10.0
	DefectRate     decimal.Decimal // percent, e.g. 3.0
	TaxMode        costing.TaxMode
	CreatedAt      time.Time
}

// =============================================================================
// WORK RECORDS
// =============================================================================

// WorkLog is one day of recorded work on a project. A log is conceptually
// immutable once its period has been invoiced; the engine does not enforce
// this, callers must (see DESIGN.md).
type WorkLog struct {
	ID            int64
	ProjectID     int64
	WorkDate      time.Time
	Area          string
	Weather       string
	ProcessStatus string
	Notes         string
	Items         []WorkItem
	CreatedAt     time.Time
}

// WorkItem is one task performed within a work log, identified by a
// hierarchical task code ("02.03.001").
type WorkItem struct {
	ID            int64
	WorkLogID     int64
	TaskCode      string
	TaskName      string
	Specification string
	Quantity      decimal.Decimal
	Unit          string
	ProgressRate  decimal.Decimal // percent complete
	Labor         []LaborEntry
	Equipment     []EquipmentEntry
	Materials     []MaterialEntry
}

// LaborEntry records a crew charge. TotalCost is stored for display but is
// always recomputed from Persons x Hours x UnitRate during aggregation.
type LaborEntry struct {
	ID         int64
	WorkItemID int64
	Trade      string
	Persons    int
	Hours      decimal.Decimal // days for daily rates, hours for hourly rates
	RateType   ratemath.RateType
	UnitRate   decimal.Decimal
	TotalCost  decimal.Decimal
}

// EquipmentEntry records a machine charge, subject to the minimum call-hours
// floor.
type EquipmentEntry struct {
	ID              int64
	WorkItemID      int64
	Name            string
	Units           int
	Hours           decimal.Decimal
	HourlyRate      decimal.Decimal
	MinHours        decimal.Decimal
	MobilizationFee decimal.Decimal
}

// MaterialEntry records a material charge. WasteRate is applied at
// per-entry calculation time only, not during period aggregation.
type MaterialEntry struct {
	ID         int64
	WorkItemID int64
	Name       string
	Quantity   decimal.Decimal
	Unit       string
	UnitPrice  decimal.Decimal
	WasteRate  decimal.Decimal
}

// =============================================================================
// AGGREGATION SNAPSHOT
// =============================================================================

// AggregationSnapshot is a read-only summary of a project period, valid for
// the duration of one invoice-generation call. It is never persisted; a
// repeated call re-reads the ledger and may observe different data.
type AggregationSnapshot struct {
	ProjectID         int64
	PeriodFrom        time.Time
	PeriodTo          time.Time
	LaborCost         decimal.Decimal
	EquipmentCost     decimal.Decimal
	MaterialCost      decimal.Decimal
	TotalSupplyAmount decimal.Decimal
	WorkLogs          []WorkLog
}

// WorkLogCount reports how many daily logs contributed to the snapshot.
func (s *AggregationSnapshot) WorkLogCount() int { return len(s.WorkLogs) }

// WorkItemCount reports how many work items contributed to the snapshot.
func (s *AggregationSnapshot) WorkItemCount() int {
	n := 0
	for _, wl := range s.WorkLogs {
		n += len(wl.Items)
	}
	return n
}

// =============================================================================
// INVOICE
// =============================================================================

// Invoice is a periodic progress bill for a project.
//
// INVARIANTS:
//   - TotalAmount = SupplyAmount + VATAmount
//   - VATAmount = 0 whenever TaxMode != taxable
//   - InvoiceNumber is unique; the persistence sink enforces it and reports
//     duplicates as ErrConflict
type Invoice struct {
	ID            int64
	ProjectID     int64
	InvoiceNumber string
	IssueDate     time.Time
	PeriodFrom    time.Time
	PeriodTo      time.Time
	Sequence      int // progress-billing round, starting at 1
	TaxMode       costing.TaxMode
	VATRate       decimal.Decimal // percent
	SupplyAmount  decimal.Decimal
	VATAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// InvoiceLine is one category row of an invoice, ordered by LineNumber
// starting at 1. Zero-cost categories are omitted, not written as zero rows.
// Line amounts sum to the parent invoice's fields at generation time; lines
// are not re-synced after edits.
type InvoiceLine struct {
	ID           int64
	InvoiceID    int64
	LineNumber   int
	Description  string
	SupplyAmount decimal.Decimal
	VATAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
}
