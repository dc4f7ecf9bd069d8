/*
store.go - Repository interfaces between the engines and persistence

PURPOSE:
  The engines consume persistence through these narrow interfaces. No
  transactional guarantee is assumed beyond "one call returns a
  consistent-enough snapshot"; isolation across a read-then-write invoice
  generation is the caller's responsibility (see DESIGN.md).

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - ledger/store: in-memory store for tests and development

SEE ALSO:
  - billing: Aggregator and Builder consuming these interfaces
  - rates: Recommender consuming LaborHistoryStore
*/
package ledger

import (
	"context"
	"time"
)

// =============================================================================
// PROJECT STORE
// =============================================================================

// ProjectStore persists projects. GetProject returns ErrNotFound for an
// unknown id.
type ProjectStore interface {
	SaveProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
}

// =============================================================================
// WORK LOG STORE
// =============================================================================

// WorkLogStore persists daily work logs with their cost entries.
type WorkLogStore interface {
	// SaveWorkLog persists a log and all attached items/entries atomically,
	// assigning identities.
	SaveWorkLog(ctx context.Context, wl *WorkLog) error

	// FindWorkLogs returns all logs for the project whose work date falls in
	// [from, to] inclusive, with items and entries loaded, ordered by date.
	FindWorkLogs(ctx context.Context, projectID int64, from, to time.Time) ([]WorkLog, error)
}

// =============================================================================
// LABOR HISTORY STORE
// =============================================================================

// LaborHistoryQuery filters historical labor entries for rate
// recommendation.
type LaborHistoryQuery struct {
	Trade          string
	Since          time.Time // owning work log's date >= Since
	ProjectID      *int64    // optional
	TaskCodePrefix string    // optional starts-with match on the item's task code
}

// LaborHistoryStore retrieves historical labor entries for a trade.
type LaborHistoryStore interface {
	FindLaborHistory(ctx context.Context, q LaborHistoryQuery) ([]LaborEntry, error)
}

// =============================================================================
// INVOICE SINK
// =============================================================================

// InvoiceSink accepts a constructed invoice plus its line set, assigns
// identity, and enforces invoice-number uniqueness. A duplicate number is
// reported as ErrConflict so the caller can retry with a new sequence.
type InvoiceSink interface {
	SaveInvoice(ctx context.Context, inv *Invoice, lines []InvoiceLine) error
	GetInvoice(ctx context.Context, id int64) (*Invoice, []InvoiceLine, error)
	ListInvoices(ctx context.Context, projectID int64) ([]Invoice, error)
}

// =============================================================================
// SEQUENCE SOURCE
// =============================================================================

// SequenceSource supplies the next progress-billing round number for a
// project. Injectable so invoice numbering is not derived purely from
// caller-supplied sequence plus wall-clock year.
type SequenceSource interface {
	NextSequence(ctx context.Context, projectID int64) (int, error)
}

// Repository bundles the read-side capabilities the engines need.
type Repository interface {
	ProjectStore
	WorkLogStore
	LaborHistoryStore
}
