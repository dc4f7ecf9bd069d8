// Package store provides an in-memory ledger repository for tests and
// development.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/buildledger/cost-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.Repository, ledger.InvoiceSink, and
// ledger.SequenceSource. Safe for concurrent use.
type Memory struct {
	mu             sync.RWMutex
	projects       map[int64]ledger.Project
	workLogs       map[int64]ledger.WorkLog
	invoices       map[int64]ledger.Invoice
	invoiceLines   map[int64][]ledger.InvoiceLine
	invoiceNumbers map[string]bool

	nextProjectID int64
	nextWorkLogID int64
	nextItemID    int64
	nextEntryID   int64
	nextInvoiceID int64
}

func NewMemory() *Memory {
	return &Memory{
		projects:       make(map[int64]ledger.Project),
		workLogs:       make(map[int64]ledger.WorkLog),
		invoices:       make(map[int64]ledger.Invoice),
		invoiceLines:   make(map[int64][]ledger.InvoiceLine),
		invoiceNumbers: make(map[string]bool),
	}
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) SaveProject(_ context.Context, p *ledger.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == 0 {
		m.nextProjectID++
		p.ID = m.nextProjectID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *Memory) GetProject(_ context.Context, id int64) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, &ledger.NotFoundError{Kind: "project", ID: id}
	}
	return &p, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

func (m *Memory) SaveWorkLog(_ context.Context, wl *ledger.WorkLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[wl.ProjectID]; !ok {
		return &ledger.NotFoundError{Kind: "project", ID: wl.ProjectID}
	}

	if wl.ID == 0 {
		m.nextWorkLogID++
		wl.ID = m.nextWorkLogID
	}
	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = time.Now().UTC()
	}
	for i := range wl.Items {
		item := &wl.Items[i]
		if item.ID == 0 {
			m.nextItemID++
			item.ID = m.nextItemID
		}
		item.WorkLogID = wl.ID
		for j := range item.Labor {
			m.nextEntryID++
			item.Labor[j].ID = m.nextEntryID
			item.Labor[j].WorkItemID = item.ID
		}
		for j := range item.Equipment {
			m.nextEntryID++
			item.Equipment[j].ID = m.nextEntryID
			item.Equipment[j].WorkItemID = item.ID
		}
		for j := range item.Materials {
			m.nextEntryID++
			item.Materials[j].ID = m.nextEntryID
			item.Materials[j].WorkItemID = item.ID
		}
	}

	m.workLogs[wl.ID] = *wl
	return nil
}

func (m *Memory) FindWorkLogs(_ context.Context, projectID int64, from, to time.Time) ([]ledger.WorkLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.WorkLog
	for _, wl := range m.workLogs {
		if wl.ProjectID != projectID {
			continue
		}
		if wl.WorkDate.Before(from) || wl.WorkDate.After(to) {
			continue
		}
		out = append(out, wl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	return out, nil
}

// =============================================================================
// LABOR HISTORY
// =============================================================================

func (m *Memory) FindLaborHistory(_ context.Context, q ledger.LaborHistoryQuery) ([]ledger.LaborEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.LaborEntry
	for _, wl := range m.workLogs {
		if wl.WorkDate.Before(q.Since) {
			continue
		}
		if q.ProjectID != nil && wl.ProjectID != *q.ProjectID {
			continue
		}
		for _, item := range wl.Items {
			if q.TaskCodePrefix != "" && !strings.HasPrefix(item.TaskCode, q.TaskCodePrefix) {
				continue
			}
			for _, le := range item.Labor {
				if le.Trade == q.Trade {
					out = append(out, le)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// INVOICES
// =============================================================================

func (m *Memory) SaveInvoice(_ context.Context, inv *ledger.Invoice, lines []ledger.InvoiceLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.invoiceNumbers[inv.InvoiceNumber] {
		return &ledger.ConflictError{InvoiceNumber: inv.InvoiceNumber}
	}

	m.nextInvoiceID++
	inv.ID = m.nextInvoiceID
	m.invoiceNumbers[inv.InvoiceNumber] = true
	m.invoices[inv.ID] = *inv

	stored := make([]ledger.InvoiceLine, len(lines))
	for i := range lines {
		lines[i].ID = int64(i + 1)
		lines[i].InvoiceID = inv.ID
		stored[i] = lines[i]
	}
	m.invoiceLines[inv.ID] = stored
	return nil
}

func (m *Memory) GetInvoice(_ context.Context, id int64) (*ledger.Invoice, []ledger.InvoiceLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil, &ledger.NotFoundError{Kind: "invoice", ID: id}
	}
	lines := append([]ledger.InvoiceLine(nil), m.invoiceLines[id]...)
	return &inv, lines, nil
}

func (m *Memory) ListInvoices(_ context.Context, projectID int64) ([]ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Invoice
	for _, inv := range m.invoices {
		if inv.ProjectID == projectID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// NextSequence returns one past the highest sequence already invoiced for
// the project.
func (m *Memory) NextSequence(_ context.Context, projectID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	max := 0
	for _, inv := range m.invoices {
		if inv.ProjectID == projectID && inv.Sequence > max {
			max = inv.Sequence
		}
	}
	return max + 1, nil
}
