/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (ledger.Repository, ledger.InvoiceSink,
  ledger.SequenceSource) using SQLite. In production, the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  ledger.ProjectStore:      Project records
  ledger.WorkLogStore:      Daily work logs with itemized cost entries
  ledger.LaborHistoryStore: Flattened labor entry queries for recommendations
  ledger.InvoiceSink:       Invoices with category lines
  ledger.SequenceSource:    Next progress-billing round per project

KEY TABLES:
  projects:          Contracted sites
  work_logs:         One row per site per day
  work_items:        Tasks within a log
  labor_entries:     Crew charges per item
  equipment_entries: Machine charges per item
  material_entries:  Material charges per item
  invoices:          Progress bills; invoice_number is UNIQUE
  invoice_lines:     Category rows per invoice

DECIMAL STORAGE:
  Monetary and quantity columns are stored as TEXT and parsed with
  shopspring/decimal on the way out. Floats never touch money.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/ratemath"
)

const dateLayout = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		contract_amount TEXT NOT NULL,
		advance_rate TEXT NOT NULL,
		defect_rate TEXT NOT NULL,
		tax_mode TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS work_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		work_date TEXT NOT NULL,
		area TEXT,
		weather TEXT,
		process_status TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: period aggregation scans by project and date range
	CREATE INDEX IF NOT EXISTS idx_work_logs_project_date
		ON work_logs(project_id, work_date);

	CREATE TABLE IF NOT EXISTS work_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_log_id INTEGER NOT NULL REFERENCES work_logs(id),
		task_code TEXT NOT NULL,
		task_name TEXT,
		specification TEXT,
		quantity TEXT NOT NULL,
		unit TEXT,
		progress_rate TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_items_log
		ON work_items(work_log_id);

	CREATE TABLE IF NOT EXISTS labor_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_item_id INTEGER NOT NULL REFERENCES work_items(id),
		trade TEXT NOT NULL,
		persons INTEGER NOT NULL,
		hours TEXT NOT NULL,
		rate_type TEXT NOT NULL,
		unit_rate TEXT NOT NULL,
		total_cost TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_labor_entries_item
		ON labor_entries(work_item_id);
	-- Rate recommendation queries filter by trade
	CREATE INDEX IF NOT EXISTS idx_labor_entries_trade
		ON labor_entries(trade);

	CREATE TABLE IF NOT EXISTS equipment_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_item_id INTEGER NOT NULL REFERENCES work_items(id),
		name TEXT NOT NULL,
		units INTEGER NOT NULL,
		hours TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		min_hours TEXT NOT NULL,
		mobilization_fee TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_equipment_entries_item
		ON equipment_entries(work_item_id);

	CREATE TABLE IF NOT EXISTS material_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_item_id INTEGER NOT NULL REFERENCES work_items(id),
		name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit TEXT,
		unit_price TEXT NOT NULL,
		waste_rate TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_material_entries_item
		ON material_entries(work_item_id);

	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		invoice_number TEXT NOT NULL UNIQUE,
		issue_date TEXT NOT NULL,
		period_from TEXT NOT NULL,
		period_to TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		tax_mode TEXT NOT NULL,
		vat_rate TEXT NOT NULL,
		supply_amount TEXT NOT NULL,
		vat_amount TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_project
		ON invoices(project_id);

	CREATE TABLE IF NOT EXISTS invoice_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL REFERENCES invoices(id),
		line_number INTEGER NOT NULL,
		description TEXT NOT NULL,
		supply_amount TEXT NOT NULL,
		vat_amount TEXT NOT NULL,
		total_amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice
		ON invoice_lines(invoice_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECTS
// =============================================================================

// SaveProject inserts a project and assigns its ID.
func (s *Store) SaveProject(ctx context.Context, p *ledger.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (client_id, name, address, contract_amount, advance_rate, defect_rate, tax_mode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID,
		p.Name,
		p.Address,
		p.ContractAmount.String(),
		p.AdvanceRate.String(),
		p.DefectRate.String(),
		string(p.TaxMode),
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	p.ID, err = res.LastInsertId()
	return err
}

// GetProject returns a project by ID, or ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id int64) (*ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, name, address, contract_amount, advance_rate, defect_rate, tax_mode, created_at
		FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, &ledger.NotFoundError{Kind: "project", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects ordered by ID.
func (s *Store) ListProjects(ctx context.Context) ([]ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, name, address, contract_amount, advance_rate, defect_rate, tax_mode, created_at
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []ledger.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*ledger.Project, error) {
	var (
		p                         ledger.Project
		contract, advance, defect string
		taxMode, createdAt        string
	)
	if err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Address, &contract, &advance, &defect, &taxMode, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.ContractAmount, err = decimal.NewFromString(contract); err != nil {
		return nil, fmt.Errorf("corrupt contract_amount: %w", err)
	}
	if p.AdvanceRate, err = decimal.NewFromString(advance); err != nil {
		return nil, fmt.Errorf("corrupt advance_rate: %w", err)
	}
	if p.DefectRate, err = decimal.NewFromString(defect); err != nil {
		return nil, fmt.Errorf("corrupt defect_rate: %w", err)
	}
	p.TaxMode = costing.TaxMode(taxMode)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

// SaveWorkLog persists a log with all items and entries in one transaction,
// assigning IDs top-down.
func (s *Store) SaveWorkLog(ctx context.Context, wl *ledger.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO work_logs (project_id, work_date, area, weather, process_status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wl.ProjectID,
		wl.WorkDate.Format(dateLayout),
		wl.Area,
		wl.Weather,
		wl.ProcessStatus,
		wl.Notes,
		wl.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save work log: %w", err)
	}
	if wl.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range wl.Items {
		item := &wl.Items[i]
		item.WorkLogID = wl.ID

		res, err := tx.ExecContext(ctx, `
			INSERT INTO work_items (work_log_id, task_code, task_name, specification, quantity, unit, progress_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.WorkLogID,
			item.TaskCode,
			item.TaskName,
			item.Specification,
			item.Quantity.String(),
			item.Unit,
			item.ProgressRate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save work item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		for j := range item.Labor {
			le := &item.Labor[j]
			le.WorkItemID = item.ID
			res, err := tx.ExecContext(ctx, `
				INSERT INTO labor_entries (work_item_id, trade, persons, hours, rate_type, unit_rate, total_cost)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				le.WorkItemID, le.Trade, le.Persons,
				le.Hours.String(), string(le.RateType),
				le.UnitRate.String(), le.TotalCost.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to save labor entry: %w", err)
			}
			if le.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}

		for j := range item.Equipment {
			ee := &item.Equipment[j]
			ee.WorkItemID = item.ID
			res, err := tx.ExecContext(ctx, `
				INSERT INTO equipment_entries (work_item_id, name, units, hours, hourly_rate, min_hours, mobilization_fee)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				ee.WorkItemID, ee.Name, ee.Units,
				ee.Hours.String(), ee.HourlyRate.String(),
				ee.MinHours.String(), ee.MobilizationFee.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to save equipment entry: %w", err)
			}
			if ee.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}

		for j := range item.Materials {
			me := &item.Materials[j]
			me.WorkItemID = item.ID
			res, err := tx.ExecContext(ctx, `
				INSERT INTO material_entries (work_item_id, name, quantity, unit, unit_price, waste_rate)
				VALUES (?, ?, ?, ?, ?, ?)`,
				me.WorkItemID, me.Name,
				me.Quantity.String(), me.Unit,
				me.UnitPrice.String(), me.WasteRate.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to save material entry: %w", err)
			}
			if me.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// FindWorkLogs returns all logs for the project within [from, to], inclusive,
// with items and entries attached, ordered by work date.
func (s *Store) FindWorkLogs(ctx context.Context, projectID int64, from, to time.Time) ([]ledger.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, work_date, area, weather, process_status, notes, created_at
		FROM work_logs
		WHERE project_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date, id`,
		projectID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to find work logs: %w", err)
	}
	defer rows.Close()

	var logs []ledger.WorkLog
	for rows.Next() {
		var (
			wl                  ledger.WorkLog
			workDate, createdAt string
		)
		if err := rows.Scan(&wl.ID, &wl.ProjectID, &workDate, &wl.Area, &wl.Weather, &wl.ProcessStatus, &wl.Notes, &createdAt); err != nil {
			return nil, err
		}
		wl.WorkDate, _ = time.Parse(dateLayout, workDate)
		wl.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		logs = append(logs, wl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range logs {
		if logs[i].Items, err = s.loadItems(ctx, logs[i].ID); err != nil {
			return nil, err
		}
	}
	return logs, nil
}

func (s *Store) loadItems(ctx context.Context, workLogID int64) ([]ledger.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_log_id, task_code, task_name, specification, quantity, unit, progress_rate
		FROM work_items WHERE work_log_id = ? ORDER BY id`, workLogID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work items: %w", err)
	}
	defer rows.Close()

	var items []ledger.WorkItem
	for rows.Next() {
		var (
			item               ledger.WorkItem
			quantity, progress string
		)
		if err := rows.Scan(&item.ID, &item.WorkLogID, &item.TaskCode, &item.TaskName, &item.Specification, &quantity, &item.Unit, &progress); err != nil {
			return nil, err
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("corrupt quantity: %w", err)
		}
		if item.ProgressRate, err = decimal.NewFromString(progress); err != nil {
			return nil, fmt.Errorf("corrupt progress_rate: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := s.loadEntries(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Store) loadEntries(ctx context.Context, item *ledger.WorkItem) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_item_id, trade, persons, hours, rate_type, unit_rate, total_cost
		FROM labor_entries WHERE work_item_id = ? ORDER BY id`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load labor entries: %w", err)
	}
	for rows.Next() {
		var (
			le                          ledger.LaborEntry
			hours, rt, unitRate, total string
		)
		if err := rows.Scan(&le.ID, &le.WorkItemID, &le.Trade, &le.Persons, &hours, &rt, &unitRate, &total); err != nil {
			rows.Close()
			return err
		}
		le.Hours = mustDec(hours)
		le.RateType = ratemath.RateType(rt)
		le.UnitRate = mustDec(unitRate)
		le.TotalCost = mustDec(total)
		item.Labor = append(item.Labor, le)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, work_item_id, name, units, hours, hourly_rate, min_hours, mobilization_fee
		FROM equipment_entries WHERE work_item_id = ? ORDER BY id`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load equipment entries: %w", err)
	}
	for rows.Next() {
		var (
			ee                              ledger.EquipmentEntry
			hours, rate, minHours, mobFee string
		)
		if err := rows.Scan(&ee.ID, &ee.WorkItemID, &ee.Name, &ee.Units, &hours, &rate, &minHours, &mobFee); err != nil {
			rows.Close()
			return err
		}
		ee.Hours = mustDec(hours)
		ee.HourlyRate = mustDec(rate)
		ee.MinHours = mustDec(minHours)
		ee.MobilizationFee = mustDec(mobFee)
		item.Equipment = append(item.Equipment, ee)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, work_item_id, name, quantity, unit, unit_price, waste_rate
		FROM material_entries WHERE work_item_id = ? ORDER BY id`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load material entries: %w", err)
	}
	for rows.Next() {
		var (
			me                  ledger.MaterialEntry
			qty, price, waste string
		)
		if err := rows.Scan(&me.ID, &me.WorkItemID, &me.Name, &qty, &me.Unit, &price, &waste); err != nil {
			rows.Close()
			return err
		}
		me.Quantity = mustDec(qty)
		me.UnitPrice = mustDec(price)
		me.WasteRate = mustDec(waste)
		item.Materials = append(item.Materials, me)
	}
	rows.Close()
	return rows.Err()
}

// =============================================================================
// LABOR HISTORY
// =============================================================================

// FindLaborHistory returns labor entries matching the query, joined through
// their work logs for date and project filtering.
func (s *Store) FindLaborHistory(ctx context.Context, q ledger.LaborHistoryQuery) ([]ledger.LaborEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.Builder{}
	query.WriteString(`
		SELECT le.id, le.work_item_id, le.trade, le.persons, le.hours, le.rate_type, le.unit_rate, le.total_cost
		FROM labor_entries le
		JOIN work_items wi ON wi.id = le.work_item_id
		JOIN work_logs wl ON wl.id = wi.work_log_id
		WHERE le.trade = ? AND wl.work_date >= ?`)
	args := []any{q.Trade, q.Since.Format(dateLayout)}

	if q.ProjectID != nil {
		query.WriteString(" AND wl.project_id = ?")
		args = append(args, *q.ProjectID)
	}
	if q.TaskCodePrefix != "" {
		query.WriteString(" AND wi.task_code LIKE ? || '%'")
		args = append(args, q.TaskCodePrefix)
	}
	query.WriteString(" ORDER BY wl.work_date, le.id")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find labor history: %w", err)
	}
	defer rows.Close()

	var entries []ledger.LaborEntry
	for rows.Next() {
		var (
			le                         ledger.LaborEntry
			hours, rt, unitRate, total string
		)
		if err := rows.Scan(&le.ID, &le.WorkItemID, &le.Trade, &le.Persons, &hours, &rt, &unitRate, &total); err != nil {
			return nil, err
		}
		le.Hours = mustDec(hours)
		le.RateType = ratemath.RateType(rt)
		le.UnitRate = mustDec(unitRate)
		le.TotalCost = mustDec(total)
		entries = append(entries, le)
	}
	return entries, rows.Err()
}

// =============================================================================
// INVOICES
// =============================================================================

// SaveInvoice persists the header and lines atomically. A duplicate invoice
// number reports ErrConflict.
func (s *Store) SaveInvoice(ctx context.Context, inv *ledger.Invoice, lines []ledger.InvoiceLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (project_id, invoice_number, issue_date, period_from, period_to, sequence,
			tax_mode, vat_rate, supply_amount, vat_amount, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ProjectID,
		inv.InvoiceNumber,
		inv.IssueDate.Format(dateLayout),
		inv.PeriodFrom.Format(dateLayout),
		inv.PeriodTo.Format(dateLayout),
		inv.Sequence,
		string(inv.TaxMode),
		inv.VATRate.String(),
		inv.SupplyAmount.String(),
		inv.VATAmount.String(),
		inv.TotalAmount.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &ledger.ConflictError{InvoiceNumber: inv.InvoiceNumber}
		}
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	if inv.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range lines {
		line := &lines[i]
		line.InvoiceID = inv.ID
		res, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_lines (invoice_id, line_number, description, supply_amount, vat_amount, total_amount)
			VALUES (?, ?, ?, ?, ?, ?)`,
			line.InvoiceID, line.LineNumber, line.Description,
			line.SupplyAmount.String(), line.VATAmount.String(), line.TotalAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save invoice line: %w", err)
		}
		if line.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetInvoice returns an invoice with its lines, or ErrNotFound.
func (s *Store) GetInvoice(ctx context.Context, id int64) (*ledger.Invoice, []ledger.InvoiceLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, invoice_number, issue_date, period_from, period_to, sequence,
			tax_mode, vat_rate, supply_amount, vat_amount, total_amount
		FROM invoices WHERE id = ?`, id)

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil, &ledger.NotFoundError{Kind: "invoice", ID: id}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, line_number, description, supply_amount, vat_amount, total_amount
		FROM invoice_lines WHERE invoice_id = ? ORDER BY line_number`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []ledger.InvoiceLine
	for rows.Next() {
		var (
			line                 ledger.InvoiceLine
			supply, vat, total string
		)
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.LineNumber, &line.Description, &supply, &vat, &total); err != nil {
			return nil, nil, err
		}
		line.SupplyAmount = mustDec(supply)
		line.VATAmount = mustDec(vat)
		line.TotalAmount = mustDec(total)
		lines = append(lines, line)
	}
	return inv, lines, rows.Err()
}

// ListInvoices returns all invoices for a project ordered by sequence.
func (s *Store) ListInvoices(ctx context.Context, projectID int64) ([]ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, invoice_number, issue_date, period_from, period_to, sequence,
			tax_mode, vat_rate, supply_amount, vat_amount, total_amount
		FROM invoices WHERE project_id = ? ORDER BY sequence`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []ledger.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row rowScanner) (*ledger.Invoice, error) {
	var (
		inv                                        ledger.Invoice
		issueDate, periodFrom, periodTo, taxMode   string
		vatRate, supply, vat, total                string
	)
	if err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &issueDate, &periodFrom, &periodTo,
		&inv.Sequence, &taxMode, &vatRate, &supply, &vat, &total); err != nil {
		return nil, err
	}
	inv.IssueDate, _ = time.Parse(dateLayout, issueDate)
	inv.PeriodFrom, _ = time.Parse(dateLayout, periodFrom)
	inv.PeriodTo, _ = time.Parse(dateLayout, periodTo)
	inv.TaxMode = costing.TaxMode(taxMode)
	inv.VATRate = mustDec(vatRate)
	inv.SupplyAmount = mustDec(supply)
	inv.VATAmount = mustDec(vat)
	inv.TotalAmount = mustDec(total)
	return &inv, nil
}

// NextSequence returns max(sequence)+1 over the project's invoices.
func (s *Store) NextSequence(ctx context.Context, projectID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sequence), 0) + 1 FROM invoices WHERE project_id = ?`, projectID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next sequence: %w", err)
	}
	return next, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// mustDec parses a decimal column written by this store. Values are always
// produced by decimal.String(), so a parse failure means the row was edited
// outside the application; treat it as zero rather than failing the read.
func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
