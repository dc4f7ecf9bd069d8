/*
handlers.go - HTTP API handlers for the cost engine

PURPOSE:
  Exposes the cost calculation and billing engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Projects:
    GET    /api/projects                        List projects
    POST   /api/projects                        Create project
    GET    /api/projects/{id}                   Get project
    GET    /api/projects/{id}/cost-summary      Aggregate costs for a period
    GET    /api/projects/{id}/invoices          List invoices
    POST   /api/projects/{id}/invoices          Generate progress invoice

  Work logs:
    POST   /api/work-logs                       Record a daily work log
    GET    /api/work-logs                       List logs for a project/period

  Invoices:
    GET    /api/invoices/{id}                   Get invoice with lines

  Recommendations:
    POST   /api/recommendations/labor           Recommend a labor rate

  Calculations (stateless):
    POST   /api/calculations/progress-payment
    POST   /api/calculations/vat
    POST   /api/calculations/equipment
    POST   /api/calculations/material

  Reference data:
    GET    /api/reference/trades
    GET    /api/reference/equipment-types
    GET    /api/reference/units
    GET    /api/reference/weather-conditions

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator)
  3. Call domain logic (costing, billing, rates)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, inverted periods
  - 404: Resource not found
  - 409: Conflict (duplicate invoice number)
  - 503: Backing store unavailable
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/billing"
	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/ratemath"
	"github.com/buildledger/cost-engine/rates"
	"github.com/buildledger/cost-engine/reference"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the API needs. Both the sqlite store and
// the in-memory store satisfy it.
type Store interface {
	ledger.Repository
	ledger.InvoiceSink
	ledger.SequenceSource
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       Store
	Aggregator  *billing.Aggregator
	Builder     *billing.Builder
	Recommender *rates.Recommender

	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler wires the engines around the given store.
func NewHandler(store Store, log zerolog.Logger) *Handler {
	agg := billing.NewAggregator(store)
	return &Handler{
		Store:      store,
		Aggregator: agg,
		Builder: &billing.Builder{
			Projects:   store,
			Aggregator: agg,
			Sink:       store,
			Sequences:  store,
		},
		Recommender: rates.NewRecommender(store),
		validate:    validator.New(),
		log:         log,
	}
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = toProjectDTO(&projects[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// CreateProject creates a new project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	contract, err := parseDecimal(req.ContractAmount, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract_amount", err)
		return
	}
	advance, err := parseDecimal(req.AdvanceRate, costing.DefaultAdvanceRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid advance_rate", err)
		return
	}
	defect, err := parseDecimal(req.DefectRate, costing.DefaultDefectRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid defect_rate", err)
		return
	}
	mode := costing.TaxTaxable
	if req.TaxMode != "" {
		mode, err = costing.ParseTaxMode(req.TaxMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tax_mode", err)
			return
		}
	}

	p := &ledger.Project{
		ClientID:       req.ClientID,
		Name:           req.Name,
		Address:        req.Address,
		ContractAmount: contract,
		AdvanceRate:    advance,
		DefectRate:     defect,
		TaxMode:        mode,
	}
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		h.writeDomainError(w, "Failed to create project", err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// =============================================================================
// WORK LOG HANDLERS
// =============================================================================

// CreateWorkLog records a daily work log with its cost entries.
func (h *Handler) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkLogRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	workDate, err := time.Parse(dateLayout, req.WorkDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work_date format (use YYYY-MM-DD)", err)
		return
	}

	// The project must exist before logs attach to it.
	if _, err := h.Store.GetProject(r.Context(), req.ProjectID); err != nil {
		h.writeDomainError(w, "Failed to resolve project", err)
		return
	}

	wl := &ledger.WorkLog{
		ProjectID:     req.ProjectID,
		WorkDate:      workDate,
		Area:          req.Area,
		Weather:       req.Weather,
		ProcessStatus: req.ProcessStatus,
		Notes:         req.Notes,
	}

	var laborTotal decimal.Decimal
	for _, itemReq := range req.Items {
		item, itemLabor, err := buildWorkItem(itemReq)
		if err != nil {
			h.writeDomainError(w, "Invalid work item", err)
			return
		}
		laborTotal = laborTotal.Add(itemLabor)
		wl.Items = append(wl.Items, item)
	}

	if err := h.Store.SaveWorkLog(r.Context(), wl); err != nil {
		h.writeDomainError(w, "Failed to save work log", err)
		return
	}

	writeJSON(w, http.StatusCreated, WorkLogDTO{
		ID:            wl.ID,
		ProjectID:     wl.ProjectID,
		WorkDate:      wl.WorkDate.Format(dateLayout),
		Area:          wl.Area,
		Weather:       wl.Weather,
		ProcessStatus: wl.ProcessStatus,
		Notes:         wl.Notes,
		ItemCount:     len(wl.Items),
		LaborCost:     money(ratemath.QuantizeMoney(laborTotal)),
	})
}

// ListWorkLogs lists the work logs for a project whose work date falls in
// the requested period.
func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project_id (must be an integer)", err)
		return
	}
	from, to, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	logs, err := h.Store.FindWorkLogs(r.Context(), projectID, from, to)
	if err != nil {
		h.writeDomainError(w, "Failed to list work logs", err)
		return
	}

	dtos := make([]WorkLogDTO, 0, len(logs))
	for _, wl := range logs {
		var laborTotal decimal.Decimal
		for _, item := range wl.Items {
			for _, le := range item.Labor {
				laborTotal = laborTotal.Add(le.TotalCost)
			}
		}
		dtos = append(dtos, WorkLogDTO{
			ID:            wl.ID,
			ProjectID:     wl.ProjectID,
			WorkDate:      wl.WorkDate.Format(dateLayout),
			Area:          wl.Area,
			Weather:       wl.Weather,
			ProcessStatus: wl.ProcessStatus,
			Notes:         wl.Notes,
			ItemCount:     len(wl.Items),
			LaborCost:     money(ratemath.QuantizeMoney(laborTotal)),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// buildWorkItem converts a work item request into the domain type, pricing
// each labor entry as it goes. Returns the item and its labor cost.
func buildWorkItem(req WorkItemRequest) (ledger.WorkItem, decimal.Decimal, error) {
	quantity, err := parseDecimal(req.Quantity, decimal.Zero)
	if err != nil {
		return ledger.WorkItem{}, decimal.Zero, err
	}
	progress, err := parseDecimal(req.ProgressRate, decimal.Zero)
	if err != nil {
		return ledger.WorkItem{}, decimal.Zero, err
	}

	item := ledger.WorkItem{
		TaskCode:      req.TaskCode,
		TaskName:      req.TaskName,
		Specification: req.Specification,
		Quantity:      quantity,
		Unit:          req.Unit,
		ProgressRate:  progress,
	}

	var laborTotal decimal.Decimal
	for _, lr := range req.Labor {
		hours, err := parseDecimal(lr.Hours, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		rate, err := parseDecimal(lr.UnitRate, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		rt, err := ratemath.ParseRateType(lr.RateType)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		cost, err := costing.LaborCost(lr.Persons, hours, rate)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		laborTotal = laborTotal.Add(cost)
		item.Labor = append(item.Labor, ledger.LaborEntry{
			Trade:     lr.Trade,
			Persons:   lr.Persons,
			Hours:     hours,
			RateType:  rt,
			UnitRate:  rate,
			TotalCost: cost,
		})
	}

	for _, er := range req.Equipment {
		hours, err := parseDecimal(er.Hours, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		rate, err := parseDecimal(er.HourlyRate, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		minHours, err := parseDecimal(er.MinHours, catalogMinHours(er.EquipmentCode))
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		mobFee, err := parseDecimal(er.MobilizationFee, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		item.Equipment = append(item.Equipment, ledger.EquipmentEntry{
			Name:            er.Name,
			Units:           er.Units,
			Hours:           hours,
			HourlyRate:      rate,
			MinHours:        minHours,
			MobilizationFee: mobFee,
		})
	}

	for _, mr := range req.Materials {
		qty, err := parseDecimal(mr.Quantity, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		price, err := parseDecimal(mr.UnitPrice, decimal.Zero)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		waste, err := parseDecimal(mr.WasteRate, costing.DefaultWasteRate)
		if err != nil {
			return ledger.WorkItem{}, decimal.Zero, err
		}
		item.Materials = append(item.Materials, ledger.MaterialEntry{
			Name:      mr.Name,
			Quantity:  qty,
			Unit:      mr.Unit,
			UnitPrice: price,
			WasteRate: waste,
		})
	}

	return item, laborTotal, nil
}

// =============================================================================
// AGGREGATION HANDLERS
// =============================================================================

// GetCostSummary aggregates costs over a period.
// GET /api/projects/{id}/cost-summary?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetCostSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	from, to, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}

	snap, err := h.Aggregator.Aggregate(r.Context(), id, from, to)
	if err != nil {
		h.writeDomainError(w, "Failed to aggregate costs", err)
		return
	}
	writeJSON(w, http.StatusOK, toCostSummaryDTO(snap))
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// GenerateInvoice aggregates a period and persists a progress invoice.
func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req GenerateInvoiceRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	from, err := time.Parse(dateLayout, req.PeriodFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_from format (use YYYY-MM-DD)", err)
		return
	}
	to, err := time.Parse(dateLayout, req.PeriodTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_to format (use YYYY-MM-DD)", err)
		return
	}
	vatRate, err := parseDecimal(req.VATRate, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vat_rate", err)
		return
	}
	var mode costing.TaxMode
	if req.TaxMode != "" {
		mode, err = costing.ParseTaxMode(req.TaxMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tax_mode", err)
			return
		}
	}

	corrID := uuid.NewString()
	res, err := h.Builder.CreateInvoice(r.Context(), billing.CreateInvoiceInput{
		ProjectID:  id,
		PeriodFrom: from,
		PeriodTo:   to,
		Sequence:   req.Sequence,
		VATRate:    vatRate,
		TaxMode:    mode,
	})
	if err != nil {
		h.log.Warn().
			Str("correlation_id", corrID).
			Int64("project_id", id).
			Err(err).
			Msg("invoice generation failed")
		h.writeDomainError(w, "Failed to generate invoice", err)
		return
	}

	h.log.Info().
		Str("correlation_id", corrID).
		Int64("project_id", id).
		Str("invoice_number", res.Invoice.InvoiceNumber).
		Str("total_amount", res.Invoice.TotalAmount.StringFixed(2)).
		Msg("invoice generated")

	writeJSON(w, http.StatusCreated, toInvoiceResultDTO(res))
}

// ListInvoices returns all invoices for a project.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	invoices, err := h.Store.ListInvoices(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = toInvoiceDTO(&invoices[i], nil)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetInvoice returns one invoice with its lines.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	inv, lines, err := h.Store.GetInvoice(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, lines))
}

// =============================================================================
// RECOMMENDATION HANDLERS
// =============================================================================

// RecommendLaborRate recommends a unit rate for a trade.
func (h *Handler) RecommendLaborRate(w http.ResponseWriter, r *http.Request) {
	var req RecommendLaborRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	rt := ratemath.RateDaily
	if req.RateType != "" {
		var err error
		rt, err = ratemath.ParseRateType(req.RateType)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid rate_type", err)
			return
		}
	}

	rec, err := h.Recommender.Recommend(r.Context(), rates.RecommendInput{
		Trade:          req.Trade,
		RateType:       rt,
		TaskCodePrefix: req.TaskCodePrefix,
		ProjectID:      req.ProjectID,
		LookbackDays:   req.LookbackDays,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to recommend labor rate", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecommendationDTO(rec))
}

// =============================================================================
// CALCULATION HANDLERS (STATELESS)
// =============================================================================

// CalculateProgressPayment computes a progress payment round.
func (h *Handler) CalculateProgressPayment(w http.ResponseWriter, r *http.Request) {
	var req ProgressPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	contract, err := parseDecimal(req.ContractAmount, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract_amount", err)
		return
	}
	progress, err := parseDecimal(req.ProgressRate, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid progress_rate", err)
		return
	}
	advance, err := parseDecimal(req.AdvanceRate, costing.DefaultAdvanceRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid advance_rate", err)
		return
	}
	defect, err := parseDecimal(req.DefectRate, costing.DefaultDefectRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid defect_rate", err)
		return
	}
	previous, err := parseDecimal(req.PreviousPayments, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid previous_payments", err)
		return
	}

	res, err := costing.ProgressPayment(contract, progress, advance, defect, previous)
	if err != nil {
		h.writeDomainError(w, "Progress payment calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressPaymentDTO(res))
}

// CalculateVAT computes VAT on a supply amount.
func (h *Handler) CalculateVAT(w http.ResponseWriter, r *http.Request) {
	var req VATRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	supply, err := parseDecimal(req.SupplyAmount, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid supply_amount", err)
		return
	}
	vatRate, err := parseDecimal(req.VATRate, costing.DefaultVATRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vat_rate", err)
		return
	}
	mode := costing.TaxTaxable
	if req.TaxMode != "" {
		mode, err = costing.ParseTaxMode(req.TaxMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tax_mode", err)
			return
		}
	}

	res, err := costing.VAT(supply, vatRate, mode)
	if err != nil {
		h.writeDomainError(w, "VAT calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, VATDTO{
		SupplyAmount: money(res.SupplyAmount),
		VATAmount:    money(res.VATAmount),
		TotalAmount:  money(res.TotalAmount),
		VATRate:      res.VATRate.StringFixed(2),
		TaxMode:      string(res.Mode),
	})
}

// CalculateEquipmentCost prices an equipment deployment.
func (h *Handler) CalculateEquipmentCost(w http.ResponseWriter, r *http.Request) {
	var req EquipmentCostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	hours, err := parseDecimal(req.Hours, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours", err)
		return
	}
	rate, err := parseDecimal(req.HourlyRate, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly_rate", err)
		return
	}
	minHours, err := parseDecimal(req.MinHours, catalogMinHours(req.EquipmentCode))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid min_hours", err)
		return
	}
	mobFee, err := parseDecimal(req.MobilizationFee, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mobilization_fee", err)
		return
	}

	res, err := costing.EquipmentCost(req.Units, hours, rate, minHours, mobFee)
	if err != nil {
		h.writeDomainError(w, "Equipment cost calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toEquipmentCostDTO(res))
}

// CalculateMaterialCost prices a material purchase with waste surcharge.
func (h *Handler) CalculateMaterialCost(w http.ResponseWriter, r *http.Request) {
	var req MaterialCostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	qty, err := parseDecimal(req.Quantity, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}
	price, err := parseDecimal(req.UnitPrice, decimal.Zero)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit_price", err)
		return
	}
	waste, err := parseDecimal(req.WasteRate, costing.DefaultWasteRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid waste_rate", err)
		return
	}

	res, err := costing.MaterialCost(qty, price, waste)
	if err != nil {
		h.writeDomainError(w, "Material cost calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, MaterialCostDTO{
		BaseCost:         money(res.BaseCost),
		WasteAmount:      money(res.WasteAmount),
		TotalCost:        money(res.TotalCost),
		WasteRatePercent: res.WasteRatePercent.StringFixed(2),
	})
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListTrades returns the standard trade table.
func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	dtos := make([]TradeDTO, len(reference.StandardTrades))
	for i, t := range reference.StandardTrades {
		dtos[i] = TradeDTO{
			Code:        t.Code,
			Name:        t.Name,
			Category:    t.Category,
			DailyRate:   money(t.DailyRate),
			HourlyRate:  money(t.HourlyRate),
			Description: t.Description,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEquipmentTypes returns the standard equipment catalog.
func (h *Handler) ListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	dtos := make([]EquipmentTypeDTO, len(reference.EquipmentTypes))
	for i, e := range reference.EquipmentTypes {
		dtos[i] = EquipmentTypeDTO{
			Code:            e.Code,
			Name:            e.Name,
			Category:        e.Category,
			InspectionCycle: e.InspectionCycle,
			MinCallHours:    e.MinCallHours.String(),
			Description:     e.Description,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListUnits returns the accepted measurement units.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reference.StandardUnits)
}

// ListWeatherConditions returns the site weather vocabulary.
func (h *Handler) ListWeatherConditions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reference.WeatherConditions)
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeAndValidate decodes the JSON body into dst and runs the validator.
// Writes the error response itself; callers bail out on false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// pathID parses an int64 URL parameter.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" (must be an integer)", err)
		return 0, false
	}
	return id, true
}

// queryPeriod parses required from/to query parameters.
func (h *Handler) queryPeriod(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// catalogMinHours returns the minimum call-out hours for a registered
// equipment code, or the blanket default when the code is absent or unknown.
func catalogMinHours(code string) decimal.Decimal {
	if et, ok := reference.LookupEquipment(code); ok {
		return et.MinCallHours
	}
	return costing.DefaultMinHours
}

// parseDecimal parses a decimal string, falling back to def when empty.
func parseDecimal(s string, def decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return def, nil
	}
	return decimal.NewFromString(s)
}

// writeDomainError maps domain errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, costing.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidPeriod),
		errors.Is(err, ratemath.ErrUnknownRateType):
		writeError(w, http.StatusBadRequest, message, err)
	case ledger.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
