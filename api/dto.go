/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Monetary fields are serialized as decimal strings with exactly 2
  fractional digits. They are never floats.

VALIDATION:
  Requests carry go-playground/validator struct tags; handlers run the
  validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: domain model these map onto
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/billing"
	"github.com/buildledger/cost-engine/costing"
	"github.com/buildledger/cost-engine/ledger"
	"github.com/buildledger/cost-engine/rates"
)

const dateLayout = "2006-01-02"

// money renders a decimal with exactly 2 fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// =============================================================================
// PROJECTS
// =============================================================================

type CreateProjectRequest struct {
	ClientID       int64  `json:"client_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Address        string `json:"address"`
	ContractAmount string `json:"contract_amount" validate:"omitempty,numeric"`
	AdvanceRate    string `json:"advance_rate" validate:"omitempty,numeric"`
	DefectRate     string `json:"defect_rate" validate:"omitempty,numeric"`
	TaxMode        string `json:"tax_mode" validate:"omitempty,oneof=taxable exempt zero"`
}

type ProjectDTO struct {
	ID             int64  `json:"id"`
	ClientID       int64  `json:"client_id"`
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	ContractAmount string `json:"contract_amount"`
	AdvanceRate    string `json:"advance_rate"`
	DefectRate     string `json:"defect_rate"`
	TaxMode        string `json:"tax_mode"`
}

func toProjectDTO(p *ledger.Project) ProjectDTO {
	return ProjectDTO{
		ID:             p.ID,
		ClientID:       p.ClientID,
		Name:           p.Name,
		Address:        p.Address,
		ContractAmount: money(p.ContractAmount),
		AdvanceRate:    p.AdvanceRate.StringFixed(2),
		DefectRate:     p.DefectRate.StringFixed(2),
		TaxMode:        string(p.TaxMode),
	}
}

// =============================================================================
// WORK LOGS
// =============================================================================

type LaborEntryRequest struct {
	Trade    string `json:"trade" validate:"required"`
	Persons  int    `json:"persons" validate:"required,gt=0"`
	Hours    string `json:"hours" validate:"required,numeric"`
	RateType string `json:"rate_type" validate:"required,oneof=daily hourly"`
	UnitRate string `json:"unit_rate" validate:"required,numeric"`
}

type EquipmentEntryRequest struct {
	Name string `json:"name" validate:"required"`
	// EquipmentCode selects the registered machine classification; when
	// min_hours is omitted, the classification's minimum call-out hours
	// apply instead of the blanket default.
	EquipmentCode   string `json:"equipment_code" validate:"omitempty"`
	Units           int    `json:"units" validate:"required,gt=0"`
	Hours           string `json:"hours" validate:"required,numeric"`
	HourlyRate      string `json:"hourly_rate" validate:"required,numeric"`
	MinHours        string `json:"min_hours" validate:"omitempty,numeric"`
	MobilizationFee string `json:"mobilization_fee" validate:"omitempty,numeric"`
}

type MaterialEntryRequest struct {
	Name      string `json:"name" validate:"required"`
	Quantity  string `json:"quantity" validate:"required,numeric"`
	Unit      string `json:"unit"`
	UnitPrice string `json:"unit_price" validate:"required,numeric"`
	WasteRate string `json:"waste_rate" validate:"omitempty,numeric"`
}

type WorkItemRequest struct {
	TaskCode      string                  `json:"task_code" validate:"required"`
	TaskName      string                  `json:"task_name"`
	Specification string                  `json:"specification"`
	Quantity      string                  `json:"quantity" validate:"omitempty,numeric"`
	Unit          string                  `json:"unit"`
	ProgressRate  string                  `json:"progress_rate" validate:"omitempty,numeric"`
	Labor         []LaborEntryRequest     `json:"labor_entries" validate:"dive"`
	Equipment     []EquipmentEntryRequest `json:"equipment_entries" validate:"dive"`
	Materials     []MaterialEntryRequest  `json:"material_entries" validate:"dive"`
}

type CreateWorkLogRequest struct {
	ProjectID     int64             `json:"project_id" validate:"required"`
	WorkDate      string            `json:"work_date" validate:"required,datetime=2006-01-02"`
	Area          string            `json:"area"`
	Weather       string            `json:"weather"`
	ProcessStatus string            `json:"process_status"`
	Notes         string            `json:"notes"`
	Items         []WorkItemRequest `json:"work_items" validate:"required,min=1,dive"`
}

type WorkLogDTO struct {
	ID            int64  `json:"id"`
	ProjectID     int64  `json:"project_id"`
	WorkDate      string `json:"work_date"`
	Area          string `json:"area,omitempty"`
	Weather       string `json:"weather,omitempty"`
	ProcessStatus string `json:"process_status,omitempty"`
	Notes         string `json:"notes,omitempty"`
	ItemCount     int    `json:"item_count"`
	LaborCost     string `json:"labor_cost"`
}

// =============================================================================
// AGGREGATION
// =============================================================================

type CostBreakdownDTO struct {
	LaborCost         string `json:"labor_cost"`
	EquipmentCost     string `json:"equipment_cost"`
	MaterialCost      string `json:"material_cost"`
	TotalSupplyAmount string `json:"total_supply_amount"`
}

type CostSummaryDTO struct {
	ProjectID      int64            `json:"project_id"`
	PeriodFrom     string           `json:"period_from"`
	PeriodTo       string           `json:"period_to"`
	CostSummary    CostBreakdownDTO `json:"cost_summary"`
	WorkLogsCount  int              `json:"work_logs_count"`
	WorkItemsCount int              `json:"work_items_count"`
}

func toCostSummaryDTO(snap *ledger.AggregationSnapshot) CostSummaryDTO {
	return CostSummaryDTO{
		ProjectID:  snap.ProjectID,
		PeriodFrom: snap.PeriodFrom.Format(dateLayout),
		PeriodTo:   snap.PeriodTo.Format(dateLayout),
		CostSummary: CostBreakdownDTO{
			LaborCost:         money(snap.LaborCost),
			EquipmentCost:     money(snap.EquipmentCost),
			MaterialCost:      money(snap.MaterialCost),
			TotalSupplyAmount: money(snap.TotalSupplyAmount),
		},
		WorkLogsCount:  snap.WorkLogCount(),
		WorkItemsCount: snap.WorkItemCount(),
	}
}

// =============================================================================
// INVOICES
// =============================================================================

type GenerateInvoiceRequest struct {
	PeriodFrom string `json:"period_from" validate:"required,datetime=2006-01-02"`
	PeriodTo   string `json:"period_to" validate:"required,datetime=2006-01-02"`
	Sequence   int    `json:"sequence" validate:"omitempty,gte=1"`
	VATRate    string `json:"vat_rate" validate:"omitempty,numeric"`
	TaxMode    string `json:"tax_mode" validate:"omitempty,oneof=taxable exempt zero"`
}

type InvoiceLineDTO struct {
	LineNumber   int    `json:"line_number"`
	Description  string `json:"description"`
	SupplyAmount string `json:"supply_amount"`
	VATAmount    string `json:"vat_amount"`
	TotalAmount  string `json:"total_amount"`
}

type InvoiceDTO struct {
	InvoiceID     int64            `json:"invoice_id"`
	ProjectID     int64            `json:"project_id"`
	InvoiceNumber string           `json:"invoice_number"`
	IssueDate     string           `json:"issue_date"`
	PeriodFrom    string           `json:"period_from"`
	PeriodTo      string           `json:"period_to"`
	Sequence      int              `json:"sequence"`
	TaxMode       string           `json:"tax_mode"`
	VATRate       string           `json:"vat_rate"`
	SupplyAmount  string           `json:"supply_amount"`
	VATAmount     string           `json:"vat_amount"`
	TotalAmount   string           `json:"total_amount"`
	Lines         []InvoiceLineDTO `json:"lines,omitempty"`
}

func toInvoiceDTO(inv *ledger.Invoice, lines []ledger.InvoiceLine) InvoiceDTO {
	dto := InvoiceDTO{
		InvoiceID:     inv.ID,
		ProjectID:     inv.ProjectID,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate.Format(dateLayout),
		PeriodFrom:    inv.PeriodFrom.Format(dateLayout),
		PeriodTo:      inv.PeriodTo.Format(dateLayout),
		Sequence:      inv.Sequence,
		TaxMode:       string(inv.TaxMode),
		VATRate:       inv.VATRate.StringFixed(2),
		SupplyAmount:  money(inv.SupplyAmount),
		VATAmount:     money(inv.VATAmount),
		TotalAmount:   money(inv.TotalAmount),
	}
	for _, line := range lines {
		dto.Lines = append(dto.Lines, InvoiceLineDTO{
			LineNumber:   line.LineNumber,
			Description:  line.Description,
			SupplyAmount: money(line.SupplyAmount),
			VATAmount:    money(line.VATAmount),
			TotalAmount:  money(line.TotalAmount),
		})
	}
	return dto
}

func toInvoiceResultDTO(res *billing.InvoiceResult) InvoiceDTO {
	return toInvoiceDTO(&res.Invoice, res.Lines)
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

type RecommendLaborRequest struct {
	Trade          string `json:"trade" validate:"required"`
	RateType       string `json:"rate_type" validate:"omitempty,oneof=daily hourly"`
	TaskCodePrefix string `json:"task_code_prefix"`
	ProjectID      *int64 `json:"project_id"`
	LookbackDays   int    `json:"lookback_days" validate:"omitempty,gte=1"`
}

type RecommendationDTO struct {
	RecommendedRate   string   `json:"recommended_rate"`
	RateType          string   `json:"rate_type"`
	SampleSize        int      `json:"sample_size"`
	HistoricalMedian  *string  `json:"historical_median,omitempty"`
	P25               *string  `json:"p25,omitempty"`
	P75               *string  `json:"p75,omitempty"`
	StandardReference *string  `json:"standard_reference,omitempty"`
	Confidence        float64  `json:"confidence"`
	Notes             []string `json:"notes"`
}

func toRecommendationDTO(rec *rates.Recommendation) RecommendationDTO {
	return RecommendationDTO{
		RecommendedRate:   money(rec.RecommendedRate),
		RateType:          string(rec.RateType),
		SampleSize:        rec.SampleSize,
		HistoricalMedian:  moneyPtr(rec.HistoricalMedian),
		P25:               moneyPtr(rec.P25),
		P75:               moneyPtr(rec.P75),
		StandardReference: moneyPtr(rec.StandardReference),
		Confidence:        rec.Confidence,
		Notes:             rec.Notes,
	}
}

// =============================================================================
// CALCULATIONS
// =============================================================================

type EquipmentCostRequest struct {
	EquipmentCode   string `json:"equipment_code" validate:"omitempty"`
	Units           int    `json:"units" validate:"required,gt=0"`
	Hours           string `json:"hours" validate:"required,numeric"`
	HourlyRate      string `json:"hourly_rate" validate:"required,numeric"`
	MinHours        string `json:"min_hours" validate:"omitempty,numeric"`
	MobilizationFee string `json:"mobilization_fee" validate:"omitempty,numeric"`
}

type EquipmentCostDTO struct {
	BaseCost        string `json:"base_cost"`
	MobilizationFee string `json:"mobilization_fee"`
	TotalCost       string `json:"total_cost"`
	AppliedHours    string `json:"applied_hours"`
	MinHoursApplied bool   `json:"min_hours_applied"`
}

func toEquipmentCostDTO(r costing.EquipmentCostResult) EquipmentCostDTO {
	return EquipmentCostDTO{
		BaseCost:        money(r.BaseCost),
		MobilizationFee: money(r.MobilizationFee),
		TotalCost:       money(r.TotalCost),
		AppliedHours:    r.AppliedHours.String(),
		MinHoursApplied: r.MinHoursApplied,
	}
}

type MaterialCostRequest struct {
	Quantity  string `json:"quantity" validate:"required,numeric"`
	UnitPrice string `json:"unit_price" validate:"required,numeric"`
	WasteRate string `json:"waste_rate" validate:"omitempty,numeric"`
}

type MaterialCostDTO struct {
	BaseCost         string `json:"base_cost"`
	WasteAmount      string `json:"waste_amount"`
	TotalCost        string `json:"total_cost"`
	WasteRatePercent string `json:"waste_rate_percent"`
}

type VATRequest struct {
	SupplyAmount string `json:"supply_amount" validate:"required,numeric"`
	VATRate      string `json:"vat_rate" validate:"omitempty,numeric"`
	TaxMode      string `json:"tax_mode" validate:"omitempty,oneof=taxable exempt zero"`
}

type VATDTO struct {
	SupplyAmount string `json:"supply_amount"`
	VATAmount    string `json:"vat_amount"`
	TotalAmount  string `json:"total_amount"`
	VATRate      string `json:"vat_rate"`
	TaxMode      string `json:"tax_mode"`
}

type ProgressPaymentRequest struct {
	ContractAmount   string `json:"contract_amount" validate:"required,numeric"`
	ProgressRate     string `json:"progress_rate" validate:"required,numeric"`
	AdvanceRate      string `json:"advance_rate" validate:"omitempty,numeric"`
	DefectRate       string `json:"defect_rate" validate:"omitempty,numeric"`
	PreviousPayments string `json:"previous_payments" validate:"omitempty,numeric"`
}

type ProgressPaymentDTO struct {
	ContractAmount   string `json:"contract_amount"`
	CumulativeAmount string `json:"cumulative_amount"`
	AdvanceAmount    string `json:"advance_amount"`
	DefectAmount     string `json:"defect_amount"`
	PreviousPayments string `json:"previous_payments"`
	CurrentPayment   string `json:"current_payment"`
	ProgressRate     string `json:"progress_rate"`
}

func toProgressPaymentDTO(r costing.ProgressPaymentResult) ProgressPaymentDTO {
	return ProgressPaymentDTO{
		ContractAmount:   money(r.ContractAmount),
		CumulativeAmount: money(r.CumulativeAmount),
		AdvanceAmount:    money(r.AdvanceAmount),
		DefectAmount:     money(r.DefectAmount),
		PreviousPayments: money(r.PreviousPayments),
		CurrentPayment:   money(r.CurrentPayment),
		ProgressRate:     r.ProgressRate.StringFixed(2),
	}
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type TradeDTO struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	DailyRate   string `json:"standard_daily_rate"`
	HourlyRate  string `json:"standard_hourly_rate"`
	Description string `json:"description,omitempty"`
}

type EquipmentTypeDTO struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	InspectionCycle int    `json:"inspection_cycle"`
	MinCallHours    string `json:"min_call_hours"`
	Description     string `json:"description,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
