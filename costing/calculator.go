/*
Package costing implements the construction cost calculator: labor, equipment,
material, VAT, and progress-payment amounts from itemized inputs.

PURPOSE:
  Pure, side-effect-free cost formulas. No repository access, no clock, no
  ambient state. Every monetary result is quantized to 2 fractional digits
  through ratemath.QuantizeMoney before being returned.

KEY RULES:
  Labor:     persons x hours x unit rate
  Equipment: minimum call-hours floor, then units x hours x hourly rate,
             plus a separate mobilization fee
  Material:  quantity x unit price, plus a waste surcharge
  VAT:       forced to zero for exempt and zero-rated supplies
  Progress:  cumulative earned value minus advance, prior payments, and
             defect retention, floored at zero

SEE ALSO:
  - ratemath: rounding and rate conversion primitives
  - billing: period aggregation and invoice generation built on these rules
*/
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/ratemath"
)

// Defaults for optional calculator arguments. Zero-valued arguments on the
// result-struct entry points fall back to these.
var (
	DefaultMinHours    = decimal.NewFromFloat(4.0)
	DefaultWasteRate   = decimal.NewFromFloat(0.03)
	DefaultVATRate     = decimal.NewFromFloat(10.0)
	DefaultAdvanceRate = decimal.NewFromFloat(10.0)
	DefaultDefectRate  = decimal.NewFromFloat(3.0)
)

var percentDivisor = decimal.NewFromInt(100)

// =============================================================================
// LABOR
// =============================================================================

// LaborCost computes persons x hours x unitRate, quantized.
// The meaning of hours follows the entry's rate type: days for daily rates,
// hours for hourly rates.
func LaborCost(persons int, hours, unitRate decimal.Decimal) (decimal.Decimal, error) {
	if persons < 0 {
		return decimal.Zero, invalidInput("persons", decimal.NewFromInt(int64(persons)).String(), "must not be negative")
	}
	if hours.IsNegative() {
		return decimal.Zero, invalidInput("hours", hours.String(), "must not be negative")
	}
	if unitRate.IsNegative() {
		return decimal.Zero, invalidInput("unit_rate", unitRate.String(), "must not be negative")
	}

	cost := decimal.NewFromInt(int64(persons)).Mul(hours).Mul(unitRate)
	return ratemath.QuantizeMoney(cost), nil
}

// =============================================================================
// EQUIPMENT
// =============================================================================

// EquipmentCostResult breaks an equipment charge into its audited parts.
// MinHoursApplied is true iff the minimum call-hours floor changed the billed
// hours; callers surface it for audit and display.
type EquipmentCostResult struct {
	BaseCost        decimal.Decimal
	MobilizationFee decimal.Decimal
	TotalCost       decimal.Decimal
	AppliedHours    decimal.Decimal
	MinHoursApplied bool
}

// EquipmentCost applies the minimum call-hours floor, then charges
// units x applied hours x hourly rate plus the mobilization fee.
// A non-positive minHours falls back to DefaultMinHours.
func EquipmentCost(units int, hours, hourlyRate, minHours, mobilizationFee decimal.Decimal) (EquipmentCostResult, error) {
	if units < 0 {
		return EquipmentCostResult{}, invalidInput("units", decimal.NewFromInt(int64(units)).String(), "must not be negative")
	}
	if hours.IsNegative() {
		return EquipmentCostResult{}, invalidInput("hours", hours.String(), "must not be negative")
	}
	if hourlyRate.IsNegative() {
		return EquipmentCostResult{}, invalidInput("hourly_rate", hourlyRate.String(), "must not be negative")
	}
	if mobilizationFee.IsNegative() {
		return EquipmentCostResult{}, invalidInput("mobilization_fee", mobilizationFee.String(), "must not be negative")
	}
	if minHours.Sign() <= 0 {
		minHours = DefaultMinHours
	}

	applied := hours
	if minHours.GreaterThan(applied) {
		applied = minHours
	}

	base := decimal.NewFromInt(int64(units)).Mul(applied).Mul(hourlyRate)
	return EquipmentCostResult{
		BaseCost:        ratemath.QuantizeMoney(base),
		MobilizationFee: ratemath.QuantizeMoney(mobilizationFee),
		TotalCost:       ratemath.QuantizeMoney(base.Add(mobilizationFee)),
		AppliedHours:    applied,
		MinHoursApplied: applied.GreaterThan(hours),
	}, nil
}

// =============================================================================
// MATERIAL
// =============================================================================

// MaterialCostResult carries the base charge and the waste surcharge.
// WasteRatePercent is the applied rate expressed as a percentage.
type MaterialCostResult struct {
	BaseCost         decimal.Decimal
	WasteAmount      decimal.Decimal
	TotalCost        decimal.Decimal
	WasteRatePercent decimal.Decimal
}

// MaterialCost computes quantity x unitPrice plus a waste surcharge.
// A negative wasteRate is rejected; a zero wasteRate means no surcharge
// (use DefaultWasteRate explicitly for the standard 3%).
func MaterialCost(quantity, unitPrice, wasteRate decimal.Decimal) (MaterialCostResult, error) {
	if quantity.IsNegative() {
		return MaterialCostResult{}, invalidInput("quantity", quantity.String(), "must not be negative")
	}
	if unitPrice.IsNegative() {
		return MaterialCostResult{}, invalidInput("unit_price", unitPrice.String(), "must not be negative")
	}
	if wasteRate.IsNegative() {
		return MaterialCostResult{}, invalidInput("waste_rate", wasteRate.String(), "must not be negative")
	}

	base := quantity.Mul(unitPrice)
	waste := base.Mul(wasteRate)
	return MaterialCostResult{
		BaseCost:         ratemath.QuantizeMoney(base),
		WasteAmount:      ratemath.QuantizeMoney(waste),
		TotalCost:        ratemath.QuantizeMoney(base.Add(waste)),
		WasteRatePercent: wasteRate.Mul(percentDivisor),
	}, nil
}

// =============================================================================
// VAT
// =============================================================================

// VATResult carries a VAT computation at any level (entry, line, invoice).
type VATResult struct {
	SupplyAmount decimal.Decimal
	VATAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
	VATRate      decimal.Decimal
	Mode         TaxMode
}

// VAT computes value-added tax on a supply amount. Exempt and zero-rated
// supplies are billing-distinct but both carry zero VAT; only taxable
// supplies bear supply x rate / 100.
func VAT(supplyAmount, vatRate decimal.Decimal, mode TaxMode) (VATResult, error) {
	if supplyAmount.IsNegative() {
		return VATResult{}, invalidInput("supply_amount", supplyAmount.String(), "must not be negative")
	}
	if vatRate.IsNegative() {
		return VATResult{}, invalidInput("vat_rate", vatRate.String(), "must not be negative")
	}
	if err := mode.Validate(); err != nil {
		return VATResult{}, err
	}

	vat := decimal.Zero
	if mode == TaxTaxable {
		vat = supplyAmount.Mul(vatRate.Div(percentDivisor))
	}
	return VATResult{
		SupplyAmount: ratemath.QuantizeMoney(supplyAmount),
		VATAmount:    ratemath.QuantizeMoney(vat),
		TotalAmount:  ratemath.QuantizeMoney(supplyAmount.Add(vat)),
		VATRate:      vatRate,
		Mode:         mode,
	}, nil
}

// =============================================================================
// PROGRESS PAYMENT
// =============================================================================

// ProgressPaymentResult carries the progress-billing breakdown for one round.
type ProgressPaymentResult struct {
	ContractAmount   decimal.Decimal
	CumulativeAmount decimal.Decimal
	AdvanceAmount    decimal.Decimal
	DefectAmount     decimal.Decimal
	PreviousPayments decimal.Decimal
	CurrentPayment   decimal.Decimal
	ProgressRate     decimal.Decimal
}

// ProgressPayment computes the current progress-billing amount:
//
//	cumulative = contract x progressRate/100
//	advance    = contract x advanceRate/100
//	defect     = cumulative x defectRate/100
//	current    = max(0, cumulative - advance - previousPayments - defect)
//
// The floor at zero prevents negative billing when advances and retention
// exceed the period's earned value; any shortfall is absorbed, not carried
// forward.
func ProgressPayment(contractAmount, progressRate, advanceRate, defectRate, previousPayments decimal.Decimal) (ProgressPaymentResult, error) {
	if contractAmount.IsNegative() {
		return ProgressPaymentResult{}, invalidInput("contract_amount", contractAmount.String(), "must not be negative")
	}
	if progressRate.IsNegative() {
		return ProgressPaymentResult{}, invalidInput("progress_rate", progressRate.String(), "must not be negative")
	}
	if advanceRate.IsNegative() {
		return ProgressPaymentResult{}, invalidInput("advance_rate", advanceRate.String(), "must not be negative")
	}
	if defectRate.IsNegative() {
		return ProgressPaymentResult{}, invalidInput("defect_rate", defectRate.String(), "must not be negative")
	}
	if previousPayments.IsNegative() {
		return ProgressPaymentResult{}, invalidInput("previous_payments", previousPayments.String(), "must not be negative")
	}

	cumulative := contractAmount.Mul(progressRate.Div(percentDivisor))
	advance := contractAmount.Mul(advanceRate.Div(percentDivisor))
	defect := cumulative.Mul(defectRate.Div(percentDivisor))

	current := cumulative.Sub(advance).Sub(previousPayments).Sub(defect)
	if current.IsNegative() {
		current = decimal.Zero
	}

	return ProgressPaymentResult{
		ContractAmount:   ratemath.QuantizeMoney(contractAmount),
		CumulativeAmount: ratemath.QuantizeMoney(cumulative),
		AdvanceAmount:    ratemath.QuantizeMoney(advance),
		DefectAmount:     ratemath.QuantizeMoney(defect),
		PreviousPayments: ratemath.QuantizeMoney(previousPayments),
		CurrentPayment:   ratemath.QuantizeMoney(current),
		ProgressRate:     progressRate,
	}, nil
}
