/*
coefficients.go - Standard input coefficients per task category

PURPOSE:
  Estimates the labor and equipment hours a work item should require, based
  on standard production-rate coefficients keyed by the leading segment of
  the task code ("01.01.001" -> "01"). Used for plan-versus-actual checks on
  submitted work logs; actual billing always uses recorded entries.
*/
package costing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/ratemath"
)

// InputCoefficients are standard labor/equipment input factors per unit of
// work quantity.
type InputCoefficients struct {
	LaborCoefficient     decimal.Decimal
	EquipmentCoefficient decimal.Decimal
}

// StandardInputsResult is the estimated input requirement for a work item.
type StandardInputsResult struct {
	RequiredLaborHours     decimal.Decimal
	RequiredEquipmentHours decimal.Decimal
	Coefficients           InputCoefficients
}

var standardCoefficients = map[string]InputCoefficients{
	// Earthwork
	"01": {LaborCoefficient: decimal.NewFromFloat(0.8), EquipmentCoefficient: decimal.NewFromFloat(0.3)},
	// Reinforced concrete
	"02": {LaborCoefficient: decimal.NewFromFloat(1.2), EquipmentCoefficient: decimal.NewFromFloat(0.2)},
	// Masonry
	"03": {LaborCoefficient: decimal.NewFromFloat(1.8), EquipmentCoefficient: decimal.NewFromFloat(0.1)},
	// Plastering
	"04": {LaborCoefficient: decimal.NewFromFloat(1.2), EquipmentCoefficient: decimal.NewFromFloat(0.05)},
	// Tiling
	"05": {LaborCoefficient: decimal.NewFromFloat(2.0), EquipmentCoefficient: decimal.NewFromFloat(0.1)},
	// Waterproofing
	"06": {LaborCoefficient: decimal.NewFromFloat(1.5), EquipmentCoefficient: decimal.NewFromFloat(0.2)},
	// Painting
	"07": {LaborCoefficient: decimal.NewFromFloat(0.8), EquipmentCoefficient: decimal.NewFromFloat(0.05)},
}

var defaultCoefficients = InputCoefficients{
	LaborCoefficient:     decimal.NewFromFloat(1.0),
	EquipmentCoefficient: decimal.NewFromFloat(0.3),
}

// StandardInputs estimates required labor and equipment hours for a task code
// and quantity. Unknown task categories use the default coefficients; this
// is an estimate, never an error. Hours are quantized to 1 fractional digit.
func StandardInputs(taskCode string, quantity decimal.Decimal) (StandardInputsResult, error) {
	if quantity.IsNegative() {
		return StandardInputsResult{}, invalidInput("quantity", quantity.String(), "must not be negative")
	}

	category := taskCode
	if i := strings.Index(taskCode, "."); i >= 0 {
		category = taskCode[:i]
	}

	coeff, ok := standardCoefficients[category]
	if !ok {
		coeff = defaultCoefficients
	}

	return StandardInputsResult{
		RequiredLaborHours:     ratemath.Quantize(quantity.Mul(coeff.LaborCoefficient), 1),
		RequiredEquipmentHours: ratemath.Quantize(quantity.Mul(coeff.EquipmentCoefficient), 1),
		Coefficients:           coeff,
	}, nil
}
