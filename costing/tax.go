package costing

import "fmt"

// =============================================================================
// TAX MODE - Closed variant for VAT treatment
// =============================================================================

// TaxMode identifies the VAT treatment of a supply. Exempt and zero-rated are
// distinct billing categories even though both carry 0% VAT.
type TaxMode string

const (
	TaxTaxable   TaxMode = "taxable"
	TaxExempt    TaxMode = "exempt"
	TaxZeroRated TaxMode = "zero"
)

// Validate rejects values outside the closed set. Stringly-typed tax modes
// were a recurring source of silent mismatches between layers ("zero" vs
// "zero_rated"), so every boundary parses into this type exactly once.
func (m TaxMode) Validate() error {
	switch m {
	case TaxTaxable, TaxExempt, TaxZeroRated:
		return nil
	default:
		return invalidInput("tax_mode", string(m), "must be taxable, exempt, or zero")
	}
}

// ParseTaxMode converts a wire string into a TaxMode.
func ParseTaxMode(s string) (TaxMode, error) {
	m := TaxMode(s)
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("parse tax mode: %w", err)
	}
	return m, nil
}
