// Package validation collects per-field violations from form and JSON input.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field name to a violation code. Codes are translated by
// the i18n package.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Decimal parses value and records "invalid_number" on failure. Blank input
// is reported as "required".
func Decimal(field, value string, v Violations) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		v[field] = "required"
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		v[field] = "invalid_number"
		return decimal.Zero, false
	}
	return d, true
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}
