// Package quote holds the session quote: an ordered ledger of priced lines,
// the totals derived from it, and the reconciliation of edited views.
package quote

import (
	"strings"

	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/shopspring/decimal"
)

// UnitHours marks a line whose quantity is a number of hours.
const UnitHours = "hrs"

// LineItem is one priced row of a quote. LineTotal is always derived from
// Quantity and UnitPrice and is overwritten whenever either changes.
type LineItem struct {
	ProductRef  string          `json:"product_ref"`
	DisplayName string          `json:"display_name"`
	Term        catalog.Term    `json:"term"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Recompute returns a copy of item with LineTotal rebuilt.
func (item LineItem) Recompute() LineItem {
	item.LineTotal = item.Quantity.Mul(item.UnitPrice)
	return item
}

// Validate checks the editable fields.
func (item LineItem) Validate() error {
	if !item.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if item.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// IsHourly reports whether the quantity is expressed in hours.
func (item LineItem) IsHourly() bool { return item.Unit == UnitHours }

// DisplayQuantity renders the quantity with its unit, e.g. "5 hrs" or "3".
func (item LineItem) DisplayQuantity() string {
	q := item.Quantity.String()
	if item.Unit == "" {
		return q
	}
	return q + " " + item.Unit
}

// sameAs compares everything except the derived total.
func (item LineItem) sameAs(other LineItem) bool {
	return item.ProductRef == other.ProductRef &&
		item.DisplayName == other.DisplayName &&
		item.Term == other.Term &&
		item.Unit == other.Unit &&
		item.Quantity.Equal(other.Quantity) &&
		item.UnitPrice.Equal(other.UnitPrice)
}

// Field names an editable column of a line.
type Field string

const (
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unit_price"
)

// ParseField accepts the column names used by forms and table widgets.
func ParseField(name string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quantity", "qty":
		return FieldQuantity, nil
	case "unit_price", "unitprice", "price":
		return FieldUnitPrice, nil
	}
	return "", &ReadOnlyFieldError{Field: name}
}
