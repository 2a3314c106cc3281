package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Column headers the catalog source must provide.
const (
	ColumnProduct   = "Product/Service"
	ColumnListPrice = "List Price"
	ColumnTerm      = "Term"
	ColumnQuoteName = "Quote Name"
)

// RequiredColumns lists the headers in the order RawRow stores them.
var RequiredColumns = []string{ColumnProduct, ColumnListPrice, ColumnTerm, ColumnQuoteName}

// RawRow is one record exactly as read from the source. Extra columns are
// dropped by the readers.
type RawRow struct {
	Line           int
	ProductService string
	ListPrice      string
	Term           string
	QuoteName      string
}

// Rules holds the catalog-specific cleanup applied on every load.
type Rules struct {
	// Excluded product ids are dropped entirely.
	Excluded []string
	// TermFixups rewrites known misspellings of the Term column.
	TermFixups map[string]string
}

// DefaultRules returns the cleanup the production price sheet needs.
func DefaultRules() Rules {
	return Rules{
		Excluded:   []string{"Implementation and Training"},
		TermFixups: map[string]string{"Monthy": "Monthly"},
	}
}

// Validate rejects fixup chains (a target that is also a source), which would
// make a second pass change the data again.
func (r Rules) Validate() error {
	for from, to := range r.TermFixups {
		if _, chained := r.TermFixups[to]; chained {
			return fmt.Errorf("term fixup %q -> %q chains into another fixup", from, to)
		}
	}
	return nil
}

func (r Rules) excluded(id string) bool {
	for _, x := range r.Excluded {
		if x == id {
			return true
		}
	}
	return false
}

// Clean drops blank and excluded rows and applies the term fixups. It returns
// a new slice; running it on its own output is a no-op.
func (r Rules) Clean(rows []RawRow) []RawRow {
	out := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.ProductService)
		if id == "" || r.excluded(id) {
			continue
		}
		row.ProductService = id
		term := strings.TrimSpace(row.Term)
		if fixed, ok := r.TermFixups[term]; ok {
			term = fixed
		}
		row.Term = term
		out = append(out, row)
	}
	return out
}

// Skipped describes a row that survived Clean but could not become an Entry.
type Skipped struct {
	Line      int
	ProductID string
	Reason    string
}

// Normalize cleans rows and builds the catalog. Rows with an unusable price
// are reported in the second return value instead of failing the load.
func Normalize(rows []RawRow, rules Rules) (*Catalog, []Skipped) {
	cleaned := rules.Clean(rows)
	entries := make([]Entry, 0, len(cleaned))
	var skipped []Skipped
	for _, row := range cleaned {
		price, err := ParsePrice(row.ListPrice)
		if err != nil {
			skipped = append(skipped, Skipped{Line: row.Line, ProductID: row.ProductService, Reason: err.Error()})
			continue
		}
		name := strings.TrimSpace(row.QuoteName)
		if name == "" {
			name = row.ProductService
		}
		entries = append(entries, Entry{
			ProductID:   row.ProductService,
			DisplayName: name,
			UnitPrice:   price,
			Term:        ParseTerm(row.Term),
		})
	}
	return New(entries), skipped
}

var errNegativePrice = errors.New("list price is negative")

// ParsePrice reads a list price such as "1,250.00" or "$10". Currency
// symbols, thousands separators and blanks are ignored.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, errors.New("list price is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list price %q: %w", raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativePrice
	}
	return d, nil
}
