package quote

import (
	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/shopspring/decimal"
)

// MonthsPerYear scales the monthly subtotal into the first-year projection.
var MonthsPerYear = decimal.NewFromInt(12)

// Totals summarizes a ledger by billing term.
type Totals struct {
	MonthlyRecurring   decimal.Decimal `json:"monthly_recurring"`
	OneTime            decimal.Decimal `json:"one_time"`
	ProjectedFirstYear decimal.Decimal `json:"projected_first_year"`
}

// Aggregate sums line totals per term. Lines with an unrecognized term are
// counted in neither subtotal. An empty ledger yields zero totals.
func Aggregate(l Ledger) Totals {
	monthly, oneTime := decimal.Zero, decimal.Zero
	for _, item := range l.items {
		switch item.Term {
		case catalog.TermMonthly:
			monthly = monthly.Add(item.LineTotal)
		case catalog.TermOneTime:
			oneTime = oneTime.Add(item.LineTotal)
		}
	}
	return Totals{
		MonthlyRecurring:   monthly,
		OneTime:            oneTime,
		ProjectedFirstYear: monthly.Mul(MonthsPerYear).Add(oneTime),
	}
}
