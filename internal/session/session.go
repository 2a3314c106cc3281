// Package session binds one user's quote to the shared catalog. A Session is
// the only mutable state of the quote engine and is never shared between
// users; the presentation layer talks to it exclusively.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/quote"
	"github.com/shopspring/decimal"
)

// Session owns the quote of a single user.
type Session struct {
	ID        string
	CreatedAt time.Time

	resolver *pricing.Resolver
	ledger   quote.Ledger
}

// New starts a session with an empty quote.
func New(id string, resolver *pricing.Resolver) *Session {
	return &Session{ID: id, CreatedAt: time.Now(), resolver: resolver}
}

// View is what the presentation layer renders.
type View struct {
	Items  []quote.LineItem `json:"items"`
	Totals quote.Totals     `json:"totals"`
}

// ProductList returns the catalog product ids in catalog order.
func (s *Session) ProductList() []string {
	return s.resolver.Catalog().ProductIDs()
}

// Services returns the hourly service ids that can be added besides catalog
// products.
func (s *Session) Services() []string {
	return s.resolver.HourlyServices()
}

// Ledger returns the current quote.
func (s *Session) Ledger() quote.Ledger { return s.ledger }

// Resolve prices ref without touching the quote.
func (s *Session) Resolve(ref string, qty decimal.Decimal) (quote.LineItem, error) {
	return s.resolver.Resolve(ref, qty)
}

// AddItem appends a line for ref. An unknown product leaves the quote as it
// was and returns an error matching quote.ErrUnknownProduct.
func (s *Session) AddItem(ref string, qty decimal.Decimal) error {
	next, err := s.ledger.Add(s.resolver, ref, qty)
	if err != nil {
		return err
	}
	s.ledger = next
	return nil
}

func (s *Session) RemoveItem(index int) error {
	next, err := s.ledger.RemoveAt(index)
	if err != nil {
		return err
	}
	s.ledger = next
	return nil
}

func (s *Session) UpdateItem(index int, field string, value decimal.Decimal) error {
	next, err := s.ledger.UpdateField(index, field, value)
	if err != nil {
		return err
	}
	s.ledger = next
	return nil
}

func (s *Session) ClearQuote() {
	s.ledger = s.ledger.Clear()
}

// QuoteView returns the lines and their totals.
func (s *Session) QuoteView() View {
	return View{Items: s.ledger.Items(), Totals: quote.Aggregate(s.ledger)}
}

// ReconcileResult tells the caller what a reconciliation did.
type ReconcileResult struct {
	Changed bool     `json:"changed"`
	Skipped []string `json:"skipped,omitempty"`
}

// Reconcile merges an edited copy of the quote back in. Quantity and unit
// price come from the candidate; product name, term and unit are resolved
// again so they cannot be changed through the edited view. Rows naming an
// unknown product are dropped and listed in the result. Any other invalid
// row rejects the whole candidate.
func (s *Session) Reconcile(candidate []quote.LineItem) (ReconcileResult, error) {
	var res ReconcileResult
	rows := make([]quote.LineItem, 0, len(candidate))
	for i, row := range candidate {
		ref := strings.TrimSpace(row.ProductRef)
		if !row.Quantity.IsPositive() {
			return ReconcileResult{}, &quote.RowError{Index: i, Err: quote.ErrInvalidQuantity}
		}
		resolved, err := s.resolver.Resolve(ref, row.Quantity)
		if errors.Is(err, quote.ErrUnknownProduct) {
			res.Skipped = append(res.Skipped, ref)
			continue
		}
		if err != nil {
			return ReconcileResult{}, &quote.RowError{Index: i, Err: err}
		}
		resolved.UnitPrice = row.UnitPrice
		rows = append(rows, resolved)
	}
	next, changed, err := quote.Reconcile(s.ledger, rows)
	if err != nil {
		return ReconcileResult{}, err
	}
	s.ledger = next
	res.Changed = changed
	return res, nil
}
