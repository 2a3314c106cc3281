package quote

import (
	"github.com/shopspring/decimal"
)

// Resolver prices a product reference for a given quantity.
type Resolver interface {
	Resolve(productRef string, quantity decimal.Decimal) (LineItem, error)
}

// Ledger is the ordered list of lines of one quote. It has value semantics:
// every operation returns a new Ledger and leaves the receiver untouched, so
// a rejected operation never changes state.
type Ledger struct {
	items []LineItem
}

// NewLedger builds a ledger from items, recomputing every total.
func NewLedger(items ...LineItem) (Ledger, error) {
	return Ledger{}.ReplaceAll(items)
}

func (l Ledger) Len() int { return len(l.items) }

// Items returns a copy of the lines.
func (l Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// At returns the line at index i.
func (l Ledger) At(i int) (LineItem, error) {
	if err := l.checkIndex(i); err != nil {
		return LineItem{}, err
	}
	return l.items[i], nil
}

func (l Ledger) checkIndex(i int) error {
	if i < 0 || i >= len(l.items) {
		return &IndexError{Index: i, Len: len(l.items)}
	}
	return nil
}

// Add resolves productRef and appends the resulting line.
func (l Ledger) Add(r Resolver, productRef string, quantity decimal.Decimal) (Ledger, error) {
	if !quantity.IsPositive() {
		return l, ErrInvalidQuantity
	}
	item, err := r.Resolve(productRef, quantity)
	if err != nil {
		return l, err
	}
	items := make([]LineItem, len(l.items), len(l.items)+1)
	copy(items, l.items)
	return Ledger{items: append(items, item.Recompute())}, nil
}

// RemoveAt drops the line at index i.
func (l Ledger) RemoveAt(i int) (Ledger, error) {
	if err := l.checkIndex(i); err != nil {
		return l, err
	}
	items := make([]LineItem, 0, len(l.items)-1)
	items = append(items, l.items[:i]...)
	items = append(items, l.items[i+1:]...)
	return Ledger{items: items}, nil
}

// UpdateField sets quantity or unit price on line i. Resolved fields such as
// the display name and term cannot be edited.
func (l Ledger) UpdateField(i int, field string, value decimal.Decimal) (Ledger, error) {
	if err := l.checkIndex(i); err != nil {
		return l, err
	}
	f, err := ParseField(field)
	if err != nil {
		return l, err
	}
	item := l.items[i]
	switch f {
	case FieldQuantity:
		item.Quantity = value
	case FieldUnitPrice:
		item.UnitPrice = value
	}
	if err := item.Validate(); err != nil {
		return l, err
	}
	items := l.Items()
	items[i] = item.Recompute()
	return Ledger{items: items}, nil
}

// Clear returns an empty ledger.
func (l Ledger) Clear() Ledger { return Ledger{} }

// ReplaceAll swaps in items wholesale. Totals supplied by the caller are
// discarded and recomputed; one invalid row rejects the whole batch.
func (l Ledger) ReplaceAll(items []LineItem) (Ledger, error) {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return l, &RowError{Index: i, Err: err}
		}
		out[i] = item.Recompute()
	}
	return Ledger{items: out}, nil
}
