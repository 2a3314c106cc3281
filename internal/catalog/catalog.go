// Package catalog loads the price catalog and turns raw tabular rows into a
// clean, immutable lookup keyed by product identifier.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Term is the billing cadence of a catalog entry.
type Term string

const (
	TermMonthly Term = "Monthly"
	TermOneTime Term = "One-Time"
)

// ParseTerm maps the spellings found in price sheets onto the two known terms.
// Anything else is returned trimmed but otherwise untouched.
func ParseTerm(raw string) Term {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "monthly":
		return TermMonthly
	case "one-time", "one time", "onetime":
		return TermOneTime
	}
	return Term(s)
}

// Recognized reports whether t is Monthly or One-Time.
func (t Term) Recognized() bool {
	return t == TermMonthly || t == TermOneTime
}

// Entry is one sellable product after normalization.
type Entry struct {
	ProductID   string          `json:"product_id"`
	DisplayName string          `json:"display_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Term        Term            `json:"term"`
}

// Catalog is an ordered, read-only set of entries. It is safe to share
// between sessions once built.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Empty returns a catalog with no entries, used when loading fails.
func Empty() *Catalog {
	return &Catalog{index: map[string]int{}}
}

// New builds a catalog from entries. When two entries share a ProductID the
// later one wins but keeps the position of the first.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		if i, ok := c.index[e.ProductID]; ok {
			c.entries[i] = e
			continue
		}
		c.index[e.ProductID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ProductIDs lists product identifiers in catalog order.
func (c *Catalog) ProductIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.entries))
	for i, e := range c.entries {
		ids[i] = e.ProductID
	}
	return ids
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Rows renders the catalog back into raw rows, which lets a loaded catalog be
// fed through Normalize again.
func (c *Catalog) Rows() []RawRow {
	if c == nil {
		return nil
	}
	rows := make([]RawRow, len(c.entries))
	for i, e := range c.entries {
		rows[i] = RawRow{
			ProductService: e.ProductID,
			ListPrice:      e.UnitPrice.String(),
			Term:           string(e.Term),
			QuoteName:      e.DisplayName,
		}
	}
	return rows
}
