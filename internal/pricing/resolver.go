// Package pricing turns a product reference and quantity into a priced quote
// line, using a flat hourly rate for professional services and the catalog
// for everything else.
package pricing

import (
	"strings"

	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/quote"
	"github.com/shopspring/decimal"
)

// DefaultHourlyRate is charged per hour for the hourly services.
var DefaultHourlyRate = decimal.RequireFromString("205.00")

// DefaultHourlyServices are the service ids billed by the hour.
var DefaultHourlyServices = []string{"Professional Services", "Migration"}

// Resolver prices lines against a catalog. It only reads the catalog and can
// be shared between sessions.
type Resolver struct {
	catalog    *catalog.Catalog
	hourlyRate decimal.Decimal
	services   []string
	hourly     map[string]struct{}
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithHourlyRate overrides the flat rate for hourly services.
func WithHourlyRate(rate decimal.Decimal) Option {
	return func(r *Resolver) { r.hourlyRate = rate }
}

// WithHourlyServices replaces the set of service ids billed by the hour.
func WithHourlyServices(ids ...string) Option {
	return func(r *Resolver) {
		r.services = append([]string(nil), ids...)
		r.hourly = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			r.hourly[id] = struct{}{}
		}
	}
}

// New returns a resolver over cat. A nil catalog behaves as an empty one.
func New(cat *catalog.Catalog, opts ...Option) *Resolver {
	if cat == nil {
		cat = catalog.Empty()
	}
	r := &Resolver{catalog: cat, hourlyRate: DefaultHourlyRate}
	WithHourlyServices(DefaultHourlyServices...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog the resolver prices against.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// HourlyRate returns the flat hourly rate.
func (r *Resolver) HourlyRate() decimal.Decimal { return r.hourlyRate }

// HourlyServices lists the hourly service ids in configuration order.
func (r *Resolver) HourlyServices() []string {
	return append([]string(nil), r.services...)
}

// IsHourly reports whether ref is billed by the hour. Hourly services keep
// the flat rate even if the price sheet happens to list them.
func (r *Resolver) IsHourly(ref string) bool {
	_, ok := r.hourly[strings.TrimSpace(ref)]
	return ok
}

// Resolve implements quote.Resolver.
func (r *Resolver) Resolve(ref string, quantity decimal.Decimal) (quote.LineItem, error) {
	if !quantity.IsPositive() {
		return quote.LineItem{}, quote.ErrInvalidQuantity
	}
	ref = strings.TrimSpace(ref)
	if r.IsHourly(ref) {
		return quote.LineItem{
			ProductRef:  ref,
			DisplayName: ref,
			Term:        catalog.TermOneTime,
			Quantity:    quantity,
			UnitPrice:   r.hourlyRate,
			Unit:        quote.UnitHours,
		}.Recompute(), nil
	}
	if e, ok := r.catalog.Lookup(ref); ok {
		return quote.LineItem{
			ProductRef:  e.ProductID,
			DisplayName: e.DisplayName,
			Term:        e.Term,
			Quantity:    quantity,
			UnitPrice:   e.UnitPrice,
		}.Recompute(), nil
	}
	return quote.LineItem{}, &quote.UnknownProductError{ProductRef: ref}
}
