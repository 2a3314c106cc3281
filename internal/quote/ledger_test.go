package quote

import (
	"errors"
	"testing"

	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// stubResolver prices a fixed set of products.
type stubResolver map[string]LineItem

func (s stubResolver) Resolve(ref string, qty decimal.Decimal) (LineItem, error) {
	item, ok := s[ref]
	if !ok {
		return LineItem{}, &UnknownProductError{ProductRef: ref}
	}
	item.Quantity = qty
	return item, nil
}

var stub = stubResolver{
	"Widget":    {ProductRef: "Widget", DisplayName: "Widget Pro", Term: catalog.TermMonthly, UnitPrice: d("10.00")},
	"Setup":     {ProductRef: "Setup", DisplayName: "Onboarding", Term: catalog.TermOneTime, UnitPrice: d("250")},
	"Migration": {ProductRef: "Migration", DisplayName: "Migration", Term: catalog.TermOneTime, UnitPrice: d("205.00"), Unit: UnitHours},
}

func mustAdd(t *testing.T, l Ledger, ref, qty string) Ledger {
	t.Helper()
	next, err := l.Add(stub, ref, d(qty))
	require.NoError(t, err)
	return next
}

func TestLedger_AddComputesLineTotal(t *testing.T) {
	l := mustAdd(t, Ledger{}, "Widget", "3")

	require.Equal(t, 1, l.Len())
	item, err := l.At(0)
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", item.DisplayName)
	assert.Equal(t, catalog.TermMonthly, item.Term)
	assert.Equal(t, "30.00", item.LineTotal.StringFixed(2))
}

func TestLedger_AddRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []string{"0", "-1"} {
		l, err := Ledger{}.Add(stub, "Widget", d(qty))
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, 0, l.Len())
	}
}

func TestLedger_AddUnknownProductKeepsQuote(t *testing.T) {
	l := mustAdd(t, Ledger{}, "Widget", "1")

	next, err := l.Add(stub, "Gadget", d("1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProduct))
	var upe *UnknownProductError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "Gadget", upe.ProductRef)
	assert.Equal(t, 1, next.Len())
}

func TestLedger_ValueSemantics(t *testing.T) {
	before := mustAdd(t, Ledger{}, "Widget", "1")
	after := mustAdd(t, before, "Setup", "1")

	assert.Equal(t, 1, before.Len())
	assert.Equal(t, 2, after.Len())

	items := after.Items()
	items[0].Quantity = d("99")
	first, _ := after.At(0)
	assert.Equal(t, "1", first.Quantity.String(), "Items must return a copy")

	edited, err := after.UpdateField(0, "quantity", d("5"))
	require.NoError(t, err)
	first, _ = after.At(0)
	assert.Equal(t, "1", first.Quantity.String())
	first, _ = edited.At(0)
	assert.Equal(t, "5", first.Quantity.String())
}

func TestLedger_RemoveAt(t *testing.T) {
	l := mustAdd(t, mustAdd(t, mustAdd(t, Ledger{}, "Widget", "1"), "Setup", "1"), "Migration", "2")

	next, err := l.RemoveAt(1)
	require.NoError(t, err)
	require.Equal(t, 2, next.Len())
	items := next.Items()
	assert.Equal(t, "Widget", items[0].ProductRef)
	assert.Equal(t, "Migration", items[1].ProductRef)

	for _, i := range []int{-1, 3} {
		same, err := l.RemoveAt(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, 3, same.Len())
	}
}

func TestLedger_UpdateField(t *testing.T) {
	l := mustAdd(t, Ledger{}, "Widget", "3")

	l, err := l.UpdateField(0, "unit_price", d("8.50"))
	require.NoError(t, err)
	item, _ := l.At(0)
	assert.Equal(t, "25.50", item.LineTotal.StringFixed(2))

	l, err = l.UpdateField(0, "qty", d("4"))
	require.NoError(t, err)
	item, _ = l.At(0)
	assert.Equal(t, "34.00", item.LineTotal.StringFixed(2))

	l, err = l.UpdateField(0, "price", d("0"))
	require.NoError(t, err, "a zero override is allowed")
	item, _ = l.At(0)
	assert.True(t, item.LineTotal.IsZero())
}

func TestLedger_UpdateFieldErrorsLeaveStateUnchanged(t *testing.T) {
	l := mustAdd(t, Ledger{}, "Widget", "3")

	tests := []struct {
		name  string
		index int
		field string
		value string
		want  error
	}{
		{"read-only display name", 0, "display_name", "1", ErrReadOnlyField},
		{"read-only term", 0, "term", "1", ErrReadOnlyField},
		{"read-only line total", 0, "line_total", "1", ErrReadOnlyField},
		{"zero quantity", 0, "quantity", "0", ErrInvalidQuantity},
		{"negative price", 0, "unit_price", "-1", ErrInvalidPrice},
		{"bad index", 4, "quantity", "1", ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := l.UpdateField(tt.index, tt.field, d(tt.value))
			assert.ErrorIs(t, err, tt.want)
			item, _ := next.At(0)
			assert.Equal(t, "30.00", item.LineTotal.StringFixed(2))
		})
	}

	var rof *ReadOnlyFieldError
	_, err := l.UpdateField(0, "term", d("1"))
	require.ErrorAs(t, err, &rof)
	assert.Equal(t, "term", rof.Field)
}

func TestLedger_Clear(t *testing.T) {
	l := mustAdd(t, Ledger{}, "Widget", "3")
	assert.Equal(t, 0, l.Clear().Len())
	assert.Equal(t, 1, l.Len())
}

func TestLedger_ReplaceAllRecomputesTotals(t *testing.T) {
	stale := []LineItem{
		{ProductRef: "Widget", Term: catalog.TermMonthly, Quantity: d("2"), UnitPrice: d("10"), LineTotal: d("999")},
	}
	l, err := Ledger{}.ReplaceAll(stale)
	require.NoError(t, err)
	item, _ := l.At(0)
	assert.Equal(t, "20", item.LineTotal.String())
	assert.Equal(t, "999", stale[0].LineTotal.String(), "input must not be modified")
}

func TestLedger_ReplaceAllIsAtomic(t *testing.T) {
	l := mustAdd(t, Ledger{}, "Widget", "3")
	bad := []LineItem{
		{ProductRef: "Widget", Quantity: d("1"), UnitPrice: d("1")},
		{ProductRef: "Setup", Quantity: d("0"), UnitPrice: d("1")},
	}
	next, err := l.ReplaceAll(bad)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	var re *RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 1, re.Index)
	assert.Equal(t, 1, next.Len())
	item, _ := next.At(0)
	assert.Equal(t, "3", item.Quantity.String())
}

func TestLineItem_DisplayQuantity(t *testing.T) {
	assert.Equal(t, "3", LineItem{Quantity: d("3")}.DisplayQuantity())
	assert.Equal(t, "5 hrs", LineItem{Quantity: d("5"), Unit: UnitHours}.DisplayQuantity())
	assert.Equal(t, "2.5 hrs", LineItem{Quantity: d("2.50"), Unit: UnitHours}.DisplayQuantity())
	assert.True(t, LineItem{Unit: UnitHours}.IsHourly())
}
