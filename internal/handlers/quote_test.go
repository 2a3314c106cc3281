package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *session.Store {
	cat, _ := catalog.Normalize([]catalog.RawRow{
		{ProductService: "Widget", ListPrice: "10.00", Term: "Monthy", QuoteName: "Widget Pro"},
		{ProductService: "Implementation and Training", ListPrice: "1500", Term: "One-Time"},
		{ProductService: "Setup", ListPrice: "250", Term: "One-Time", QuoteName: "Onboarding"},
	}, catalog.DefaultRules())
	return session.NewStore(pricing.New(cat))
}

type fixture struct {
	h     *QuoteHandler
	store *session.Store
	id    string
	mux   *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore()
	h := NewQuoteHandler(store, CatalogStatus{Source: "products.csv", Available: true}, zap.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.Page)
	mux.HandleFunc("POST /quote/items", h.AddItem)
	mux.HandleFunc("POST /quote/items/{index}", h.UpdateItem)
	mux.HandleFunc("POST /quote/items/{index}/delete", h.RemoveItem)
	mux.HandleFunc("POST /quote/clear", h.Clear)
	mux.HandleFunc("GET /api/products", h.Products)
	mux.HandleFunc("GET /api/quote", h.Quote)
	mux.HandleFunc("POST /api/quote/reconcile", h.Reconcile)
	return &fixture{h: h, store: store, id: store.Create().ID, mux: mux}
}

func (f *fixture) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if contentType == "application/json" {
		req.Header.Set("Accept", "application/json")
	}
	req = req.WithContext(auth.WithSessionID(req.Context(), f.id))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) form(target string, values url.Values) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, target, "application/x-www-form-urlencoded", values.Encode())
}

func (f *fixture) json(method, target, body string) *httptest.ResponseRecorder {
	return f.do(method, target, "application/json", body)
}

func (f *fixture) view(t *testing.T) session.View {
	t.Helper()
	var v session.View
	require.NoError(t, f.store.Do(f.id, func(s *session.Session) error {
		v = s.QuoteView()
		return nil
	}))
	return v
}

func TestAddItem_FormRedirects(t *testing.T) {
	f := newFixture(t)
	rec := f.form("/quote/items", url.Values{"product": {"Widget"}, "quantity": {"3"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = f.form("/quote/items", url.Values{"product": {"Migration"}, "quantity": {"5"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	v := f.view(t)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "1385.00", v.Totals.ProjectedFirstYear.StringFixed(2))
}

func TestAddItem_JSON(t *testing.T) {
	f := newFixture(t)
	rec := f.json(http.MethodPost, "/quote/items", `{"product":"Widget","quantity":"3"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []struct {
			ProductRef string `json:"product_ref"`
			LineTotal  string `json:"line_total"`
		} `json:"items"`
		Totals map[string]string `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Widget", body.Items[0].ProductRef)
	assert.Equal(t, "30", body.Items[0].LineTotal)
	assert.Equal(t, "360", body.Totals["projected_first_year"])
}

func TestAddItem_Rejections(t *testing.T) {
	f := newFixture(t)

	rec := f.json(http.MethodPost, "/quote/items", `{"product":"Implementation and Training","quantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_product")

	rec = f.json(http.MethodPost, "/quote/items", `{"product":"Widget","quantity":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must_be_positive")

	rec = f.json(http.MethodPost, "/quote/items", `{"product":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.form("/quote/items", url.Values{"product": {"Widget"}, "quantity": {"abc"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not a number")

	assert.Empty(t, f.view(t).Items)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.json(http.MethodPost, "/quote/items", `{"product":"Widget","quantity":1}`).Code)

	rec := f.json(http.MethodPost, "/quote/items/0", `{"field":"quantity","value":"4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "40", f.view(t).Totals.MonthlyRecurring.String())

	rec = f.form("/quote/items/0", url.Values{"quantity": {"2"}, "unit_price": {"7.50"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "15", f.view(t).Totals.MonthlyRecurring.String())

	rec = f.form("/quote/items/0", url.Values{"field": {"unit_price"}, "value": {"8"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "16", f.view(t).Totals.MonthlyRecurring.String())
}

func TestUpdateItem_Rejections(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.json(http.MethodPost, "/quote/items", `{"product":"Widget","quantity":1}`).Code)

	assert.Equal(t, http.StatusBadRequest, f.json(http.MethodPost, "/quote/items/0", `{"field":"term","value":"1"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.json(http.MethodPost, "/quote/items/3", `{"field":"quantity","value":"1"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.json(http.MethodPost, "/quote/items/x", `{"field":"quantity","value":"1"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.json(http.MethodPost, "/quote/items/0", `{"field":"quantity","value":"-1"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.json(http.MethodPost, "/quote/items/0", `{"field":"unit_price","value":"-1"}`).Code)

	rec := f.form("/quote/items/0", url.Values{"quantity": {"2"}, "unit_price": {"-3"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	item := f.view(t).Items[0]
	assert.Equal(t, "1", item.Quantity.String())
	assert.Equal(t, "10", item.UnitPrice.String())
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"Widget", "Setup", "Migration"} {
		require.Equal(t, http.StatusSeeOther, f.form("/quote/items", url.Values{"product": {p}, "quantity": {"1"}}).Code)
	}

	require.Equal(t, http.StatusSeeOther, f.form("/quote/items/1/delete", nil).Code)
	v := f.view(t)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Migration", v.Items[1].ProductRef)

	assert.Equal(t, http.StatusNotFound, f.json(http.MethodPost, "/quote/items/9/delete", "").Code)

	require.Equal(t, http.StatusSeeOther, f.form("/quote/clear", nil).Code)
	assert.Empty(t, f.view(t).Items)
}

func TestProducts(t *testing.T) {
	f := newFixture(t)
	rec := f.json(http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []struct {
			ProductID string `json:"product_id"`
		} `json:"products"`
		Services []struct {
			ProductID string `json:"product_id"`
			UnitPrice string `json:"unit_price"`
			Unit      string `json:"unit"`
		} `json:"services"`
		CatalogAvailable bool `json:"catalog_available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 2)
	assert.Equal(t, "Widget", body.Products[0].ProductID)
	assert.Equal(t, "Setup", body.Products[1].ProductID)
	require.Len(t, body.Services, 2)
	assert.Equal(t, "205", body.Services[0].UnitPrice)
	assert.Equal(t, "hrs", body.Services[0].Unit)
	assert.True(t, body.CatalogAvailable)
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"Widget", "Setup", "Migration"} {
		require.Equal(t, http.StatusOK, f.json(http.MethodPost, "/quote/items", `{"product":"`+p+`","quantity":1}`).Code)
	}

	rec := f.json(http.MethodPost, "/api/quote/reconcile", `{"items":[
		{"product_ref":"Widget","display_name":"Widget Pro","term":"Monthly","quantity":"1","unit_price":"10","line_total":"10"},
		{"product_ref":"Migration","quantity":"2"},
		{"product_ref":"Gadget","quantity":"1","unit_price":"5"}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Changed bool     `json:"changed"`
		Skipped []string `json:"skipped"`
		Items   []struct {
			ProductRef string `json:"product_ref"`
			UnitPrice  string `json:"unit_price"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Changed)
	assert.Equal(t, []string{"Gadget"}, body.Skipped)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Migration", body.Items[1].ProductRef)
	assert.Equal(t, "205", body.Items[1].UnitPrice)

	assert.Equal(t, "410", f.view(t).Totals.OneTime.String())
}

func TestReconcile_NoopAndInvalid(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.json(http.MethodPost, "/quote/items", `{"product":"Widget","quantity":2}`).Code)

	current := f.json(http.MethodGet, "/api/quote", "")
	require.Equal(t, http.StatusOK, current.Code)

	rec := f.json(http.MethodPost, "/api/quote/reconcile", current.Body.String())
	require.Equal(t, http.StatusBadRequest, rec.Code, "totals are not part of the reconcile body")

	rec = f.json(http.MethodPost, "/api/quote/reconcile", `{"items":[{"product_ref":"Widget","quantity":"2","unit_price":"10.00"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"changed":false`)

	rec = f.json(http.MethodPost, "/api/quote/reconcile", `{"items":[{"product_ref":"Widget","quantity":"0","unit_price":"10"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "2", f.view(t).Items[0].Quantity.String())
}

func TestPage(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusSeeOther, f.form("/quote/items", url.Values{"product": {"Migration"}, "quantity": {"5"}}).Code)

	rec := f.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Widget">`)
	assert.NotContains(t, body, "Implementation and Training")
	assert.Contains(t, body, "1025.00")
	assert.NotContains(t, body, "products.csv")
}

func TestPage_CatalogWarning(t *testing.T) {
	store := session.NewStore(pricing.New(nil))
	h := NewQuoteHandler(store, CatalogStatus{Source: "missing.csv"}, zap.NewNop())
	id := store.Create().ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithSessionID(req.Context(), id))
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing.csv")
	assert.Contains(t, rec.Body.String(), `<option value="Migration">`)
}

func TestUnknownSessionIsDenied(t *testing.T) {
	f := newFixture(t)
	f.id = "not-a-session"
	rec := f.json(http.MethodGet, "/api/quote", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
