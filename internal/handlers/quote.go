package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/quote"
	"github.com/diewo77/go-quotes/internal/session"
	"github.com/diewo77/go-quotes/validation"
	"github.com/diewo77/go-quotes/view"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogStatus describes where the catalog came from and whether loading it
// worked. The page shows a warning when it did not.
type CatalogStatus struct {
	Source    string
	Available bool
}

type QuoteHandler struct {
	store   *session.Store
	catalog CatalogStatus
	log     *zap.Logger
}

func NewQuoteHandler(store *session.Store, status CatalogStatus, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{store: store, catalog: status, log: log}
}

// Page renders the quote builder.
func (h *QuoteHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, nil)
}

type addItemRequest struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (h *QuoteHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	v := make(validation.Violations)
	if isJSONBody(r) {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		validation.PositiveDecimal("quantity", req.Quantity, v)
	} else {
		req.Product = r.FormValue("product")
		if qty, ok := validation.Decimal("quantity", r.FormValue("quantity"), v); ok {
			req.Quantity = qty
			validation.PositiveDecimal("quantity", qty, v)
		}
	}
	validation.Required("product", req.Product, v)
	if !v.Empty() {
		h.fail(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	h.mutate(w, r, func(s *session.Session) error {
		return s.AddItem(req.Product, req.Quantity)
	})
}

type updateItemRequest struct {
	Field string          `json:"field"`
	Value decimal.Decimal `json:"value"`
}

// UpdateItem edits quantity or unit price of one line. Forms may post either
// field and value, or the quantity and unit_price inputs of the line editor.
func (h *QuoteHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	type change struct {
		field string
		value decimal.Decimal
	}
	var changes []change
	v := make(validation.Violations)

	if isJSONBody(r) {
		var req updateItemRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		changes = append(changes, change{req.Field, req.Value})
	} else if field := r.FormValue("field"); field != "" {
		if val, ok := validation.Decimal("value", r.FormValue("value"), v); ok {
			changes = append(changes, change{field, val})
		}
	} else {
		for _, field := range []quote.Field{quote.FieldQuantity, quote.FieldUnitPrice} {
			raw, present := r.PostForm[string(field)]
			if !present {
				continue
			}
			if val, ok := validation.Decimal(string(field), strings.Join(raw, ""), v); ok {
				changes = append(changes, change{string(field), val})
			}
		}
		if len(changes) == 0 && v.Empty() {
			v["field"] = "required"
		}
	}

	for _, c := range changes {
		f, err := quote.ParseField(c.field)
		if err != nil {
			v["field"] = "read_only_field"
			continue
		}
		switch f {
		case quote.FieldQuantity:
			validation.PositiveDecimal(string(f), c.value, v)
		case quote.FieldUnitPrice:
			validation.NonNegativeDecimal(string(f), c.value, v)
		}
	}
	if !v.Empty() {
		status := http.StatusUnprocessableEntity
		if v["field"] == "read_only_field" {
			status = http.StatusBadRequest
		}
		h.fail(w, r, status, "validation_failed", v)
		return
	}

	h.mutate(w, r, func(s *session.Session) error {
		for _, c := range changes {
			if err := s.UpdateItem(index, c.field, c.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *QuoteHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(s *session.Session) error {
		return s.RemoveItem(index)
	})
}

func (h *QuoteHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *session.Session) error {
		s.ClearQuote()
		return nil
	})
}

type serviceDTO struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Term      catalog.Term    `json:"term"`
	Unit      string          `json:"unit"`
}

// Products lists the catalog entries followed by the hourly services.
func (h *QuoteHandler) Products(w http.ResponseWriter, r *http.Request) {
	res := h.store.Resolver()
	services := make([]serviceDTO, 0, len(res.HourlyServices()))
	for _, id := range res.HourlyServices() {
		services = append(services, serviceDTO{ProductID: id, UnitPrice: res.HourlyRate(), Term: catalog.TermOneTime, Unit: quote.UnitHours})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":          res.Catalog().Entries(),
		"services":          services,
		"catalog_available": h.catalog.Available,
	})
}

// Quote returns the current lines and totals.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type reconcileRow struct {
	ProductRef  string           `json:"product_ref"`
	DisplayName string           `json:"display_name,omitempty"`
	Term        string           `json:"term,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Unit        string           `json:"unit,omitempty"`
	LineTotal   *decimal.Decimal `json:"line_total,omitempty"`
}

type reconcileRequest struct {
	Items []reconcileRow `json:"items"`
}

type reconcileResponse struct {
	session.ReconcileResult
	session.View
}

// Reconcile takes an edited copy of the quote table and merges it back. A
// row without unit_price gets the current list price.
func (h *QuoteHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	var resp reconcileResponse
	err := h.withSession(w, r, func(s *session.Session) error {
		candidate := make([]quote.LineItem, len(req.Items))
		for i, row := range req.Items {
			item := quote.LineItem{ProductRef: row.ProductRef, Quantity: row.Quantity}
			if row.UnitPrice != nil {
				item.UnitPrice = *row.UnitPrice
			} else if resolved, err := s.Resolve(row.ProductRef, row.Quantity); err == nil {
				item.UnitPrice = resolved.UnitPrice
			}
			candidate[i] = item
		}
		res, err := s.Reconcile(candidate)
		if err != nil {
			return err
		}
		resp.ReconcileResult = res
		resp.View = s.QuoteView()
		return nil
	})
	if errors.Is(err, session.ErrNotFound) {
		return
	}
	if err != nil {
		h.fail(w, r, errorStatus(err), err.Error(), violationFor(err))
		return
	}
	if len(resp.Skipped) > 0 {
		h.log.Info("reconcile skipped unknown products", zap.Strings("products", resp.Skipped))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// mutate applies fn to the caller's session, then answers with the updated
// quote (JSON) or a redirect to the page (HTML).
func (h *QuoteHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	var view session.View
	err := h.withSession(w, r, func(s *session.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		view = s.QuoteView()
		return nil
	})
	if errors.Is(err, session.ErrNotFound) {
		return
	}
	if err != nil {
		h.log.Debug("quote operation rejected", zap.Error(err))
		h.fail(w, r, errorStatus(err), err.Error(), violationFor(err))
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, view)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// withSession runs fn under the session lock. A missing session has already
// been answered when ErrNotFound is returned.
func (h *QuoteHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) error {
	id, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		auth.Deny(w, r)
		return session.ErrNotFound
	}
	err := h.store.Do(id, fn)
	if errors.Is(err, session.ErrNotFound) {
		auth.Deny(w, r)
	}
	return err
}

func (h *QuoteHandler) view(w http.ResponseWriter, r *http.Request) (session.View, bool) {
	var view session.View
	err := h.withSession(w, r, func(s *session.Session) error {
		view = s.QuoteView()
		return nil
	})
	return view, err == nil
}

func (h *QuoteHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		h.fail(w, r, http.StatusNotFound, "index_out_of_range", validation.Violations{"line": "index_out_of_range"})
		return 0, false
	}
	return index, true
}

func (h *QuoteHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, errs validation.Violations) {
	var data map[string]any
	err := h.withSession(w, r, func(s *session.Session) error {
		view := s.QuoteView()
		data = map[string]any{
			"Products":           s.ProductList(),
			"Services":           s.Services(),
			"Items":              view.Items,
			"Totals":             view.Totals,
			"Errors":             errs,
			"CatalogUnavailable": !h.catalog.Available,
			"CatalogSource":      h.catalog.Source,
		}
		return nil
	})
	if err != nil {
		return
	}
	if err := view.RenderStatus(w, r, status, "quote.html", data); err != nil {
		h.log.Error("render quote page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// fail answers a rejected operation: JSON error body for API clients, the
// page with the violations otherwise.
func (h *QuoteHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string, v validation.Violations) {
	if wantsJSON(r) {
		httpx.JSONError(w, status, msg, v)
		return
	}
	h.renderPage(w, r, status, v)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, quote.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, quote.ErrReadOnlyField):
		return http.StatusBadRequest
	case errors.Is(err, quote.ErrUnknownProduct),
		errors.Is(err, quote.ErrInvalidQuantity),
		errors.Is(err, quote.ErrInvalidPrice):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func violationFor(err error) validation.Violations {
	switch {
	case errors.Is(err, quote.ErrUnknownProduct):
		return validation.Violations{"product": "unknown_product"}
	case errors.Is(err, quote.ErrInvalidQuantity):
		return validation.Violations{"quantity": "must_be_positive"}
	case errors.Is(err, quote.ErrInvalidPrice):
		return validation.Violations{"unit_price": "must_not_be_negative"}
	case errors.Is(err, quote.ErrIndexOutOfRange):
		return validation.Violations{"line": "index_out_of_range"}
	case errors.Is(err, quote.ErrReadOnlyField):
		return validation.Violations{"field": "read_only_field"}
	}
	return validation.Violations{"quote": "internal_error"}
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func wantsJSON(r *http.Request) bool {
	return auth.WantsJSON(r) || isJSONBody(r)
}
