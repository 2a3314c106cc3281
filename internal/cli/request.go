package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// QuoteRequest is the YAML document read by "calc --request".
//
//	items:
//	  - product: Widget
//	    quantity: 3
//	  - product: Migration
//	    quantity: 5
//	    unit_price: 180
type QuoteRequest struct {
	Items []RequestItem `yaml:"items"`
}

// RequestItem keeps numbers as text so they are parsed as exact decimals.
type RequestItem struct {
	Product   string `yaml:"product"`
	Quantity  string `yaml:"quantity"`
	UnitPrice string `yaml:"unit_price,omitempty"`
}

func (it RequestItem) quantity() (decimal.Decimal, error) {
	q, err := decimal.NewFromString(strings.TrimSpace(it.Quantity))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: quantity %q: %w", it.Product, it.Quantity, err)
	}
	return q, nil
}

// unitPrice returns the override price, if one was given.
func (it RequestItem) unitPrice() (decimal.Decimal, bool, error) {
	raw := strings.TrimSpace(it.UnitPrice)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%s: unit_price %q: %w", it.Product, it.UnitPrice, err)
	}
	return p, true, nil
}

// LoadRequest reads a quote request file.
func LoadRequest(path string) (QuoteRequest, error) {
	var req QuoteRequest
	b, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := yaml.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

// ParseItemFlag parses "Product=qty". The last '=' separates the quantity so
// product names may contain '='.
func ParseItemFlag(s string) (RequestItem, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 || i == len(s)-1 {
		return RequestItem{}, fmt.Errorf("invalid item %q: want Product=quantity", s)
	}
	return RequestItem{Product: strings.TrimSpace(s[:i]), Quantity: strings.TrimSpace(s[i+1:])}, nil
}
