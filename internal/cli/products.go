package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/quote"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ProductDoc is one selectable product in structured output.
type ProductDoc struct {
	ProductID   string `json:"product_id" yaml:"product_id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	UnitPrice   string `json:"unit_price" yaml:"unit_price"`
	Term        string `json:"term" yaml:"term"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the products and hourly services that can be quoted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
			res, err := loadResolver(cmd.Context(), rootOpts, f)
			if err != nil {
				return err
			}
			return runProducts(f, res)
		},
	}
}

func runProducts(f *OutputFormatter, res *pricing.Resolver) error {
	var docs []ProductDoc
	for _, e := range res.Catalog().Entries() {
		docs = append(docs, ProductDoc{
			ProductID:   e.ProductID,
			DisplayName: e.DisplayName,
			UnitPrice:   e.UnitPrice.StringFixed(2),
			Term:        string(e.Term),
		})
	}
	for _, id := range res.HourlyServices() {
		docs = append(docs, ProductDoc{
			ProductID:   id,
			DisplayName: id,
			UnitPrice:   res.HourlyRate().StringFixed(2),
			Term:        string(catalog.TermOneTime),
			Unit:        quote.UnitHours,
		})
	}

	if f.Format != "text" {
		return f.Encode(docs)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tPRICE\tTERM")
	for _, d := range docs {
		price := d.UnitPrice
		if d.Unit != "" {
			price += "/" + d.Unit
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ProductID, d.DisplayName, price, d.Term)
	}
	return tw.Flush()
}

// loadResolver reads the catalog named by the flags. A catalog that cannot be
// read is reported and replaced by an empty one.
func loadResolver(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*pricing.Resolver, error) {
	rate, err := decimal.NewFromString(opts.HourlyRate)
	if err != nil || rate.IsNegative() {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid hourly rate %q", opts.HourlyRate))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	src := catalog.FileSource{Path: opts.Catalog, Comma: []rune(opts.Delimiter)[0]}
	cat, skipped, err := catalog.Load(ctx, src, catalog.DefaultRules())
	if err != nil {
		f.Warn("catalog unavailable, only hourly services can be quoted: %v", err)
		cat = catalog.Empty()
	}
	for _, s := range skipped {
		f.Warn("%s line %d: skipped %q: %s", opts.Catalog, s.Line, s.ProductID, s.Reason)
	}
	return pricing.New(cat, pricing.WithHourlyRate(rate)), nil
}
