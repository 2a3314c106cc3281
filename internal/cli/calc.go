package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/internal/quote"
	"github.com/diewo77/go-quotes/internal/session"
	"github.com/spf13/cobra"
)

// CalcOptions holds the calc command flags.
type CalcOptions struct {
	Request string
	Items   []string
}

// LineDoc is one priced line in structured output.
type LineDoc struct {
	Product   string `json:"product" yaml:"product"`
	Name      string `json:"name" yaml:"name"`
	Term      string `json:"term" yaml:"term"`
	Quantity  string `json:"quantity" yaml:"quantity"`
	Unit      string `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitPrice string `json:"unit_price" yaml:"unit_price"`
	LineTotal string `json:"line_total" yaml:"line_total"`
}

// TotalsDoc mirrors quote.Totals with fixed two-decimal amounts.
type TotalsDoc struct {
	MonthlyRecurring   string `json:"monthly_recurring" yaml:"monthly_recurring"`
	OneTime            string `json:"one_time" yaml:"one_time"`
	ProjectedFirstYear string `json:"projected_first_year" yaml:"projected_first_year"`
}

// QuoteDoc is the result of calc.
type QuoteDoc struct {
	Items   []LineDoc `json:"items" yaml:"items"`
	Totals  TotalsDoc `json:"totals" yaml:"totals"`
	Skipped []string  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalcOptions{}
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price a quote",
		Long: `Price the items of a YAML request file and/or --item flags.

Unknown products are reported and left out of the quote. Items from the
request file come first, followed by --item flags in order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
			items, err := collectItems(opts)
			if err != nil {
				return err
			}
			res, err := loadResolver(cmd.Context(), rootOpts, f)
			if err != nil {
				return err
			}
			doc, err := Calculate(res, items)
			if err != nil {
				return err
			}
			for _, ref := range doc.Skipped {
				f.Warn("unknown product %q skipped", ref)
			}
			return writeQuote(f, doc)
		},
	}
	cmd.Flags().StringVarP(&opts.Request, "request", "r", "", "YAML quote request file")
	cmd.Flags().StringArrayVarP(&opts.Items, "item", "i", nil, `item as "Product=quantity" (repeatable)`)
	return cmd
}

func collectItems(opts *CalcOptions) ([]RequestItem, error) {
	var items []RequestItem
	if opts.Request != "" {
		req, err := LoadRequest(opts.Request)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read request", err)
		}
		items = append(items, req.Items...)
	}
	for _, s := range opts.Items {
		it, err := ParseItemFlag(s)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "parse --item", err)
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, NewExitError(ExitCommandError, "nothing to price: pass --request or --item")
	}
	return items, nil
}

// Calculate builds a quote from items the same way the web quote builder
// does: each item is added, then its price override, if any, is applied.
func Calculate(res *pricing.Resolver, items []RequestItem) (QuoteDoc, error) {
	sess := session.New("cli", res)
	var doc QuoteDoc
	for _, it := range items {
		qty, err := it.quantity()
		if err != nil {
			return doc, WrapExitError(ExitFailure, "invalid item", err)
		}
		price, override, err := it.unitPrice()
		if err != nil {
			return doc, WrapExitError(ExitFailure, "invalid item", err)
		}
		if err := sess.AddItem(it.Product, qty); err != nil {
			if errors.Is(err, quote.ErrUnknownProduct) {
				doc.Skipped = append(doc.Skipped, it.Product)
				continue
			}
			return doc, WrapExitError(ExitFailure, "invalid item", err)
		}
		if override {
			if err := sess.UpdateItem(sess.Ledger().Len()-1, string(quote.FieldUnitPrice), price); err != nil {
				return doc, WrapExitError(ExitFailure, "invalid item", err)
			}
		}
	}

	view := sess.QuoteView()
	doc.Items = make([]LineDoc, 0, len(view.Items))
	for _, item := range view.Items {
		doc.Items = append(doc.Items, LineDoc{
			Product:   item.ProductRef,
			Name:      item.DisplayName,
			Term:      string(item.Term),
			Quantity:  item.Quantity.String(),
			Unit:      item.Unit,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	doc.Totals = TotalsDoc{
		MonthlyRecurring:   view.Totals.MonthlyRecurring.StringFixed(2),
		OneTime:            view.Totals.OneTime.StringFixed(2),
		ProjectedFirstYear: view.Totals.ProjectedFirstYear.StringFixed(2),
	}
	return doc, nil
}

func writeQuote(f *OutputFormatter, doc QuoteDoc) error {
	if f.Format != "text" {
		return f.Encode(doc)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NAME\tTERM\tQTY\tUNIT PRICE\tTOTAL\t")
	for _, l := range doc.Items {
		qty := l.Quantity
		if l.Unit != "" {
			qty += " " + l.Unit
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", l.Name, l.Term, qty, l.UnitPrice, l.LineTotal)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintf(tw, "Monthly recurring\t\t\t\t%s\t\n", doc.Totals.MonthlyRecurring)
	fmt.Fprintf(tw, "One-time\t\t\t\t%s\t\n", doc.Totals.OneTime)
	fmt.Fprintf(tw, "Projected first year\t\t\t\t%s\t\n", doc.Totals.ProjectedFirstYear)
	return tw.Flush()
}
