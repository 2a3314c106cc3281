// Package cli implements the quotecalc command line tool, which prices a
// quote against a catalog file without running the web server.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "text" | "json" | "yaml"
	Catalog    string
	Delimiter  string
	HourlyRate string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for quotecalc.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "quotecalc",
		Short: "Price quotes against a product catalog",
		Long: `quotecalc loads a CSV price sheet, applies the same cleanup rules as the
web quote builder and prices a list of items, reporting monthly recurring,
one-time and projected first-year totals.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if len([]rune(opts.Delimiter)) != 1 {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid delimiter %q: must be a single character", opts.Delimiter))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Catalog, "catalog", "c", "products.csv", "catalog CSV file")
	cmd.PersistentFlags().StringVar(&opts.Delimiter, "delimiter", ",", "catalog field delimiter")
	cmd.PersistentFlags().StringVar(&opts.HourlyRate, "hourly-rate", "205.00", "rate for hourly services")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCalcCommand(opts))

	return cmd
}
