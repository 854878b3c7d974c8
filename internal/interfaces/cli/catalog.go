package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orderflow/intake/internal/domain/catalog"
)

// newCatalogCommand builds `intake catalog` with inspection subcommands.
func newCatalogCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the product catalog",
	}
	cmd.AddCommand(newCatalogValidateCommand(opts), newCatalogLookupCommand(opts))
	return cmd
}

// newCatalogValidateCommand loads the catalog and reports whether it is
// usable, exercising the same loader the server runs at startup.
func newCatalogValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configured catalog and report its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			index, err := catalog.Load(cfg.Catalog.Path, nil, cfg.Intake.CatalogSimilarity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d products (%s)\n", index.Len(), cfg.Catalog.Path)
			return nil
		},
	}
}

// newCatalogLookupCommand resolves a phrase the way the pipeline would.
func newCatalogLookupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <phrase>",
		Short: "Resolve a phrase against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			index, err := catalog.Load(cfg.Catalog.Path, nil, cfg.Intake.CatalogSimilarity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if p, ok := index.FindProduct(args[0]); ok {
				fmt.Fprintf(out, "%s (%s): MOQ %d, stock %d, price %.2f\n",
					p.Name, p.Code, p.MinOrderQuantity, p.Stock, p.Price)
				return nil
			}

			fmt.Fprintln(out, "no match")
			for _, cand := range index.FuzzyCandidates(args[0], cfg.Intake.SuggestionCount, cfg.Intake.SuggestionSimilarity) {
				fmt.Fprintf(out, "did you mean: %s\n", cand)
			}
			return nil
		},
	}
}
