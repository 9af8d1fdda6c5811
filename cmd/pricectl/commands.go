package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/migrations"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
	"github.com/noah-isme/backend-drycleaning/internal/quote"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply catalog schema migrations to DATABASE_URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.UseDatabase() {
				return errors.New("DATABASE_URL is not set")
			}
			version, err := migrations.Up(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func seedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the built-in price list, modifiers and discounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			report, err := deps.Seeder().Seed(cmd.Context(), catalog.DefaultSeedData())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d price items, %d modifiers, %d discounts\n",
				report.PriceItems, report.Modifiers, report.Discounts)
			return nil
		},
	}
}

func calcCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price an order described by a JSON request file",
		Long: `Reads a request in the same shape as POST /api/v1/pricing/calculate and prints
the priced result. Use "-f -" to read from stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readRequest(cmd, file)
			if err != nil {
				return err
			}
			deps, err := opts.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			req, err := quote.BuildRequest(deps.Validator, body)
			if err != nil {
				return describe(err)
			}
			res, err := deps.Quotes.Calculate(cmd.Context(), req)
			if err != nil {
				return describe(err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func modifiersCmd(opts *rootOptions) *cobra.Command {
	var category string
	var all bool
	cmd := &cobra.Command{
		Use:   "modifiers",
		Short: "List price modifiers, optionally those applicable to a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.deps(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			var filter *pricing.Category
			if c := strings.ToUpper(strings.TrimSpace(category)); c != "" {
				cat := pricing.Category(c)
				filter = &cat
			}
			listing, err := deps.Catalog.ListModifiers(cmd.Context(), filter, !all)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tKIND\tVALUE\tACTIVE\tCATEGORIES")
			for _, m := range listing.Modifiers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", m.Code, m.Kind, formatValue(m), m.Active, formatCategories(m.CategoryRestrictions))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only modifiers applicable to this category")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive modifiers")
	return cmd
}

func readRequest(cmd *cobra.Command, file string) (quote.CalculateRequest, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return quote.CalculateRequest{}, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}
	var body quote.CalculateRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return quote.CalculateRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return body, nil
}

// describe renders domain failures with the same codes the API reports.
func describe(err error) error {
	appErr := quote.ToAppError(err)
	return fmt.Errorf("%s: %s: %w", appErr.Code, appErr.Message, err)
}

func formatValue(m pricing.ModifierDefinition) string {
	if m.Kind == pricing.KindPercentage {
		return fmt.Sprintf("%+.2f%%", float64(m.Value)/100)
	}
	return fmt.Sprintf("%+d", m.Value)
}

func formatCategories(cs []pricing.Category) string {
	if len(cs) == 0 {
		return "*"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
