package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-planner/internal/planner"
)

var occupationsCmd = &cobra.Command{
	Use:   "occupations",
	Short: "Inspect the reference occupation catalog",
}

var occupationsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Resolve a free-text role query against the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOccupationsSearch,
}

var (
	searchLimit  int
	searchRegion string
)

func init() {
	occupationsSearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of matches to print")
	occupationsSearchCmd.Flags().StringVar(&searchRegion, "region", "", "Catalog region (defaults to configured region)")

	occupationsCmd.AddCommand(occupationsSearchCmd)
	rootCmd.AddCommand(occupationsCmd)
}

func runOccupationsSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	ctx := cmd.Context()

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	region := searchRegion
	if region == "" {
		region = cfg.Region
	}
	if region == "" {
		region = planner.DefaultRegion
	}

	matches, err := a.catalog.Search(ctx, region, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Fprintf(os.Stdout, "No occupations matched %q in region %s\n", query, region)
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(os.Stdout, "%-12s %-40s %.2f", m.Occupation.ID, m.Occupation.Title, m.Confidence)
		if m.Occupation.Regulated {
			fmt.Fprintf(os.Stdout, "  [regulated: %s]", m.Occupation.CredentialHint)
		}
		fmt.Fprintln(os.Stdout)
	}

	return nil
}
