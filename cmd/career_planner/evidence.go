package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-planner/internal/evidence"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Manage cached market evidence",
}

var evidenceRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch market postings for a role query and re-extract requirements",
	RunE:  runEvidenceRefresh,
}

var (
	refreshRole     string
	refreshLocation string
	refreshOccID    string
	refreshForce    bool
)

func init() {
	evidenceRefreshCmd.Flags().StringVar(&refreshRole, "role", "", "Role query to refresh (required)")
	evidenceRefreshCmd.Flags().StringVar(&refreshLocation, "location", "", "Location filter")
	evidenceRefreshCmd.Flags().StringVar(&refreshOccID, "occupation-id", "", "Reference occupation backing the baseline")
	evidenceRefreshCmd.Flags().BoolVar(&refreshForce, "force", false, "Bypass the freshness window")

	evidenceRefreshCmd.MarkFlagRequired("role")

	evidenceCmd.AddCommand(evidenceRefreshCmd)
	rootCmd.AddCommand(evidenceCmd)
}

func runEvidenceRefresh(cmd *cobra.Command, _ []string) error {
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

	result, err := a.orchestrator.Fetch(ctx, evidence.Request{
		Role:         refreshRole,
		Location:     refreshLocation,
		Country:      cfg.AdzunaCountry,
		OccupationID: refreshOccID,
		UseMarket:    true,
		ForceRefresh: refreshForce,
	})
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Query %s refreshed\n", result.QueryID)
	fmt.Fprintf(os.Stdout, "Postings analyzed:    %d\n", result.PostingsCount)
	fmt.Fprintf(os.Stdout, "Requirements stored:  %d\n", len(result.MarketRequirements))
	if result.UsedCache {
		fmt.Fprintln(os.Stdout, "Served from cache (fetch failed or was fresh)")
	}
	if result.Partial {
		fmt.Fprintln(os.Stdout, "Fetch was interrupted; results are partial")
	}

	return nil
}
