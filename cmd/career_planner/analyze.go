package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-planner/internal/observability"
	"github.com/jonathan/career-planner/internal/planner"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a profile against the occupation catalog",
	Long:  "Run a full compatibility analysis: seed candidate occupations, score them against the profile, and report ranked suggestions, skill gaps, and a phased roadmap.",
	RunE:  runAnalyze,
}

var (
	currentRole    string
	targetRole     string
	notSure        bool
	skills         []string
	experienceText string
	location       string
	timeline       string
	education      string
	postingFile    string
	useMarket      bool
	jsonOut        bool
	verbose        bool
)

func init() {
	analyzeCmd.Flags().StringVar(&currentRole, "current-role", "", "Current role or occupation (required)")
	analyzeCmd.Flags().StringVar(&targetRole, "target-role", "", "Target role to score against")
	analyzeCmd.Flags().BoolVar(&notSure, "not-sure", false, "Discover suggestions from the current role instead of a target")
	analyzeCmd.Flags().StringSliceVar(&skills, "skill", nil, "Skill the user has (repeatable)")
	analyzeCmd.Flags().StringVar(&experienceText, "experience", "", "Free-text experience summary")
	analyzeCmd.Flags().StringVar(&location, "location", "", "Location for market evidence")
	analyzeCmd.Flags().StringVar(&timeline, "timeline", "", "Available preparation timeline, e.g. '6 months'")
	analyzeCmd.Flags().StringVar(&education, "education", "", "Highest education attained")
	analyzeCmd.Flags().StringVar(&postingFile, "posting-file", "", "Path to a job posting file to extract requirements from")
	analyzeCmd.Flags().BoolVar(&useMarket, "market", false, "Fetch live market evidence")
	analyzeCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full analysis as JSON")
	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print formatted breakdown boxes")

	analyzeCmd.MarkFlagRequired("current-role")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if targetRole == "" && !notSure {
		return fmt.Errorf("either --target-role or --not-sure must be provided")
	}

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

	input := &planner.Input{
		CurrentRole:       currentRole,
		TargetRole:        targetRole,
		NotSureMode:       notSure,
		Skills:            skills,
		ExperienceText:    experienceText,
		Location:          location,
		Timeline:          timeline,
		Education:         education,
		UseMarketEvidence: useMarket,
	}

	if postingFile != "" {
		data, err := os.ReadFile(postingFile)
		if err != nil {
			return fmt.Errorf("failed to read posting file: %w", err)
		}
		input.UserPostingText = string(data)
	}

	analysis, err := a.planner.Analyze(ctx, input)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	report := &analysis.Report

	if verbose || cfg.Verbose {
		p := observability.NewPrinter(os.Stdout)
		p.PrintCompatibility(report)
		p.PrintSuggestedCareers(report.SuggestedCareers)
		p.PrintSkillGaps(report.SkillGaps)
		p.PrintRoadmap(report.Roadmap)
		p.PrintEvidence(report.MarketEvidence, report.DataSources)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%s\n", analysis.Legacy.Explanation)
	for i, m := range report.SuggestedCareers {
		fmt.Fprintf(os.Stdout, "%d. %s: %d/100 (%s)\n", i+1, m.Title, m.Score, m.Band)
	}
	if report.Bottleneck != "" {
		fmt.Fprintf(os.Stdout, "%s\n", report.Bottleneck)
	}

	return nil
}
