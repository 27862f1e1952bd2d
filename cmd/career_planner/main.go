// Package main provides the entry point for the career planner CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_planner",
	Short: "Career compatibility engine",
	Long:  "Career planner scores a user profile against a reference occupation catalog, backed by live job-market requirement evidence, and produces ranked career suggestions with skill gaps and a phased roadmap.",
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to JSON config file (overrides environment)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
