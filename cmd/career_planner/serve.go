package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/career-planner/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing analysis, occupation search, and evidence refresh endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, e.g. :8080 (defaults to PLANNER_LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	srv := server.New(server.Config{Addr: addr, Region: cfg.Region}, a.planner, a.orchestrator, a.catalog)
	return srv.Start()
}
