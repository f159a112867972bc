package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"repscout/pkg/config"
	"repscout/pkg/logger"
	"repscout/pkg/server"
	"repscout/pkg/storage"
	"repscout/pkg/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scraped directory over HTTP",
	Long: `Start the directory API on top of the latest export.

Endpoints:
  GET  /healthz         liveness check
  GET  /api/reps        browse representatives (filters: company, state)
  GET  /api/companies   list configured companies
  POST /api/contact     submit a contact request

Browse endpoints are rate limited per client; the contact endpoint runs
under a tighter per-client limit.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if serveAddr != "" {
		flags["addr"] = serveAddr
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Configuration error", err)
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err)
		return err
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		ui.PrintError("Failed to load companies", err)
		return err
	}

	store, err := storage.NewManager(cfg.Server.DataDir)
	if err != nil {
		ui.PrintError("Failed to open data directory", err)
		return err
	}

	srv := server.New(&cfg.Server, store, companies, logger.GetLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Listening", cfg.Server.Addr)
	if err := srv.Start(ctx); err != nil {
		ui.PrintError("Server stopped", err)
		return err
	}
	return nil
}
