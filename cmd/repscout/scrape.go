package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"repscout/pkg/auth"
	"repscout/pkg/config"
	"repscout/pkg/logger"
	"repscout/pkg/models"
	"repscout/pkg/scraper"
	"repscout/pkg/storage"
	"repscout/pkg/ui"
)

var (
	// Scrape command flags
	scrapeOutput      string
	scrapeFormat      string
	scrapeMaxReps     int
	scrapeRateLimit   int
	scrapeCompanies   []string
	scrapeCompanyList []string
	scrapeStates      []string
	scrapeTestMode    bool
	scrapeList        bool
	companiesFile     string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape representative contacts for the configured companies",
	Long: `Run the acquisition pipeline against the enabled companies.

Each company is scraped through its representative locator when one is
configured, then through web search and public social profiles. Findings
are merged by email and exported to the output directory.`,
	Example: `  # Scrape all enabled companies
  repscout scrape

  # Scrape specific companies only
  repscout scrape --company mary-kay --company avon

  # Quick test run with a small budget
  repscout scrape --test --max-reps 5

  # Limit to certain states and export CSV only
  repscout scrape --states TX,OK --format csv`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "output directory for exports")
	scrapeCmd.Flags().StringVar(&scrapeFormat, "format", "", "export format: json, csv or both")
	scrapeCmd.Flags().IntVar(&scrapeMaxReps, "max-reps", 0, "maximum representatives per company")
	scrapeCmd.Flags().IntVar(&scrapeRateLimit, "rate-limit", 0, "default requests per minute per target")
	scrapeCmd.Flags().StringSliceVar(&scrapeCompanies, "company", nil, "company slug to scrape (repeatable)")
	scrapeCmd.Flags().StringSliceVar(&scrapeCompanyList, "companies", nil, "comma-separated company slugs to scrape")
	scrapeCmd.Flags().StringSliceVar(&scrapeStates, "states", nil, "restrict results to these states")
	scrapeCmd.Flags().BoolVar(&scrapeTestMode, "test", false, "test mode: small budgets, fewer pages")
	scrapeCmd.Flags().BoolVar(&scrapeList, "list", false, "list the configured targets and exit")
	scrapeCmd.Flags().StringVar(&companiesFile, "companies-file", "", "path to the companies YAML file")
}

func runScrape(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if scrapeOutput != "" {
		flags["output"] = scrapeOutput
	}
	if scrapeFormat != "" {
		flags["format"] = scrapeFormat
	}
	if scrapeMaxReps > 0 {
		flags["max-reps"] = scrapeMaxReps
	}
	if scrapeRateLimit > 0 {
		flags["requests-per-minute"] = scrapeRateLimit
	}
	if companiesFile != "" {
		flags["companies-file"] = companiesFile
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
	log := logger.GetLogger()

	// Search credentials fall back to the credential store chain when the
	// configuration does not carry them.
	if manager, err := auth.NewManager(); err == nil {
		manager.FillSearch(&cfg.Search)
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		ui.PrintError("Failed to load companies", err)
		return err
	}
	if scrapeList {
		return printCompanyTable(companies)
	}
	targets, err := config.SelectCompanies(companies, selectedSlugs())
	if err != nil {
		ui.PrintError("Company selection failed", err)
		return err
	}
	if len(targets) == 0 {
		ui.PrintWarning("No enabled companies to scrape")
		return nil
	}

	opts := models.ScrapeOptions{
		MaxReps:  cfg.Scraper.MaxReps,
		States:   scrapeStates,
		TestMode: scrapeTestMode,
	}
	if scrapeTestMode && scrapeMaxReps == 0 {
		opts.MaxReps = 5
	}

	store, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err)
		return err
	}

	s, err := scraper.New(cfg, log)
	if err != nil {
		ui.PrintError("Failed to start scraper", err)
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Companies", fmt.Sprintf("%d", len(targets)))
	if len(opts.States) > 0 {
		ui.PrintInfo("States", strings.Join(opts.States, ", "))
	}

	results := s.ScrapeAll(ctx, targets, opts)

	// Merge across companies for the combined exports.
	var allReps []*models.SalesRep
	seen := make(map[string]bool)
	for _, res := range results {
		fmt.Println(scraper.SummaryLine(res))
		for _, rep := range res.Reps {
			key := rep.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			allReps = append(allReps, rep)
		}
	}

	if err := export(store, cfg.Output.Format, results, allReps); err != nil {
		ui.PrintError("Export failed", err)
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Done: %d representatives written to %s", len(allReps), store.GetOutputDir()))
	return nil
}

// selectedSlugs merges the repeatable --company values with the
// comma-separated --companies list.
func selectedSlugs() []string {
	return append(append([]string{}, scrapeCompanies...), scrapeCompanyList...)
}

// export writes the run outputs in the configured formats plus the report.
func export(store *storage.Manager, format string, results []*models.ScraperResult, reps []*models.SalesRep) error {
	format = strings.ToLower(format)

	if format == "json" || format == "both" {
		if _, err := store.SaveRepsJSON(reps); err != nil {
			return err
		}
		if _, err := store.SaveResultsJSON(results); err != nil {
			return err
		}
	}
	if format == "csv" || format == "both" {
		if _, err := store.SaveRepsCSV(reps); err != nil {
			return err
		}
		if _, err := store.SaveEmailsCSV(reps); err != nil {
			return err
		}
	}

	_, err := store.SaveReport(results, reps)
	return err
}
