package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"repscout/pkg/config"
	"repscout/pkg/models"
	"repscout/pkg/ui"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the configured scrape targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, globalFlags())
		if err != nil {
			ui.PrintError("Configuration error", err)
			return err
		}

		companies, err := config.LoadCompanies(cfg.CompaniesFile)
		if err != nil {
			ui.PrintError("Failed to load companies", err)
			return err
		}

		return printCompanyTable(companies)
	},
}

// printCompanyTable renders the scrape target list as an aligned table.
func printCompanyTable(companies []models.CompanyConfig) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tCATEGORY\tENABLED\tRATE LIMIT\tLOCATOR")
	for _, c := range companies {
		locator := "no"
		if c.RepLocatorURL != "" {
			locator = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d rpm\t%s\n",
			c.Slug, c.Name, c.Category, c.Enabled, c.RateLimit, locator)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}
