package main

import (
	"reflect"
	"testing"
)

func TestScrapeCommandFlags(t *testing.T) {
	flags := []string{
		"company", "companies", "states", "max-reps", "output",
		"format", "test", "list", "companies-file", "rate-limit",
	}
	for _, name := range flags {
		if scrapeCmd.Flags().Lookup(name) == nil {
			t.Errorf("scrape command is missing the --%s flag", name)
		}
	}
}

func TestSelectedSlugsMergesBothFlags(t *testing.T) {
	defer func() {
		scrapeCompanies = nil
		scrapeCompanyList = nil
	}()
	scrapeCompanies = []string{"mary-kay"}
	scrapeCompanyList = []string{"avon", "scentsy"}

	got := selectedSlugs()
	want := []string{"mary-kay", "avon", "scentsy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selectedSlugs() = %v, want %v", got, want)
	}
}
