package scraper

import (
	"context"

	"repscout/pkg/models"
)

// Strategy is one method of acquiring contact data for a company. Variants
// share a uniform invocation contract so the orchestrator can iterate them
// with a shared dedup accumulator.
type Strategy interface {
	// Name identifies the strategy in logs and record sources.
	Name() string

	// Scrape acquires up to opts.MaxReps records for the company. Failures
	// inside the strategy are recorded in the result's Errors rather than
	// returned; a non-nil error means the strategy could not run at all.
	Scrape(ctx context.Context, company models.CompanyConfig, opts models.ScrapeOptions) (*models.ScraperResult, error)
}

// Fetcher abstracts the HTTP client so strategies can be tested against
// httptest servers.
type Fetcher interface {
	GetHTML(ctx context.Context, url string) (string, error)
	GetJSON(ctx context.Context, url string, target interface{}) error
}

// PageRenderer abstracts the browser session used for locator pages that
// render client-side. *browser.Session satisfies it.
type PageRenderer interface {
	HTML(ctx context.Context, url, waitSelector string) (string, error)
}
