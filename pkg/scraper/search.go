package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"repscout/pkg/extract"
	"repscout/pkg/logger"
	"repscout/pkg/models"
	"repscout/pkg/retry"
)

const (
	// searchResultCap bounds how many result pages one query fans out to.
	searchResultCap     = 6
	searchResultCapTest = 2
)

// SearchStrategy issues web searches for a company's independent
// representatives and mines the result pages for contact details. Noisier
// than the locator but works for companies without one.
type SearchStrategy struct {
	fetcher    Fetcher
	endpoint   string
	maxRetries int
	baseDelay  time.Duration
	logger     logger.Logger
}

// NewSearchStrategy creates the search strategy against an HTML search
// endpoint (DuckDuckGo's html frontend by default).
func NewSearchStrategy(fetcher Fetcher, endpoint string, maxRetries int, baseDelay time.Duration, log logger.Logger) *SearchStrategy {
	if endpoint == "" {
		endpoint = "https://html.duckduckgo.com/html/"
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &SearchStrategy{
		fetcher:    fetcher,
		endpoint:   endpoint,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     log,
	}
}

func (s *SearchStrategy) Name() string {
	return models.SourceSearch
}

// queries builds the search phrases for a company, optionally narrowed to
// the requested states.
func (s *SearchStrategy) queries(company models.CompanyConfig, opts models.ScrapeOptions) []string {
	base := []string{
		fmt.Sprintf(`"%s" independent consultant contact email`, company.Name),
		fmt.Sprintf(`"%s" representative "email me"`, company.Name),
	}

	if len(opts.States) == 0 {
		return base
	}

	var narrowed []string
	for _, state := range opts.States {
		narrowed = append(narrowed, fmt.Sprintf(`"%s" consultant %s contact`, company.Name, state))
	}
	return append(narrowed, base...)
}

// Scrape runs the query set, visits the top result pages and extracts
// contacts from each. Page-level failures are recorded and skipped.
func (s *SearchStrategy) Scrape(ctx context.Context, company models.CompanyConfig, opts models.ScrapeOptions) (*models.ScraperResult, error) {
	start := time.Now()
	result := &models.ScraperResult{Company: company.Name}

	cap := searchResultCap
	if opts.TestMode {
		cap = searchResultCapTest
	}

	retryCfg := &retry.Config{
		MaxRetries: s.maxRetries,
		Backoff:    retry.NewExponentialBackoff(s.baseDelay),
		RetryIf:    retryTransient,
		Context:    ctx,
		Logger:     s.logger,
	}

	seenPages := make(map[string]bool)

	for _, query := range s.queries(company, opts) {
		if opts.MaxReps > 0 && len(result.Reps) >= opts.MaxReps {
			break
		}

		searchURL := s.endpoint + "?q=" + url.QueryEscape(query)
		body, err := retry.DoWithResult(func() (string, error) {
			return s.fetcher.GetHTML(ctx, searchURL)
		}, retryCfg)
		if err != nil {
			result.AddError(fmt.Errorf("search %q: %w", query, err))
			continue
		}

		links := parseResultLinks(body, cap)
		for _, link := range links {
			if opts.MaxReps > 0 && len(result.Reps) >= opts.MaxReps {
				break
			}
			if seenPages[link] {
				continue
			}
			seenPages[link] = true

			page, err := retry.DoWithResult(func() (string, error) {
				return s.fetcher.GetHTML(ctx, link)
			}, retryCfg)
			if err != nil {
				result.AddError(fmt.Errorf("fetch %s: %w", link, err))
				continue
			}

			for _, rep := range s.repsFromPage(page, link, company) {
				if opts.MaxReps > 0 && len(result.Reps) >= opts.MaxReps {
					break
				}
				result.Reps = append(result.Reps, rep)
				if rep.Email != "" {
					result.EmailsFound++
				}
			}
		}
	}

	result.RepsFound = len(result.Reps)
	result.Success = len(result.Reps) > 0 || len(result.Errors) == 0
	result.DurationMs = time.Since(start).Milliseconds()

	logger.LogStrategy(s.logger, company.Name, s.Name(), result.RepsFound, nil)
	return result, nil
}

// repsFromPage extracts contact records from one result page. Every
// validated email becomes a candidate record enriched with whatever phone
// and social data the page carries.
func (s *SearchStrategy) repsFromPage(page, pageURL string, company models.CompanyConfig) []*models.SalesRep {
	var reps []*models.SalesRep
	for _, match := range extract.Emails(page, nil) {
		rep := repFromEmail(match, company, models.SourceSearch)
		rep.PersonalWebsite = pageURL
		enrichFromText(rep, page)
		reps = append(reps, rep)
	}
	return reps
}

// parseResultLinks pulls external result URLs out of a search result page.
func parseResultLinks(body string, cap int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a.result__a, .result__url, .result a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		href = cleanResultURL(href)
		if href == "" {
			return true
		}
		links = append(links, href)
		return len(links) < cap
	})
	return links
}

// cleanResultURL unwraps redirect-style result links and drops non-http
// targets.
func cleanResultURL(href string) string {
	// DuckDuckGo html results wrap targets as //duckduckgo.com/l/?uddg=<url>.
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				href = target
			}
		}
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return ""
	}
	return href
}
