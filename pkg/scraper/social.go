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

// socialSites maps each platform to the domain used in a site-restricted
// search.
var socialSites = map[string]string{
	"facebook":  "facebook.com",
	"instagram": "instagram.com",
	"linkedin":  "linkedin.com",
	"twitter":   "twitter.com",
}

// SocialStrategy finds representatives through their public social media
// profiles via site-restricted searches. Names come from result titles;
// emails only when a profile snippet exposes one, so this is the
// lowest-yield source and runs last.
type SocialStrategy struct {
	fetcher    Fetcher
	endpoint   string
	maxRetries int
	baseDelay  time.Duration
	logger     logger.Logger
}

// NewSocialStrategy creates the social profile strategy against the same
// search endpoint the search strategy uses.
func NewSocialStrategy(fetcher Fetcher, endpoint string, maxRetries int, baseDelay time.Duration, log logger.Logger) *SocialStrategy {
	if endpoint == "" {
		endpoint = "https://html.duckduckgo.com/html/"
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &SocialStrategy{
		fetcher:    fetcher,
		endpoint:   endpoint,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     log,
	}
}

func (s *SocialStrategy) Name() string {
	return models.SourceSocial
}

// Scrape runs one site-restricted query per platform and builds records
// from the result titles and snippets.
func (s *SocialStrategy) Scrape(ctx context.Context, company models.CompanyConfig, opts models.ScrapeOptions) (*models.ScraperResult, error) {
	start := time.Now()
	result := &models.ScraperResult{Company: company.Name}

	retryCfg := &retry.Config{
		MaxRetries: s.maxRetries,
		Backoff:    retry.NewExponentialBackoff(s.baseDelay),
		RetryIf:    retryTransient,
		Context:    ctx,
		Logger:     s.logger,
	}

	for _, platform := range models.SocialPlatforms {
		if opts.MaxReps > 0 && len(result.Reps) >= opts.MaxReps {
			break
		}

		site, ok := socialSites[platform]
		if !ok {
			continue
		}

		query := fmt.Sprintf(`site:%s "%s" consultant`, site, company.Name)
		searchURL := s.endpoint + "?q=" + url.QueryEscape(query)

		body, err := retry.DoWithResult(func() (string, error) {
			return s.fetcher.GetHTML(ctx, searchURL)
		}, retryCfg)
		if err != nil {
			result.AddError(fmt.Errorf("social search %s: %w", platform, err))
			continue
		}

		for _, rep := range s.repsFromResults(body, platform, company) {
			if opts.MaxReps > 0 && len(result.Reps) >= opts.MaxReps {
				break
			}
			result.Reps = append(result.Reps, rep)
			if rep.Email != "" {
				result.EmailsFound++
			}
		}
	}

	result.RepsFound = len(result.Reps)
	result.Success = len(result.Reps) > 0 || len(result.Errors) == 0
	result.DurationMs = time.Since(start).Milliseconds()

	logger.LogStrategy(s.logger, company.Name, s.Name(), result.RepsFound, nil)
	return result, nil
}

// repsFromResults turns one result page into records. Each result whose
// title parses to a plausible person name yields a record carrying the
// profile link and any email the snippet exposes.
func (s *SocialStrategy) repsFromResults(body, platform string, company models.CompanyConfig) []*models.SalesRep {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var reps []*models.SalesRep
	doc.Find(".result").Each(func(_ int, sel *goquery.Selection) {
		anchor := sel.Find("a.result__a").First()
		href, _ := anchor.Attr("href")
		href = cleanResultURL(href)
		if href == "" {
			return
		}

		first, last := nameFromResultTitle(anchor.Text())
		if first == "" {
			return
		}

		rep := models.NewSalesRep(first, last, company.Name, models.SourceSocial)
		rep.SetSocialLink(platform, href)

		snippet := sel.Find(".result__snippet").Text()
		if emails := extract.Emails(snippet, nil); len(emails) > 0 {
			rep.Email = emails[0].Email
		}
		rep.City, rep.State, rep.ZipCode = parseLocation(snippet)

		reps = append(reps, rep)
	})
	return reps
}

// nameFromResultTitle parses a person name out of a profile result title
// like "Jane Doe - Independent Consultant | Facebook". Titles without a
// recognizable two-word name are rejected.
func nameFromResultTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	for _, sep := range []string{" | ", " - ", " – ", " on ", " (@"} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}

	fields := strings.Fields(title)
	if len(fields) < 2 || len(fields) > 4 {
		return "", ""
	}
	for _, f := range fields {
		if !isNameWord(f) {
			return "", ""
		}
	}
	return splitName(title)
}

// isNameWord accepts capitalized alphabetic words, allowing apostrophes and
// hyphens inside.
func isNameWord(w string) bool {
	if w == "" || w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	for _, r := range w[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && r != '\'' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}
