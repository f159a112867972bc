package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"repscout/pkg/extract"
	"repscout/pkg/logger"
	"repscout/pkg/models"
	"repscout/pkg/retry"
)

// locatorCardSelector matches the consultant cards the locator pages we
// target render, across their various markup conventions.
const locatorCardSelector = ".consultant-card, .rep-card, .locator-result, li.consultant, div.consultant"

// LocatorStrategy queries a company's structured representative locator
// endpoint. It is the authoritative, lowest-noise source and runs first
// whenever a company configures a locator URL.
type LocatorStrategy struct {
	fetcher    Fetcher
	renderer   PageRenderer
	maxRetries int
	baseDelay  time.Duration
	logger     logger.Logger
}

// NewLocatorStrategy creates the locator strategy. renderer may be nil;
// companies with scrape method "browser" are then fetched plainly.
func NewLocatorStrategy(fetcher Fetcher, renderer PageRenderer, maxRetries int, baseDelay time.Duration, log logger.Logger) *LocatorStrategy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &LocatorStrategy{
		fetcher:    fetcher,
		renderer:   renderer,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     log,
	}
}

func (s *LocatorStrategy) Name() string {
	return models.SourceLocator
}

// Scrape fetches the locator endpoint and extracts representative records
// from its JSON or HTML response.
func (s *LocatorStrategy) Scrape(ctx context.Context, company models.CompanyConfig, opts models.ScrapeOptions) (*models.ScraperResult, error) {
	start := time.Now()
	result := &models.ScraperResult{Company: company.Name}

	if company.RepLocatorURL == "" {
		return result, fmt.Errorf("company %q has no locator url", company.Slug)
	}

	body, err := s.fetchLocatorPage(ctx, company)
	if err != nil {
		result.AddError(fmt.Errorf("locator fetch: %w", err))
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	var reps []*models.SalesRep
	if looksLikeJSON(body) {
		reps, err = s.parseJSON(body, company)
		if err != nil {
			result.AddError(fmt.Errorf("locator parse: %w", err))
		}
	} else {
		reps = s.parseHTML(body, company)
	}

	for _, rep := range reps {
		if rep.State != "" && !opts.WantsState(rep.State) {
			continue
		}
		if opts.MaxReps > 0 && len(result.Reps) >= opts.MaxReps {
			break
		}
		result.Reps = append(result.Reps, rep)
		if rep.Email != "" {
			result.EmailsFound++
		}
	}

	result.RepsFound = len(result.Reps)
	result.Success = len(result.Errors) == 0
	result.DurationMs = time.Since(start).Milliseconds()

	logger.LogStrategy(s.logger, company.Name, s.Name(), result.RepsFound, nil)
	return result, nil
}

// fetchLocatorPage retrieves the locator document, rendering it in the
// browser session when the company needs client-side markup.
func (s *LocatorStrategy) fetchLocatorPage(ctx context.Context, company models.CompanyConfig) (string, error) {
	cfg := &retry.Config{
		MaxRetries: s.maxRetries,
		Backoff:    retry.NewExponentialBackoff(s.baseDelay),
		RetryIf:    retryTransient,
		Context:    ctx,
		Logger:     s.logger,
	}

	if company.ScrapeMethod == "browser" && s.renderer != nil {
		return retry.DoWithResult(func() (string, error) {
			return s.renderer.HTML(ctx, company.RepLocatorURL, "")
		}, cfg)
	}

	return retry.DoWithResult(func() (string, error) {
		return s.fetcher.GetHTML(ctx, company.RepLocatorURL)
	}, cfg)
}

// locatorRep is the wire shape of one record in a JSON locator response.
type locatorRep struct {
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode"`
	Website    string `json:"website"`
	ProfileURL string `json:"profileUrl"`
}

// locatorResponse covers object-wrapped locator payloads.
type locatorResponse struct {
	Reps        []locatorRep `json:"reps"`
	Consultants []locatorRep `json:"consultants"`
	Results     []locatorRep `json:"results"`
}

func looksLikeJSON(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}

// parseJSON decodes a JSON locator payload, accepting either a bare array
// or a wrapping object.
func (s *LocatorStrategy) parseJSON(body string, company models.CompanyConfig) ([]*models.SalesRep, error) {
	var rows []locatorRep

	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &rows); err != nil {
			return nil, err
		}
	} else {
		var resp locatorResponse
		if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
			return nil, err
		}
		switch {
		case len(resp.Reps) > 0:
			rows = resp.Reps
		case len(resp.Consultants) > 0:
			rows = resp.Consultants
		default:
			rows = resp.Results
		}
	}

	var reps []*models.SalesRep
	for _, row := range rows {
		first, last := row.FirstName, row.LastName
		if first == "" && last == "" {
			first, last = splitName(row.Name)
		}
		if first == "" && last == "" {
			continue
		}

		rep := models.NewSalesRep(first, last, company.Name, models.SourceLocator)
		if extract.IsValidEmail(row.Email, nil) {
			rep.Email = extract.NormalizeEmail(row.Email)
		}
		if phones := extract.Phones(row.Phone); len(phones) > 0 {
			rep.Phone = phones[0]
		}
		rep.City = row.City
		rep.State = row.State
		rep.ZipCode = row.ZipCode
		rep.PersonalWebsite = row.Website
		rep.ProfileURL = row.ProfileURL
		reps = append(reps, rep)
	}

	return reps, nil
}

// parseHTML extracts records from a rendered locator page: one record per
// consultant card, or a best-effort pass over the whole document when no
// cards are recognized.
func (s *LocatorStrategy) parseHTML(body string, company models.CompanyConfig) []*models.SalesRep {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		s.logger.WithError(err).WithField("company", company.Slug).Warn("locator page is not parseable HTML")
		return nil
	}

	var reps []*models.SalesRep

	doc.Find(locatorCardSelector).Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("h2, h3, h4, .name, .consultant-name").First().Text())
		cardText := card.Text()

		emails := extract.Emails(cardText, nil)
		if name == "" && len(emails) == 0 {
			return
		}

		var rep *models.SalesRep
		if name != "" {
			first, last := splitName(name)
			rep = models.NewSalesRep(first, last, company.Name, models.SourceLocator)
			if len(emails) > 0 {
				rep.Email = emails[0].Email
			}
		} else {
			rep = repFromEmail(emails[0], company, models.SourceLocator)
		}

		rep.City, rep.State, rep.ZipCode = parseLocation(cardText)
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			rep.ProfileURL = absoluteURL(company.BaseURL, href)
		}

		cardHTML, _ := goquery.OuterHtml(card)
		enrichFromText(rep, cardHTML)
		reps = append(reps, rep)
	})

	if len(reps) > 0 {
		return reps
	}

	// No recognizable cards: fall back to whole-document extraction.
	for _, match := range extract.Emails(body, nil) {
		reps = append(reps, repFromEmail(match, company, models.SourceLocator))
	}
	return reps
}

// absoluteURL resolves a possibly-relative href against the company site.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
