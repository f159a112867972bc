package scraper

import (
	"context"
	"fmt"
	"time"

	"repscout/pkg/browser"
	"repscout/pkg/config"
	"repscout/pkg/logger"
	"repscout/pkg/models"
	"repscout/pkg/ratelimit"
	"repscout/pkg/webclient"
)

// Scraper drives the full pipeline for one or more companies. Each company
// gets its own web client and politeness limiter sized from its configured
// rate limit; the browser session, when enabled, is shared across the run.
type Scraper struct {
	cfg     *config.Config
	session *browser.Session
	logger  logger.Logger
}

// New creates a scraper from the loaded configuration. When browser
// rendering is enabled the Chrome session starts eagerly so a missing
// binary fails the run up front. Callers must Close the scraper.
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Scraper{cfg: cfg, logger: log}

	if cfg.Scraper.UseBrowser {
		opts := browser.DefaultOptions()
		opts.Headless = cfg.Scraper.BrowserHeadless
		if cfg.Search.UserAgent != "" {
			opts.UserAgent = cfg.Search.UserAgent
		}

		session, err := browser.NewSession(context.Background(), opts, log)
		if err != nil {
			return nil, err
		}
		s.session = session
	}

	return s, nil
}

// Close releases the browser session, if any.
func (s *Scraper) Close() {
	if s.session != nil {
		s.session.Close()
	}
}

// strategies assembles the strategy sequence for one company. The locator
// runs first when the company has one; search and social always follow.
func (s *Scraper) strategies(company models.CompanyConfig, fetcher Fetcher) []Strategy {
	maxRetries := s.cfg.RateLimit.MaxRetries
	baseDelay := s.cfg.RateLimit.RetryDelay
	endpoint := s.cfg.Search.Endpoint

	var renderer PageRenderer
	if s.session != nil {
		renderer = s.session
	}

	var chain []Strategy
	if company.RepLocatorURL != "" {
		chain = append(chain, NewLocatorStrategy(fetcher, renderer, maxRetries, baseDelay, s.logger))
	}
	chain = append(chain,
		NewSearchStrategy(fetcher, endpoint, maxRetries, baseDelay, s.logger),
		NewSocialStrategy(fetcher, endpoint, maxRetries, baseDelay, s.logger),
	)
	return chain
}

// newFetcher builds the polite web client for one company. The company's
// own rate limit wins over the global one when set.
func (s *Scraper) newFetcher(company models.CompanyConfig) Fetcher {
	rpm := s.cfg.RateLimit.RequestsPerMinute
	if company.RateLimit > 0 {
		rpm = company.RateLimit
	}

	client := webclient.New(s.cfg.Scraper.RequestTimeout, s.logger)
	client.SetPoliteness(ratelimit.NewPoliteness(rpm))
	if s.cfg.Search.UserAgent != "" {
		client.SetHeader("User-Agent", s.cfg.Search.UserAgent)
	}
	if s.cfg.Search.SessionCookie != "" {
		client.SetHeader("Cookie", s.cfg.Search.SessionCookie)
	}
	if s.cfg.Search.APIKey != "" {
		client.SetHeader("X-Api-Key", s.cfg.Search.APIKey)
	}
	return client
}

// ScrapeCompany runs every applicable strategy against one company and
// merges their findings into a single deduplicated result.
func (s *Scraper) ScrapeCompany(ctx context.Context, company models.CompanyConfig, opts models.ScrapeOptions) *models.ScraperResult {
	s.logger.InfoWithFields("starting company scrape", map[string]interface{}{
		"company": company.Slug,
		"method":  company.ScrapeMethod,
	})

	fetcher := s.newFetcher(company)

	merged := &models.ScraperResult{Company: company.Name}
	seen := make(map[string]*models.SalesRep)
	anySucceeded := false
	var totalDuration int64

	for _, strat := range s.strategies(company, fetcher) {
		if opts.MaxReps > 0 && len(merged.Reps) >= opts.MaxReps {
			break
		}

		// Hand each strategy only the budget that is still open.
		stratOpts := opts
		if opts.MaxReps > 0 {
			stratOpts.MaxReps = opts.MaxReps - len(merged.Reps)
		}

		res, err := strat.Scrape(ctx, company, stratOpts)
		if err != nil {
			merged.AddError(err)
			logger.LogStrategy(s.logger, company.Name, strat.Name(), 0, err)
			continue
		}

		totalDuration += res.DurationMs
		if res.Success {
			anySucceeded = true
		}
		for _, e := range res.Errors {
			merged.Errors = append(merged.Errors, e)
		}

		for _, rep := range res.Reps {
			key := rep.DedupKey()
			if existing, ok := seen[key]; ok {
				mergeRep(existing, rep)
				continue
			}
			seen[key] = rep
			merged.Reps = append(merged.Reps, rep)
		}

		if ctx.Err() != nil {
			merged.AddError(ctx.Err())
			break
		}
	}

	merged.RepsFound = len(merged.Reps)
	for _, rep := range merged.Reps {
		if rep.Email != "" {
			merged.EmailsFound++
		}
	}
	merged.Success = anySucceeded
	merged.DurationMs = totalDuration

	s.logger.InfoWithFields("company scrape finished", map[string]interface{}{
		"company": company.Slug,
		"reps":    merged.RepsFound,
		"emails":  merged.EmailsFound,
		"errors":  len(merged.Errors),
	})
	return merged
}

// mergeRep folds a later duplicate into the record already held for the
// same contact. The first writer wins; only empty fields are filled.
func mergeRep(dst, src *models.SalesRep) {
	if dst.Phone == "" {
		dst.Phone = src.Phone
	}
	if dst.City == "" {
		dst.City, dst.State, dst.ZipCode = src.City, src.State, src.ZipCode
	}
	if dst.ProfileURL == "" {
		dst.ProfileURL = src.ProfileURL
	}
	if dst.PersonalWebsite == "" {
		dst.PersonalWebsite = src.PersonalWebsite
	}
	for platform, url := range src.SocialLinks {
		dst.SetSocialLink(platform, url)
	}
	if dst.Email == "" {
		dst.Email = src.Email
	}
}

// ScrapeAll runs the pipeline over a set of companies through the worker
// pool and returns results in input order.
func (s *Scraper) ScrapeAll(ctx context.Context, companies []models.CompanyConfig, opts models.ScrapeOptions) []*models.ScraperResult {
	workers := s.cfg.Scraper.ConcurrentCompanies
	if workers < 1 {
		workers = 1
	}

	pool := NewPool(workers, s, s.logger)
	pool.Start(ctx)

	// Submit from a separate goroutine: with more companies than queue
	// capacity, submission must not block result consumption.
	go func() {
		for i, company := range companies {
			pool.Submit(Job{Index: i, Company: company, Options: opts})
		}
	}()

	results := make([]*models.ScraperResult, len(companies))
	done := 0
	for range companies {
		out := <-pool.Results()
		results[out.Index] = out.Result
		done++
		logger.LogScrapeProgress(s.logger, out.Result.Company, done, len(companies))
	}
	pool.Stop()

	return results
}

// SummaryLine formats a one-line outcome for console output.
func SummaryLine(res *models.ScraperResult) string {
	status := "ok"
	if !res.Success {
		status = "failed"
	}
	return fmt.Sprintf("%s: %s (%d reps, %d emails, %s)",
		res.Company, status, res.RepsFound, res.EmailsFound,
		(time.Duration(res.DurationMs) * time.Millisecond).String())
}
