package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"repscout/pkg/config"
	"repscout/pkg/logger"
	"repscout/pkg/models"
)

func TestMergeRepFillsOnlyEmptyFields(t *testing.T) {
	dst := models.NewSalesRep("Jane", "Doe", "Mary Kay", models.SourceLocator)
	dst.Email = "jane.doe@gmail.com"
	dst.Phone = "(214) 555-0192"

	src := models.NewSalesRep("Jane", "Doe", "Mary Kay", models.SourceSearch)
	src.Email = "jane.doe@gmail.com"
	src.Phone = "(918) 555-0147"
	src.City, src.State = "Dallas", "TX"
	src.SetSocialLink("facebook", "https://facebook.com/janedoe")

	mergeRep(dst, src)

	if dst.Phone != "(214) 555-0192" {
		t.Errorf("existing phone overwritten: %q", dst.Phone)
	}
	if dst.City != "Dallas" || dst.State != "TX" {
		t.Errorf("empty location not filled: %q %q", dst.City, dst.State)
	}
	if dst.SocialLinks["facebook"] != "https://facebook.com/janedoe" {
		t.Errorf("social link not merged: %v", dst.SocialLinks)
	}
	if dst.Source != models.SourceLocator {
		t.Errorf("source changed to %q, first writer must win", dst.Source)
	}
}

// newPipelineServer serves a fake search endpoint, a locator endpoint and a
// consultant contact page from one test server.
func newPipelineServer(t *testing.T) *httptest.Server {
	t.Helper()

	var ts *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("/html/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div class="result">
				<a class="result__a" href="%s/rep/jane">Top 10 consultant contact pages</a>
				<div class="result__snippet">Independent consultant near you</div>
			</div>
		</body></html>`, ts.URL)
	})
	mux.HandleFunc("/locator", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"firstName": "Jane", "lastName": "Doe",
			"email": "jane.doe@gmail.com", "phone": "214-555-0192",
			"city": "Dallas", "state": "TX"}]`)
	})
	mux.HandleFunc("/rep/jane", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<p>Email me: jane.doe@gmail.com</p>
			<p>https://facebook.com/janedoesells</p>
		</body></html>`)
	})

	ts = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func pipelineConfig(ts *httptest.Server) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Search.Endpoint = ts.URL + "/html/"
	cfg.Scraper.RequestTimeout = 5 * time.Second
	cfg.RateLimit.MaxRetries = 0
	cfg.RateLimit.RetryDelay = time.Millisecond
	return cfg
}

func TestScrapeCompanyMergesStrategies(t *testing.T) {
	ts := newPipelineServer(t)
	cfg := pipelineConfig(ts)

	s, err := New(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	company := models.CompanyConfig{
		Name:          "Mary Kay",
		Slug:          "mary-kay",
		BaseURL:       ts.URL,
		RepLocatorURL: ts.URL + "/locator",
		Enabled:       true,
		RateLimit:     6000, // keep the politeness gate fast in tests
	}

	res := s.ScrapeCompany(context.Background(), company, models.ScrapeOptions{})

	if !res.Success {
		t.Fatalf("success = false, errors: %v", res.Errors)
	}
	// The locator and the search page both surface jane.doe@gmail.com; the
	// merged result holds her once.
	if res.RepsFound != 1 {
		t.Fatalf("reps found = %d, want 1 merged record: %+v", res.RepsFound, res.Reps)
	}
	if res.EmailsFound != 1 {
		t.Errorf("emails found = %d, want 1", res.EmailsFound)
	}

	jane := res.Reps[0]
	if jane.Source != models.SourceLocator {
		t.Errorf("source = %q, locator record must win", jane.Source)
	}
	if jane.Phone != "(214) 555-0192" {
		t.Errorf("phone = %q", jane.Phone)
	}
	if jane.SocialLinks["facebook"] != "https://facebook.com/janedoesells" {
		t.Errorf("search details not merged in: %v", jane.SocialLinks)
	}
}

func TestScrapeCompanyWithoutLocatorSkipsIt(t *testing.T) {
	ts := newPipelineServer(t)
	cfg := pipelineConfig(ts)

	s, err := New(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	company := models.CompanyConfig{
		Name:      "Avon",
		Slug:      "avon",
		Enabled:   true,
		RateLimit: 6000,
	}

	res := s.ScrapeCompany(context.Background(), company, models.ScrapeOptions{})
	if !res.Success {
		t.Fatalf("success = false, errors: %v", res.Errors)
	}
	if res.RepsFound != 1 {
		t.Fatalf("reps found = %d, want 1 from search: %+v", res.RepsFound, res.Reps)
	}
	if res.Reps[0].Source != models.SourceSearch {
		t.Errorf("source = %q, want search", res.Reps[0].Source)
	}
}

func TestScrapeAllKeepsInputOrder(t *testing.T) {
	ts := newPipelineServer(t)
	cfg := pipelineConfig(ts)
	cfg.Scraper.ConcurrentCompanies = 2

	s, err := New(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	companies := []models.CompanyConfig{
		{Name: "Mary Kay", Slug: "mary-kay", RepLocatorURL: ts.URL + "/locator", RateLimit: 6000},
		{Name: "Avon", Slug: "avon", RateLimit: 6000},
	}

	results := s.ScrapeAll(context.Background(), companies, models.ScrapeOptions{})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Company != "Mary Kay" || results[1].Company != "Avon" {
		t.Errorf("results out of order: %q, %q", results[0].Company, results[1].Company)
	}
}

func TestScrapeAllMoreCompaniesThanQueueCapacity(t *testing.T) {
	ts := newPipelineServer(t)
	cfg := pipelineConfig(ts)
	cfg.Scraper.ConcurrentCompanies = 1

	s, err := New(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	// Well past the job queue capacity for a single worker; submission and
	// result consumption must overlap for this to finish.
	var companies []models.CompanyConfig
	for i := 0; i < 10; i++ {
		companies = append(companies, models.CompanyConfig{
			Name:      fmt.Sprintf("Company %d", i),
			Slug:      fmt.Sprintf("company-%d", i),
			RateLimit: 6000,
		})
	}

	done := make(chan []*models.ScraperResult, 1)
	go func() {
		done <- s.ScrapeAll(context.Background(), companies, models.ScrapeOptions{})
	}()

	select {
	case results := <-done:
		if len(results) != len(companies) {
			t.Fatalf("got %d results, want %d", len(results), len(companies))
		}
		for i, res := range results {
			if res.Company != companies[i].Name {
				t.Errorf("results[%d] = %q, want %q", i, res.Company, companies[i].Name)
			}
		}
	case <-time.After(30 * time.Second):
		t.Fatal("ScrapeAll did not finish with more companies than queue capacity")
	}
}

func TestFetcherCarriesSearchCredentials(t *testing.T) {
	var gotCookie, gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	cfg := config.DefaultConfig()
	cfg.Search.SessionCookie = "session=abc123"
	cfg.Search.APIKey = "sk-test"

	s, err := New(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	fetcher := s.newFetcher(models.CompanyConfig{RateLimit: 6000})
	if _, err := fetcher.GetHTML(context.Background(), ts.URL); err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}

	if gotCookie != "session=abc123" {
		t.Errorf("Cookie header = %q, want the configured session cookie", gotCookie)
	}
	if gotKey != "sk-test" {
		t.Errorf("X-Api-Key header = %q, want the configured key", gotKey)
	}
}

func TestScrapeCompanyBudget(t *testing.T) {
	ts := newPipelineServer(t)
	cfg := pipelineConfig(ts)

	s, err := New(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	company := models.CompanyConfig{
		Name:          "Mary Kay",
		Slug:          "mary-kay",
		RepLocatorURL: ts.URL + "/locator",
		RateLimit:     6000,
	}

	res := s.ScrapeCompany(context.Background(), company, models.ScrapeOptions{MaxReps: 1})
	if res.RepsFound != 1 {
		t.Fatalf("reps found = %d, want exactly the budget", res.RepsFound)
	}
}
