package models

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Source identifies which acquisition strategy produced a record.
const (
	SourceLocator = "locator"
	SourceSearch  = "search"
	SourceSocial  = "social"
)

// SocialPlatforms lists the platforms tracked in SalesRep.SocialLinks,
// in the column order used by the CSV writer.
var SocialPlatforms = []string{"facebook", "instagram", "linkedin", "twitter"}

// SalesRep is a single scraped representative record.
type SalesRep struct {
	ID              string            `json:"id"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Company         string            `json:"company"`
	City            string            `json:"city,omitempty"`
	State           string            `json:"state,omitempty"`
	ZipCode         string            `json:"zipCode,omitempty"`
	ProfileURL      string            `json:"profileUrl,omitempty"`
	PersonalWebsite string            `json:"personalWebsite,omitempty"`
	SocialLinks     map[string]string `json:"socialLinks,omitempty"`
	ScrapedAt       string            `json:"scrapedAt"`
	Source          string            `json:"source"`
}

// NewSalesRep creates a record with a derived ID and scrape timestamp.
func NewSalesRep(firstName, lastName, company, source string) *SalesRep {
	now := time.Now()
	return &SalesRep{
		ID:        DeriveID(firstName+" "+lastName, company, now),
		FirstName: firstName,
		LastName:  lastName,
		Company:   company,
		ScrapedAt: now.Format(time.RFC3339),
		Source:    source,
	}
}

// DeriveID produces a stable identifier from name, company and scrape time.
func DeriveID(name, company string, at time.Time) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%d", strings.ToLower(name), strings.ToLower(company), at.UnixNano())))
	return hex.EncodeToString(h[:])[:16]
}

// FullName returns the display name of the representative.
func (r *SalesRep) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// DedupKey is the identity used for cross-strategy deduplication: the
// lowercase email when present, otherwise the derived ID.
func (r *SalesRep) DedupKey() string {
	if r.Email != "" {
		return strings.ToLower(r.Email)
	}
	return r.ID
}

// SetSocialLink records at most one URL per platform; the first wins.
func (r *SalesRep) SetSocialLink(platform, url string) {
	if r.SocialLinks == nil {
		r.SocialLinks = make(map[string]string)
	}
	if _, exists := r.SocialLinks[platform]; !exists {
		r.SocialLinks[platform] = url
	}
}

// CompanyConfig describes one scrape target and its pacing budget.
type CompanyConfig struct {
	Name          string `yaml:"name" json:"name"`
	Slug          string `yaml:"slug" json:"slug"`
	BaseURL       string `yaml:"base_url" json:"baseUrl"`
	RepLocatorURL string `yaml:"rep_locator_url,omitempty" json:"repLocatorUrl,omitempty"`
	Category      string `yaml:"category,omitempty" json:"category,omitempty"`
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	ScrapeMethod  string `yaml:"scrape_method,omitempty" json:"scrapeMethod,omitempty"`
	RateLimit     int    `yaml:"rate_limit" json:"rateLimit"` // requests per minute against this target
	Notes         string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// ScrapeOptions carries per-run knobs into the strategies.
type ScrapeOptions struct {
	MaxReps  int
	States   []string
	TestMode bool
}

// WantsState reports whether a state passes the optional state filter.
func (o ScrapeOptions) WantsState(state string) bool {
	if len(o.States) == 0 {
		return true
	}
	for _, s := range o.States {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(state)) {
			return true
		}
	}
	return false
}

// ScraperResult is the outcome of scraping one company, either for a single
// strategy or merged across strategies.
type ScraperResult struct {
	Company     string      `json:"company"`
	Success     bool        `json:"success"`
	RepsFound   int         `json:"repsFound"`
	EmailsFound int         `json:"emailsFound"`
	Errors      []string    `json:"errors,omitempty"`
	DurationMs  int64       `json:"duration"`
	Reps        []*SalesRep `json:"reps"`
}

// AddError records a strategy-boundary failure without aborting the run.
func (sr *ScraperResult) AddError(err error) {
	if err != nil {
		sr.Errors = append(sr.Errors, err.Error())
	}
}
