package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"repscout/pkg/models"
)

// companiesFile is the on-disk shape of the scrape target list
type companiesFile struct {
	Companies []models.CompanyConfig `yaml:"companies"`
}

// DefaultCompanies returns the built-in scrape target list, used when no
// companies file is configured.
func DefaultCompanies() []models.CompanyConfig {
	return []models.CompanyConfig{
		{
			Name:          "Mary Kay",
			Slug:          "mary-kay",
			BaseURL:       "https://www.marykay.com",
			RepLocatorURL: "https://www.marykay.com/en-us/locate-a-beauty-consultant",
			Category:      "beauty",
			Enabled:       true,
			ScrapeMethod:  "locator",
			RateLimit:     10,
		},
		{
			Name:         "Avon",
			Slug:         "avon",
			BaseURL:      "https://www.avon.com",
			Category:     "beauty",
			Enabled:      true,
			ScrapeMethod: "search",
			RateLimit:    10,
		},
		{
			Name:          "Pampered Chef",
			Slug:          "pampered-chef",
			BaseURL:       "https://www.pamperedchef.com",
			RepLocatorURL: "https://www.pamperedchef.com/find-a-consultant",
			Category:      "kitchen",
			Enabled:       true,
			ScrapeMethod:  "locator",
			RateLimit:     10,
		},
		{
			Name:         "Scentsy",
			Slug:         "scentsy",
			BaseURL:      "https://scentsy.com",
			Category:     "home",
			Enabled:      true,
			ScrapeMethod: "search",
			RateLimit:    8,
		},
		{
			Name:         "Tupperware",
			Slug:         "tupperware",
			BaseURL:      "https://www.tupperware.com",
			Category:     "kitchen",
			Enabled:      false,
			ScrapeMethod: "search",
			RateLimit:    10,
			Notes:        "locator behind login, search only",
		},
	}
}

// LoadCompanies loads the scrape target list from a YAML file, falling back
// to the built-in list when path is empty.
func LoadCompanies(path string) ([]models.CompanyConfig, error) {
	if path == "" {
		return DefaultCompanies(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read companies file: %w", err)
	}

	var file companiesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse companies file: %w", err)
	}

	if err := ValidateCompanies(file.Companies); err != nil {
		return nil, err
	}

	return file.Companies, nil
}

// ValidateCompanies checks target list invariants: required fields, unique
// slugs and positive rate limits.
func ValidateCompanies(companies []models.CompanyConfig) error {
	var errs []error
	seen := make(map[string]bool)

	for i, c := range companies {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("company %d: name is required", i))
		}
		if c.Slug == "" {
			errs = append(errs, fmt.Errorf("company %d: slug is required", i))
		} else if seen[c.Slug] {
			errs = append(errs, fmt.Errorf("company %d: duplicate slug %q", i, c.Slug))
		} else {
			seen[c.Slug] = true
		}
		if c.BaseURL == "" {
			errs = append(errs, fmt.Errorf("company %q: base_url is required", c.Slug))
		}
		if c.RateLimit <= 0 {
			errs = append(errs, fmt.Errorf("company %q: rate_limit must be positive", c.Slug))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SelectCompanies filters the target list down to enabled companies, further
// restricted to the given slugs when any are provided.
func SelectCompanies(companies []models.CompanyConfig, slugs []string) ([]models.CompanyConfig, error) {
	want := make(map[string]bool)
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			want[s] = true
		}
	}

	var selected []models.CompanyConfig
	for _, c := range companies {
		if len(want) > 0 {
			if !want[c.Slug] {
				continue
			}
			delete(want, c.Slug)
			selected = append(selected, c)
			continue
		}
		if c.Enabled {
			selected = append(selected, c)
		}
	}

	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for s := range want {
			unknown = append(unknown, s)
		}
		return nil, fmt.Errorf("unknown company slugs: %s", strings.Join(unknown, ", "))
	}

	return selected, nil
}
