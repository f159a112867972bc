package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repscout/pkg/models"
)

func TestDefaultCompaniesValidate(t *testing.T) {
	companies := DefaultCompanies()
	if len(companies) == 0 {
		t.Fatal("built-in company list must not be empty")
	}
	if err := ValidateCompanies(companies); err != nil {
		t.Errorf("built-in company list must validate: %v", err)
	}
}

func TestLoadCompaniesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.yaml")

	yaml := `companies:
  - name: Acme Direct
    slug: acme
    base_url: https://acme.example-sales.com
    enabled: true
    rate_limit: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	companies, err := LoadCompanies(path)
	if err != nil {
		t.Fatalf("LoadCompanies() error = %v", err)
	}
	if len(companies) != 1 || companies[0].Slug != "acme" {
		t.Fatalf("unexpected companies: %+v", companies)
	}
	if companies[0].RateLimit != 5 {
		t.Errorf("rate limit = %d, want 5", companies[0].RateLimit)
	}
}

func TestLoadCompaniesEmptyPathUsesDefaults(t *testing.T) {
	companies, err := LoadCompanies("")
	if err != nil {
		t.Fatalf("LoadCompanies(\"\") error = %v", err)
	}
	if len(companies) != len(DefaultCompanies()) {
		t.Errorf("got %d companies, want the built-in list", len(companies))
	}
}

func TestValidateCompaniesErrors(t *testing.T) {
	bad := []models.CompanyConfig{
		{Name: "", Slug: "a", BaseURL: "https://a.com", RateLimit: 5},
		{Name: "B", Slug: "a", BaseURL: "https://b.com", RateLimit: 5},
		{Name: "C", Slug: "c", BaseURL: "", RateLimit: 0},
	}

	err := ValidateCompanies(bad)
	if err == nil {
		t.Fatal("invalid list must fail")
	}
	msg := err.Error()
	for _, want := range []string{"name is required", "duplicate slug", "base_url is required", "rate_limit must be positive"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should mention %q", msg, want)
		}
	}
}

func TestSelectCompaniesEnabledOnly(t *testing.T) {
	companies := []models.CompanyConfig{
		{Name: "A", Slug: "a", Enabled: true},
		{Name: "B", Slug: "b", Enabled: false},
	}

	selected, err := SelectCompanies(companies, nil)
	if err != nil {
		t.Fatalf("SelectCompanies() error = %v", err)
	}
	if len(selected) != 1 || selected[0].Slug != "a" {
		t.Fatalf("want only enabled companies, got %+v", selected)
	}
}

func TestSelectCompaniesBySlug(t *testing.T) {
	companies := []models.CompanyConfig{
		{Name: "A", Slug: "a", Enabled: true},
		{Name: "B", Slug: "b", Enabled: false},
	}

	// Explicit slug selection includes disabled companies.
	selected, err := SelectCompanies(companies, []string{"b"})
	if err != nil {
		t.Fatalf("SelectCompanies() error = %v", err)
	}
	if len(selected) != 1 || selected[0].Slug != "b" {
		t.Fatalf("want company b, got %+v", selected)
	}
}

func TestSelectCompaniesUnknownSlug(t *testing.T) {
	companies := []models.CompanyConfig{{Name: "A", Slug: "a", Enabled: true}}

	_, err := SelectCompanies(companies, []string{"nope"})
	if err == nil {
		t.Fatal("unknown slug must fail")
	}
	if !strings.Contains(err.Error(), "unknown company slugs: nope") {
		t.Errorf("error = %v", err)
	}
}
