package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repscout/pkg/models"
)

func sampleReps() []*models.SalesRep {
	jane := models.NewSalesRep("Jane", "Doe", "Mary Kay", models.SourceLocator)
	jane.Email = "jane.doe@gmail.com"
	jane.Phone = "(214) 555-0192"
	jane.City, jane.State, jane.ZipCode = "Dallas", "TX", "75201"
	jane.SetSocialLink("facebook", "https://facebook.com/janedoe")

	bob := models.NewSalesRep("Bob", "Smith", "Avon", models.SourceSearch)

	return []*models.SalesRep{jane, bob}
}

func TestManagerCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if m.GetOutputDir() != dir {
		t.Errorf("output dir = %q, want %q", m.GetOutputDir(), dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestSaveAndLoadRepsJSON(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := m.SaveRepsJSON(sampleReps())
	if err != nil {
		t.Fatalf("SaveRepsJSON() error = %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("path = %q, want a json file", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file must not survive a successful write")
	}

	loaded, err := m.LoadLatestReps()
	if err != nil {
		t.Fatalf("LoadLatestReps() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d reps, want 2", len(loaded))
	}
	if loaded[0].Email != "jane.doe@gmail.com" {
		t.Errorf("email = %q", loaded[0].Email)
	}
}

func TestLoadLatestRepsEmptyDir(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	reps, err := m.LoadLatestReps()
	if err != nil {
		t.Fatalf("LoadLatestReps() error = %v", err)
	}
	if reps != nil {
		t.Errorf("got %v, want nil for an empty directory", reps)
	}
}

func TestSaveRepsCSVColumnOrder(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := m.SaveRepsCSV(sampleReps())
	if err != nil {
		t.Fatalf("SaveRepsCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv parse error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 records", len(rows))
	}

	wantHeader := []string{
		"id", "firstName", "lastName", "email", "phone", "company",
		"city", "state", "zipCode", "profileUrl", "personalWebsite",
		"facebook", "instagram", "linkedin", "twitter",
		"scrapedAt", "source",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	jane := rows[1]
	if jane[3] != "jane.doe@gmail.com" || jane[11] != "https://facebook.com/janedoe" {
		t.Errorf("row values out of order: %v", jane)
	}
}

func TestSaveEmailsCSVSkipsEmptyEmails(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := m.SaveEmailsCSV(sampleReps())
	if err != nil {
		t.Fatalf("SaveEmailsCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 record (Bob has no email): %q", len(lines), lines)
	}
	if lines[0] != "email,name,company" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "jane.doe@gmail.com,Jane Doe,Mary Kay") {
		t.Errorf("record = %q", lines[1])
	}
}

func TestSaveReport(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	results := []*models.ScraperResult{
		{Company: "Mary Kay", Success: true, RepsFound: 2, EmailsFound: 1, DurationMs: 1500},
		{Company: "Avon", Success: false, Errors: []string{"locator fetch: boom"}},
	}

	path, err := m.SaveReport(results, sampleReps())
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)

	for _, want := range []string{
		"# Scrape Report",
		"| Mary Kay | ok | 2 | 1 |",
		"| Avon | failed |",
		"## Errors",
		"locator fetch: boom",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
