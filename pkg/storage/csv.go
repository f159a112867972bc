package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"

	"repscout/pkg/models"
)

// csvHeader fixes the column order of the main export. Downstream sheets
// depend on this order staying stable.
var csvHeader = []string{
	"id", "firstName", "lastName", "email", "phone", "company",
	"city", "state", "zipCode", "profileUrl", "personalWebsite",
	"facebook", "instagram", "linkedin", "twitter",
	"scrapedAt", "source",
}

// SaveRepsCSV writes the full representative export as CSV.
func (m *Manager) SaveRepsCSV(reps []*models.SalesRep) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rep := range reps {
		row := []string{
			rep.ID, rep.FirstName, rep.LastName, rep.Email, rep.Phone, rep.Company,
			rep.City, rep.State, rep.ZipCode, rep.ProfileURL, rep.PersonalWebsite,
		}
		for _, platform := range models.SocialPlatforms {
			row = append(row, rep.SocialLinks[platform])
		}
		row = append(row, rep.ScrapedAt, rep.Source)
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	path := filepath.Join(m.outputDir, fmt.Sprintf("reps_%s.csv", timestamp()))
	if err := m.writeAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// SaveEmailsCSV writes a compact email-only export for outreach tools.
// Records without an email are skipped.
func (m *Manager) SaveEmailsCSV(reps []*models.SalesRep) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"email", "name", "company"}); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rep := range reps {
		if rep.Email == "" {
			continue
		}
		if err := w.Write([]string{rep.Email, rep.FullName(), rep.Company}); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	path := filepath.Join(m.outputDir, fmt.Sprintf("emails_%s.csv", timestamp()))
	if err := m.writeAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}
