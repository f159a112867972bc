package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"repscout/pkg/models"
)

// Manager owns the output directory and writes every export format. Writes
// go to a temporary file first and are renamed into place so a crashed run
// never leaves a truncated export behind.
type Manager struct {
	outputDir string
	mu        sync.Mutex
}

// NewManager creates the output directory and returns a manager for it.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// GetOutputDir returns the output directory path.
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// timestamp names export files by run time so successive runs never
// clobber each other.
func timestamp() string {
	return time.Now().Format("2006-01-02_150405")
}

// writeAtomic writes data to path via a temp file and rename.
func (m *Manager) writeAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// SaveRepsJSON writes the merged representative records as a JSON array.
func (m *Manager) SaveRepsJSON(reps []*models.SalesRep) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := filepath.Join(m.outputDir, fmt.Sprintf("reps_%s.json", timestamp()))
	data, err := json.MarshalIndent(reps, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode reps: %w", err)
	}
	if err := m.writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// SaveResultsJSON writes the per-company run outcomes.
func (m *Manager) SaveResultsJSON(results []*models.ScraperResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := filepath.Join(m.outputDir, fmt.Sprintf("results_%s.json", timestamp()))
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	if err := m.writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LoadLatestReps reads the most recent reps export back, for the API
// server and for resuming analysis.
func (m *Manager) LoadLatestReps() ([]*models.SalesRep, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && len(name) > 5 && name[:5] == "reps_" && filepath.Ext(name) == ".json" {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Strings(candidates)

	data, err := os.ReadFile(filepath.Join(m.outputDir, candidates[len(candidates)-1]))
	if err != nil {
		return nil, fmt.Errorf("failed to read reps export: %w", err)
	}

	var reps []*models.SalesRep
	if err := json.Unmarshal(data, &reps); err != nil {
		return nil, fmt.Errorf("failed to decode reps export: %w", err)
	}
	return reps, nil
}
