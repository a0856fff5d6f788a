package adapter

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// ReportStore persists per-package scan reports and the batch summary.
type ReportStore interface {
	// SaveReport writes one package's report bytes, overwriting any
	// previous run's artifact for the same package.
	SaveReport(path m.Path, data []byte) error

	// SaveSummary writes the batch summary as YAML.
	SaveSummary(path m.Path, summary m.Summary) error
}

// LocalReportStore writes artifacts straight to disk.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveReport writes one package's report, creating the reports directory
// if this is the first artifact of the run.
func (s *LocalReportStore) SaveReport(path m.Path, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), data, 0o644) // #nosec G306 - reports are shared artifacts
}

// SaveSummary writes the batch summary as YAML.
func (s *LocalReportStore) SaveSummary(path m.Path, summary m.Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}

	return s.SaveReport(path, data)
}
