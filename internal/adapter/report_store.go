package adapter

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "ilcheck/internal/model"
)

// ReportFileName is the file written into the report directory.
const ReportFileName = "ilcheck-report.yaml"

// ReportStore persists run reports.
type ReportStore interface {
	Save(dir m.Path, report m.RunReport) error
}

// YAMLReportStore writes run reports as YAML files.
type YAMLReportStore struct{}

// NewYAMLReportStore constructs a YAMLReportStore.
func NewYAMLReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// Save writes the report into dir, creating the directory if needed.
func (s *YAMLReportStore) Save(dir m.Path, report m.RunReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(string(dir), ReportFileName), data, 0o644)
}
