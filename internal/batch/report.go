// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/imgconv/pkg/types"
)

// Report is the on-disk record of one batch run: the request parameters,
// per-file outcomes, and counts. The user can keep it next to the outputs
// as a conversion receipt.
type Report struct {
	Request ReportRequest            `yaml:"request"`
	Results []types.ConversionResult `yaml:"results"`
	Summary ReportSummary            `yaml:"summary"`
}

// ReportRequest stores the parameters the batch ran with.
type ReportRequest struct {
	TargetFormat types.Format `yaml:"target_format"`
	DPI          int          `yaml:"dpi,omitempty"`
	OutputDir    string       `yaml:"output_dir"`
}

// ReportSummary stores result counts and a timestamp.
type ReportSummary struct {
	Converted int       `yaml:"converted"`
	Skipped   int       `yaml:"skipped"`
	Failed    int       `yaml:"failed"`
	Cancelled int       `yaml:"cancelled"`
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteReport saves the batch outcome to a YAML file.
func WriteReport(path string, target types.Format, dpi int, outputDir string, summary Summary) error {
	report := Report{
		Request: ReportRequest{
			TargetFormat: target,
			DPI:          dpi,
			OutputDir:    outputDir,
		},
		Results: summary.Results,
		Summary: ReportSummary{
			Converted: summary.Converted,
			Skipped:   summary.Skipped,
			Failed:    summary.Failed,
			Cancelled: summary.Cancelled,
			Total:     summary.Total(),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshalling batch report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing batch report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a batch report from a YAML file.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch report %s: %w", path, err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing batch report %s: %w", path, err)
	}
	return &report, nil
}
