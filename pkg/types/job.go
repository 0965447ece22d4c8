// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared across imgconv stages.
package types

// Format identifies a file format the converter understands.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatJPG         Format = "jpg"
	FormatTIFF        Format = "tiff"
	FormatUnsupported Format = "unsupported"
)

// String returns the format name.
func (f Format) String() string { return string(f) }

// Extension returns the canonical file extension for the format, including
// the leading dot. Unsupported formats return an empty string.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatJPG:
		return ".jpg"
	case FormatTIFF:
		return ".tif"
	}
	return ""
}

// ConversionJob is one source-file-to-target-format request. A job is
// immutable once the batch starts.
type ConversionJob struct {
	SourcePath   string `json:"source_path" yaml:"source_path"`
	SourceFormat Format `json:"source_format" yaml:"source_format"`
	TargetFormat Format `json:"target_format" yaml:"target_format"`

	// DPI is the rasterization resolution for PDF sources. Zero means
	// "use the default"; the engine clamps it to the accepted range.
	DPI int `json:"dpi,omitempty" yaml:"dpi,omitempty"`

	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ResultStatus describes the outcome of a single conversion result.
type ResultStatus string

const (
	StatusConverted ResultStatus = "converted"
	StatusSkipped   ResultStatus = "skipped"
	StatusFailed    ResultStatus = "failed"
	StatusCancelled ResultStatus = "cancelled"
)

// ConversionResult records the outcome for one output of a job. A job
// produces at least one result: one per page for PDF splitting, one for
// the whole group for image-to-PDF merging.
type ConversionResult struct {
	SourcePath string       `json:"source_path" yaml:"source_path"`
	OutputPath string       `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Status     ResultStatus `json:"status" yaml:"status"`
	Error      string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// ProgressSnapshot is an immutable view of batch progress, passed from the
// batch worker to the presentation layer over a channel. Readers treat it
// as advisory; the worker never blocks on delivery.
type ProgressSnapshot struct {
	Total       int
	Completed   int
	CurrentFile string
	Message     string
}
