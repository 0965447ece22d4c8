// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConvertConfig holds settings for the conversion stage.
type ConvertConfig struct {
	// OutputDir is the directory converted files are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DPI is the requested rasterization resolution for PDF sources.
	// Values outside the accepted range are clamped, never rejected.
	DPI int `json:"dpi" yaml:"dpi"`

	// JPEGQuality is the encoder quality for JPG outputs (default 95).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality"`

	// MaxFileSizeMB caps the size of a single source file (default 500).
	MaxFileSizeMB int `json:"max_file_size_mb" yaml:"max_file_size_mb"`
}

// ServerConfig holds settings for the HTTP backend.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// UploadDir is the base directory for uploaded source files.
	UploadDir string `json:"upload_dir" yaml:"upload_dir"`

	// OutputDir is the base directory for converted outputs.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxUploadMB caps the total size of one upload request (default 500).
	MaxUploadMB int `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// HistoryConfig holds settings for the batch history store.
type HistoryConfig struct {
	// Dir is the directory containing the history database.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed batches (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	History HistoryConfig `json:"history" yaml:"history"`
}
