// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine dispatches conversion jobs to one of the six supported
// format pairings. Each pairing delegates the actual pixel work to an
// external tool or library; the engine's job is path construction,
// sequencing, and per-file result reporting.
package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/imgconv/internal/poppler"
	"github.com/pdiddy/imgconv/pkg/types"
)

const defaultJPEGQuality = 95

// Engine converts single files and merges image groups into PDFs.
type Engine struct {
	rasterizer  poppler.Rasterizer
	jpegQuality int
}

// New creates an Engine. rasterizer may be nil when no PDF sources will be
// converted; PDF jobs then fail with a tool-missing error.
func New(rasterizer poppler.Rasterizer, cfg types.ConvertConfig) *Engine {
	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}
	return &Engine{
		rasterizer:  rasterizer,
		jpegQuality: quality,
	}
}

// NeedsRasterizer reports whether any job in the batch requires the
// external PDF rasterization tool.
func NeedsRasterizer(jobs []types.ConversionJob) bool {
	for _, j := range jobs {
		if j.SourceFormat == types.FormatPDF {
			return true
		}
	}
	return false
}

// CheckRasterizer verifies the external tool is present when jobs demand
// it. A missing tool is fatal for the whole batch.
func (e *Engine) CheckRasterizer(jobs []types.ConversionJob) error {
	if !NeedsRasterizer(jobs) {
		return nil
	}
	if e.rasterizer == nil || !e.rasterizer.Available() {
		return fmt.Errorf("PDF sources present but pdftoppm is not available on PATH")
	}
	return nil
}

// ConvertFile executes a single-file job and returns its results: one per
// output page for splitting conversions, exactly one otherwise. A failure
// is recorded in the result, not returned, so the batch can continue.
func (e *Engine) ConvertFile(job types.ConversionJob) []types.ConversionResult {
	switch {
	case job.SourceFormat == types.FormatPDF && job.TargetFormat == types.FormatJPG,
		job.SourceFormat == types.FormatPDF && job.TargetFormat == types.FormatTIFF:
		return e.rasterize(job)
	case job.SourceFormat == types.FormatJPG && job.TargetFormat == types.FormatTIFF:
		return e.jpgToTIFF(job)
	case job.SourceFormat == types.FormatTIFF && job.TargetFormat == types.FormatJPG:
		return e.tiffToJPG(job)
	}
	return []types.ConversionResult{failure(job.SourcePath,
		fmt.Errorf("unsupported conversion: %s to %s", job.SourceFormat, job.TargetFormat))}
}

// stem returns the base filename without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// uniquePath returns dir/name+ext, appending a numeric suffix when the
// file already exists so outputs never overwrite each other.
func uniquePath(dir, name, ext string) string {
	p := filepath.Join(dir, name+ext)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}
	for counter := 1; ; counter++ {
		p = filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, counter, ext))
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}

func failure(sourcePath string, err error) types.ConversionResult {
	return types.ConversionResult{
		SourcePath: sourcePath,
		Status:     types.StatusFailed,
		Error:      err.Error(),
	}
}

func success(sourcePath, outputPath string) types.ConversionResult {
	return types.ConversionResult{
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Status:     types.StatusConverted,
	}
}

// moveFile renames src to dst, copying when the rename crosses
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
