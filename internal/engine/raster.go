// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/imgconv/pkg/types"
)

// rasterize renders each page of a PDF into the target image format at the
// clamped DPI. pdftoppm writes page files under its own numbering scheme
// into a scratch directory; they are then moved to the output directory as
// {stem}_{page}.{ext}.
func (e *Engine) rasterize(job types.ConversionJob) []types.ConversionResult {
	if e.rasterizer == nil {
		return []types.ConversionResult{failure(job.SourcePath,
			fmt.Errorf("pdftoppm is not available on PATH"))}
	}

	ext := job.TargetFormat.Extension()
	dpi := ClampDPI(job.DPI)

	scratch, err := os.MkdirTemp("", "imgconv-raster-")
	if err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}
	defer os.RemoveAll(scratch)

	prefix := filepath.Join(scratch, "page")
	if err := e.rasterizer.Rasterize(job.SourcePath, prefix, job.TargetFormat, dpi); err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	pages, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil || len(pages) == 0 {
		return []types.ConversionResult{failure(job.SourcePath,
			fmt.Errorf("rasterization produced no pages for %s", filepath.Base(job.SourcePath)))}
	}
	sort.Strings(pages)

	base := stem(job.SourcePath)
	results := make([]types.ConversionResult, 0, len(pages))
	for i, page := range pages {
		out := uniquePath(job.OutputDir, fmt.Sprintf("%s_%d", base, i+1), ext)
		if err := moveFile(page, out); err != nil {
			results = append(results, failure(job.SourcePath,
				fmt.Errorf("writing page %d: %w", i+1, err)))
			continue
		}
		results = append(results, success(job.SourcePath, out))
	}
	return results
}
