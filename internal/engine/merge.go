// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"time"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/image/tiff"

	"github.com/pdiddy/imgconv/internal/imagemeta"
	"github.com/pdiddy/imgconv/pkg/types"
)

const mmPerInch = 25.4

// mergePage is one image registered for placement in the merged PDF.
type mergePage struct {
	name     string
	reader   *bytes.Reader
	widthMM  float64
	heightMM float64
}

// MergeGroup merges the ordered image jobs into a single PDF named
// output_{timestamp}.pdf in outputDir. Every job yields one result; jobs
// whose source file cannot be read or decoded fail individually while the
// rest of the group still merges. Page dimensions derive from the pixel
// size and the resolution embedded in each source file.
func (e *Engine) MergeGroup(jobs []types.ConversionJob, outputDir string) []types.ConversionResult {
	if len(jobs) == 0 {
		return nil
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "mm"})
	pdf.SetMargins(0, 0, 0)

	results := make([]types.ConversionResult, len(jobs))
	merged := make([]int, 0, len(jobs)) // indexes of jobs that contributed pages

	for i, job := range jobs {
		pages, err := e.mergePages(job, i)
		if err != nil {
			results[i] = failure(job.SourcePath, err)
			continue
		}
		for _, page := range pages {
			pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.widthMM, Ht: page.heightMM})
			pdf.RegisterImageOptionsReader(page.name,
				gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}, page.reader)
			pdf.ImageOptions(page.name, 0, 0, page.widthMM, page.heightMM, false,
				gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}, 0, "")
		}
		merged = append(merged, i)
	}

	if len(merged) == 0 {
		return results
	}

	name := "output_" + time.Now().Format("20060102_150405")
	out := uniquePath(outputDir, name, types.FormatPDF.Extension())
	if err := pdf.OutputFileAndClose(out); err != nil {
		writeErr := fmt.Errorf("writing merged PDF: %w", err)
		for _, i := range merged {
			results[i] = failure(jobs[i].SourcePath, writeErr)
		}
		return results
	}

	for _, i := range merged {
		results[i] = success(jobs[i].SourcePath, out)
	}
	return results
}

// mergePages prepares the PDF pages contributed by one source file. JPEG
// sources embed as-is; TIFF sources re-encode each page as JPEG.
func (e *Engine) mergePages(job types.ConversionJob, jobIndex int) ([]mergePage, error) {
	data, err := os.ReadFile(job.SourcePath)
	if err != nil {
		return nil, err
	}

	// Embedded resolution decides the physical page size; files without
	// metadata fall back to the default.
	dpi, _ := imagemeta.DPI(job.SourcePath)

	switch job.SourceFormat {
	case types.FormatJPG:
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding JPEG: %w", err)
		}
		return []mergePage{{
			name:     fmt.Sprintf("img_%d", jobIndex),
			reader:   bytes.NewReader(data),
			widthMM:  float64(cfg.Width) / dpi * mmPerInch,
			heightMM: float64(cfg.Height) / dpi * mmPerInch,
		}}, nil

	case types.FormatTIFF:
		offsets, err := tiffPageOffsets(data)
		if err != nil {
			return nil, err
		}
		pages := make([]mergePage, 0, len(offsets))
		for p, offset := range offsets {
			img, err := tiff.Decode(bytes.NewReader(tiffPage(data, offset)))
			if err != nil {
				return nil, fmt.Errorf("decoding page %d: %w", p+1, err)
			}
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, flattenAlpha(img), &jpeg.Options{Quality: e.jpegQuality}); err != nil {
				return nil, fmt.Errorf("re-encoding page %d: %w", p+1, err)
			}
			bounds := img.Bounds()
			pages = append(pages, mergePage{
				name:     fmt.Sprintf("img_%d_%d", jobIndex, p),
				reader:   bytes.NewReader(buf.Bytes()),
				widthMM:  float64(bounds.Dx()) / dpi * mmPerInch,
				heightMM: float64(bounds.Dy()) / dpi * mmPerInch,
			})
		}
		return pages, nil
	}
	return nil, fmt.Errorf("format %s cannot merge into PDF", job.SourceFormat)
}
