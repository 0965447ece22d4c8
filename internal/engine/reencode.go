// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"

	"golang.org/x/image/tiff"

	"github.com/pdiddy/imgconv/pkg/types"
)

// jpgToTIFF re-encodes one JPEG file as a Deflate-compressed TIFF named
// {stem}.tif.
func (e *Engine) jpgToTIFF(job types.ConversionJob) []types.ConversionResult {
	f, err := os.Open(job.SourcePath)
	if err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return []types.ConversionResult{failure(job.SourcePath,
			fmt.Errorf("decoding JPEG: %w", err))}
	}

	out := uniquePath(job.OutputDir, stem(job.SourcePath), types.FormatTIFF.Extension())
	dst, err := os.Create(out)
	if err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}

	opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
	if err := tiff.Encode(dst, img, opts); err != nil {
		dst.Close()
		os.Remove(out)
		return []types.ConversionResult{failure(job.SourcePath,
			fmt.Errorf("encoding TIFF: %w", err))}
	}
	if err := dst.Close(); err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}
	return []types.ConversionResult{success(job.SourcePath, out)}
}

// tiffToJPG converts a TIFF file to JPEG. Multi-page TIFFs expand into one
// JPEG per page named {stem}_{page}.jpg; single-page files keep the base
// name.
func (e *Engine) tiffToJPG(job types.ConversionJob) []types.ConversionResult {
	data, err := os.ReadFile(job.SourcePath)
	if err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}

	offsets, err := tiffPageOffsets(data)
	if err != nil {
		return []types.ConversionResult{failure(job.SourcePath, err)}
	}

	base := stem(job.SourcePath)
	results := make([]types.ConversionResult, 0, len(offsets))
	for i, offset := range offsets {
		img, err := tiff.Decode(bytes.NewReader(tiffPage(data, offset)))
		if err != nil {
			results = append(results, failure(job.SourcePath,
				fmt.Errorf("decoding page %d: %w", i+1, err)))
			continue
		}

		name := base
		if len(offsets) > 1 {
			name = fmt.Sprintf("%s_%d", base, i+1)
		}
		out := uniquePath(job.OutputDir, name, types.FormatJPG.Extension())
		if err := writeJPEG(out, flattenAlpha(img), e.jpegQuality); err != nil {
			results = append(results, failure(job.SourcePath,
				fmt.Errorf("writing page %d: %w", i+1, err)))
			continue
		}
		results = append(results, success(job.SourcePath, out))
	}
	return results
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// flattenAlpha composites a transparent image onto a white background.
// Opaque images pass through untouched.
func flattenAlpha(img image.Image) image.Image {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}
