// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/imgconv/pkg/types"
)

// fakeRasterizer writes empty page files the way pdftoppm would, with
// zero-padded page numbers.
type fakeRasterizer struct {
	pages  int
	err    error
	gotDPI int
}

func (f *fakeRasterizer) Name() string    { return "fake" }
func (f *fakeRasterizer) Available() bool { return true }

func (f *fakeRasterizer) Rasterize(pdfPath, outPrefix string, format types.Format, dpi int) error {
	f.gotDPI = dpi
	if f.err != nil {
		return f.err
	}
	for i := 1; i <= f.pages; i++ {
		name := fmt.Sprintf("%s-%02d%s", outPrefix, i, format.Extension())
		if err := os.WriteFile(name, []byte("page"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func TestRasterizeMultiPage(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRasterizer{pages: 3}
	eng := New(fake, types.ConvertConfig{})

	results := eng.ConvertFile(types.ConversionJob{
		SourcePath:   filepath.Join(dir, "report.pdf"),
		SourceFormat: types.FormatPDF,
		TargetFormat: types.FormatJPG,
		DPI:          400,
		OutputDir:    dir,
	})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if fake.gotDPI != 400 {
		t.Errorf("rasterized at %d DPI, want 400", fake.gotDPI)
	}
	for i, r := range results {
		if r.Status != types.StatusConverted {
			t.Fatalf("page %d: status = %s, error = %s", i+1, r.Status, r.Error)
		}
		want := filepath.Join(dir, fmt.Sprintf("report_%d.jpg", i+1))
		if r.OutputPath != want {
			t.Errorf("page %d output = %s, want %s", i+1, r.OutputPath, want)
		}
		if _, err := os.Stat(r.OutputPath); err != nil {
			t.Errorf("page %d output missing: %v", i+1, err)
		}
	}
}

func TestRasterizeClampsDPI(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRasterizer{pages: 1}
	eng := New(fake, types.ConvertConfig{})

	eng.ConvertFile(types.ConversionJob{
		SourcePath:   filepath.Join(dir, "doc.pdf"),
		SourceFormat: types.FormatPDF,
		TargetFormat: types.FormatTIFF,
		DPI:          72,
		OutputDir:    dir,
	})
	if fake.gotDPI != MinDPI {
		t.Errorf("rasterized at %d DPI, want clamped %d", fake.gotDPI, MinDPI)
	}
}

func TestRasterizeToolFailure(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRasterizer{err: fmt.Errorf("exit status 1")}
	eng := New(fake, types.ConvertConfig{})

	results := eng.ConvertFile(types.ConversionJob{
		SourcePath:   filepath.Join(dir, "doc.pdf"),
		SourceFormat: types.FormatPDF,
		TargetFormat: types.FormatJPG,
		OutputDir:    dir,
	})
	if len(results) != 1 || results[0].Status != types.StatusFailed {
		t.Fatalf("expected single failed result, got %+v", results)
	}
}

func TestRasterizeNoRasterizer(t *testing.T) {
	eng := New(nil, types.ConvertConfig{})
	results := eng.ConvertFile(types.ConversionJob{
		SourcePath:   "doc.pdf",
		SourceFormat: types.FormatPDF,
		TargetFormat: types.FormatJPG,
	})
	if len(results) != 1 || results[0].Status != types.StatusFailed {
		t.Fatalf("expected single failed result, got %+v", results)
	}
	if !strings.Contains(results[0].Error, "not available") {
		t.Errorf("error = %q", results[0].Error)
	}
}

func TestCheckRasterizer(t *testing.T) {
	pdfJob := types.ConversionJob{SourceFormat: types.FormatPDF, TargetFormat: types.FormatJPG}
	jpgJob := types.ConversionJob{SourceFormat: types.FormatJPG, TargetFormat: types.FormatTIFF}

	if err := New(nil, types.ConvertConfig{}).CheckRasterizer([]types.ConversionJob{jpgJob}); err != nil {
		t.Errorf("no PDF sources should not require the tool: %v", err)
	}
	if err := New(nil, types.ConvertConfig{}).CheckRasterizer([]types.ConversionJob{pdfJob}); err == nil {
		t.Error("PDF source without a rasterizer should be fatal")
	}
	if err := New(&fakeRasterizer{}, types.ConvertConfig{}).CheckRasterizer([]types.ConversionJob{pdfJob}); err != nil {
		t.Errorf("available rasterizer should pass: %v", err)
	}
}
