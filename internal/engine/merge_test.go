// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/imgconv/pkg/types"
)

func TestMergeGroup(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	writeTestJPEG(t, a, 20, 30)
	writeTestJPEG(t, b, 20, 30)

	jobs := []types.ConversionJob{
		{SourcePath: a, SourceFormat: types.FormatJPG, TargetFormat: types.FormatPDF, OutputDir: dir},
		{SourcePath: b, SourceFormat: types.FormatJPG, TargetFormat: types.FormatPDF, OutputDir: dir},
	}
	results := newTestEngine().MergeGroup(jobs, dir)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Status != types.StatusConverted {
			t.Fatalf("job %d: status = %s, error = %s", i, r.Status, r.Error)
		}
	}
	if results[0].OutputPath != results[1].OutputPath {
		t.Errorf("merged jobs should share one output, got %s and %s",
			results[0].OutputPath, results[1].OutputPath)
	}

	name := filepath.Base(results[0].OutputPath)
	if !strings.HasPrefix(name, "output_") || !strings.HasSuffix(name, ".pdf") {
		t.Errorf("output name = %s, want output_{timestamp}.pdf", name)
	}
	data, err := os.ReadFile(results[0].OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Error("merged output is not a PDF")
	}
}

func TestMergeGroupTIFFPages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pages.tif")
	if err := os.WriteFile(src, multipageTIFF(2), 0o644); err != nil {
		t.Fatal(err)
	}

	jobs := []types.ConversionJob{
		{SourcePath: src, SourceFormat: types.FormatTIFF, TargetFormat: types.FormatPDF, OutputDir: dir},
	}
	results := newTestEngine().MergeGroup(jobs, dir)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Status != types.StatusConverted {
		t.Fatalf("status = %s, error = %s", results[0].Status, results[0].Error)
	}
	if _, err := os.Stat(results[0].OutputPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestMergeGroupPartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jpg")
	writeTestJPEG(t, good, 10, 10)
	bad := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	jobs := []types.ConversionJob{
		{SourcePath: good, SourceFormat: types.FormatJPG, TargetFormat: types.FormatPDF, OutputDir: dir},
		{SourcePath: bad, SourceFormat: types.FormatJPG, TargetFormat: types.FormatPDF, OutputDir: dir},
	}
	results := newTestEngine().MergeGroup(jobs, dir)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Status != types.StatusConverted {
		t.Errorf("good job: status = %s, error = %s", results[0].Status, results[0].Error)
	}
	if results[1].Status != types.StatusFailed {
		t.Errorf("bad job: status = %s, want failed", results[1].Status)
	}
	if _, err := os.Stat(results[0].OutputPath); err != nil {
		t.Errorf("output missing despite surviving jobs: %v", err)
	}
}

func TestMergeGroupEmpty(t *testing.T) {
	if results := newTestEngine().MergeGroup(nil, t.TempDir()); results != nil {
		t.Errorf("empty group should yield no results, got %+v", results)
	}
}
