// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/imgconv/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want types.Format
	}{
		{"doc.pdf", types.FormatPDF},
		{"DOC.PDF", types.FormatPDF},
		{"scan.jpg", types.FormatJPG},
		{"scan.jpeg", types.FormatJPG},
		{"page.tif", types.FormatTIFF},
		{"page.tiff", types.FormatTIFF},
		{"note.txt", types.FormatUnsupported},
		{"archive.png", types.FormatUnsupported},
		{"noextension", types.FormatUnsupported},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSniffHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   types.Format
	}{
		{"pdf", []byte("%PDF-1.7\n"), types.FormatPDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, types.FormatJPG},
		{"tiff little endian", []byte("II*\x00\x08"), types.FormatTIFF},
		{"tiff big endian", []byte("MM\x00*\x00"), types.FormatTIFF},
		{"plain text", []byte("hello"), types.FormatUnsupported},
		{"empty", nil, types.FormatUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffHeader(tt.header); got != tt.want {
				t.Errorf("SniffHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectFallsBackToContent(t *testing.T) {
	dir := t.TempDir()

	// A PDF with no extension classifies by magic bytes.
	path := filepath.Join(dir, "mystery")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nrest of file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Detect(path); got != types.FormatPDF {
		t.Errorf("Detect(pdf content) = %q, want %q", got, types.FormatPDF)
	}

	// Garbage content with no extension stays unsupported.
	junk := filepath.Join(dir, "junk")
	if err := os.WriteFile(junk, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Detect(junk); got != types.FormatUnsupported {
		t.Errorf("Detect(junk) = %q, want %q", got, types.FormatUnsupported)
	}

	// Known extension wins without opening the file.
	if got := Detect(filepath.Join(dir, "missing.jpg")); got != types.FormatJPG {
		t.Errorf("Detect(missing.jpg) = %q, want %q", got, types.FormatJPG)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.jpg")
	if err := os.WriteFile(good, []byte{0xFF, 0xD8, 0xFF}, 0o644); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(dir, "big.jpg")
	if err := os.WriteFile(big, bytes.Repeat([]byte{0xAA}, 2*1024*1024), 0o644); err != nil {
		t.Fatal(err)
	}
	unsupported := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unsupported, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		maxSizeMB int
		want      types.Format
		errSubstr string
	}{
		{"valid jpg", good, 0, types.FormatJPG, ""},
		{"missing file", filepath.Join(dir, "gone.pdf"), 0, types.FormatUnsupported, "not found"},
		{"directory", dir, 0, types.FormatUnsupported, "not a file"},
		{"too large", big, 1, types.FormatUnsupported, "too large"},
		{"unsupported format", unsupported, 0, types.FormatUnsupported, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.path, tt.maxSizeMB)
			if got != tt.want {
				t.Errorf("format = %q, want %q", got, tt.want)
			}
			if tt.errSubstr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error = %v, want substring %q", err, tt.errSubstr)
			}
		})
	}
}

func TestCanConvert(t *testing.T) {
	tests := []struct {
		source, target types.Format
		want           bool
	}{
		{types.FormatPDF, types.FormatJPG, true},
		{types.FormatPDF, types.FormatTIFF, true},
		{types.FormatJPG, types.FormatPDF, true},
		{types.FormatJPG, types.FormatTIFF, true},
		{types.FormatTIFF, types.FormatPDF, true},
		{types.FormatTIFF, types.FormatJPG, true},
		{types.FormatPDF, types.FormatPDF, false},
		{types.FormatUnsupported, types.FormatJPG, false},
		{types.FormatJPG, types.FormatUnsupported, false},
	}
	for _, tt := range tests {
		if got := CanConvert(tt.source, tt.target); got != tt.want {
			t.Errorf("CanConvert(%s, %s) = %v, want %v", tt.source, tt.target, got, tt.want)
		}
	}
}
