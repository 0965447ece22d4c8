// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagemeta

import (
	"encoding/binary"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// resolutionTIFF builds a little-endian TIFF whose directory carries a
// single XResolution rational.
func resolutionTIFF(t *testing.T, numerator, denominator uint32) string {
	t.Helper()
	le := binary.LittleEndian
	buf := make([]byte, 8+18+8)
	copy(buf, "II*\x00")
	le.PutUint32(buf[4:8], 8)

	le.PutUint16(buf[8:], 1)    // entry count
	le.PutUint16(buf[10:], 282) // XResolution
	le.PutUint16(buf[12:], 5)   // RATIONAL
	le.PutUint32(buf[14:], 1)   // value count
	le.PutUint32(buf[18:], 26)  // value offset
	le.PutUint32(buf[26:], numerator)
	le.PutUint32(buf[30:], denominator)

	path := filepath.Join(t.TempDir(), "res.tif")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDPIFromMetadata(t *testing.T) {
	dpi, err := DPI(resolutionTIFF(t, 600, 1))
	if err != nil {
		t.Fatalf("DPI: %v", err)
	}
	if dpi != 600 {
		t.Errorf("dpi = %v, want 600", dpi)
	}
}

func TestDPIZeroResolution(t *testing.T) {
	// A recorded resolution of 0/1 must never reach callers: page size
	// math would divide by it.
	dpi, err := DPI(resolutionTIFF(t, 0, 1))
	if err == nil {
		t.Error("expected error for zero resolution")
	}
	if dpi != DefaultDPI {
		t.Errorf("dpi = %v, want default %v", dpi, DefaultDPI)
	}
}

func TestDPIZeroDenominator(t *testing.T) {
	dpi, err := DPI(resolutionTIFF(t, 300, 0))
	if err == nil {
		t.Error("expected error for malformed rational")
	}
	if dpi != DefaultDPI {
		t.Errorf("dpi = %v, want default %v", dpi, DefaultDPI)
	}
}

func TestDPIMissingFile(t *testing.T) {
	dpi, err := DPI(filepath.Join(t.TempDir(), "gone.jpg"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if dpi != DefaultDPI {
		t.Errorf("dpi = %v, want default %v", dpi, DefaultDPI)
	}
}

func TestDPINoMetadata(t *testing.T) {
	// A bare JPEG carries no EXIF block at all.
	path := filepath.Join(t.TempDir(), "plain.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	dpi, err := DPI(path)
	if err == nil {
		t.Error("expected error for file without resolution metadata")
	}
	if dpi != DefaultDPI {
		t.Errorf("dpi = %v, want default %v", dpi, DefaultDPI)
	}
}
