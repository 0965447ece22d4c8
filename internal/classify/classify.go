// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides the format of a source file and validates that
// it is convertible. Classification is pure: extension first, with a magic
// byte sniff when the extension is missing or unknown.
package classify

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/imgconv/pkg/types"
)

// DefaultMaxFileSizeMB caps the size of a single source file.
const DefaultMaxFileSizeMB = 500

var extFormats = map[string]types.Format{
	".pdf":  types.FormatPDF,
	".jpg":  types.FormatJPG,
	".jpeg": types.FormatJPG,
	".tif":  types.FormatTIFF,
	".tiff": types.FormatTIFF,
}

// Classify maps a file path to a Format using its extension alone. Unknown
// extensions return FormatUnsupported; Sniff can then be used as a fallback.
func Classify(path string) types.Format {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extFormats[ext]; ok {
		return f
	}
	return types.FormatUnsupported
}

var (
	magicPDF    = []byte("%PDF-")
	magicJPEG   = []byte{0xFF, 0xD8}
	magicTIFFLE = []byte("II*\x00")
	magicTIFFBE = []byte("MM\x00*")
)

// SniffHeader classifies a file by its leading bytes. Header must hold at
// least the first 5 bytes of the file; shorter inputs classify as
// unsupported.
func SniffHeader(header []byte) types.Format {
	switch {
	case bytes.HasPrefix(header, magicPDF):
		return types.FormatPDF
	case bytes.HasPrefix(header, magicJPEG):
		return types.FormatJPG
	case bytes.HasPrefix(header, magicTIFFLE), bytes.HasPrefix(header, magicTIFFBE):
		return types.FormatTIFF
	}
	return types.FormatUnsupported
}

// Detect classifies path by extension, falling back to content sniffing
// when the extension is ambiguous. It never fails: unreadable files with
// unknown extensions classify as unsupported.
func Detect(path string) types.Format {
	if f := Classify(path); f != types.FormatUnsupported {
		return f
	}
	file, err := os.Open(path)
	if err != nil {
		return types.FormatUnsupported
	}
	defer file.Close()

	header := make([]byte, 8)
	n, _ := file.Read(header)
	return SniffHeader(header[:n])
}

// Validate checks that path points at a convertible regular file. A failed
// check is a skip-with-reason for the caller, never fatal for the batch.
// maxSizeMB of zero applies the default cap.
func Validate(path string, maxSizeMB int) (types.Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.FormatUnsupported, fmt.Errorf("file not found: %s", filepath.Base(path))
	}
	if info.IsDir() {
		return types.FormatUnsupported, fmt.Errorf("path is not a file: %s", filepath.Base(path))
	}

	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxFileSizeMB
	}
	if info.Size() > int64(maxSizeMB)*1024*1024 {
		return types.FormatUnsupported, fmt.Errorf("file too large: %s (max %d MB)", filepath.Base(path), maxSizeMB)
	}

	format := Detect(path)
	if format == types.FormatUnsupported {
		return format, fmt.Errorf("unsupported file format: %s", filepath.Base(path))
	}
	return format, nil
}

// CanConvert reports whether the source-to-target pairing is one of the
// supported conversions. Same-format pairs are not conversions.
func CanConvert(source, target types.Format) bool {
	if source == target {
		return false
	}
	supported := func(f types.Format) bool {
		return f == types.FormatPDF || f == types.FormatJPG || f == types.FormatTIFF
	}
	return supported(source) && supported(target)
}
