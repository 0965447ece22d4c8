// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagemeta reads resolution metadata embedded in image files.
package imagemeta

import (
	"fmt"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// DefaultDPI is assumed when a file carries no usable resolution metadata.
const DefaultDPI = 300.0

// DPI returns the horizontal resolution recorded in the EXIF block of the
// image at path, in dots per inch. Files without EXIF data, or without
// resolution tags, report DefaultDPI together with the lookup error so the
// caller can decide whether to log it.
func DPI(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultDPI, err
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return DefaultDPI, fmt.Errorf("no EXIF data in %s: %w", path, err)
	}

	im := exifcommon.NewIfdMapping()
	ti := exif.NewTagIndex()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return DefaultDPI, err
	}

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return DefaultDPI, fmt.Errorf("collecting EXIF tags from %s: %w", path, err)
	}

	dpi := DefaultDPI
	found := false

	if tags, err := index.RootIfd.FindTagWithName("XResolution"); err == nil && len(tags) > 0 {
		if val, err := tags[0].Value(); err == nil {
			// A zero numerator or denominator would poison page-size math
			// downstream; treat it the same as absent metadata.
			if rats, ok := val.([]exifcommon.Rational); ok && len(rats) > 0 &&
				rats[0].Numerator != 0 && rats[0].Denominator != 0 {
				dpi = float64(rats[0].Numerator) / float64(rats[0].Denominator)
				found = true
			}
		}
	}

	// ResolutionUnit 3 means dots per centimeter.
	if tags, err := index.RootIfd.FindTagWithName("ResolutionUnit"); err == nil && len(tags) > 0 {
		if val, err := tags[0].Value(); err == nil {
			if units, ok := val.([]uint16); ok && len(units) > 0 && units[0] == 3 {
				dpi *= 2.54
			}
		}
	}

	if !found {
		return DefaultDPI, fmt.Errorf("no usable resolution metadata in %s", path)
	}
	return dpi, nil
}
