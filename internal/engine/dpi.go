// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

// Accepted rasterization resolution range. Out-of-range requests are
// silently corrected to the nearest boundary, never rejected.
const (
	MinDPI     = 300
	MaxDPI     = 600
	DefaultDPI = 300
)

// ClampDPI returns dpi limited to [MinDPI, MaxDPI]. Zero and negative
// values fall to MinDPI. It always returns a usable value.
func ClampDPI(dpi int) int {
	if dpi < MinDPI {
		return MinDPI
	}
	if dpi > MaxDPI {
		return MaxDPI
	}
	return dpi
}
