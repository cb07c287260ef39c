// Package visual derives the map's visual encodings: mood colors, area marker
// sizes, legible text colors, and the rendered marker shapes handed to the map
// provider.
package visual

import (
	"fmt"
	"math"
)

// RGB is an 8-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBA formats the color as a CSS rgba() string.
func (c RGB) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

type colorStop struct {
	percentage float64
	color      RGB
}

// moodGradient runs from night blue (mood 1) through rust to sky blue (mood 5).
var moodGradient = []colorStop{
	{percentage: 0, color: RGB{R: 2, G: 0, B: 36}},
	{percentage: 35, color: RGB{R: 121, G: 22, B: 9}},
	{percentage: 100, color: RGB{R: 0, G: 212, B: 255}},
}

// ColorOf maps a mood to the gradient. Moods are clamped to [1, 5]; NaN maps
// to the mood-1 color.
func ColorOf(mood float64) RGB {
	if math.IsNaN(mood) {
		mood = 1
	}
	mood = math.Max(1, math.Min(mood, 5))
	return gradientAt((mood - 1) / 4 * 100)
}

// gradientAt interpolates the gradient at a percentage, clamping to the end
// colors outside [0, 100].
func gradientAt(pct float64) RGB {
	first, last := moodGradient[0], moodGradient[len(moodGradient)-1]
	if pct <= first.percentage {
		return first.color
	}
	if pct >= last.percentage {
		return last.color
	}

	for i := 1; i < len(moodGradient); i++ {
		lower, upper := moodGradient[i-1], moodGradient[i]
		if pct > upper.percentage {
			continue
		}
		f := (pct - lower.percentage) / (upper.percentage - lower.percentage)
		return RGB{
			R: lerp(lower.color.R, upper.color.R, f),
			G: lerp(lower.color.G, upper.color.G, f),
			B: lerp(lower.color.B, upper.color.B, f),
		}
	}
	return last.color
}

// lerp interpolates one channel, rounding halves up.
func lerp(a, b uint8, f float64) uint8 {
	v := float64(a) + f*(float64(b)-float64(a))
	return uint8(math.Floor(v + 0.5))
}

const (
	MinMarkerSize = 40
	MaxMarkerSize = 80
)

// SizeOf maps an area's reading count to a marker size in pixels: 40 plus 5
// per reading, capped at 80. Negative counts size like zero.
func SizeOf(count int) int {
	return min(MaxMarkerSize, MinMarkerSize+max(count, 0)*5)
}

// Luma is the perceived brightness of c on a 0–255 scale.
func Luma(c RGB) float64 {
	return (299*float64(c.R) + 587*float64(c.G) + 114*float64(c.B)) / 1000
}

// TextColor picks black or white text for legibility on bg.
func TextColor(bg RGB) string {
	if Luma(bg) > 125 {
		return "#000"
	}
	return "#fff"
}
