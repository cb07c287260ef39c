package domain

import (
	"strconv"
	"strings"
)

const (
	MinMood = 1
	MaxMood = 5
)

// UnknownGlyph marks a reading whose mood is outside the 1–5 scale.
const UnknownGlyph = "❓"

var moodGlyphs = map[int]string{
	1: "😞",
	2: "😕",
	3: "😐",
	4: "🙂",
	5: "😁",
}

// ValidMood reports whether m is on the 1–5 scale.
func ValidMood(m int) bool {
	return m >= MinMood && m <= MaxMood
}

// MoodGlyph returns the emoji for m, or UnknownGlyph.
func MoodGlyph(m int) string {
	if g, ok := moodGlyphs[m]; ok {
		return g
	}
	return UnknownGlyph
}

// ParseMood reads an item id as a mood. The second result is false when the
// id is not an integer on the 1–5 scale.
func ParseMood(id string) (int, bool) {
	m, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0, false
	}
	return m, ValidMood(m)
}
