package visual

import (
	"fmt"
	"math"
	"net/url"

	"github.com/couchcryptid/moodmap/internal/domain"
)

const (
	markerIconSize = 40
	bannerAlpha    = 0.75
)

// Icon is an SVG data URL with its square pixel size.
type Icon struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// Marker is the shape handed to the map provider for one marker or area.
type Marker struct {
	Hash     domain.CellAddress `json:"hash"`
	Position domain.GeoPoint    `json:"position"`
	Icon     Icon               `json:"icon"`
	Visible  bool               `json:"visible"`
	Title    string             `json:"title"`
}

// Banner colors the aggregate score readout.
type Banner struct {
	Score      float64 `json:"score"`
	Glyph      string  `json:"glyph"`
	Background string  `json:"background"`
	Text       string  `json:"text"`
}

// View is a snapshot rendered for display.
type View struct {
	Generation uint64   `json:"generation"`
	Markers    []Marker `json:"markers"`
	Areas      []Marker `json:"areas"`
	Banner     Banner   `json:"banner"`
}

// Render encodes every marker and area of s, plus the score banner.
func Render(s domain.Snapshot) View {
	v := View{
		Generation: s.Generation,
		Markers:    make([]Marker, 0, len(s.Markers)),
		Areas:      make([]Marker, 0, len(s.Areas)),
		Banner:     ScoreBanner(s.Score),
	}
	for _, m := range s.Markers {
		v.Markers = append(v.Markers, Marker{
			Hash:     m.Hash,
			Position: m.Position,
			Icon:     MarkerIcon(m.Mood),
			Visible:  m.Visible,
			Title:    m.Title(),
		})
	}
	for _, a := range s.Areas {
		v.Areas = append(v.Areas, Marker{
			Hash:     a.Hash,
			Position: a.Center,
			Icon:     AreaIcon(a.Mood, a.Count),
			Visible:  a.Visible,
			Title:    a.Title(),
		})
	}
	return v
}

// ScoreBanner colors the score at 75% opacity with a legible text color.
func ScoreBanner(score float64) Banner {
	bg := ColorOf(score)
	return Banner{
		Score:      score,
		Glyph:      domain.MoodGlyph(int(math.Floor(score + 0.5))),
		Background: bg.RGBA(bannerAlpha),
		Text:       TextColor(bg),
	}
}

// MarkerIcon draws the mood glyph; unknown moods get the question mark.
func MarkerIcon(mood int) Icon {
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[1]d" viewBox="0 0 %[1]d %[1]d">`+
			`<text x="50%%" y="50%%" dominant-baseline="central" text-anchor="middle" font-size="%[2]d">%[3]s</text></svg>`,
		markerIconSize, markerIconSize*3/4, domain.MoodGlyph(mood))
	return Icon{URL: dataURL(svg), Size: markerIconSize}
}

// AreaIcon draws a circle filled with the mood color and labelled with the
// reading count.
func AreaIcon(mood float64, count int) Icon {
	size := SizeOf(count)
	fill := ColorOf(mood)
	half := float64(size) / 2
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[1]d" viewBox="0 0 %[1]d %[1]d">`+
			`<circle cx="%[2]g" cy="%[2]g" r="%[3]g" fill="%[4]s" stroke="white" stroke-width="3"/>`+
			`<text x="50%%" y="50%%" dominant-baseline="central" text-anchor="middle" fill="%[5]s" font-size="%[6]g">%[7]d</text></svg>`,
		size, half, float64(size)/4, fill.Hex(), TextColor(fill), float64(size)/6, count)
	return Icon{URL: dataURL(svg), Size: size}
}

func dataURL(svg string) string {
	return "data:image/svg+xml;charset=UTF-8," + url.PathEscape(svg)
}
