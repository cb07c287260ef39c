package domain

import (
	"fmt"
	"time"
)

// DisplayMarker is a single reading ready for the map.
type DisplayMarker struct {
	Hash     CellAddress `json:"hash"`
	Position GeoPoint    `json:"position"`
	// Mood is 0 when the item id was not a valid mood.
	Mood    int  `json:"mood"`
	Visible bool `json:"visible"`
}

// Known reports whether the marker carries a mood on the 1–5 scale.
func (m DisplayMarker) Known() bool { return ValidMood(m.Mood) }

// Title is the hover text for the marker.
func (m DisplayMarker) Title() string {
	if !m.Known() {
		return "Unknown mood"
	}
	return fmt.Sprintf("Mood: %d", m.Mood)
}

// DisplayArea is an aggregate cell ready for the map.
type DisplayArea struct {
	Hash    CellAddress `json:"hash"`
	Center  GeoPoint    `json:"center"`
	Mood    float64     `json:"mood"`
	Count   int         `json:"count"`
	Visible bool        `json:"visible"`
}

// Title is the hover text for the area.
func (a DisplayArea) Title() string {
	return fmt.Sprintf("Area with %d mood(s)", a.Count)
}

// Snapshot is the result of one refresh cycle. It is immutable once published.
type Snapshot struct {
	Generation uint64          `json:"generation"`
	Viewport   Viewport        `json:"viewport"`
	Markers    []DisplayMarker `json:"markers"`
	Areas      []DisplayArea   `json:"areas"`
	// Score is the weighted mean mood over visible markers and areas; 0 when
	// nothing is visible.
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
