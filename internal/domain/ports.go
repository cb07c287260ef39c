package domain

import (
	"context"
	"time"
)

// Codec is the spatial encode/decode primitive of the backing index.
type Codec interface {
	// Encode returns the address of p truncated to precision characters.
	Encode(p GeoPoint, precision int) (CellAddress, error)
	// Decode returns the bounding box of a cell.
	Decode(a CellAddress) (CellBounds, error)
	// Parent returns the enclosing cell, or false for the root.
	Parent(a CellAddress) (CellAddress, bool)
	// MaxPrecision is the full address length P.
	MaxPrecision() int
}

// Fetcher reads the contents stored exactly at one cell. An empty result means
// nothing is stored there.
type Fetcher interface {
	Fetch(ctx context.Context, collection string, address CellAddress) ([]RawElement, error)
}

// Submission is one reading written to one collection of the index.
type Submission struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	// Parent is the address the item is inserted under; the root by default.
	Parent  CellAddress `json:"parent"`
	Address CellAddress `json:"hash"`
	Point   GeoPoint    `json:"point"`
	Metrics []float64   `json:"metrics"`
	Payload string      `json:"payload"`
}

// IndexWriter stores submissions in the backing index.
type IndexWriter interface {
	Submit(ctx context.Context, s Submission) error
}

// Reading is a user's mood at a location, before jitter.
type Reading struct {
	Mood     int      `json:"mood"`
	Location GeoPoint `json:"location"`
}

// Valid reports whether the reading can be submitted.
func (r Reading) Valid() bool {
	return ValidMood(r.Mood) && r.Location.Valid()
}

// DayRecord is what the daily cache stores after a successful submission.
type DayRecord struct {
	Date        string        `json:"date"`
	Mood        int           `json:"mood"`
	Location    GeoPoint      `json:"location"`
	Addresses   []CellAddress `json:"addresses"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// DayCache remembers that a reading was submitted for a calendar day.
// Get returns (nil, nil) when nothing is stored under key.
type DayCache interface {
	Get(ctx context.Context, key string) (*DayRecord, error)
	Set(ctx context.Context, key string, rec DayRecord) error
}
