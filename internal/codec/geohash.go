// Package codec implements the spatial encode/decode primitive on top of
// base32 geohashes. The root address "@" stands for the empty geohash.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/mmcloughlin/geohash"
)

// MaxGeohashPrecision is the longest geohash string the codec produces (60 bits).
const MaxGeohashPrecision = 12

const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var (
	errBadPrecision = errors.New("precision out of range")
	errBadPoint     = errors.New("point out of range")
	errBadCharacter = errors.New("invalid character")
)

// Geohash implements domain.Codec.
type Geohash struct {
	precision int
}

// NewGeohash returns a codec whose full precision is p characters.
func NewGeohash(p int) (*Geohash, error) {
	if p < 1 || p > MaxGeohashPrecision {
		return nil, fmt.Errorf("geohash precision %d: %w", p, errBadPrecision)
	}
	return &Geohash{precision: p}, nil
}

// MaxPrecision returns the full address length.
func (g *Geohash) MaxPrecision() int { return g.precision }

// Encode returns the cell containing p at the given precision. Precision 0
// yields the root.
func (g *Geohash) Encode(p domain.GeoPoint, precision int) (domain.CellAddress, error) {
	if precision < 0 || precision > g.precision {
		return "", &domain.CodecError{Err: fmt.Errorf("precision %d: %w", precision, errBadPrecision)}
	}
	if !p.Valid() {
		return "", &domain.CodecError{Err: fmt.Errorf("%v: %w", p, errBadPoint)}
	}
	if precision == 0 {
		return domain.RootAddress, nil
	}
	lat, lng := clampEdge(p.Lat, 90), clampEdge(p.Lng, 180)
	return domain.CellAddress(geohash.EncodeWithPrecision(lat, lng, uint(precision))), nil
}

// Decode returns the bounding box of a. The root covers the whole globe.
func (g *Geohash) Decode(a domain.CellAddress) (domain.CellBounds, error) {
	if a.IsRoot() {
		return domain.CellBounds{North: 90, South: -90, East: 180, West: -180}, nil
	}
	if err := g.validate(a); err != nil {
		return domain.CellBounds{}, err
	}
	box := geohash.BoundingBox(string(a))
	return domain.CellBounds{
		North: box.MaxLat,
		South: box.MinLat,
		East:  box.MaxLng,
		West:  box.MinLng,
	}, nil
}

// Parent returns the enclosing cell, or false for the root.
func (g *Geohash) Parent(a domain.CellAddress) (domain.CellAddress, bool) {
	return a.Parent()
}

func (g *Geohash) validate(a domain.CellAddress) error {
	if len(a) > g.precision {
		return &domain.CodecError{Address: a, Err: fmt.Errorf("length %d: %w", len(a), errBadPrecision)}
	}
	for _, r := range string(a) {
		if !strings.ContainsRune(alphabet, r) {
			return &domain.CodecError{Address: a, Err: fmt.Errorf("%q: %w", r, errBadCharacter)}
		}
	}
	return nil
}

// edgeMargin keeps coordinates off the upper edge of the encodable range.
// The geohash library scales each axis to a 32-bit integer and values that
// round up to 2^32 wrap to the opposite edge.
const edgeMargin = 1e-9

// clampEdge pulls a coordinate on the north pole or the 180th meridian into
// the top row or east column of cells.
func clampEdge(v, limit float64) float64 {
	if v > limit-edgeMargin {
		return limit - edgeMargin
	}
	return v
}
