// Package planner turns a viewport into the smallest set of cell addresses that
// covers it without aggregating across a seam.
//
// The four viewport corners are encoded at full precision and then truncated
// one character at a time, starting at the root. A truncation level is kept as
// long as the distinct cells it yields still form one contiguous block: two
// cells must share an edge, four cells must meet at a common corner. The first
// level that breaks this rule ends the search and the previous level wins.
package planner

import (
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/moodmap/internal/domain"
)

// edgeTolerance absorbs float noise when comparing cell edges, in degrees.
const edgeTolerance = 1e-9

// Planner computes covering address sets.
type Planner struct {
	codec domain.Codec
}

// New creates a Planner over the given codec.
func New(codec domain.Codec) *Planner {
	return &Planner{codec: codec}
}

// Plan returns the covering set for vp, sorted. It never returns an empty set:
// the root alone always qualifies.
func (p *Planner) Plan(vp domain.Viewport) ([]domain.CellAddress, error) {
	if !vp.Valid() {
		return nil, fmt.Errorf("plan %+v: %w", vp, domain.ErrInvalidViewport)
	}

	precision := p.codec.MaxPrecision()
	corners := vp.Corners()

	var full [4]domain.CellAddress
	for i, c := range corners {
		addr, err := p.codec.Encode(c, precision)
		if err != nil {
			return nil, fmt.Errorf("encode corner %d: %w", i, err)
		}
		full[i] = addr
	}

	selected := []domain.CellAddress{domain.RootAddress}
	for n := 0; n <= precision; n++ {
		var level [4]domain.CellAddress
		var bounds [4]domain.CellBounds
		for i, addr := range full {
			level[i] = addr.Truncate(n)
			b, err := p.codec.Decode(level[i])
			if err != nil {
				return nil, fmt.Errorf("decode level %d: %w", n, err)
			}
			bounds[i] = b
		}

		distinct := dedupe(level[:])
		if !contiguous(len(distinct), bounds) {
			break
		}
		selected = distinct
	}

	return selected, nil
}

// contiguous checks the cells of one truncation level, bounds in corner order
// SW, SE, NW, NE.
func contiguous(distinct int, b [4]domain.CellBounds) bool {
	sw, se, nw, ne := b[0], b[1], b[2], b[3]
	switch distinct {
	case 2:
		return lngEdgeEqual(sw.East, se.West) || latEdgeEqual(sw.North, nw.South)
	case 4:
		return latEdgeEqual(sw.North, ne.South) && lngEdgeEqual(sw.East, ne.West)
	default:
		return true
	}
}

func latEdgeEqual(a, b float64) bool {
	return math.Abs(a-b) <= edgeTolerance
}

// lngEdgeEqual treats 180 and -180 as the same meridian.
func lngEdgeEqual(a, b float64) bool {
	d := math.Abs(a - b)
	return d <= edgeTolerance || math.Abs(d-360) <= edgeTolerance
}

func dedupe(addrs []domain.CellAddress) []domain.CellAddress {
	out := slices.Clone(addrs)
	slices.Sort(out)
	return slices.Compact(out)
}
