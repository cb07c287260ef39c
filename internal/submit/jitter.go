package submit

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/couchcryptid/moodmap/internal/domain"
)

// EarthRadius is the WGS-84 equatorial radius in meters.
const EarthRadius = 6378137.0

// Jitter moves p to a uniformly random point within radius meters along the
// sphere. The result is always a valid coordinate with longitude in
// [-180, 180).
func Jitter(p domain.GeoPoint, radius float64, rng *rand.Rand) domain.GeoPoint {
	if radius <= 0 {
		return p
	}
	d := radius * math.Sqrt(rng.Float64())
	bearing := s1.Angle(rng.Float64() * 2 * math.Pi)
	return Destination(p, d, bearing)
}

// Destination is the point meters away from p along the great circle leaving
// p at bearing, measured clockwise from north. For short distances this is
// d/R radians of latitude northward and d/(R·cos φ) of longitude eastward;
// unlike that approximation it stays finite through the poles.
func Destination(p domain.GeoPoint, meters float64, bearing s1.Angle) domain.GeoPoint {
	ll := s2.LatLngFromDegrees(p.Lat, p.Lng)
	sinLat, cosLat := math.Sincos(ll.Lat.Radians())
	sinLng, cosLng := math.Sincos(ll.Lng.Radians())

	north := r3.Vector{X: -sinLat * cosLng, Y: -sinLat * sinLng, Z: cosLat}
	east := r3.Vector{X: -sinLng, Y: cosLng}
	dir := north.Mul(math.Cos(bearing.Radians())).Add(east.Mul(math.Sin(bearing.Radians())))

	delta := meters / EarthRadius
	v := s2.PointFromLatLng(ll).Vector.Mul(math.Cos(delta)).Add(dir.Mul(math.Sin(delta)))
	dst := s2.LatLngFromPoint(s2.Point{Vector: v.Normalize()})

	lng := dst.Lng.Degrees()
	if lng >= 180 {
		lng -= 360
	}
	return domain.GeoPoint{Lat: dst.Lat.Degrees(), Lng: lng}
}
