package domain

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// GeoPoint is a WGS-84 latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within latitude [-90, 90] and
// longitude [-180, 180].
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p GeoPoint) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lng)
}

// Viewport is the visible map region as reported by the map provider.
// When SouthWest.Lng > NorthEast.Lng the viewport crosses the antimeridian.
type Viewport struct {
	NorthEast GeoPoint `json:"north_east"`
	SouthWest GeoPoint `json:"south_west"`
}

// Corners returns the viewport corners in the order SW, SE, NW, NE.
func (v Viewport) Corners() [4]GeoPoint {
	return [4]GeoPoint{
		{Lat: v.SouthWest.Lat, Lng: v.SouthWest.Lng},
		{Lat: v.SouthWest.Lat, Lng: v.NorthEast.Lng},
		{Lat: v.NorthEast.Lat, Lng: v.SouthWest.Lng},
		{Lat: v.NorthEast.Lat, Lng: v.NorthEast.Lng},
	}
}

// Valid reports whether both corners are valid points and the viewport is not
// upside down.
func (v Viewport) Valid() bool {
	return v.NorthEast.Valid() && v.SouthWest.Valid() && v.SouthWest.Lat <= v.NorthEast.Lat
}

// Contains reports whether p lies inside the viewport, edges included.
func (v Viewport) Contains(p GeoPoint) bool {
	return v.rect().ContainsLatLng(p.latLng())
}

func (v Viewport) rect() s2.Rect {
	sw := v.SouthWest.latLng()
	ne := v.NorthEast.latLng()
	return s2.Rect{
		Lat: r1.Interval{Lo: sw.Lat.Radians(), Hi: ne.Lat.Radians()},
		Lng: s1.IntervalFromEndpoints(sw.Lng.Radians(), ne.Lng.Radians()),
	}
}

// CellBounds is the bounding box of a cell, produced only by the codec.
type CellBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Center returns the centroid of the bounding box.
func (b CellBounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}
