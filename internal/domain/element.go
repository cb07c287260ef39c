package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ElementKind discriminates the RawElement union.
type ElementKind int

const (
	ElementItem ElementKind = iota + 1
	ElementAggregate
)

func (k ElementKind) String() string {
	switch k {
	case ElementItem:
		return "item"
	case ElementAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// RawElement is one entry of a fetch result. Kind selects which fields are
// meaningful: Items carry ID, Aggregates carry Count and Metrics.
type RawElement struct {
	Kind ElementKind
	Hash CellAddress

	// ID is the item payload: the mood as a decimal string.
	ID string

	Count   int
	Metrics []float64

	// QueriedAddress is the address whose fetch produced this element. It is set
	// by the resolution engine, not by the store.
	QueriedAddress CellAddress
}

// NewItem builds an item element.
func NewItem(hash CellAddress, id string) RawElement {
	return RawElement{Kind: ElementItem, Hash: hash, ID: id}
}

// NewAggregate builds an aggregate element.
func NewAggregate(hash CellAddress, count int, metrics []float64) RawElement {
	return RawElement{Kind: ElementAggregate, Hash: hash, Count: count, Metrics: metrics}
}

// MetricSchema gives the position of each summed dimension in an aggregate's
// metrics vector.
type MetricSchema struct {
	Mood int
	Lat  int
	Lng  int
}

// DefaultMetricSchema is the [mood, lat, lng] ordering.
var DefaultMetricSchema = MetricSchema{Mood: 0, Lat: 1, Lng: 2}

// Width is the minimum metrics length the schema needs.
func (s MetricSchema) Width() int {
	return max(s.Mood, s.Lat, s.Lng) + 1
}

// Vector lays out mood and location in schema order.
func (s MetricSchema) Vector(mood int, p GeoPoint) []float64 {
	v := make([]float64, s.Width())
	v[s.Mood] = float64(mood)
	v[s.Lat] = p.Lat
	v[s.Lng] = p.Lng
	return v
}

// ParseMetricSchema parses a comma list naming the dimensions in order, e.g.
// "mood,lat,lng". Unknown names are allowed and reserve a slot.
func ParseMetricSchema(s string) (MetricSchema, error) {
	schema := MetricSchema{Mood: -1, Lat: -1, Lng: -1}
	for i, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "mood":
			schema.Mood = i
		case "lat":
			schema.Lat = i
		case "lng", "lon":
			schema.Lng = i
		}
	}
	if schema.Mood < 0 || schema.Lat < 0 || schema.Lng < 0 {
		return MetricSchema{}, fmt.Errorf("metric schema %q must name mood, lat and lng", s)
	}
	return schema, nil
}

// String renders the schema in the form accepted by ParseMetricSchema.
func (s MetricSchema) String() string {
	names := make([]string, s.Width())
	for i := range names {
		names[i] = "_" + strconv.Itoa(i)
	}
	names[s.Mood] = "mood"
	names[s.Lat] = "lat"
	names[s.Lng] = "lng"
	return strings.Join(names, ",")
}
