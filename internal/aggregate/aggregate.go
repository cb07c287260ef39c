// Package aggregate classifies fetched index elements into display markers and
// areas and scores the visible part of the viewport.
package aggregate

import (
	"log/slog"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
)

// Result is the classified content of one refresh cycle.
type Result struct {
	Markers []domain.DisplayMarker
	Areas   []domain.DisplayArea
	Score   float64
}

// Aggregator turns raw elements into display data.
type Aggregator struct {
	codec   domain.Codec
	schema  domain.MetricSchema
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Aggregator reading aggregate metrics in the given schema.
func New(codec domain.Codec, schema domain.MetricSchema, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		codec:   codec,
		schema:  schema,
		logger:  logger,
		metrics: metrics,
	}
}

// Aggregate classifies elements and scores them. Visibility is evaluated
// against live, the viewport as it is now, not as it was when the cycle began.
func (a *Aggregator) Aggregate(elements []domain.RawElement, live domain.Viewport) Result {
	markers := make([]domain.DisplayMarker, 0, len(elements))
	areas := make([]domain.DisplayArea, 0, len(elements))

	for _, el := range elements {
		switch el.Kind {
		case domain.ElementItem:
			if m, ok := a.marker(el, live); ok {
				markers = append(markers, m)
			}
		case domain.ElementAggregate:
			if ar, ok := a.area(el, live); ok {
				areas = append(areas, ar)
			}
		default:
			a.skip(el, "unknown_kind")
		}
	}

	return Result{
		Markers: markers,
		Areas:   areas,
		Score:   WeightedScore(markers, areas),
	}
}

func (a *Aggregator) marker(el domain.RawElement, live domain.Viewport) (domain.DisplayMarker, bool) {
	bounds, err := a.codec.Decode(el.Hash)
	if err != nil {
		a.skip(el, "bad_address", "error", err)
		return domain.DisplayMarker{}, false
	}

	mood, ok := domain.ParseMood(el.ID)
	if !ok {
		mood = 0
	}
	pos := bounds.Center()
	return domain.DisplayMarker{
		Hash:     el.Hash,
		Position: pos,
		Mood:     mood,
		Visible:  live.Contains(pos),
	}, true
}

func (a *Aggregator) area(el domain.RawElement, live domain.Viewport) (domain.DisplayArea, bool) {
	if len(el.Metrics) < a.schema.Width() {
		a.skip(el, "short_metrics", "metrics", len(el.Metrics))
		return domain.DisplayArea{}, false
	}

	count := max(el.Count, 1)
	n := float64(count)
	center := domain.GeoPoint{
		Lat: el.Metrics[a.schema.Lat] / n,
		Lng: el.Metrics[a.schema.Lng] / n,
	}
	return domain.DisplayArea{
		Hash:    el.Hash,
		Center:  center,
		Mood:    el.Metrics[a.schema.Mood] / n,
		Count:   count,
		Visible: live.Contains(center),
	}, true
}

func (a *Aggregator) skip(el domain.RawElement, reason string, attrs ...any) {
	a.metrics.SkippedElements.WithLabelValues(reason).Inc()
	a.logger.Warn("skipping index element",
		append([]any{"reason", reason, "kind", el.Kind.String(), "hash", el.Hash, "queried", el.QueriedAddress}, attrs...)...)
}

// WeightedScore is the mean mood over visible elements, each area weighted by
// its count and each marker by one. Markers without a known mood do not count.
// It returns 0 when nothing qualifies.
func WeightedScore(markers []domain.DisplayMarker, areas []domain.DisplayArea) float64 {
	var total, weight float64
	for _, ar := range areas {
		if !ar.Visible {
			continue
		}
		total += ar.Mood * float64(ar.Count)
		weight += float64(ar.Count)
	}
	for _, m := range markers {
		if !m.Visible || !m.Known() {
			continue
		}
		total += float64(m.Mood)
		weight++
	}
	if weight == 0 {
		return 0
	}
	return total / weight
}
