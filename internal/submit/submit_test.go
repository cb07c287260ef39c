package submit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/moodmap/internal/codec"
	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
)

type mockWriter struct {
	mu      sync.Mutex
	subs    []domain.Submission
	failFor string
}

func (w *mockWriter) Submit(_ context.Context, s domain.Submission) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s.Collection == w.failFor {
		return errors.New("index unavailable")
	}
	w.subs = append(w.subs, s)
	return nil
}

type mockCache struct {
	recs   map[string]domain.DayRecord
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{recs: make(map[string]domain.DayRecord)}
}

func (c *mockCache) Get(_ context.Context, key string) (*domain.DayRecord, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	rec, ok := c.recs[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (c *mockCache) Set(_ context.Context, key string, rec domain.DayRecord) error {
	c.recs[key] = rec
	return nil
}

var paris = domain.GeoPoint{Lat: 48.8566, Lng: 2.3522}

func testSubmitter(t *testing.T, w *mockWriter, c *mockCache, collections ...string) (*Submitter, *observability.Metrics) {
	t.Helper()
	gh, err := codec.NewGeohash(12)
	require.NoError(t, err)
	m := observability.NewMetricsForTesting()
	s, err := New(gh, w, c, Options{
		Collections: collections,
		Location:    time.UTC,
		Rand:        rand.New(rand.NewPCG(1, 2)),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	require.NoError(t, err)
	return s, m
}

func freezeClock(t *testing.T, at time.Time) *clockwork.FakeClock {
	t.Helper()
	fc := clockwork.NewFakeClockAt(at)
	domain.SetClock(fc)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fc
}

func TestNew_RequiresCollection(t *testing.T) {
	gh, err := codec.NewGeohash(12)
	require.NoError(t, err)
	_, err = New(gh, &mockWriter{}, newMockCache(), Options{}, slog.Default(), observability.NewMetricsForTesting())
	require.Error(t, err)
}

func TestSubmitDaily_WritesEveryCollection(t *testing.T) {
	freezeClock(t, time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	w := &mockWriter{}
	c := newMockCache()
	s, m := testSubmitter(t, w, c, "moods", "moods-by-time")

	res, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 4, Location: paris})
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	require.Len(t, w.subs, 2)
	assert.Equal(t, "moods", w.subs[0].Collection)
	assert.Equal(t, "moods-by-time", w.subs[1].Collection)
	for _, sub := range w.subs {
		assert.Equal(t, domain.RootAddress, sub.Parent)
		assert.Len(t, string(sub.Address), 12)
		assert.Equal(t, "4", sub.Payload)
		assert.Equal(t, []float64{4, sub.Point.Lat, sub.Point.Lng}, sub.Metrics)
		assert.NotEmpty(t, sub.ID)
		assert.LessOrEqual(t, distance(paris, sub.Point), float64(DefaultRadius))
	}
	assert.NotEqual(t, w.subs[0].ID, w.subs[1].ID)

	rec, ok := c.recs["moodData-2024-04-26"]
	require.True(t, ok)
	assert.Equal(t, "2024-04-26", rec.Date)
	assert.Equal(t, 4, rec.Mood)
	assert.Equal(t, w.subs[0].Point, rec.Location)
	assert.Len(t, rec.Addresses, 2)
	assert.Equal(t, res.Record, rec)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Submissions.WithLabelValues("success")), 0)
}

func TestSubmitDaily_SecondCallSameDayIsNoop(t *testing.T) {
	fc := freezeClock(t, time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	w := &mockWriter{}
	s, m := testSubmitter(t, w, newMockCache(), "moods")

	first, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 2, Location: paris})
	require.NoError(t, err)

	fc.Advance(10 * time.Hour)
	second, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 5, Location: paris})
	require.NoError(t, err)

	assert.True(t, second.Skipped)
	assert.Equal(t, first.Record, second.Record)
	assert.Len(t, w.subs, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Submissions.WithLabelValues("skipped")), 0)
}

func TestSubmitDaily_NextDaySubmitsAgain(t *testing.T) {
	fc := freezeClock(t, time.Date(2024, 4, 26, 23, 30, 0, 0, time.UTC))
	w := &mockWriter{}
	s, _ := testSubmitter(t, w, newMockCache(), "moods")

	_, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 2, Location: paris})
	require.NoError(t, err)

	fc.Advance(time.Hour)
	res, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 3, Location: paris})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "2024-04-27", res.Record.Date)
	assert.Len(t, w.subs, 2)
}

func TestSubmitDaily_FailureDoesNotRecordDay(t *testing.T) {
	freezeClock(t, time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	w := &mockWriter{failFor: "moods-by-time"}
	c := newMockCache()
	s, m := testSubmitter(t, w, c, "moods", "moods-by-time")

	_, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 3, Location: paris})
	require.Error(t, err)

	var se *domain.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "moods-by-time", se.Collection)
	assert.Len(t, string(se.Address), 12)
	assert.Empty(t, c.recs)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Submissions.WithLabelValues("error")), 0)

	// The retry goes through once the index recovers.
	w.failFor = ""
	res, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 3, Location: paris})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Len(t, c.recs, 1)
}

func TestSubmitDaily_InvalidReading(t *testing.T) {
	w := &mockWriter{}
	s, _ := testSubmitter(t, w, newMockCache(), "moods")

	for _, r := range []domain.Reading{
		{Mood: 0, Location: paris},
		{Mood: 6, Location: paris},
		{Mood: 3, Location: domain.GeoPoint{Lat: 91, Lng: 0}},
	} {
		_, err := s.SubmitDaily(context.Background(), r)
		require.ErrorIs(t, err, domain.ErrInvalidReading)
	}
	assert.Empty(t, w.subs)
}

func TestSubmitDaily_CacheReadError(t *testing.T) {
	w := &mockWriter{}
	c := newMockCache()
	c.getErr = errors.New("disk full")
	s, _ := testSubmitter(t, w, c, "moods")

	_, err := s.SubmitDaily(context.Background(), domain.Reading{Mood: 3, Location: paris})
	require.Error(t, err)
	assert.Empty(t, w.subs)
}

func TestSubmitDaily_CustomSchema(t *testing.T) {
	freezeClock(t, time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	gh, err := codec.NewGeohash(12)
	require.NoError(t, err)
	schema, err := domain.ParseMetricSchema("lat,lng,mood")
	require.NoError(t, err)

	w := &mockWriter{}
	s, err := New(gh, w, newMockCache(), Options{
		Collections: []string{"moods"},
		Schema:      schema,
		Radius:      -1,
		Location:    time.UTC,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, err = s.SubmitDaily(context.Background(), domain.Reading{Mood: 5, Location: paris})
	require.NoError(t, err)
	require.Len(t, w.subs, 1)
	assert.Equal(t, []float64{paris.Lat, paris.Lng, 5}, w.subs[0].Metrics)
	assert.Equal(t, paris, w.subs[0].Point)
}
