package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewport_Contains(t *testing.T) {
	vp := Viewport{
		NorthEast: GeoPoint{Lat: 50, Lng: 10},
		SouthWest: GeoPoint{Lat: 40, Lng: -5},
	}

	t.Run("inside", func(t *testing.T) {
		assert.True(t, vp.Contains(GeoPoint{Lat: 45, Lng: 2}))
	})
	t.Run("on the edge", func(t *testing.T) {
		assert.True(t, vp.Contains(GeoPoint{Lat: 50, Lng: 10}))
		assert.True(t, vp.Contains(GeoPoint{Lat: 40, Lng: -5}))
	})
	t.Run("outside", func(t *testing.T) {
		assert.False(t, vp.Contains(GeoPoint{Lat: 51, Lng: 2}))
		assert.False(t, vp.Contains(GeoPoint{Lat: 45, Lng: 11}))
	})
}

func TestViewport_ContainsAcrossAntimeridian(t *testing.T) {
	vp := Viewport{
		NorthEast: GeoPoint{Lat: 10, Lng: -170},
		SouthWest: GeoPoint{Lat: -10, Lng: 170},
	}

	assert.True(t, vp.Contains(GeoPoint{Lat: 0, Lng: 175}))
	assert.True(t, vp.Contains(GeoPoint{Lat: 0, Lng: -175}))
	assert.False(t, vp.Contains(GeoPoint{Lat: 0, Lng: 0}))
}

func TestViewport_ContainsWholeWorld(t *testing.T) {
	vp := Viewport{
		NorthEast: GeoPoint{Lat: 90, Lng: 180},
		SouthWest: GeoPoint{Lat: -90, Lng: -180},
	}

	assert.True(t, vp.Contains(GeoPoint{Lat: 0, Lng: 0}))
	assert.True(t, vp.Contains(GeoPoint{Lat: -33.9, Lng: 151.2}))
	assert.True(t, vp.Contains(GeoPoint{Lat: 64.1, Lng: -21.9}))
}

func TestViewport_Corners(t *testing.T) {
	vp := Viewport{
		NorthEast: GeoPoint{Lat: 2, Lng: 4},
		SouthWest: GeoPoint{Lat: 1, Lng: 3},
	}

	c := vp.Corners()
	assert.Equal(t, GeoPoint{Lat: 1, Lng: 3}, c[0])
	assert.Equal(t, GeoPoint{Lat: 1, Lng: 4}, c[1])
	assert.Equal(t, GeoPoint{Lat: 2, Lng: 3}, c[2])
	assert.Equal(t, GeoPoint{Lat: 2, Lng: 4}, c[3])
}

func TestViewport_Valid(t *testing.T) {
	assert.True(t, Viewport{NorthEast: GeoPoint{Lat: 1, Lng: 1}, SouthWest: GeoPoint{Lat: 0, Lng: 0}}.Valid())
	assert.False(t, Viewport{NorthEast: GeoPoint{Lat: 0, Lng: 1}, SouthWest: GeoPoint{Lat: 1, Lng: 0}}.Valid())
	assert.False(t, Viewport{NorthEast: GeoPoint{Lat: 91, Lng: 1}, SouthWest: GeoPoint{Lat: 0, Lng: 0}}.Valid())
}

func TestCellBounds_Center(t *testing.T) {
	b := CellBounds{North: 10, South: 0, East: 20, West: 10}
	assert.Equal(t, GeoPoint{Lat: 5, Lng: 15}, b.Center())
}

func TestCellAddress_Parent(t *testing.T) {
	tests := []struct {
		addr   CellAddress
		parent CellAddress
		ok     bool
	}{
		{"u0j3", "u0j", true},
		{"u", RootAddress, true},
		{RootAddress, "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.addr), func(t *testing.T) {
			parent, ok := tt.addr.Parent()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.parent, parent)
		})
	}
}

func TestCellAddress_ParentChainTerminates(t *testing.T) {
	addr := CellAddress("u0j3kq7z")
	steps := 0
	for {
		parent, ok := addr.Parent()
		if !ok {
			break
		}
		assert.Less(t, parent.Len(), addr.Len())
		addr = parent
		steps++
	}
	assert.Equal(t, 8, steps)
	assert.True(t, addr.IsRoot())
}

func TestCellAddress_Truncate(t *testing.T) {
	a := CellAddress("u0j3")
	assert.Equal(t, RootAddress, a.Truncate(0))
	assert.Equal(t, CellAddress("u0"), a.Truncate(2))
	assert.Equal(t, a, a.Truncate(10))
	assert.Equal(t, 0, RootAddress.Len())
	assert.Equal(t, 4, a.Len())
}

func TestParseMetricSchema(t *testing.T) {
	s, err := ParseMetricSchema("mood,lat,lng")
	require.NoError(t, err)
	assert.Equal(t, DefaultMetricSchema, s)
	assert.Equal(t, 3, s.Width())

	s, err = ParseMetricSchema("lat, lng, time, mood")
	require.NoError(t, err)
	assert.Equal(t, MetricSchema{Mood: 3, Lat: 0, Lng: 1}, s)
	assert.Equal(t, 4, s.Width())
	assert.Equal(t, "lat,lng,_2,mood", s.String())

	_, err = ParseMetricSchema("mood,lat")
	require.Error(t, err)
}

func TestMetricSchema_Vector(t *testing.T) {
	v := DefaultMetricSchema.Vector(4, GeoPoint{Lat: 48.8, Lng: 2.3})
	assert.Equal(t, []float64{4, 48.8, 2.3}, v)
}

func TestParseMood(t *testing.T) {
	m, ok := ParseMood("5")
	assert.True(t, ok)
	assert.Equal(t, 5, m)

	m, ok = ParseMood("0")
	assert.False(t, ok)
	assert.Equal(t, 0, m)

	_, ok = ParseMood("happy")
	assert.False(t, ok)
}

func TestMoodGlyph(t *testing.T) {
	assert.Equal(t, "😞", MoodGlyph(1))
	assert.Equal(t, "😁", MoodGlyph(5))
	assert.Equal(t, UnknownGlyph, MoodGlyph(0))
	assert.Equal(t, UnknownGlyph, MoodGlyph(7))
}

func TestDisplayTitles(t *testing.T) {
	assert.Equal(t, "Mood: 3", DisplayMarker{Mood: 3}.Title())
	assert.Equal(t, "Unknown mood", DisplayMarker{Mood: 0}.Title())
	assert.Equal(t, "Area with 4 mood(s)", DisplayArea{Count: 4}.Title())
}

func TestReading_Valid(t *testing.T) {
	assert.True(t, Reading{Mood: 3, Location: GeoPoint{Lat: 1, Lng: 1}}.Valid())
	assert.False(t, Reading{Mood: 0, Location: GeoPoint{Lat: 1, Lng: 1}}.Valid())
	assert.False(t, Reading{Mood: 3, Location: GeoPoint{Lat: 100, Lng: 1}}.Valid())
}

func TestDayKey(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 23, 30, 0, 0, time.UTC))
	SetClock(fc)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, "moodData-2024-04-26", DayKey(Now(), time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "moodData-2024-04-27", DayKey(Now(), tokyo))
}
