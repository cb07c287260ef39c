package visual

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/moodmap/internal/domain"
)

func TestColorOf_Endpoints(t *testing.T) {
	assert.Equal(t, RGB{R: 2, G: 0, B: 36}, ColorOf(1))
	assert.Equal(t, RGB{R: 0, G: 212, B: 255}, ColorOf(5))
}

func TestColorOf_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, ColorOf(1), ColorOf(0))
	assert.Equal(t, ColorOf(1), ColorOf(-3))
	assert.Equal(t, ColorOf(5), ColorOf(9))
}

func TestColorOf_MidStop(t *testing.T) {
	// 35% of the way from mood 1 to 5.
	assert.Equal(t, RGB{R: 121, G: 22, B: 9}, ColorOf(1+0.35*4))
}

func TestColorOf_MonotonicPerSegment(t *testing.T) {
	segments := []struct {
		name   string
		lo, hi float64
		dir    [3]int // +1 rising, -1 falling per channel
	}{
		{"low", 1, 2.4, [3]int{1, 1, -1}},
		{"high", 2.4, 5, [3]int{-1, 1, 1}},
	}
	for _, seg := range segments {
		t.Run(seg.name, func(t *testing.T) {
			prev := ColorOf(seg.lo)
			for m := seg.lo + 0.01; m <= seg.hi; m += 0.01 {
				c := ColorOf(m)
				checkDir(t, seg.dir[0], prev.R, c.R, m)
				checkDir(t, seg.dir[1], prev.G, c.G, m)
				checkDir(t, seg.dir[2], prev.B, c.B, m)
				prev = c
			}
		})
	}
}

func checkDir(t *testing.T, dir int, prev, cur uint8, mood float64) {
	t.Helper()
	if dir > 0 {
		assert.GreaterOrEqual(t, cur, prev, "mood %.2f", mood)
	} else {
		assert.LessOrEqual(t, cur, prev, "mood %.2f", mood)
	}
}

func TestSizeOf(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{-1, 40},
		{0, 40},
		{1, 45},
		{4, 60},
		{8, 80},
		{100, 80},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SizeOf(tt.count), "count %d", tt.count)
	}
}

func TestSizeOf_Bounds(t *testing.T) {
	for c := 0; c < 50; c++ {
		s := SizeOf(c)
		assert.GreaterOrEqual(t, s, MinMarkerSize)
		assert.LessOrEqual(t, s, MaxMarkerSize)
	}
}

func TestTextColor(t *testing.T) {
	assert.Equal(t, "#fff", TextColor(ColorOf(1)))
	assert.Equal(t, "#000", TextColor(ColorOf(5)))
	assert.Equal(t, "#000", TextColor(RGB{R: 255, G: 255, B: 255}))
	assert.Equal(t, "#fff", TextColor(RGB{}))
}

func TestRGBAndHex(t *testing.T) {
	c := RGB{R: 121, G: 22, B: 9}
	assert.Equal(t, "rgba(121, 22, 9, 0.75)", c.RGBA(0.75))
	assert.Equal(t, "#791609", c.Hex())
}

func TestScoreBanner(t *testing.T) {
	b := ScoreBanner(4.4)
	assert.Equal(t, "🙂", b.Glyph)
	assert.True(t, strings.HasSuffix(b.Background, ", 0.75)"))

	empty := ScoreBanner(0)
	assert.Equal(t, domain.UnknownGlyph, empty.Glyph)
	assert.Equal(t, "rgba(2, 0, 36, 0.75)", empty.Background)
	assert.Equal(t, "#fff", empty.Text)
}

func TestAreaIcon(t *testing.T) {
	icon := AreaIcon(3, 2)
	assert.Equal(t, 50, icon.Size)
	require.True(t, strings.HasPrefix(icon.URL, "data:image/svg+xml;charset=UTF-8,"))

	svg, err := url.PathUnescape(strings.TrimPrefix(icon.URL, "data:image/svg+xml;charset=UTF-8,"))
	require.NoError(t, err)
	assert.Contains(t, svg, `r="12.5"`)
	assert.Contains(t, svg, `stroke-width="3"`)
	assert.Contains(t, svg, ColorOf(3).Hex())
	assert.Contains(t, svg, ">2</text>")
}

func TestMarkerIcon(t *testing.T) {
	svg, err := url.PathUnescape(strings.TrimPrefix(MarkerIcon(5).URL, "data:image/svg+xml;charset=UTF-8,"))
	require.NoError(t, err)
	assert.Contains(t, svg, "😁")

	svg, err = url.PathUnescape(strings.TrimPrefix(MarkerIcon(0).URL, "data:image/svg+xml;charset=UTF-8,"))
	require.NoError(t, err)
	assert.Contains(t, svg, domain.UnknownGlyph)
}

func TestRender(t *testing.T) {
	s := domain.Snapshot{
		Generation: 7,
		Markers: []domain.DisplayMarker{
			{Hash: "u4pruydqqvj", Position: domain.GeoPoint{Lat: 57.6, Lng: 10.4}, Mood: 4, Visible: true},
			{Hash: "u4pruydqqvm", Mood: 0},
		},
		Areas: []domain.DisplayArea{
			{Hash: "u4p", Center: domain.GeoPoint{Lat: 57, Lng: 10}, Mood: 2.5, Count: 3, Visible: true},
		},
		Score:     3.5,
		CreatedAt: time.Unix(0, 0),
	}

	v := Render(s)
	assert.Equal(t, uint64(7), v.Generation)
	require.Len(t, v.Markers, 2)
	require.Len(t, v.Areas, 1)
	assert.Equal(t, "Mood: 4", v.Markers[0].Title)
	assert.True(t, v.Markers[0].Visible)
	assert.Equal(t, "Unknown mood", v.Markers[1].Title)
	assert.False(t, v.Markers[1].Visible)
	assert.Equal(t, "Area with 3 mood(s)", v.Areas[0].Title)
	assert.Equal(t, 55, v.Areas[0].Icon.Size)
	assert.Equal(t, s.Areas[0].Center, v.Areas[0].Position)
}

func TestRender_EmptySnapshot(t *testing.T) {
	v := Render(domain.Snapshot{})
	assert.NotNil(t, v.Markers)
	assert.NotNil(t, v.Areas)
	assert.Empty(t, v.Markers)
}
