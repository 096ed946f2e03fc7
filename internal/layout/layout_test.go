package layout

import (
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	require.NoError(t, err)
	return e
}

func TestFontSize_ScalesWithCanvas(t *testing.T) {
	testCases := []struct {
		name   string
		canvas image.Point
		field  Field
		want   float64
	}{
		{"Reference name", image.Pt(3000, 2000), FieldName, 100},
		{"Reference course", image.Pt(3000, 2000), FieldCourse, 58},
		{"Reference date", image.Pt(3000, 2000), FieldDate, 44},
		{"Half size", image.Pt(1500, 1000), FieldName, 50},
		{"Limited by height", image.Pt(3000, 1000), FieldName, 50},
		{"Tiny canvas clamps", image.Pt(3, 2), FieldDate, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FontSize(tc.field, tc.canvas))
		})
	}
}

func TestPlace_Deterministic(t *testing.T) {
	e := newEngine(t)
	canvas := image.Pt(3000, 2000)

	first := e.Place(FieldName, "Ana Putri", canvas)
	second := e.Place(FieldName, "Ana Putri", canvas)
	assert.Equal(t, first, second)

	other := newEngine(t)
	assert.Equal(t, first, other.Place(FieldName, "Ana Putri", canvas))
}

func TestPlace_Centered(t *testing.T) {
	e := newEngine(t)
	canvas := image.Pt(3000, 2000)

	p := e.Place(FieldCourse, "Python 101", canvas)
	left := p.X
	right := canvas.X - (p.X + p.Width)
	assert.InDelta(t, left, right, 1)
	assert.Equal(t, 1100, p.Baseline)
	assert.Greater(t, p.Width, 0)
}

func TestPlace_BandsDoNotOverlap(t *testing.T) {
	e := newEngine(t)

	for _, canvas := range []image.Point{
		image.Pt(3000, 2000),
		image.Pt(1200, 800),
		image.Pt(600, 400),
		image.Pt(3000, 1000),
		image.Pt(1000, 2000),
	} {
		placements := e.Layout("Ágata Übermann-Świętochowska", "Data Analysis with Go", "January 10, 2024", canvas)

		for _, p := range placements {
			top, bottom := Band(p.Field, canvas)
			assert.GreaterOrEqual(t, p.Y, top, "%s top on %v", p.Field, canvas)
			assert.LessOrEqual(t, p.Y+p.Height, bottom, "%s bottom on %v", p.Field, canvas)
		}

		for i := 1; i < len(placements); i++ {
			assert.LessOrEqual(t, placements[i-1].Y+placements[i-1].Height, placements[i].Y)
		}
	}
}

func TestPlace_OverflowKeepsCentering(t *testing.T) {
	e := newEngine(t)
	canvas := image.Pt(300, 200)

	p := e.Place(FieldName, strings.Repeat("Very Long Name ", 20), canvas)
	assert.Greater(t, p.Width, canvas.X)
	assert.Less(t, p.X, 0)
}

func TestPlace_ConcurrentUse(t *testing.T) {
	e := newEngine(t)
	canvas := image.Pt(1500, 1000)
	want := e.Place(FieldDate, "May 1, 2024", canvas)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, want, e.Place(FieldDate, "May 1, 2024", canvas))
			}
		}()
	}
	wg.Wait()
}

func TestDraw_PaintsInsidePlacement(t *testing.T) {
	e := newEngine(t)
	canvas := image.Pt(600, 400)
	dst := image.NewRGBA(image.Rectangle{Max: canvas})

	p := e.Place(FieldName, "Ana", canvas)
	e.Draw(dst, p, "Ana", color.Black)

	painted := 0
	for y := 0; y < canvas.Y; y++ {
		for x := 0; x < canvas.X; x++ {
			if _, _, _, a := dst.At(x, y).RGBA(); a > 0 {
				painted++
				assert.True(t, image.Pt(x, y).In(p.Rect().Inset(-2)), "pixel %d,%d outside placement", x, y)
			}
		}
	}
	assert.Greater(t, painted, 0)
}
