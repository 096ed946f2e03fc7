// Package layout decides where the name, course and date text goes on a
// certificate canvas.
//
// Each field owns a horizontal band around a fixed baseline. Text is centered
// horizontally and sized relative to a 3000x2000 reference canvas. Text wider
// than the canvas is placed anyway (X goes negative) instead of being wrapped
// or shrunk.
package layout

import (
	"fmt"
	"image"
	"math"
)

type Field int

const (
	FieldName Field = iota
	FieldCourse
	FieldDate
)

var Fields = []Field{FieldName, FieldCourse, FieldDate}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldCourse:
		return "course"
	case FieldDate:
		return "date"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

const (
	ReferenceWidth  = 3000
	ReferenceHeight = 2000
)

type fieldStyle struct {
	baseline float64 // fraction of canvas height
	fontSize float64 // pixels at the reference canvas
}

var styles = map[Field]fieldStyle{
	FieldName:   {baseline: 0.40, fontSize: 100},
	FieldCourse: {baseline: 0.55, fontSize: 58},
	FieldDate:   {baseline: 0.70, fontSize: 44},
}

// Placement is the box occupied by one field. X and Y are the top-left corner;
// Baseline is the y coordinate glyphs sit on.
type Placement struct {
	Field    Field
	X        int
	Y        int
	Width    int
	Height   int
	Baseline int
	FontSize float64
}

func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Scale is the factor applied to reference font sizes for a canvas.
func Scale(canvas image.Point) float64 {
	return math.Min(float64(canvas.X)/ReferenceWidth, float64(canvas.Y)/ReferenceHeight)
}

// FontSize returns the pixel size of field on canvas, never below one pixel.
func FontSize(field Field, canvas image.Point) float64 {
	size := styles[field].fontSize * Scale(canvas)
	// Rounded to quarter pixels so nearby canvases share cached faces.
	size = math.Round(size*4) / 4
	return math.Max(size, 1)
}

// Baseline returns the y coordinate of the field's baseline.
func Baseline(field Field, canvas image.Point) int {
	return int(math.Round(styles[field].baseline * float64(canvas.Y)))
}

// Band returns the vertical extent reserved for field: from the midpoint with
// the previous baseline to the midpoint with the next one.
func Band(field Field, canvas image.Point) (top, bottom int) {
	idx := int(field)
	base := styles[field].baseline
	h := float64(canvas.Y)

	topFrac := base - (styles[Fields[1]].baseline-styles[Fields[0]].baseline)/2
	if idx > 0 {
		topFrac = (styles[Fields[idx-1]].baseline + base) / 2
	}

	last := len(Fields) - 1
	bottomFrac := base + (styles[Fields[last]].baseline-styles[Fields[last-1]].baseline)/2
	if idx < last {
		bottomFrac = (base + styles[Fields[idx+1]].baseline) / 2
	}

	return int(math.Floor(topFrac * h)), int(math.Ceil(bottomFrac * h))
}
