package layout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var fieldFonts = map[Field][]byte{
	FieldName:   gobold.TTF,
	FieldCourse: goregular.TTF,
	FieldDate:   goitalic.TTF,
}

type faceKey struct {
	field Field
	size  float64
}

// cachedFace guards a face: opentype faces keep scratch buffers and are not
// safe for concurrent use.
type cachedFace struct {
	mu   sync.Mutex
	face font.Face
}

// Engine measures and draws the three certificate fields. It is safe for
// concurrent use.
type Engine struct {
	fonts map[Field]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]*cachedFace
}

func NewEngine() (*Engine, error) {
	fonts := make(map[Field]*opentype.Font, len(fieldFonts))
	for field, ttf := range fieldFonts {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s font: %w", field, err)
		}
		fonts[field] = f
	}

	e := &Engine{fonts: fonts, faces: make(map[faceKey]*cachedFace)}

	// Build one face per field up front so Place never meets a bad font.
	for _, field := range Fields {
		if _, err := e.face(field, ReferenceWidth/10); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (e *Engine) face(field Field, size float64) (*cachedFace, error) {
	key := faceKey{field: field, size: size}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cf, ok := e.faces[key]; ok {
		return cf, nil
	}

	f, ok := e.fonts[field]
	if !ok {
		return nil, fmt.Errorf("no font for %s", field)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face at %.2fpx: %w", field, size, err)
	}

	cf := &cachedFace{face: face}
	e.faces[key] = cf
	return cf, nil
}

func (e *Engine) mustFace(field Field, size float64) *cachedFace {
	cf, err := e.face(field, size)
	if err != nil {
		// The bundled fonts were validated in NewEngine.
		panic(err)
	}
	return cf
}

// Place computes the box for text in field on a canvas of the given size.
// The same inputs always produce the same placement.
func (e *Engine) Place(field Field, text string, canvas image.Point) Placement {
	size := FontSize(field, canvas)
	cf := e.mustFace(field, size)

	cf.mu.Lock()
	advance := font.MeasureString(cf.face, text)
	metrics := cf.face.Metrics()
	cf.mu.Unlock()

	width := advance.Ceil()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	baseline := Baseline(field, canvas)

	return Placement{
		Field:    field,
		X:        (canvas.X - width) / 2,
		Y:        baseline - ascent,
		Width:    width,
		Height:   ascent + descent,
		Baseline: baseline,
		FontSize: size,
	}
}

// Draw renders text onto dst at a placement previously returned by Place.
func (e *Engine) Draw(dst draw.Image, p Placement, text string, c color.Color) {
	cf := e.mustFace(p.Field, p.FontSize)

	cf.mu.Lock()
	defer cf.mu.Unlock()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: cf.face,
		Dot:  fixed.P(p.X, p.Baseline),
	}
	d.DrawString(text)
}

// Layout places all three fields at once.
func (e *Engine) Layout(name, course, date string, canvas image.Point) [3]Placement {
	return [3]Placement{
		e.Place(FieldName, name, canvas),
		e.Place(FieldCourse, course, canvas),
		e.Place(FieldDate, date, canvas),
	}
}
