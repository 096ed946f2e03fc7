package renderer

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const (
	NominalWidth  = 3000
	NominalHeight = 2000

	aspectRatio     = float64(NominalWidth) / NominalHeight
	aspectTolerance = 0.02
)

// Template is a decoded certificate background. It is never modified after
// loading, so one Template can be shared by every worker of a batch.
type Template struct {
	img         *image.NRGBA
	contentType string
}

// LoadTemplate decodes a PNG or JPEG template and checks it is a 3:2 landscape.
func LoadTemplate(data []byte) (*Template, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrTemplate)
	}

	mt := mimetype.Detect(data)
	if !mt.Is("image/png") && !mt.Is("image/jpeg") {
		return nil, fmt.Errorf("%w: expected PNG or JPEG, got %s", ErrTemplate, mt.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrTemplate, err)
	}

	tpl, err := NewTemplate(img)
	if err != nil {
		return nil, err
	}
	tpl.contentType = mt.String()
	return tpl, nil
}

func NewTemplate(img image.Image) (*Template, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrTemplate)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrTemplate)
	}

	ratio := float64(b.Dx()) / float64(b.Dy())
	if math.Abs(ratio/aspectRatio-1) > aspectTolerance {
		return nil, fmt.Errorf("%w: %dx%d is not a 3:2 landscape image", ErrTemplate, b.Dx(), b.Dy())
	}

	return &Template{img: imaging.Clone(img), contentType: "image/png"}, nil
}

func (t *Template) Size() image.Point {
	if t == nil || t.img == nil {
		return image.Point{}
	}
	return t.img.Bounds().Size()
}

func (t *Template) ContentType() string {
	return t.contentType
}

// Ext is the file extension matching the template's source encoding.
func (t *Template) Ext() string {
	if t.contentType == "image/jpeg" {
		return ".jpg"
	}
	return ".png"
}

func (t *Template) usable() bool {
	return t != nil && t.img != nil && !t.img.Bounds().Empty()
}
