// Package renderer turns a template and one participant into the PNG and PDF
// certificate pair.
package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/sunthewhat/easy-cert-batch/internal/layout"
	"github.com/sunthewhat/easy-cert-batch/internal/qrcode"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
)

// DisplayDateLayout is how English dates are printed on certificates.
const DisplayDateLayout = "January 2, 2006"

var defaultTextColor = color.NRGBA{R: 0x1f, G: 0x1f, B: 0x1f, A: 0xff}

// Artifact is the pair of files produced for one participant.
type Artifact struct {
	Row  int
	Stem string
	PNG  []byte
	PDF  []byte
}

type Renderer struct {
	layout    *layout.Engine
	signer    *CertificateSigner
	textColor color.Color
	locale    DateLocale
}

// NewRenderer builds a renderer. signer may be nil, which leaves PDFs unsigned.
func NewRenderer(engine *layout.Engine, signer *CertificateSigner) *Renderer {
	return &Renderer{
		layout:    engine,
		signer:    signer,
		textColor: defaultTextColor,
		locale:    LocaleEnglish,
	}
}

// WithDateLocale sets the language of the printed date. Call it before the
// renderer is shared between workers.
func (r *Renderer) WithDateLocale(locale DateLocale) *Renderer {
	r.locale = locale
	return r
}

// Render draws one certificate. tpl is only read. A missing template yields a
// shared RenderError since every other row would fail the same way.
func (r *Renderer) Render(tpl *Template, p *roster.Participant, payload string) (*Artifact, error) {
	canvas, err := r.compose(tpl, p, payload)
	if err != nil {
		return nil, err
	}

	var pngBuf bytes.Buffer
	if err := imaging.Encode(&pngBuf, canvas, imaging.PNG); err != nil {
		return nil, &RenderError{Row: p.Row, Err: fmt.Errorf("failed to encode PNG: %w", err)}
	}

	stem := Stem(p.Row, p.Name)

	pdfBytes, err := ConvertToPDF(pngBuf.Bytes(), canvas.Bounds().Size(), stem)
	if err != nil {
		return nil, &RenderError{Row: p.Row, Err: err}
	}

	if r.signer != nil && r.signer.IsEnabled() {
		signed, err := r.signer.SignPDF(pdfBytes, stem)
		if err != nil {
			slog.Warn("Failed to sign PDF, keeping unsigned version", "stem", stem, "error", err)
		} else {
			pdfBytes = signed
		}
	}

	return &Artifact{
		Row:  p.Row,
		Stem: stem,
		PNG:  pngBuf.Bytes(),
		PDF:  pdfBytes,
	}, nil
}

// Preview renders p and scales the result down to width pixels. It is used to
// check a template before running a batch.
func (r *Renderer) Preview(tpl *Template, p *roster.Participant, payload string, width int) ([]byte, error) {
	canvas, err := r.compose(tpl, p, payload)
	if err != nil {
		return nil, err
	}

	if width > 0 && width < canvas.Bounds().Dx() {
		canvas = imaging.Resize(canvas, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) compose(tpl *Template, p *roster.Participant, payload string) (*image.NRGBA, error) {
	if !tpl.usable() {
		row := 0
		if p != nil {
			row = p.Row
		}
		return nil, &RenderError{Row: row, Shared: true, Err: ErrTemplate}
	}
	if p == nil {
		return nil, &RenderError{Err: fmt.Errorf("no participant")}
	}

	size := tpl.Size()

	code, err := qrcode.Generate(payload, size)
	if err != nil {
		return nil, &RenderError{Row: p.Row, Err: err}
	}

	canvas := imaging.Clone(tpl.img)
	canvas = imaging.Overlay(canvas, code.Image, code.Placement.Min, 1.0)

	date := FormatDate(p.Date, r.locale)
	texts := [3]string{p.Name, p.Course, date}
	for i, placement := range r.layout.Layout(p.Name, p.Course, date, size) {
		r.layout.Draw(canvas, placement, texts[i], r.textColor)
	}

	return canvas, nil
}
