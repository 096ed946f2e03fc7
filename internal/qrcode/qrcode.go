// Package qrcode produces the verification code stamped on each certificate.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	goqrcode "github.com/skip2/go-qrcode"
)

const (
	// MaxPayloadLength caps the encoded payload in bytes.
	MaxPayloadLength = 512

	sideFraction   = 0.10
	marginFraction = 0.04
	minSide        = 21
)

var ErrPayloadTooLarge = errors.New("qr payload too large")

type Code struct {
	PNG       []byte
	Image     image.Image
	Placement image.Rectangle
}

// Payload builds the string encoded into a participant's code.
func Payload(prefix, runID string, row int, name string) string {
	return strings.Join([]string{prefix, runID, strconv.Itoa(row), name}, ":")
}

// Placement returns where a code sits on a canvas: a square of 10% of the
// canvas width in the bottom-right corner, inset by 4% of the width.
func Placement(canvas image.Point) image.Rectangle {
	side := max(int(float64(canvas.X)*sideFraction), minSide)
	margin := int(float64(canvas.X) * marginFraction)

	maxX := canvas.X - margin
	maxY := canvas.Y - margin
	return image.Rect(maxX-side, maxY-side, maxX, maxY)
}

// Generate encodes payload as a QR code sized for canvas. The output is
// deterministic for the same payload and canvas.
func Generate(payload string, canvas image.Point) (*Code, error) {
	if len(payload) > MaxPayloadLength {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), MaxPayloadLength)
	}

	q, err := goqrcode.New(payload, goqrcode.Medium)
	if err != nil {
		if strings.Contains(err.Error(), "content too long") {
			return nil, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
		}
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	q.DisableBorder = true

	rect := Placement(canvas)
	img := q.Image(rect.Dx())
	// Dense payloads on small canvases come back larger than requested.
	if d := img.Bounds().Dx(); d > rect.Dx() {
		rect.Min = rect.Max.Sub(image.Pt(d, d))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode qr png: %w", err)
	}

	return &Code{
		PNG:       buf.Bytes(),
		Image:     img,
		Placement: rect,
	}, nil
}
