package renderer

import (
	"bytes"
	"fmt"
	"image"

	"github.com/jung-kurt/gofpdf"
)

// pdfPageWidth is the page width in mm, that of a landscape A4 sheet. The
// page height follows the image so the certificate is never stretched.
const pdfPageWidth = 297.0

// ConvertToPDF wraps a rendered PNG of the given pixel size in a single page
// shaped like the image, with the image filling the page.
func ConvertToPDF(pngBytes []byte, size image.Point, name string) ([]byte, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("failed to generate PDF: image has no pixels (%dx%d)", size.X, size.Y)
	}
	height := pdfPageWidth * float64(size.Y) / float64(size.X)

	// gofpdf takes the size portrait-first and swaps it for "L".
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: height, Ht: pdfPageWidth},
	})
	pdf.SetTitle(name, true)
	pdf.SetCreator("easy-cert-batch", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(pngBytes))
	pdf.ImageOptions(name, 0, 0, pageWidth, pageHeight, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}
