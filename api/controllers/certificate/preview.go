package certificate_controller

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/internal/batch"
	"github.com/sunthewhat/easy-cert-batch/internal/qrcode"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
	"github.com/sunthewhat/easy-cert-batch/type/response"
)

const (
	defaultPreviewWidth = 600
	maxPreviewWidth     = 1500
)

// Preview renders the first sample participant onto the current template
func (ctrl *CertificateController) Preview(c *fiber.Ctx) error {
	width := c.QueryInt("width", defaultPreviewWidth)
	if width <= 0 || width > maxPreviewWidth {
		return response.SendFailed(c, "width must be between 1 and 1500")
	}

	tpl, err := ctrl.loadTemplate(c.UserContext())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.SendFailed(c, "No template uploaded")
		}
		return response.SendInternalError(c, err)
	}

	p, err := sampleParticipant()
	if err != nil {
		return response.SendInternalError(c, err)
	}

	data, err := ctrl.previewer.Preview(tpl, p, qrcode.Payload(batch.DefaultVerifyPrefix, "preview", p.Row, p.Name), width)
	if err != nil {
		slog.Error("Template preview failed", "error", err)
		return response.SendInternalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

func sampleParticipant() (*roster.Participant, error) {
	reader, err := roster.Open(bytes.NewReader(roster.Sample()), roster.SampleFilename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	row, err := reader.Next()
	if err != nil {
		return nil, err
	}
	if !row.Valid() {
		return nil, row.Invalid
	}
	return row.Participant, nil
}
