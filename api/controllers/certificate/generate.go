package certificate_controller

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/internal/batch"
	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
	"github.com/sunthewhat/easy-cert-batch/type/payload"
	"github.com/sunthewhat/easy-cert-batch/type/response"
)

const (
	HeaderRunID      = "X-Run-Id"
	HeaderRunStatus  = "X-Run-Status"
	HeaderFailedRows = "X-Run-Failed-Rows"
)

// Generate renders certificates for an uploaded roster and returns the archive
func (ctrl *CertificateController) Generate(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.SendFailed(c, "No roster file provided")
	}
	if ctrl.maxUploadBytes > 0 && file.Size > ctrl.maxUploadBytes {
		return response.SendFailed(c, fmt.Sprintf("File size too large (%dMB out of %dMB)", file.Size/(1024*1024), ctrl.maxUploadBytes/(1024*1024)))
	}

	ctx := c.UserContext()

	var templateErr error
	tpl, err := ctrl.loadTemplate(ctx)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return response.SendFailed(c, "No template uploaded")
	case errors.Is(err, renderer.ErrTemplate):
		// The run is still recorded, as failed, by the orchestrator.
		slog.Warn("Generate found an unusable stored template", "error", err)
		templateErr = err
	default:
		slog.Error("Generate failed to load template", "error", err)
		return response.SendInternalError(c, err)
	}

	roster, err := file.Open()
	if err != nil {
		return response.SendInternalError(c, err)
	}
	defer roster.Close()

	result, err := ctrl.generator.Run(ctx, batch.Request{
		Filename:    file.Filename,
		Roster:      roster,
		Template:    tpl,
		TemplateErr: templateErr,
	})
	if err != nil {
		var batchErr *batch.BatchError
		if !errors.As(err, &batchErr) || result == nil {
			return response.SendInternalError(c, err)
		}

		body := payload.GenerateFailurePayload{
			Kind:   string(batchErr.Kind),
			Run:    result.Record,
			Errors: result.Errors,
		}
		c.Set(HeaderRunID, result.RunID)

		switch batchErr.Kind {
		case batch.KindPackaging, batch.KindLedger:
			return c.Status(fiber.StatusInternalServerError).JSON(response.Error(batchErr.Reason, body))
		default:
			return response.SendFailed(c, batchErr.Reason, body)
		}
	}

	c.Set(HeaderRunID, result.RunID)
	c.Set(HeaderRunStatus, string(result.Status))
	c.Set(HeaderFailedRows, strconv.Itoa(result.FailedRows()))
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"certificates_%s.zip\"", result.RunID))

	return c.Send(result.Archive)
}
