package certificate_controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
	"github.com/sunthewhat/easy-cert-batch/type/payload"
	"github.com/sunthewhat/easy-cert-batch/type/response"
)

var templateExts = []string{".png", ".jpg"}

// TemplateKey is the object key of the active template in the resource bucket.
func TemplateKey(ext string) string {
	return "template/current" + ext
}

// UploadTemplate validates and stores the certificate background
func (ctrl *CertificateController) UploadTemplate(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.SendFailed(c, "No file provided")
	}

	data, err := ctrl.readUpload(file)
	if err != nil {
		return response.SendFailed(c, err.Error())
	}

	tpl, err := renderer.LoadTemplate(data)
	if err != nil {
		slog.Warn("Template upload rejected", "filename", file.Filename, "error", err)
		return response.SendFailed(c, err.Error())
	}

	ctx := c.UserContext()
	key := TemplateKey(tpl.Ext())
	if err := ctrl.resources.Put(ctx, key, data, tpl.ContentType()); err != nil {
		slog.Error("Template upload failed", "error", err, "key", key)
		return response.SendInternalError(c, err)
	}

	// Only one template is active: drop the one stored under the other extension.
	for _, ext := range templateExts {
		if stale := TemplateKey(ext); stale != key {
			if err := ctrl.resources.Delete(ctx, stale); err != nil && !errors.Is(err, storage.ErrNotFound) {
				slog.Warn("Failed to delete previous template", "error", err, "key", stale)
			}
		}
	}

	size := tpl.Size()
	slog.Info("Template uploaded", "key", key, "width", size.X, "height", size.Y)

	return response.SendSuccess(c, "Template uploaded", payload.TemplatePayload{
		Key:         key,
		ContentType: tpl.ContentType(),
		Width:       size.X,
		Height:      size.Y,
	})
}

func (ctrl *CertificateController) readUpload(file *multipart.FileHeader) ([]byte, error) {
	if ctrl.maxUploadBytes > 0 && file.Size > ctrl.maxUploadBytes {
		return nil, fmt.Errorf("file size too large (%dMB out of %dMB)", file.Size/(1024*1024), ctrl.maxUploadBytes/(1024*1024))
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

// loadTemplate returns the active template, or storage.ErrNotFound if none was uploaded.
func (ctrl *CertificateController) loadTemplate(ctx context.Context) (*renderer.Template, error) {
	for _, ext := range templateExts {
		data, err := storage.ReadAll(ctx, ctrl.resources, TemplateKey(ext))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return renderer.LoadTemplate(data)
	}
	return nil, storage.ErrNotFound
}
