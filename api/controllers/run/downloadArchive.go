package run_controller

import (
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
	"github.com/sunthewhat/easy-cert-batch/type/response"
)

// DownloadArchive streams the zip archive of a run from object storage
func (ctrl *RunController) DownloadArchive(c *fiber.Ctx) error {
	runId := c.Params("runId")

	run, err := ctrl.runRepo.GetById(runId)
	if err != nil {
		return response.SendInternalError(c, err)
	}
	if run == nil {
		return response.SendNotFound(c, "Run not found")
	}
	if run.ArchiveURL == "" {
		slog.Warn("Run archive download: run has no archive", "run_id", runId, "status", run.Status)
		return response.SendFailed(c, "Run has no archive")
	}

	object, size, err := ctrl.archives.Get(c.UserContext(), run.ArchiveURL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Run archive download: archive expired or missing", "run_id", runId, "key", run.ArchiveURL)
			return response.SendNotFound(c, "Archive file not found")
		}
		slog.Error("Run archive download failed", "error", err, "run_id", runId)
		return response.SendInternalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", path.Base(run.ArchiveURL)))

	slog.Info("Run archive download", "run_id", runId, "size", size)
	return c.SendStream(object, int(size))
}
