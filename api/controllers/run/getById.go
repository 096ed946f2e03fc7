package run_controller

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/type/payload"
	"github.com/sunthewhat/easy-cert-batch/type/response"
)

func (ctrl *RunController) GetById(c *fiber.Ctx) error {
	runId := c.Params("runId")

	run, err := ctrl.runRepo.GetById(runId)
	if err != nil {
		return response.SendInternalError(c, err)
	}
	if run == nil {
		return response.SendNotFound(c, "Run not found")
	}

	errs := []roster.RowError{}
	report, err := ctrl.reportRepo.GetByRun(runId)
	if err != nil {
		// The ledger record is still useful without its report.
		slog.Warn("Run GetById report lookup failed", "error", err, "run_id", runId)
	} else if report != nil && report.Errors != nil {
		errs = report.Errors
	}

	return response.SendSuccess(c, "Run fetched", payload.RunDetailPayload{
		Run:    run,
		Errors: errs,
	})
}
