package run_controller

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/type/response"
	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
)

// GetAll lists every run, newest first
func (ctrl *RunController) GetAll(c *fiber.Ctx) error {
	runs := []*model.Run{}
	for run, err := range ctrl.runRepo.List() {
		if err != nil {
			slog.Error("Run GetAll failed", "error", err)
			return response.SendInternalError(c, err)
		}
		runs = append(runs, run)
	}

	return response.SendSuccess(c, "Runs fetched", runs)
}
