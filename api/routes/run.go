package routes

import (
	"github.com/gofiber/fiber/v2"
	run_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/run"
)

func SetupRunRoutes(router fiber.Router, ctrl *run_controller.RunController) {
	runGroup := router.Group("runs")

	runGroup.Get("", ctrl.GetAll)
	runGroup.Get(":runId", ctrl.GetById)
	runGroup.Get(":runId/archive", ctrl.DownloadArchive)
}
