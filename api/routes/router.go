package routes

import (
	"github.com/gofiber/fiber/v2"
	certificate_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/certificate"
	run_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/run"
	"github.com/sunthewhat/easy-cert-batch/type/response"
)

type Controllers struct {
	Certificate *certificate_controller.CertificateController
	Run         *run_controller.RunController
}

func Init(router fiber.Router, ctrl Controllers) {
	api := router.Group("api")

	api.Get("", func(c *fiber.Ctx) error {
		return response.SendSuccess(c, "easy-cert-batch api")
	})

	SetupCertificateRoutes(api, ctrl.Certificate)
	SetupRunRoutes(api, ctrl.Run)
}
