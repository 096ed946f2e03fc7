package routes

import (
	"github.com/gofiber/fiber/v2"
	certificate_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/certificate"
)

func SetupCertificateRoutes(router fiber.Router, ctrl *certificate_controller.CertificateController) {
	router.Post("template", ctrl.UploadTemplate)
	router.Post("generate", ctrl.Generate)
	router.Get("template/preview", ctrl.Preview)
	router.Get("sample", ctrl.Sample)
}
