package certificate_controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
)

// Sample serves an example roster with the expected columns
func (ctrl *CertificateController) Sample(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, roster.SampleContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", roster.SampleFilename))
	return c.Send(roster.Sample())
}
