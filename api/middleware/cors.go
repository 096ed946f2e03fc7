package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Cors allows the configured origins. An empty list allows any origin.
func Cors(origins []string) fiber.Handler {
	allow := "*"
	if len(origins) > 0 {
		allow = strings.Join(origins, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:  allow,
		AllowMethods:  "GET,POST,OPTIONS",
		ExposeHeaders: "X-Run-Id,X-Run-Status,X-Run-Failed-Rows,Content-Disposition",
	})
}
