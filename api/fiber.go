package api

import (
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sunthewhat/easy-cert-batch/api/handler"
	"github.com/sunthewhat/easy-cert-batch/api/middleware"
	"github.com/sunthewhat/easy-cert-batch/api/routes"
	"github.com/sunthewhat/easy-cert-batch/common"
)

type AppConfig struct {
	BodyLimit   int
	CorsOrigins []string
}

func NewApp(ctrl routes.Controllers, appCfg AppConfig) *fiber.App {
	cfg := fiber.Config{
		AppName:       "easy-cert-batch",
		ErrorHandler:  handler.HandleError,
		Prefork:       false,
		StrictRouting: true,
		Network:       fiber.NetworkTCP,
		BodyLimit:     appCfg.BodyLimit,
	}
	app := fiber.New(cfg)

	app.Use(logger.New())
	app.Use(middleware.Recover())
	app.Use(middleware.Cors(appCfg.CorsOrigins))

	routes.Init(app, ctrl)

	app.Use(handler.HandleNotFound)

	return app
}

func InitFiber(ctrl routes.Controllers) {
	app := NewApp(ctrl, AppConfig{
		// Multipart framing needs headroom over the file limit itself.
		BodyLimit:   common.Config.MaxUploadBytes() + 1024*1024,
		CorsOrigins: common.Config.CorsOrigins(),
	})

	slog.Info("Starting server", "port", *common.Config.Port)
	err := app.Listen(*common.Config.Port)

	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
