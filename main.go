package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sunthewhat/easy-cert-batch/api"
	certificate_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/certificate"
	run_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/run"
	runmodel "github.com/sunthewhat/easy-cert-batch/api/model/runModel"
	"github.com/sunthewhat/easy-cert-batch/api/routes"
	"github.com/sunthewhat/easy-cert-batch/common"
	"github.com/sunthewhat/easy-cert-batch/common/config"
	"github.com/sunthewhat/easy-cert-batch/common/gorm"
	"github.com/sunthewhat/easy-cert-batch/common/mongo"
	"github.com/sunthewhat/easy-cert-batch/common/util"
	"github.com/sunthewhat/easy-cert-batch/internal/batch"
	"github.com/sunthewhat/easy-cert-batch/internal/layout"
	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
)

func main() {
	isPushDB := flag.Bool("PushDB", false, "Run database migration")
	isPullDB := flag.Bool("PullDB", false, "Run database pulling")
	isRunAfter := flag.Bool("Run", false, "Run after db process")
	flag.Parse()
	config.LoadConfig()
	if *isPushDB || *isPullDB {
		if *isPullDB {
			gorm.Pull_db()
		}
		if *isPushDB {
			gorm.Push_db()
		}
		if !*isRunAfter {
			return
		}
	}

	gorm.InitGorm()
	mongo.InitMongo()
	if err := util.InitMinIO(); err != nil {
		slog.Error("Failed to initialize MinIO", "error", err)
		os.Exit(1)
	}

	resources := storage.NewMinIOStore(common.MinIOClient, *common.Config.BucketResource)
	archives := storage.NewMinIOStore(common.MinIOClient, *common.Config.BucketCertificate)

	engine, err := layout.NewEngine()
	if err != nil {
		slog.Error("Failed to load certificate fonts", "error", err)
		os.Exit(1)
	}

	signer, err := renderer.NewCertificateSigner(signerConfig(common.Config.SigningEnabled, common.Config.SigningCertPath, common.Config.SigningKeyPath))
	if err != nil {
		slog.Warn("Failed to initialize certificate signer, PDFs will be unsigned", "error", err)
		signer = nil
	}
	locale, err := renderer.ParseDateLocale(common.Config.DateLocaleOrDefault())
	if err != nil {
		slog.Error("Invalid date locale", "error", err)
		os.Exit(1)
	}
	certRenderer := renderer.NewRenderer(engine, signer).WithDateLocale(locale)

	runRepo := runmodel.NewRunRepository(common.Gorm)
	reportRepo := runmodel.NewReportRepository(common.Mongo)
	if err := reportRepo.EnsureIndexes(context.Background()); err != nil {
		slog.Warn("Failed to ensure report indexes", "error", err)
	}

	orchestrator := batch.New(certRenderer, archives, runRepo, reportRepo, batch.Config{
		Workers:      common.Config.WorkerCount(),
		VerifyPrefix: common.Config.VerifyPrefixOrDefault(),
	})

	if days := common.Config.RetentionDays(); days > 0 {
		util.StartArchiveCleanupJob(archives, time.Duration(days)*24*time.Hour)
	}

	api.InitFiber(routes.Controllers{
		Certificate: certificate_controller.NewCertificateController(orchestrator, certRenderer, resources, common.Config.MaxUploadBytes()),
		Run:         run_controller.NewRunController(runRepo, reportRepo, archives),
	})
}

func signerConfig(enabled *bool, certPath, keyPath *string) renderer.SignerConfig {
	cfg := renderer.SignerConfig{}
	if enabled != nil {
		cfg.Enabled = *enabled
	}
	if certPath != nil {
		cfg.CertPath = *certPath
	}
	if keyPath != nil {
		cfg.KeyPath = *keyPath
	}
	return cfg
}
