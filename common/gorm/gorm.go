package gorm

import (
	"log/slog"
	"os"
	"time"

	slogGorm "github.com/orandin/slog-gorm"
	"github.com/sunthewhat/easy-cert-batch/common"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

func InitGorm() {
	// Configure slog-gorm logger
	lg := slogGorm.New(
		slogGorm.WithHandler(slog.Default().Handler()),
		slogGorm.WithSlowThreshold(100*time.Millisecond),
	)

	// Config GORM Connector
	connector := postgres.New(
		postgres.Config{
			DSN:                  *common.Config.Postgres,
			PreferSimpleProtocol: true,
		},
	)

	// Open connection
	db, connectionErr := gorm.Open(connector, &gorm.Config{
		Logger: lg,
	})

	if connectionErr != nil {
		slog.Error("Failed to connect to database", "error", connectionErr)
		os.Exit(1)
	}

	if replicas := replicaDialectors(common.Config.PostgresReplicas); len(replicas) > 0 {
		resolverErr := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if resolverErr != nil {
			slog.Error("Failed to register read replicas", "error", resolverErr)
			os.Exit(1)
		}
		slog.Info("GORM read replicas registered", "count", len(replicas))
	}

	slog.Info("GORM Connected!")

	common.Gorm = db
}

// Replicas serve history reads. Run records always go to the primary.
func replicaDialectors(dsns []*string) []gorm.Dialector {
	var dialectors []gorm.Dialector
	for _, dsn := range dsns {
		if dsn == nil || *dsn == "" {
			continue
		}
		dialectors = append(dialectors, postgres.New(postgres.Config{
			DSN:                  *dsn,
			PreferSimpleProtocol: true,
		}))
	}
	return dialectors
}
