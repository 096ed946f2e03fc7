package mongo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sunthewhat/easy-cert-batch/common"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// InitMongo connects to the database holding run reports.
func InitMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(*common.Config.Mongo).
		SetAppName("easy-cert-batch").
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	if err := client.Ping(ctx, nil); err != nil {
		slog.Error("Failed to ping MongoDB", "error", err)
		os.Exit(1)
	}

	common.Mongo = client.Database(*common.Config.MongoDatabase)
	slog.Info("MongoDB Connected!", "database", *common.Config.MongoDatabase)
}
