package runmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ReportCollection = "run_reports"

// RunReport holds the row-level errors of one run.
type RunReport struct {
	RunID     string            `bson:"run_id" json:"run_id"`
	Errors    []roster.RowError `bson:"errors" json:"errors"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}

type ReportRepository struct {
	db *mongo.Database
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{db: db}
}

// EnsureIndexes makes run_id unique so a run never has two reports.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(ReportCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("run_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", ReportCollection, err)
	}
	return nil
}

// Save stores the report for runID, replacing any earlier one.
func (r *ReportRepository) Save(runID string, errs []roster.RowError) error {
	if errs == nil {
		errs = []roster.RowError{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report := RunReport{RunID: runID, Errors: errs, CreatedAt: time.Now().UTC()}
	_, err := r.db.Collection(ReportCollection).ReplaceOne(ctx,
		bson.M{"run_id": runID},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		slog.Error("RunReport Save failed", "error", err, "run_id", runID)
		return err
	}

	return nil
}

func (r *ReportRepository) GetByRun(runID string) (*RunReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report RunReport
	err := r.db.Collection(ReportCollection).FindOne(ctx, bson.M{"run_id": runID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Error("RunReport GetByRun failed", "error", err, "run_id", runID)
		return nil, err
	}

	return &report, nil
}
