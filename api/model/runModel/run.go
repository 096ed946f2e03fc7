package runmodel

import (
	"errors"
	"iter"
	"log/slog"

	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAlreadyRecorded = errors.New("run already recorded")

// RunRepository is the append-only run ledger in PostgreSQL.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a run. Records are never overwritten: a second write with the
// same ID returns ErrAlreadyRecorded.
func (r *RunRepository) Record(run *model.Run) error {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(run)
	if result.Error != nil {
		slog.Error("Run Record", "error", result.Error, "run_id", run.ID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}

// List streams runs newest first without loading the whole history.
func (r *RunRepository) List() iter.Seq2[*model.Run, error] {
	return func(yield func(*model.Run, error) bool) {
		rows, err := r.db.Model(&model.Run{}).Order("created_at DESC").Order("id DESC").Rows()
		if err != nil {
			slog.Error("Run List", "error", err)
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var run model.Run
			if err := r.db.ScanRows(rows, &run); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&run, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (r *RunRepository) GetAll() ([]*model.Run, error) {
	var runs []*model.Run
	for run, err := range r.List() {
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *RunRepository) GetById(runId string) (*model.Run, error) {
	var run model.Run
	queryErr := r.db.Where("id = ?", runId).First(&run).Error

	if queryErr != nil {
		if errors.Is(queryErr, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Run GetById", "error", queryErr, "run_id", runId)
		return nil, queryErr
	}

	return &run, nil
}
