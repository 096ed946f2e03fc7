package model

import "time"

const TableNameRun = "runs"

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one ledger entry per batch invocation. It is written once and never updated.
type Run struct {
	ID               string    `gorm:"column:id;primaryKey;type:varchar(40)" json:"id"`
	Filename         string    `gorm:"column:filename;not null" json:"filename"`
	ParticipantCount int       `gorm:"column:participant_count;not null" json:"participant_count"`
	TotalRows        int       `gorm:"column:total_rows;not null" json:"total_rows"`
	FailedRows       int       `gorm:"column:failed_rows;not null" json:"failed_rows"`
	Status           RunStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	ArchiveURL       string    `gorm:"column:archive_url" json:"archive_url"`
	Reason           string    `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (*Run) TableName() string {
	return TableNameRun
}
