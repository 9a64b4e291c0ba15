package models

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ScoringRun is the audit record of one scoring invocation for an event.
// A failed run keeps its partial counts; re-invoking is always safe because
// the per-prediction guard makes the pipeline resumable.
type ScoringRun struct {
	ID         string     `gorm:"primaryKey;type:uuid"`
	EventID    uint64     `gorm:"not null;index"`
	Status     string     `gorm:"type:varchar(20);not null;index"`
	Processed  int        `gorm:"not null;default:0"`
	Leagues    int        `gorm:"not null;default:0"`
	Categories int        `gorm:"not null;default:0"`
	Error      string     `gorm:"type:text"`
	StartedAt  time.Time  `gorm:"type:timestamptz;not null"`
	FinishedAt *time.Time `gorm:"type:timestamptz"`
}

func (ScoringRun) TableName() string {
	return "scoring_runs"
}
