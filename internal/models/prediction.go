package models

import "time"

// Prediction is one user's podium guess for a category in a league.
//
// EventFinished is the scoring idempotency marker: the orchestrator only ever
// reads predictions with event_finished=false and flips the flag in the same
// guarded update that writes the score, so a prediction can never be scored
// twice. Finished predictions are never edited or deleted.
type Prediction struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	LeagueID   string `gorm:"type:varchar(100);not null;index:idx_prediction_scope"`
	EventID    uint64 `gorm:"not null;index:idx_prediction_scope"`
	CategoryID int    `gorm:"not null;index:idx_prediction_scope"`
	UserID     string `gorm:"type:varchar(100);not null;index"`
	UserName   string `gorm:"type:text"`

	First  string `gorm:"type:varchar(100);not null"`
	Second string `gorm:"type:varchar(100);not null"`
	Third  string `gorm:"type:varchar(100);not null"`

	Locked        bool `gorm:"not null;default:false"`
	EventFinished bool `gorm:"not null;default:false;index"`

	ScoreFirst  *int       `gorm:""`
	ScoreSecond *int       `gorm:""`
	ScoreThird  *int       `gorm:""`
	ScoreTotal  *int       `gorm:"index"`
	ScoredAt    *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Prediction) TableName() string {
	return "predictions"
}
