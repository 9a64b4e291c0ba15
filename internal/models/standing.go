package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// StandingEntry is one scored (event, category) contribution in a standing's
// history list.
type StandingEntry struct {
	EventID      uint64    `json:"event_id"`
	CategoryID   int       `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Points       int       `json:"points"`
	ScoredAt     time.Time `json:"scored_at"`
}

// Standing is the cumulative score for one user inside one league.
//
// Invariant: TotalPoints equals the sum of EventHistory[].Points. The
// repository maintains it by incrementing the total and appending the entry
// in a single atomic upsert; there is no read-then-write path.
type Standing struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	LeagueID     string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_standing_league_user"`
	UserID       string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_standing_league_user"`
	UserName     string         `gorm:"type:text"`
	TotalPoints  int            `gorm:"not null;default:0;index"`
	EventHistory datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	LastUpdated  time.Time      `gorm:"type:timestamptz;not null"`
}

func (Standing) TableName() string {
	return "standings"
}

func (s *Standing) History() ([]StandingEntry, error) {
	if len(s.EventHistory) == 0 {
		return nil, nil
	}
	var entries []StandingEntry
	if err := json.Unmarshal(s.EventHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
