package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RankedEntry is one line of a category ranking, stored rank ascending.
type RankedEntry struct {
	Rank        int    `json:"rank"`
	AthleteID   string `json:"athlete_id"`
	AthleteName string `json:"athlete_name,omitempty"`
}

// AuthoritativeResult is the provider's ranking for one (event, category).
// Append-only: once a row exists for a category it is never re-fetched or
// overwritten (the insert is on-conflict-do-nothing).
type AuthoritativeResult struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	EventID      uint64         `gorm:"not null;uniqueIndex:idx_result_event_category"`
	CategoryID   int            `gorm:"not null;uniqueIndex:idx_result_event_category"`
	CategoryName string         `gorm:"type:text;not null"`
	Status       string         `gorm:"type:varchar(20);not null"`
	Ranking      datatypes.JSON `gorm:"type:jsonb;not null"`
	FetchedAt    time.Time      `gorm:"type:timestamptz;not null"`
	RawJSON      datatypes.JSON `gorm:"type:jsonb"`
}

func (AuthoritativeResult) TableName() string {
	return "authoritative_results"
}

func (r *AuthoritativeResult) RankingList() ([]RankedEntry, error) {
	if len(r.Ranking) == 0 {
		return nil, nil
	}
	var entries []RankedEntry
	if err := json.Unmarshal(r.Ranking, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AuthoritativeResult) SetRankingList(entries []RankedEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	r.Ranking = datatypes.JSON(raw)
	return nil
}
