package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Category statuses as reported by the results provider.
const (
	CategoryStatusPending  = "pending"
	CategoryStatusActive   = "active"
	CategoryStatusFinished = "finished"
)

// Category is one discipline/gender bracket within an event ("Boulder Women").
// The ordered list is stored as jsonb on the Event row.
type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url,omitempty"`
}

type Event struct {
	ID           uint64         `gorm:"primaryKey"`
	Name         string         `gorm:"type:text;not null"`
	Location     string         `gorm:"type:text"`
	Season       string         `gorm:"type:varchar(20);index"`
	Status       string         `gorm:"type:varchar(20);index"`
	Categories   datatypes.JSON `gorm:"type:jsonb;not null"`
	LastSyncedAt time.Time      `gorm:"type:timestamptz;not null"`
	RawJSON      datatypes.JSON `gorm:"type:jsonb"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) CategoryList() ([]Category, error) {
	if len(e.Categories) == 0 {
		return nil, nil
	}
	var cats []Category
	if err := json.Unmarshal(e.Categories, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (e *Event) SetCategoryList(cats []Category) error {
	raw, err := json.Marshal(cats)
	if err != nil {
		return err
	}
	e.Categories = datatypes.JSON(raw)
	return nil
}

// HasUnfinishedCategory reports whether any category is still pending or
// active, which is what forces a refresh of the event document on sync.
func (e *Event) HasUnfinishedCategory() bool {
	cats, err := e.CategoryList()
	if err != nil {
		return true
	}
	for _, c := range cats {
		if c.Status != CategoryStatusFinished {
			return true
		}
	}
	return false
}
