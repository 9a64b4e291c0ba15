package ifsc

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EventDocument struct {
	ID         uint64             `json:"event_id"`
	Name       string             `json:"name"`
	Location   string             `json:"location"`
	Season     string             `json:"season"`
	Status     string             `json:"status"`
	Categories []CategoryDocument `json:"d_cats"`
}

type CategoryDocument struct {
	ID        int    `json:"dcat_id"`
	Name      string `json:"dcat_name"`
	Status    string `json:"status"`
	ResultURL string `json:"full_results_url"`
}

type ResultDocument struct {
	CategoryName string         `json:"dcat_name"`
	Status       string         `json:"status"`
	Ranking      []RankingEntry `json:"ranking"`
}

type RankingEntry struct {
	Rank      int    `json:"rank"`
	AthleteID string `json:"athlete_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Country   string `json:"country"`
}

func (e RankingEntry) AthleteName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

func parseEventDocument(body []byte) (*EventDocument, error) {
	var doc EventDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse event document: %w", err)
	}
	if doc.ID == 0 {
		return nil, fmt.Errorf("event document missing event_id")
	}
	return &doc, nil
}

func parseResultDocument(body []byte) (*ResultDocument, error) {
	var doc ResultDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse result document: %w", err)
	}
	return &doc, nil
}
