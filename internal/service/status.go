package service

import (
	"context"
	"time"

	"crux/internal/repository"
)

// StatusService answers read-only questions about scoring progress.
type StatusService struct {
	Repo repository.Repository
}

type EventStatus struct {
	EventID           uint64     `json:"event_id"`
	EventName         string     `json:"event_name,omitempty"`
	PredictionsTotal  int64      `json:"predictions_total"`
	PredictionsScored int64      `json:"predictions_scored"`
	IsFullyScored     bool       `json:"is_fully_scored"`
	LastScored        *time.Time `json:"last_scored,omitempty"`
}

type EventsStatus struct {
	Events []EventStatus `json:"events"`
	Count  int64         `json:"count"`
}

func (s *StatusService) EventStatus(ctx context.Context, eventID uint64) (EventStatus, error) {
	if eventID == 0 {
		return EventStatus{}, ErrInvalidEventID
	}
	status := EventStatus{EventID: eventID}

	event, err := s.Repo.GetEvent(ctx, eventID)
	if err != nil {
		return EventStatus{}, err
	}
	if event != nil {
		status.EventName = event.Name
	}

	total, scored, err := s.Repo.CountPredictionsByEvent(ctx, eventID)
	if err != nil {
		return EventStatus{}, err
	}
	status.PredictionsTotal = total
	status.PredictionsScored = scored
	status.IsFullyScored = total > 0 && scored == total

	run, err := s.Repo.LastSucceededRun(ctx, eventID)
	if err != nil {
		return EventStatus{}, err
	}
	if run != nil {
		status.LastScored = run.FinishedAt
	}
	return status, nil
}

func (s *StatusService) EventsStatus(ctx context.Context, query string, limit, skip int) (EventsStatus, error) {
	params := repository.ListEventsParams{Limit: limit, Offset: skip}
	if query != "" {
		params.Query = &query
	}
	count, err := s.Repo.CountEvents(ctx, params)
	if err != nil {
		return EventsStatus{}, err
	}
	events, err := s.Repo.ListEvents(ctx, params)
	if err != nil {
		return EventsStatus{}, err
	}
	out := EventsStatus{Events: make([]EventStatus, 0, len(events)), Count: count}
	for _, event := range events {
		status, err := s.EventStatus(ctx, event.ID)
		if err != nil {
			return EventsStatus{}, err
		}
		out.Events = append(out.Events, status)
	}
	return out, nil
}
