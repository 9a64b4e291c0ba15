package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEventID = errors.New("invalid event id")
	ErrEventNotFound  = errors.New("event not found")
	ErrNoResults      = errors.New("no stored results for event")
	ErrNoLeagues      = errors.New("no leagues with predictions for event")
	ErrRunInProgress  = errors.New("scoring run already in progress for event")
)

// SyncError marks a provider fetch/parse failure; it is fatal to a scoring
// run and maps to an upstream-failure status at the HTTP boundary.
type SyncError struct {
	EventID uint64
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("results sync failed for event %d: %v", e.EventID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
