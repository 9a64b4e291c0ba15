package repository

import (
	"context"
	"time"

	"crux/internal/models"
)

// Repository is the storage surface consumed by the sync, scoring and
// standings services.
type Repository interface {
	// Events
	GetEvent(ctx context.Context, eventID uint64) (*models.Event, error)
	UpsertEvent(ctx context.Context, item *models.Event) error
	ListEvents(ctx context.Context, params ListEventsParams) ([]models.Event, error)
	CountEvents(ctx context.Context, params ListEventsParams) (int64, error)

	// Authoritative results. Insert is on-conflict-do-nothing: a stored
	// ranking is final for its (event, category) pair.
	GetAuthoritativeResult(ctx context.Context, eventID uint64, categoryID int) (*models.AuthoritativeResult, error)
	InsertAuthoritativeResult(ctx context.Context, item *models.AuthoritativeResult) error
	ListAuthoritativeResultsByEvent(ctx context.Context, eventID uint64) ([]models.AuthoritativeResult, error)

	// Predictions
	DistinctLeagueIDsByEvent(ctx context.Context, eventID uint64) ([]string, error)
	ListUnscoredPredictions(ctx context.Context, params UnscoredPredictionsParams) ([]models.Prediction, error)
	MarkPredictionScored(ctx context.Context, predictionID uint64, score PredictionScore) (bool, error)
	CountPredictionsByEvent(ctx context.Context, eventID uint64) (total int64, scored int64, err error)
	ListUnscoredEventIDs(ctx context.Context) ([]uint64, error)

	// Standings
	ApplyStandingDelta(ctx context.Context, delta StandingDelta) error
	GetStanding(ctx context.Context, leagueID, userID string) (*models.Standing, error)
	ListStandingsByLeague(ctx context.Context, leagueID string) ([]models.Standing, error)
	ListStandingsPage(ctx context.Context, leagueID string, limit, offset int) ([]models.Standing, error)
	CountStandingsByLeague(ctx context.Context, leagueID string) (int64, error)

	// Scoring runs
	InsertScoringRun(ctx context.Context, item *models.ScoringRun) error
	FinishScoringRun(ctx context.Context, runID string, update RunUpdate) error
	ListScoringRuns(ctx context.Context, params ListRunsParams) ([]models.ScoringRun, error)
	LastSucceededRun(ctx context.Context, eventID uint64) (*models.ScoringRun, error)
}

type ListEventsParams struct {
	Limit  int
	Offset int
	Query  *string
	Season *string
}

type UnscoredPredictionsParams struct {
	EventID    uint64
	CategoryID int
	LeagueID   string
}

// PredictionScore is written onto a prediction in the same guarded update
// that flips event_finished.
type PredictionScore struct {
	First    int
	Second   int
	Third    int
	Total    int
	ScoredAt time.Time
}

// StandingDelta is one scored contribution folded into a (league, user)
// standing: increment total, append history, one atomic statement.
type StandingDelta struct {
	LeagueID     string
	UserID       string
	UserName     string
	EventID      uint64
	CategoryID   int
	CategoryName string
	Points       int
	ScoredAt     time.Time
}

type RunUpdate struct {
	Status     string
	Processed  int
	Leagues    int
	Categories int
	Error      string
	FinishedAt time.Time
}

type ListRunsParams struct {
	Limit   int
	Offset  int
	EventID *uint64
	Status  *string
}
