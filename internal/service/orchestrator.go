package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crux/internal/models"
	"crux/internal/repository"
	"crux/internal/scoring"
)

// ScoringOrchestrator drives one scoring run for an event: sync results,
// extract podiums, fan out over leagues x categories x unscored predictions,
// persist scores and fold them into standings.
//
// The run is resumable, not atomic. Every prediction update is an independent
// guarded write, so a failed run leaves committed scores in place and the
// remainder still eligible; recovery is re-invoking ScoreEvent, never
// rollback.
type ScoringOrchestrator struct {
	Repo   repository.Repository
	Sync   *ResultsSyncService
	Rules  scoring.Rules
	Logger *zap.Logger

	mu      sync.Mutex
	running map[uint64]struct{}
}

type ScoreResult struct {
	RunID      string `json:"run_id"`
	Processed  int    `json:"processed"`
	Leagues    int    `json:"leagues"`
	Categories int    `json:"categories"`
}

type categoryPodium struct {
	CategoryID   int
	CategoryName string
	Podium       scoring.Podium
}

func (o *ScoringOrchestrator) ScoreEvent(ctx context.Context, eventID uint64) (ScoreResult, error) {
	if eventID == 0 {
		return ScoreResult{}, ErrInvalidEventID
	}
	if !o.acquire(eventID) {
		return ScoreResult{}, ErrRunInProgress
	}
	defer o.release(eventID)

	run := &models.ScoringRun{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := o.Repo.InsertScoringRun(ctx, run); err != nil {
		o.logWarn("failed to record scoring run", err, zap.Uint64("event_id", eventID))
	}
	result := ScoreResult{RunID: run.ID}

	if _, err := o.Sync.Sync(ctx, eventID); err != nil {
		o.finishRun(ctx, run.ID, result, err)
		return result, err
	}

	results, err := o.Repo.ListAuthoritativeResultsByEvent(ctx, eventID)
	if err != nil {
		o.finishRun(ctx, run.ID, result, err)
		return result, err
	}
	if len(results) == 0 {
		o.finishRun(ctx, run.ID, result, ErrNoResults)
		return result, ErrNoResults
	}
	podiums, err := o.categoryPodiums(eventID, results)
	if err != nil {
		o.finishRun(ctx, run.ID, result, err)
		return result, err
	}
	result.Categories = len(podiums)

	leagueIDs, err := o.Repo.DistinctLeagueIDsByEvent(ctx, eventID)
	if err != nil {
		o.finishRun(ctx, run.ID, result, err)
		return result, err
	}
	if len(leagueIDs) == 0 {
		o.finishRun(ctx, run.ID, result, ErrNoLeagues)
		return result, ErrNoLeagues
	}

	for _, leagueID := range leagueIDs {
		scored, err := o.scoreLeague(ctx, eventID, leagueID, podiums)
		result.Processed += scored
		if err != nil {
			if scored > 0 {
				result.Leagues++
			}
			o.finishRun(ctx, run.ID, result, err)
			return result, err
		}
		if scored > 0 {
			result.Leagues++
		}
	}

	o.finishRun(ctx, run.ID, result, nil)
	o.logInfo("scoring run complete",
		zap.Uint64("event_id", eventID),
		zap.String("run_id", run.ID),
		zap.Int("processed", result.Processed),
		zap.Int("leagues", result.Leagues),
		zap.Int("categories", result.Categories),
	)
	return result, nil
}

// categoryPodiums derives podiums from the stored results of an event.
// Categories whose ranking has fewer than three entries have no podium and
// are dropped here; their predictions stay unscored and eligible. An event
// where every stored ranking is still short yields an empty slice, and the
// run completes with nothing processed.
func (o *ScoringOrchestrator) categoryPodiums(eventID uint64, results []models.AuthoritativeResult) ([]categoryPodium, error) {
	podiums := make([]categoryPodium, 0, len(results))
	for _, res := range results {
		ranking, err := res.RankingList()
		if err != nil {
			return nil, err
		}
		podium := scoring.ExtractPodium(ranking)
		if podium == nil {
			o.logInfo("category has no podium yet, skipping",
				zap.Uint64("event_id", eventID),
				zap.Int("category_id", res.CategoryID),
				zap.Int("ranked", len(ranking)),
			)
			continue
		}
		podiums = append(podiums, categoryPodium{
			CategoryID:   res.CategoryID,
			CategoryName: res.CategoryName,
			Podium:       *podium,
		})
	}
	return podiums, nil
}

func (o *ScoringOrchestrator) scoreLeague(ctx context.Context, eventID uint64, leagueID string, podiums []categoryPodium) (int, error) {
	scored := 0
	for _, cat := range podiums {
		predictions, err := o.Repo.ListUnscoredPredictions(ctx, repository.UnscoredPredictionsParams{
			EventID:    eventID,
			CategoryID: cat.CategoryID,
			LeagueID:   leagueID,
		})
		if err != nil {
			return scored, err
		}
		for _, pred := range predictions {
			guess := scoring.Podium{First: pred.First, Second: pred.Second, Third: pred.Third}
			breakdown := scoring.Score(cat.Podium, guess, o.Rules)
			now := time.Now().UTC()
			claimed, err := o.Repo.MarkPredictionScored(ctx, pred.ID, repository.PredictionScore{
				First:    breakdown.First,
				Second:   breakdown.Second,
				Third:    breakdown.Third,
				Total:    breakdown.Total,
				ScoredAt: now,
			})
			if err != nil {
				return scored, err
			}
			if !claimed {
				// Another run flipped the guard first; its standings
				// update belongs to that run.
				continue
			}
			err = o.Repo.ApplyStandingDelta(ctx, repository.StandingDelta{
				LeagueID:     leagueID,
				UserID:       pred.UserID,
				UserName:     pred.UserName,
				EventID:      eventID,
				CategoryID:   cat.CategoryID,
				CategoryName: cat.CategoryName,
				Points:       breakdown.Total,
				ScoredAt:     now,
			})
			if err != nil {
				return scored, err
			}
			scored++
		}
	}
	return scored, nil
}

func (o *ScoringOrchestrator) finishRun(ctx context.Context, runID string, result ScoreResult, runErr error) {
	update := repository.RunUpdate{
		Status:     models.RunStatusSucceeded,
		Processed:  result.Processed,
		Leagues:    result.Leagues,
		Categories: result.Categories,
		FinishedAt: time.Now().UTC(),
	}
	if runErr != nil {
		update.Status = models.RunStatusFailed
		update.Error = runErr.Error()
	}
	if err := o.Repo.FinishScoringRun(ctx, runID, update); err != nil {
		o.logWarn("failed to finalize scoring run", err, zap.String("run_id", runID))
	}
}

func (o *ScoringOrchestrator) acquire(eventID uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running == nil {
		o.running = make(map[uint64]struct{})
	}
	if _, busy := o.running[eventID]; busy {
		return false
	}
	o.running[eventID] = struct{}{}
	return true
}

func (o *ScoringOrchestrator) release(eventID uint64) {
	o.mu.Lock()
	delete(o.running, eventID)
	o.mu.Unlock()
}

func (o *ScoringOrchestrator) logWarn(msg string, err error, fields ...zap.Field) {
	if o == nil || o.Logger == nil {
		return
	}
	o.Logger.Warn(msg, append(fields, zap.Error(err))...)
}

func (o *ScoringOrchestrator) logInfo(msg string, fields ...zap.Field) {
	if o == nil || o.Logger == nil {
		return
	}
	o.Logger.Info(msg, fields...)
}
