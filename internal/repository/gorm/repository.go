package gormrepository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crux/internal/models"
	"crux/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- events -----------------------------------------------------------------

func (s *Store) GetEvent(ctx context.Context, eventID uint64) (*models.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Event
	err := s.db.WithContext(ctx).First(&item, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertEvent(ctx context.Context, item *models.Event) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"location",
			"season",
			"status",
			"categories",
			"last_synced_at",
			"raw_json",
		}),
	}).Create(item).Error
}

func (s *Store) ListEvents(ctx context.Context, params repository.ListEventsParams) ([]models.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyEventFilters(ctx, params)
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.Event
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountEvents(ctx context.Context, params repository.ListEventsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.applyEventFilters(ctx, params).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) applyEventFilters(ctx context.Context, params repository.ListEventsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Event{})
	if params.Query != nil && strings.TrimSpace(*params.Query) != "" {
		query = query.Where("name ILIKE ?", "%"+strings.TrimSpace(*params.Query)+"%")
	}
	if params.Season != nil && strings.TrimSpace(*params.Season) != "" {
		query = query.Where("season = ?", strings.TrimSpace(*params.Season))
	}
	return query
}

// --- authoritative results --------------------------------------------------

func (s *Store) GetAuthoritativeResult(ctx context.Context, eventID uint64, categoryID int) (*models.AuthoritativeResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.AuthoritativeResult
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND category_id = ?", eventID, categoryID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertAuthoritativeResult(ctx context.Context, item *models.AuthoritativeResult) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	// DoNothing keeps a stored ranking final even if two syncs race.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "category_id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) ListAuthoritativeResultsByEvent(ctx context.Context, eventID uint64) ([]models.AuthoritativeResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AuthoritativeResult
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("category_id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- predictions ------------------------------------------------------------

func (s *Store) DistinctLeagueIDsByEvent(ctx context.Context, eventID uint64) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("event_id = ?", eventID).
		Distinct().
		Order("league_id asc").
		Pluck("league_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) ListUnscoredPredictions(ctx context.Context, params repository.UnscoredPredictionsParams) ([]models.Prediction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Prediction
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", params.EventID).
		Where("category_id = ?", params.CategoryID).
		Where("league_id = ?", params.LeagueID).
		Where("event_finished = ?", false).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkPredictionScored(ctx context.Context, predictionID uint64, score repository.PredictionScore) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	// The event_finished guard is the idempotency barrier: a prediction
	// already claimed by another run matches zero rows here.
	res := s.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("id = ? AND event_finished = ?", predictionID, false).
		Updates(map[string]any{
			"score_first":    score.First,
			"score_second":   score.Second,
			"score_third":    score.Third,
			"score_total":    score.Total,
			"scored_at":      score.ScoredAt,
			"event_finished": true,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) CountPredictionsByEvent(ctx context.Context, eventID uint64) (int64, int64, error) {
	if s == nil || s.db == nil {
		return 0, 0, nil
	}
	var total, scored int64
	if err := s.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("event_id = ?", eventID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("event_id = ? AND event_finished = ?", eventID, true).
		Count(&scored).Error; err != nil {
		return 0, 0, err
	}
	return total, scored, nil
}

func (s *Store) ListUnscoredEventIDs(ctx context.Context) ([]uint64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []uint64
	if err := s.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("event_finished = ?", false).
		Distinct().
		Order("event_id asc").
		Pluck("event_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// --- standings --------------------------------------------------------------

func (s *Store) ApplyStandingDelta(ctx context.Context, delta repository.StandingDelta) error {
	if s == nil || s.db == nil {
		return nil
	}
	entry := []models.StandingEntry{{
		EventID:      delta.EventID,
		CategoryID:   delta.CategoryID,
		CategoryName: delta.CategoryName,
		Points:       delta.Points,
		ScoredAt:     delta.ScoredAt,
	}}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	item := &models.Standing{
		LeagueID:     delta.LeagueID,
		UserID:       delta.UserID,
		UserName:     delta.UserName,
		TotalPoints:  delta.Points,
		EventHistory: entryJSON,
		LastUpdated:  delta.ScoredAt,
	}
	// Single atomic increment-and-append; this is what holds the
	// total_points == sum(event_history[].points) invariant.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "league_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"user_name":     delta.UserName,
			"total_points":  gorm.Expr("standings.total_points + ?", delta.Points),
			"event_history": gorm.Expr("standings.event_history || ?::jsonb", string(entryJSON)),
			"last_updated":  delta.ScoredAt,
		}),
	}).Create(item).Error
}

func (s *Store) GetStanding(ctx context.Context, leagueID, userID string) (*models.Standing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Standing
	err := s.db.WithContext(ctx).
		Where("league_id = ? AND user_id = ?", leagueID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListStandingsByLeague(ctx context.Context, leagueID string) ([]models.Standing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Standing
	if err := s.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("total_points desc, user_id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListStandingsPage(ctx context.Context, leagueID string, limit, offset int) ([]models.Standing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	offset = normalizeOffset(offset)
	var items []models.Standing
	if err := s.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("total_points desc, user_id asc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountStandingsByLeague(ctx context.Context, leagueID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Standing{}).
		Where("league_id = ?", leagueID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --- scoring runs -----------------------------------------------------------

func (s *Store) InsertScoringRun(ctx context.Context, item *models.ScoringRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FinishScoringRun(ctx context.Context, runID string, update repository.RunUpdate) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.ScoringRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":      update.Status,
			"processed":   update.Processed,
			"leagues":     update.Leagues,
			"categories":  update.Categories,
			"error":       update.Error,
			"finished_at": update.FinishedAt,
		}).Error
}

func (s *Store) ListScoringRuns(ctx context.Context, params repository.ListRunsParams) ([]models.ScoringRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ScoringRun{})
	if params.EventID != nil {
		query = query.Where("event_id = ?", *params.EventID)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.ScoringRun
	if err := query.Order("started_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LastSucceededRun(ctx context.Context, eventID uint64) (*models.ScoringRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ScoringRun
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, models.RunStatusSucceeded).
		Order("finished_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- helpers ----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
