package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"

	"crux/internal/models"
	"crux/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	events      map[uint64]*models.Event
	results     map[string]*models.AuthoritativeResult
	predictions map[uint64]*models.Prediction
	standings   map[string]*models.Standing
	runs        map[string]*models.ScoringRun

	// failMarkAfter, when > 0, makes MarkPredictionScored fail once the
	// given number of successful marks has happened.
	failMarkAfter int
	markCount     int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		events:      map[uint64]*models.Event{},
		results:     map[string]*models.AuthoritativeResult{},
		predictions: map[uint64]*models.Prediction{},
		standings:   map[string]*models.Standing{},
		runs:        map[string]*models.ScoringRun{},
	}
}

func resultKey(eventID uint64, categoryID int) string {
	return fmt.Sprintf("%d/%d", eventID, categoryID)
}

func standingKey(leagueID, userID string) string {
	return leagueID + "|" + userID
}

func (s *stubRepo) GetEvent(ctx context.Context, eventID uint64) (*models.Event, error) {
	if e, ok := s.events[eventID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) UpsertEvent(ctx context.Context, item *models.Event) error {
	copied := *item
	s.events[item.ID] = &copied
	return nil
}

func (s *stubRepo) ListEvents(ctx context.Context, params repository.ListEventsParams) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *stubRepo) CountEvents(ctx context.Context, params repository.ListEventsParams) (int64, error) {
	return int64(len(s.events)), nil
}

func (s *stubRepo) GetAuthoritativeResult(ctx context.Context, eventID uint64, categoryID int) (*models.AuthoritativeResult, error) {
	if r, ok := s.results[resultKey(eventID, categoryID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) InsertAuthoritativeResult(ctx context.Context, item *models.AuthoritativeResult) error {
	key := resultKey(item.EventID, item.CategoryID)
	if _, exists := s.results[key]; exists {
		return nil
	}
	copied := *item
	s.results[key] = &copied
	return nil
}

func (s *stubRepo) ListAuthoritativeResultsByEvent(ctx context.Context, eventID uint64) ([]models.AuthoritativeResult, error) {
	var out []models.AuthoritativeResult
	for _, r := range s.results {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (s *stubRepo) DistinctLeagueIDsByEvent(ctx context.Context, eventID uint64) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range s.predictions {
		if p.EventID != eventID {
			continue
		}
		if _, ok := seen[p.LeagueID]; ok {
			continue
		}
		seen[p.LeagueID] = struct{}{}
		out = append(out, p.LeagueID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *stubRepo) ListUnscoredPredictions(ctx context.Context, params repository.UnscoredPredictionsParams) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range s.predictions {
		if p.EventID == params.EventID && p.CategoryID == params.CategoryID &&
			p.LeagueID == params.LeagueID && !p.EventFinished {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) MarkPredictionScored(ctx context.Context, predictionID uint64, score repository.PredictionScore) (bool, error) {
	if s.failMarkAfter > 0 && s.markCount >= s.failMarkAfter {
		return false, fmt.Errorf("injected mark failure")
	}
	p, ok := s.predictions[predictionID]
	if !ok || p.EventFinished {
		return false, nil
	}
	first, second, third, total := score.First, score.Second, score.Third, score.Total
	scoredAt := score.ScoredAt
	p.ScoreFirst = &first
	p.ScoreSecond = &second
	p.ScoreThird = &third
	p.ScoreTotal = &total
	p.ScoredAt = &scoredAt
	p.EventFinished = true
	s.markCount++
	return true, nil
}

func (s *stubRepo) CountPredictionsByEvent(ctx context.Context, eventID uint64) (int64, int64, error) {
	var total, scored int64
	for _, p := range s.predictions {
		if p.EventID != eventID {
			continue
		}
		total++
		if p.EventFinished {
			scored++
		}
	}
	return total, scored, nil
}

func (s *stubRepo) ListUnscoredEventIDs(ctx context.Context) ([]uint64, error) {
	seen := map[uint64]struct{}{}
	var out []uint64
	for _, p := range s.predictions {
		if p.EventFinished {
			continue
		}
		if _, ok := seen[p.EventID]; ok {
			continue
		}
		seen[p.EventID] = struct{}{}
		out = append(out, p.EventID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *stubRepo) ApplyStandingDelta(ctx context.Context, delta repository.StandingDelta) error {
	key := standingKey(delta.LeagueID, delta.UserID)
	entry := models.StandingEntry{
		EventID:      delta.EventID,
		CategoryID:   delta.CategoryID,
		CategoryName: delta.CategoryName,
		Points:       delta.Points,
		ScoredAt:     delta.ScoredAt,
	}
	standing, ok := s.standings[key]
	if !ok {
		standing = &models.Standing{
			ID:           uint64(len(s.standings) + 1),
			LeagueID:     delta.LeagueID,
			UserID:       delta.UserID,
			EventHistory: datatypes.JSON([]byte(`[]`)),
		}
		s.standings[key] = standing
	}
	var history []models.StandingEntry
	if err := json.Unmarshal(standing.EventHistory, &history); err != nil {
		return err
	}
	history = append(history, entry)
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	standing.UserName = delta.UserName
	standing.TotalPoints += delta.Points
	standing.EventHistory = datatypes.JSON(raw)
	standing.LastUpdated = delta.ScoredAt
	return nil
}

func (s *stubRepo) GetStanding(ctx context.Context, leagueID, userID string) (*models.Standing, error) {
	if st, ok := s.standings[standingKey(leagueID, userID)]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) ListStandingsByLeague(ctx context.Context, leagueID string) ([]models.Standing, error) {
	var out []models.Standing
	for _, st := range s.standings {
		if st.LeagueID == leagueID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *stubRepo) ListStandingsPage(ctx context.Context, leagueID string, limit, offset int) ([]models.Standing, error) {
	all, err := s.ListStandingsByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *stubRepo) CountStandingsByLeague(ctx context.Context, leagueID string) (int64, error) {
	var count int64
	for _, st := range s.standings {
		if st.LeagueID == leagueID {
			count++
		}
	}
	return count, nil
}

func (s *stubRepo) InsertScoringRun(ctx context.Context, item *models.ScoringRun) error {
	copied := *item
	s.runs[item.ID] = &copied
	return nil
}

func (s *stubRepo) FinishScoringRun(ctx context.Context, runID string, update repository.RunUpdate) error {
	run, ok := s.runs[runID]
	if !ok {
		return nil
	}
	run.Status = update.Status
	run.Processed = update.Processed
	run.Leagues = update.Leagues
	run.Categories = update.Categories
	run.Error = update.Error
	finished := update.FinishedAt
	run.FinishedAt = &finished
	return nil
}

func (s *stubRepo) ListScoringRuns(ctx context.Context, params repository.ListRunsParams) ([]models.ScoringRun, error) {
	var out []models.ScoringRun
	for _, run := range s.runs {
		if params.EventID != nil && run.EventID != *params.EventID {
			continue
		}
		if params.Status != nil && run.Status != *params.Status {
			continue
		}
		out = append(out, *run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *stubRepo) LastSucceededRun(ctx context.Context, eventID uint64) (*models.ScoringRun, error) {
	var latest *models.ScoringRun
	for _, run := range s.runs {
		if run.EventID != eventID || run.Status != models.RunStatusSucceeded || run.FinishedAt == nil {
			continue
		}
		if latest == nil || run.FinishedAt.After(*latest.FinishedAt) {
			copied := *run
			latest = &copied
		}
	}
	return latest, nil
}

// --- fixture helpers --------------------------------------------------------

func (s *stubRepo) addEvent(eventID uint64, name string, cats []models.Category) *models.Event {
	event := &models.Event{
		ID:           eventID,
		Name:         name,
		LastSyncedAt: time.Now().UTC(),
	}
	if err := event.SetCategoryList(cats); err != nil {
		panic(err)
	}
	s.events[eventID] = event
	return event
}

func (s *stubRepo) addResult(eventID uint64, categoryID int, name string, athleteIDs ...string) {
	entries := make([]models.RankedEntry, 0, len(athleteIDs))
	for i, id := range athleteIDs {
		entries = append(entries, models.RankedEntry{Rank: i + 1, AthleteID: id})
	}
	item := &models.AuthoritativeResult{
		EventID:      eventID,
		CategoryID:   categoryID,
		CategoryName: name,
		Status:       models.CategoryStatusFinished,
		FetchedAt:    time.Now().UTC(),
	}
	if err := item.SetRankingList(entries); err != nil {
		panic(err)
	}
	s.results[resultKey(eventID, categoryID)] = item
}

func (s *stubRepo) addPrediction(id uint64, leagueID string, eventID uint64, categoryID int, userID, first, second, third string) {
	s.predictions[id] = &models.Prediction{
		ID:         id,
		LeagueID:   leagueID,
		EventID:    eventID,
		CategoryID: categoryID,
		UserID:     userID,
		UserName:   "user " + userID,
		First:      first,
		Second:     second,
		Third:      third,
	}
}
