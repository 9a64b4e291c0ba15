package service

import (
	"context"

	"crux/internal/models"
	"crux/internal/repository"
)

// StandingsService serves league standings and paginated leaderboards.
type StandingsService struct {
	Repo repository.Repository
}

type StandingView struct {
	UserID       string                 `json:"user_id"`
	UserName     string                 `json:"user_name"`
	TotalPoints  int                    `json:"total_points"`
	EventResults []models.StandingEntry `json:"event_results"`
}

type LeaderboardRow struct {
	Rank int `json:"rank"`
	StandingView
}

type Leaderboard struct {
	Rankings []LeaderboardRow `json:"rankings"`
	Total    int64            `json:"total"`
}

func (s *StandingsService) LeagueStandings(ctx context.Context, leagueID string) ([]StandingView, error) {
	items, err := s.Repo.ListStandingsByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	views := make([]StandingView, 0, len(items))
	for _, item := range items {
		view, err := toStandingView(item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *StandingsService) UserStanding(ctx context.Context, leagueID, userID string) (*StandingView, error) {
	item, err := s.Repo.GetStanding(ctx, leagueID, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	view, err := toStandingView(*item)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Leaderboard assigns dense ranks 1..N over the points-descending order of
// the whole league; offset shifts into that order, so page boundaries keep
// globally consistent rank numbers.
func (s *StandingsService) Leaderboard(ctx context.Context, leagueID string, limit, offset int) (Leaderboard, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	total, err := s.Repo.CountStandingsByLeague(ctx, leagueID)
	if err != nil {
		return Leaderboard{}, err
	}
	items, err := s.Repo.ListStandingsPage(ctx, leagueID, limit, offset)
	if err != nil {
		return Leaderboard{}, err
	}
	rows := make([]LeaderboardRow, 0, len(items))
	for i, item := range items {
		view, err := toStandingView(item)
		if err != nil {
			return Leaderboard{}, err
		}
		rows = append(rows, LeaderboardRow{
			Rank:         offset + i + 1,
			StandingView: view,
		})
	}
	return Leaderboard{Rankings: rows, Total: total}, nil
}

func toStandingView(item models.Standing) (StandingView, error) {
	history, err := item.History()
	if err != nil {
		return StandingView{}, err
	}
	if history == nil {
		history = []models.StandingEntry{}
	}
	return StandingView{
		UserID:       item.UserID,
		UserName:     item.UserName,
		TotalPoints:  item.TotalPoints,
		EventResults: history,
	}, nil
}
