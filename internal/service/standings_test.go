package service

import (
	"context"
	"testing"
	"time"

	"crux/internal/repository"
)

func seedStanding(t *testing.T, repo *stubRepo, leagueID, userID string, points ...int) {
	t.Helper()
	for i, p := range points {
		err := repo.ApplyStandingDelta(context.Background(), repository.StandingDelta{
			LeagueID:     leagueID,
			UserID:       userID,
			UserName:     "user " + userID,
			EventID:      uint64(100 + i),
			CategoryID:   1,
			CategoryName: "Boulder Women",
			Points:       p,
			ScoredAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("apply delta: %v", err)
		}
	}
}

func TestStandingInvariant(t *testing.T) {
	repo := newStubRepo()
	seedStanding(t, repo, "L1", "u1", 45, 15, 0, 30)

	st, _ := repo.GetStanding(context.Background(), "L1", "u1")
	if st.TotalPoints != 90 {
		t.Fatalf("total=%d want 90", st.TotalPoints)
	}
	history, err := st.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history len=%d want 4", len(history))
	}
	sum := 0
	for _, entry := range history {
		sum += entry.Points
	}
	if sum != st.TotalPoints {
		t.Fatalf("total=%d but history sums to %d", st.TotalPoints, sum)
	}
}

func TestLeagueStandings_SortedByPoints(t *testing.T) {
	repo := newStubRepo()
	seedStanding(t, repo, "L1", "u1", 10)
	seedStanding(t, repo, "L1", "u2", 45)
	seedStanding(t, repo, "L1", "u3", 20)
	seedStanding(t, repo, "L2", "u9", 99)

	svc := &StandingsService{Repo: repo}
	standings, err := svc.LeagueStandings(context.Background(), "L1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("len=%d want 3", len(standings))
	}
	if standings[0].UserID != "u2" || standings[1].UserID != "u3" || standings[2].UserID != "u1" {
		t.Fatalf("order=%s,%s,%s", standings[0].UserID, standings[1].UserID, standings[2].UserID)
	}
}

func TestLeaderboard_RanksAndPagination(t *testing.T) {
	repo := newStubRepo()
	seedStanding(t, repo, "L1", "u1", 50)
	seedStanding(t, repo, "L1", "u2", 40)
	seedStanding(t, repo, "L1", "u3", 30)
	seedStanding(t, repo, "L1", "u4", 20)

	svc := &StandingsService{Repo: repo}
	board, err := svc.Leaderboard(context.Background(), "L1", 2, 0)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if board.Total != 4 {
		t.Fatalf("total=%d want 4", board.Total)
	}
	if len(board.Rankings) != 2 || board.Rankings[0].Rank != 1 || board.Rankings[1].Rank != 2 {
		t.Fatalf("page 1 = %+v", board.Rankings)
	}

	board, err = svc.Leaderboard(context.Background(), "L1", 2, 2)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(board.Rankings) != 2 || board.Rankings[0].Rank != 3 || board.Rankings[0].UserID != "u3" {
		t.Fatalf("page 2 = %+v", board.Rankings)
	}
}

func TestUserStanding_NotFound(t *testing.T) {
	svc := &StandingsService{Repo: newStubRepo()}
	standing, err := svc.UserStanding(context.Background(), "L1", "nobody")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if standing != nil {
		t.Fatalf("standing=%+v want nil", standing)
	}
}
