package scoring

import (
	"testing"

	"crux/internal/models"
)

func TestScore_AllExact(t *testing.T) {
	actual := Podium{First: "A", Second: "B", Third: "C"}
	guess := Podium{First: "A", Second: "B", Third: "C"}
	b := Score(actual, guess, DefaultRules())
	if b.First != 20 || b.Second != 15 || b.Third != 10 {
		t.Fatalf("breakdown=%+v want 20/15/10", b)
	}
	if b.Total != 45 {
		t.Fatalf("total=%d want 45", b.Total)
	}
}

func TestScore_InPodiumBonus(t *testing.T) {
	actual := Podium{First: "A", Second: "B", Third: "C"}
	guess := Podium{First: "B", Second: "A", Third: "C"}
	rules := Rules{
		Exact:    PositionPoints{First: 20, Second: 15, Third: 10},
		InPodium: &PositionPoints{First: 5, Second: 5, Third: 5},
	}
	b := Score(actual, guess, rules)
	// B is actual second, A is actual first, C is exact.
	if b.First != 5 || b.Second != 5 || b.Third != 10 {
		t.Fatalf("breakdown=%+v want 5/5/10", b)
	}
	if b.Total != 20 {
		t.Fatalf("total=%d want 20", b.Total)
	}
}

func TestScore_NoBonusWithoutInPodium(t *testing.T) {
	actual := Podium{First: "A", Second: "B", Third: "C"}
	guess := Podium{First: "B", Second: "A", Third: "C"}
	b := Score(actual, guess, DefaultRules())
	if b.First != 0 || b.Second != 0 || b.Third != 10 {
		t.Fatalf("breakdown=%+v want 0/0/10", b)
	}
	if b.Total != 10 {
		t.Fatalf("total=%d want 10", b.Total)
	}
}

func TestScore_CompleteMiss(t *testing.T) {
	actual := Podium{First: "A", Second: "B", Third: "C"}
	guess := Podium{First: "X", Second: "Y", Third: "Z"}
	rules := Rules{
		Exact:    PositionPoints{First: 20, Second: 15, Third: 10},
		InPodium: &PositionPoints{First: 5, Second: 5, Third: 5},
	}
	b := Score(actual, guess, rules)
	if b.Total != 0 {
		t.Fatalf("total=%d want 0", b.Total)
	}
}

func TestExtractPodium_TopThreeInOrder(t *testing.T) {
	ranking := []models.RankedEntry{
		{Rank: 1, AthleteID: "a1"},
		{Rank: 2, AthleteID: "a2"},
		{Rank: 3, AthleteID: "a3"},
		{Rank: 4, AthleteID: "a4"},
	}
	p := ExtractPodium(ranking)
	if p == nil {
		t.Fatalf("podium is nil")
	}
	if p.First != "a1" || p.Second != "a2" || p.Third != "a3" {
		t.Fatalf("podium=%+v want a1/a2/a3", p)
	}
}

func TestExtractPodium_TooFewEntries(t *testing.T) {
	ranking := []models.RankedEntry{
		{Rank: 1, AthleteID: "a1"},
		{Rank: 2, AthleteID: "a2"},
	}
	if p := ExtractPodium(ranking); p != nil {
		t.Fatalf("podium=%+v want nil", p)
	}
	if p := ExtractPodium(nil); p != nil {
		t.Fatalf("podium=%+v want nil for empty ranking", p)
	}
}

func TestNewPodium_RejectsMissingMembers(t *testing.T) {
	if _, err := NewPodium("a", "b", ""); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewPodium("a", "b", "c"); err != nil {
		t.Fatalf("err=%v", err)
	}
}
