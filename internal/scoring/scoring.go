// Package scoring holds the pure podium-scoring rules. It performs no I/O so
// the same functions serve the orchestrator, ad hoc tooling and tests.
package scoring

import (
	"fmt"

	"crux/internal/models"
)

// Podium is the three highest-ranked athletes for a category, in rank order.
type Podium struct {
	First  string
	Second string
	Third  string
}

// NewPodium rejects podiums with missing members; a category with fewer than
// three ranked athletes has no podium at all.
func NewPodium(first, second, third string) (Podium, error) {
	if first == "" || second == "" || third == "" {
		return Podium{}, fmt.Errorf("podium requires three athletes (got %q, %q, %q)", first, second, third)
	}
	return Podium{First: first, Second: second, Third: third}, nil
}

type PositionPoints struct {
	First  int
	Second int
	Third  int
}

// Rules configures per-position points. InPodium, when set, awards partial
// credit for guessing an athlete onto the wrong podium step.
type Rules struct {
	Exact    PositionPoints
	InPodium *PositionPoints
}

// DefaultRules is the platform default: exact hits only.
func DefaultRules() Rules {
	return Rules{Exact: PositionPoints{First: 20, Second: 15, Third: 10}}
}

// Breakdown is the per-position result of scoring one prediction.
type Breakdown struct {
	First  int
	Second int
	Third  int
	Total  int
}

// ExtractPodium derives the podium from a ranking stored rank ascending.
// Returns nil when the ranking has fewer than three entries; the stored order
// is trusted, no re-sort happens here.
func ExtractPodium(ranking []models.RankedEntry) *Podium {
	if len(ranking) < 3 {
		return nil
	}
	p, err := NewPodium(ranking[0].AthleteID, ranking[1].AthleteID, ranking[2].AthleteID)
	if err != nil {
		return nil
	}
	return &p
}

// Score computes a guess's points against the actual podium. Per position:
// exact match pays Exact points; otherwise, if InPodium is configured and the
// guessed athlete stands at either other position, it pays InPodium points.
func Score(actual, guess Podium, rules Rules) Breakdown {
	b := Breakdown{
		First:  scorePosition(guess.First, actual.First, actual.Second, actual.Third, rules.Exact.First, inPodiumPoints(rules, func(p PositionPoints) int { return p.First })),
		Second: scorePosition(guess.Second, actual.Second, actual.First, actual.Third, rules.Exact.Second, inPodiumPoints(rules, func(p PositionPoints) int { return p.Second })),
		Third:  scorePosition(guess.Third, actual.Third, actual.First, actual.Second, rules.Exact.Third, inPodiumPoints(rules, func(p PositionPoints) int { return p.Third })),
	}
	b.Total = b.First + b.Second + b.Third
	return b
}

func scorePosition(guessed, exact, otherA, otherB string, exactPoints int, bonus *int) int {
	if guessed == exact {
		return exactPoints
	}
	if bonus != nil && (guessed == otherA || guessed == otherB) {
		return *bonus
	}
	return 0
}

func inPodiumPoints(rules Rules, pick func(PositionPoints) int) *int {
	if rules.InPodium == nil {
		return nil
	}
	v := pick(*rules.InPodium)
	return &v
}
