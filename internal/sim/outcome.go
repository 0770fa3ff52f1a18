package sim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

type Outcome uint8

const (
	HomeWin Outcome = iota + 1
	DrawResult
	AwayWin
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "H"
	case DrawResult:
		return "D"
	case AwayWin:
		return "A"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

type Probabilities struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

func OutcomeProbabilities(p Params, erHome, erAway float64) Probabilities {
	delta := erHome - erAway
	pDraw := p.D0 * math.Exp(-p.C*math.Abs(delta))
	pHomeGivenDecisive := sigmoid(p.K * delta)
	pHome := (1 - pDraw) * pHomeGivenDecisive
	return Probabilities{
		Home: pHome,
		Draw: pDraw,
		Away: 1 - pDraw - pHome,
	}
}

// DrawOutcome maps a uniform draw r in [0,1) onto the cumulative thresholds.
func DrawOutcome(probs Probabilities, r float64) Outcome {
	switch {
	case r < probs.Home:
		return HomeWin
	case r < probs.Home+probs.Draw:
		return DrawResult
	default:
		return AwayWin
	}
}

type MatchInput struct {
	FixtureID uuid.UUID
	TurnID    uuid.UUID
	HomeER    float64
	AwayER    float64
}

type MatchResult struct {
	Outcome       Outcome       `json:"outcome"`
	Score         Score         `json:"score"`
	Probabilities Probabilities `json:"probabilities"`
}

// MatchKey is the stable identity every draw for a fixture in a turn is derived from.
func MatchKey(fixtureID, turnID uuid.UUID) Key {
	return NewKey("match", fixtureID, turnID)
}

// SimulateMatch is a pure function of its input: the same fixture and turn
// always produce the same result.
func SimulateMatch(p Params, in MatchInput) MatchResult {
	key := MatchKey(in.FixtureID, in.TurnID)
	probs := OutcomeProbabilities(p, in.HomeER, in.AwayER)
	outcome := DrawOutcome(probs, key.Rand("outcome").Float64())
	return MatchResult{
		Outcome:       outcome,
		Score:         DetermineScore(p, outcome, in.HomeER, in.AwayER, key.Seed()),
		Probabilities: probs,
	}
}
