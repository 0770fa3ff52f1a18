package sim

import "math"

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type candidate struct {
	score  Score
	weight float64
}

var homeWinCandidates = []candidate{
	{Score{1, 0}, 0.22},
	{Score{2, 0}, 0.16},
	{Score{2, 1}, 0.22},
	{Score{3, 0}, 0.10},
	{Score{3, 1}, 0.14},
	{Score{3, 2}, 0.06},
	{Score{4, 0}, 0.04},
	{Score{4, 1}, 0.06},
}

var drawCandidates = []candidate{
	{Score{0, 0}, 0.22},
	{Score{1, 1}, 0.58},
	{Score{2, 2}, 0.17},
	{Score{3, 3}, 0.03},
}

var awayWinCandidates = mirror(homeWinCandidates)

func mirror(in []candidate) []candidate {
	out := make([]candidate, len(in))
	for i, c := range in {
		out[i] = candidate{score: Score{Home: c.score.Away, Away: c.score.Home}, weight: c.weight}
	}
	return out
}

func candidatesFor(o Outcome) []candidate {
	switch o {
	case HomeWin:
		return homeWinCandidates
	case AwayWin:
		return awayWinCandidates
	default:
		return drawCandidates
	}
}

// Candidates lists the fixed score table for an outcome class.
func Candidates(o Outcome) []Score {
	cs := candidatesFor(o)
	out := make([]Score, len(cs))
	for i, c := range cs {
		out[i] = c.score
	}
	return out
}

// ScoreWeights returns the normalized candidate weights, tilted toward wider
// margins as the rating gap grows.
func ScoreWeights(p Params, o Outcome, erHome, erAway float64) []float64 {
	cs := candidatesFor(o)
	gap := math.Min(math.Abs(erHome-erAway)/p.ScoreScale, 1)
	weights := make([]float64, len(cs))
	total := 0.0
	for i, c := range cs {
		gd := math.Abs(float64(c.score.Home - c.score.Away))
		w := c.weight * math.Exp(p.ScoreLambda*(gd-1)*gap)
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// DetermineScore picks a scoreline for the outcome using its own stream of seed.
func DetermineScore(p Params, o Outcome, erHome, erAway float64, seed uint64) Score {
	cs := candidatesFor(o)
	weights := ScoreWeights(p, o, erHome, erAway)
	r := NewRand(seed, "score").Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return cs[i].score
		}
	}
	return cs[len(cs)-1].score
}

func (s Score) Outcome() Outcome {
	switch {
	case s.Home > s.Away:
		return HomeWin
	case s.Home < s.Away:
		return AwayWin
	default:
		return DrawResult
	}
}
