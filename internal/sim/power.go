package sim

import (
	"math"

	"github.com/shopspring/decimal"
)

var million = decimal.NewFromInt(1_000_000)

// TeamPower converts this season's reinforcement budget and the cumulative
// academy investment into a strength figure.
func TeamPower(p Params, reinforcement, academy decimal.Decimal) float64 {
	b := math.Max(0, reinforcement.Div(million).InexactFloat64())
	a := math.Max(0, academy.Div(million).InexactFloat64())
	return p.TPAlpha*math.Log1p(b/p.BRef) + p.TPBeta*math.Log1p(a/p.ARef)
}

// Result is a single match result from one club's point of view.
type Result int8

const (
	Loss Result = -1
	Draw Result = 0
	Win  Result = 1
)

// Streak returns the signed length of the most recent run of identical
// results. recent must be ordered most recent first. A draw ends the scan
// with zero.
func Streak(recent []Result) int {
	if len(recent) == 0 || recent[0] == Draw {
		return 0
	}
	first := recent[0]
	n := 0
	for _, r := range recent {
		if r != first {
			break
		}
		n++
	}
	return n * int(first)
}

func EffectiveRating(p Params, teamPower float64, home bool, streak int) float64 {
	er := teamPower
	if home {
		er += p.HomeAdvantage
	}
	bonus := float64(streak) * p.StreakFactor
	return er + clamp(bonus, -p.StreakCap, p.StreakCap)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
