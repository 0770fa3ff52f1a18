package econ

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/sim"
)

func NewFanbase(p FanbaseParams) FanbaseState {
	return FanbaseState{
		Rate:      p.InitialRate,
		Count:     int(p.InitialRate * float64(p.Population)),
		Followers: int(p.InitialRate * float64(p.Population)),
	}
}

// FanbaseInput carries last month's spend and the club's league standing.
type FanbaseInput struct {
	Promo    decimal.Decimal
	Hometown decimal.Decimal
	Perf     float64
	Hist     float64
}

// StepFanbase advances the fanbase by one month. The follower count is a
// noisy reading of the fanbase drawn from the (club, turn) key.
func StepFanbase(p FanbaseParams, s FanbaseState, in FanbaseInput, clubID, turnID uuid.UUID) FanbaseState {
	promo := math.Max(0, in.Promo.InexactFloat64())
	ht := math.Max(0, in.Hometown.InexactFloat64())

	s.CumPromo = (1-p.Lambda)*s.CumPromo + p.Lambda*promo
	s.CumHometown = math.Max(0, (1-p.Lambda)*s.CumHometown+p.Lambda*ht-p.Phi*math.Abs(ht-s.LastHometownSpend))
	s.LastHometownSpend = ht

	g := p.G0 +
		p.A1*math.Log1p(s.CumPromo/p.SpendScale) +
		p.A2*math.Log1p(s.CumHometown/p.SpendScale) +
		p.A3*(in.Perf-0.5) +
		p.A4*(in.Hist-0.5)

	f := s.Rate * (1 + g*(1-s.Rate/p.MaxRate))
	s.Rate = math.Min(math.Max(f, 0), p.MaxRate)
	s.Count = int(s.Rate * float64(p.Population))

	r := sim.NewKey("fanbase", clubID, turnID).Rand("followers")
	noise := r.NormFloat64() * p.FollowersSigma
	s.Followers = int(math.Exp(math.Log(math.Max(float64(s.Count), 1)) + noise))
	return s
}
