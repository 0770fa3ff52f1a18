package econ

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/ledger"
	"pitchside/internal/sim"
)

const (
	pipelineStart = 9
	pipelineEnd   = 11
	sponsorClose  = 12
)

// InheritSponsor starts a season with the count settled at the end of the
// previous one.
func InheritSponsor(prev SponsorState) SponsorState {
	count := prev.Count
	if prev.NextCount != nil {
		count = *prev.NextCount
	}
	return SponsorState{Count: count, UnitPrice: prev.UnitPrice}
}

// SponsorRevenue books the annual sponsor income once, in month 1.
func SponsorRevenue(s *SponsorState, month int) (ledger.Posting, bool) {
	if month != 1 || s.RevenueRecorded {
		return ledger.Posting{}, false
	}
	s.RevenueRecorded = true
	amount := decimal.NewFromInt(int64(s.Count)).Mul(decimal.NewFromInt(s.UnitPrice))
	return ledger.Income(ledger.CategorySponsorRevenue, amount, map[string]any{
		"count":      s.Count,
		"unit_price": s.UnitPrice,
	}), true
}

type PipelineInput struct {
	CumRet  float64
	CumNew  float64
	Perf    float64
	Hist    float64
	Fanbase int
}

// Targets fixes how many current sponsors can be retained and how many new
// ones can be signed for next season.
func Targets(p SponsorParams, count int, in PipelineInput) (existing, fresh int) {
	fbRatio := math.Log(math.Max(float64(in.Fanbase)/p.FanbaseRef, 0.001))

	churn := p.ChurnBase - p.ChurnRet*math.Log1p(in.CumRet) - p.ChurnPerf*in.Perf - p.ChurnHist*in.Hist
	churn = math.Min(math.Max(churn, p.ChurnMin), p.ChurnMax)
	existing = int(math.Round(float64(count) * (1 - churn)))

	leads := math.Max(0, p.LeadsBase+p.LeadsNew*math.Log1p(in.CumNew)+p.LeadsFanbase*fbRatio+p.LeadsPerf*in.Perf+p.LeadsHist*in.Hist)
	z := p.ConvBase + p.ConvNew*math.Log1p(in.CumNew) + p.ConvPerf*in.Perf + p.ConvFanbase*fbRatio
	conv := 1 / (1 + math.Exp(-z))
	fresh = int(math.Round(leads * conv))
	return existing, fresh
}

// StepSponsor moves the sponsor pipeline forward for month. Months 9 to 11
// confirm prospects with seeded draws; month 12 settles next season's count.
func StepSponsor(p SponsorParams, s SponsorState, month int, in PipelineInput, clubID, turnID uuid.UUID) SponsorState {
	if month == pipelineStart && !s.PipelineStarted {
		s.TargetExisting, s.TargetNew = Targets(p, s.Count, in)
		s.ConfirmedExisting, s.ConfirmedNew = 0, 0
		s.PipelineStarted = true
	}
	if month >= pipelineStart && month <= pipelineEnd && s.PipelineStarted {
		r := sim.NewKey("sponsor", clubID, turnID).Rand("pipeline")
		i := month - pipelineStart
		s.ConfirmedExisting += binomial(r, s.TargetExisting-s.ConfirmedExisting, p.ExistingConfirm[i])
		s.ConfirmedNew += binomial(r, s.TargetNew-s.ConfirmedNew, p.NewConfirm[i])
	}
	if month == sponsorClose && s.NextCount == nil {
		s.NextExisting = s.TargetExisting
		s.NextNew = s.TargetNew
		if !s.PipelineStarted {
			s.NextExisting = s.Count
		}
		n := s.NextExisting + s.NextNew
		s.NextCount = &n
	}
	return s
}

func binomial(r *rand.Rand, n int, prob float64) int {
	k := 0
	for range max(n, 0) {
		if r.Float64() < prob {
			k++
		}
	}
	return k
}
