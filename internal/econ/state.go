package econ

import "github.com/shopspring/decimal"

// SeasonState is everything the economy tracks for one club in one season.
// It is persisted as a single JSON document.
type SeasonState struct {
	Fanbase       FanbaseState       `json:"fanbase"`
	Sales         SalesState         `json:"sales"`
	Sponsor       SponsorState       `json:"sponsor"`
	Reinforcement ReinforcementState `json:"reinforcement"`
	Staff         StaffState         `json:"staff"`
	Academy       AcademyState       `json:"academy"`

	// LastPreMatchMonth is the last month whose pre-match mutations were
	// applied. Zero means none yet.
	LastPreMatchMonth int `json:"last_pre_match_month"`
}

type FanbaseState struct {
	Rate              float64 `json:"rate"`
	Count             int     `json:"count"`
	CumPromo          float64 `json:"cum_promo"`
	CumHometown       float64 `json:"cum_hometown"`
	LastHometownSpend float64 `json:"last_hometown_spend"`
	Followers         int     `json:"followers"`
}

type SalesState struct {
	CumRet float64 `json:"cum_ret"`
	CumNew float64 `json:"cum_new"`
	// Allocation is the share of effort aimed at new sponsors per quarter.
	Allocation [4]float64 `json:"allocation"`
}

type SponsorState struct {
	Count           int   `json:"count"`
	NextCount       *int  `json:"next_count,omitempty"`
	UnitPrice       int64 `json:"unit_price"`
	RevenueRecorded bool  `json:"revenue_recorded"`

	PipelineStarted   bool `json:"pipeline_started"`
	TargetExisting    int  `json:"target_existing"`
	TargetNew         int  `json:"target_new"`
	ConfirmedExisting int  `json:"confirmed_existing"`
	ConfirmedNew      int  `json:"confirmed_new"`
	NextExisting      int  `json:"next_existing"`
	NextNew           int  `json:"next_new"`
}

type ReinforcementState struct {
	AnnualBudget     decimal.Decimal `json:"annual_budget"`
	AdditionalBudget decimal.Decimal `json:"additional_budget"`
	// NextSeasonParts holds the plan submitted in months 11 and 12.
	NextSeasonParts [2]decimal.Decimal `json:"next_season_parts"`
}

type StaffState struct {
	Counts     map[Role]int `json:"counts"`
	NextCounts map[Role]int `json:"next_counts,omitempty"`
}

type AcademyState struct {
	AnnualBudget     decimal.Decimal `json:"annual_budget"`
	Cumulative       decimal.Decimal `json:"cumulative"`
	NextBudget       decimal.Decimal `json:"next_budget"`
	TransferResolved bool            `json:"transfer_resolved"`
}

// NewSeasonState is the state of a club entering its first season.
func NewSeasonState(p Params, reinforcementBudget decimal.Decimal) SeasonState {
	return SeasonState{
		Fanbase: NewFanbase(p.Fanbase),
		Sales:   NewSales(p.Sales),
		Sponsor: SponsorState{
			Count:     p.Sponsor.InitialCount,
			UnitPrice: p.Sponsor.UnitPrice,
		},
		Reinforcement: ReinforcementState{AnnualBudget: reinforcementBudget},
		Staff:         NewStaff(p.Staff),
	}
}

// Rollover derives next season's state from the final state of this one.
func Rollover(p Params, prev SeasonState) SeasonState {
	next := SeasonState{
		Fanbase: prev.Fanbase,
		Sales: SalesState{
			CumRet:     prev.Sales.CumRet,
			CumNew:     prev.Sales.CumNew,
			Allocation: NewSales(p.Sales).Allocation,
		},
		Sponsor: InheritSponsor(prev.Sponsor),
		Reinforcement: ReinforcementState{
			AnnualBudget: prev.Reinforcement.NextSeasonBudget(),
		},
		Staff: StaffState{
			Counts:     copyCounts(prev.Staff.Counts),
			NextCounts: copyCounts(prev.Staff.NextCounts),
		},
		Academy: AcademyState{
			AnnualBudget: prev.Academy.NextBudget,
			Cumulative:   prev.Academy.Cumulative,
		},
	}
	return next
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (s SeasonState) Clone() SeasonState {
	out := s
	if s.Sponsor.NextCount != nil {
		n := *s.Sponsor.NextCount
		out.Sponsor.NextCount = &n
	}
	out.Staff.Counts = copyCounts(s.Staff.Counts)
	out.Staff.NextCounts = copyCounts(s.Staff.NextCounts)
	return out
}

func copyCounts(m map[Role]int) map[Role]int {
	if m == nil {
		return nil
	}
	out := make(map[Role]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
