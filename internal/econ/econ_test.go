package econ

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/ledger"
)

func TestDefaultParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	p := DefaultParams()
	p.Reinforcement.AdditionalFrom = 13
	if err := p.Validate(); err == nil {
		t.Fatalf("expected invalid reinforcement window")
	}
}

func TestStepFanbaseNeutralDrift(t *testing.T) {
	p := DefaultParams().Fanbase
	club, turn := uuid.New(), uuid.New()
	s := NewFanbase(p)
	next := StepFanbase(p, s, FanbaseInput{Promo: decimal.Zero, Hometown: decimal.Zero, Perf: 0.5, Hist: 0.5}, club, turn)

	want := 0.06 * (1 - 0.0005*(1-0.06/0.25))
	if math.Abs(next.Rate-want) > 1e-12 {
		t.Fatalf("rate got %v want %v", next.Rate, want)
	}
	if next.Count != int(want*1_000_000) {
		t.Fatalf("count got %d", next.Count)
	}
	again := StepFanbase(p, s, FanbaseInput{Perf: 0.5, Hist: 0.5}, club, turn)
	if again.Followers != next.Followers {
		t.Fatalf("followers must be reproducible: %d vs %d", again.Followers, next.Followers)
	}
}

func TestStepFanbaseGrowsWithSpend(t *testing.T) {
	p := DefaultParams().Fanbase
	s := NewFanbase(p)
	club := uuid.New()
	for range 12 {
		s = StepFanbase(p, s, FanbaseInput{
			Promo:    decimal.NewFromInt(20_000_000),
			Hometown: decimal.NewFromInt(20_000_000),
			Perf:     1,
			Hist:     1,
		}, club, uuid.New())
	}
	if s.Rate <= p.InitialRate || s.Rate > p.MaxRate {
		t.Fatalf("rate %v should grow but stay under cap", s.Rate)
	}
}

func TestStepSalesAccumulators(t *testing.T) {
	p := DefaultParams().Sales
	s := NewSales(p)
	s = StepSales(p, s, 1, 1, decimal.NewFromInt(10_000_000))
	// rho .5: E_ret = 1.4*.5 + .12*.5*10 = 1.3, E_new = 1.6*.5 + .08*.5*10 = 1.2
	if math.Abs(s.CumRet-0.12*1.3) > 1e-12 || math.Abs(s.CumNew-0.05*1.2) > 1e-12 {
		t.Fatalf("accumulators got ret=%v new=%v", s.CumRet, s.CumNew)
	}
	s.SetAllocation(4, 1.7)
	if s.RhoNew(5) != 1 || s.RhoNew(3) != 0.5 {
		t.Fatalf("allocation should clamp and be quarterly: %v", s.Allocation)
	}
}

func TestSponsorPipeline(t *testing.T) {
	p := DefaultParams().Sponsor
	club := uuid.New()
	s := SponsorState{Count: 5, UnitPrice: p.UnitPrice}

	posting, ok := SponsorRevenue(&s, 1)
	if !ok || !posting.Amount.Equal(decimal.NewFromInt(25_000_000)) {
		t.Fatalf("annual revenue got %v %v", ok, posting.Amount)
	}
	if _, ok := SponsorRevenue(&s, 1); ok {
		t.Fatalf("annual revenue must book once")
	}

	in := PipelineInput{Perf: 0.5, Hist: 0.5, Fanbase: 60000}
	for month := 9; month <= 12; month++ {
		s = StepSponsor(p, s, month, in, club, uuid.New())
		if s.ConfirmedExisting > s.TargetExisting || s.ConfirmedNew > s.TargetNew {
			t.Fatalf("month %d confirmed beyond target: %+v", month, s)
		}
	}
	if s.NextCount == nil || *s.NextCount != s.TargetExisting+s.TargetNew {
		t.Fatalf("next count not settled: %+v", s)
	}
	next := InheritSponsor(s)
	if next.Count != *s.NextCount || next.RevenueRecorded || next.PipelineStarted {
		t.Fatalf("inheritance wrong: %+v", next)
	}
}

func TestTargetsChurnClamp(t *testing.T) {
	p := DefaultParams().Sponsor
	existing, _ := Targets(p, 20, PipelineInput{CumRet: 1000, Perf: 1, Hist: 1, Fanbase: 60000})
	if existing != 19 {
		t.Fatalf("churn floor not applied: %d", existing)
	}
	_, fresh := Targets(p, 10, PipelineInput{Fanbase: 0})
	if fresh < 0 {
		t.Fatalf("negative new target")
	}
}

func TestMonthlyReinforcement(t *testing.T) {
	p := DefaultParams().Reinforcement
	s := ReinforcementState{
		AnnualBudget:     decimal.NewFromInt(1_200_000_000),
		AdditionalBudget: decimal.NewFromInt(70_000_000),
	}
	tests := []struct {
		month int
		want  int64
	}{
		{1, 100_000_000},
		{5, 100_000_000},
		{6, 110_000_000},
		{12, 110_000_000},
	}
	for _, tc := range tests {
		got := MonthlyReinforcement(p, s, tc.month)
		if !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("month %d got %s want %d", tc.month, got, tc.want)
		}
	}
	postings := ReinforcementPostings(p, s, 6)
	if len(postings) != 2 || !postings[1].Amount.Equal(decimal.NewFromInt(-11_000_000)) {
		t.Fatalf("team operation cost wrong: %+v", postings)
	}

	s.PlanNextSeason(11, decimal.NewFromInt(300))
	s.PlanNextSeason(12, decimal.NewFromInt(200))
	s.PlanNextSeason(10, decimal.NewFromInt(999))
	if !s.NextSeasonBudget().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("next season budget got %s", s.NextSeasonBudget())
	}
}

func TestStaffPlanSeverance(t *testing.T) {
	p := DefaultParams().Staff
	s := NewStaff(p)
	s.Counts[RoleCoach] = 3

	planned, posting, ok := PlanStaff(p, s, map[Role]int{RoleCoach: 1, RoleSales: 2})
	if !ok {
		t.Fatalf("expected severance")
	}
	// two coaches released: 2 * 5M * 0.75
	if !posting.Amount.Equal(decimal.NewFromInt(-7_500_000)) {
		t.Fatalf("severance got %s", posting.Amount)
	}
	if planned.Counts[RoleCoach] != 3 {
		t.Fatalf("plan must not apply before month 1")
	}
	applied := ApplyPendingStaff(planned)
	if applied.Counts[RoleCoach] != 1 || applied.Counts[RoleSales] != 2 || applied.NextCounts != nil {
		t.Fatalf("plan not applied: %+v", applied)
	}

	cost, ok := StaffCost(p, applied)
	// five people at 5M a year
	if !ok || !ledger.Quantize(cost.Amount).Equal(decimal.RequireFromString("-2083333.33")) {
		t.Fatalf("staff cost got %s", cost.Amount)
	}
}

func TestAcademy(t *testing.T) {
	p := DefaultParams().Academy
	s := AcademyState{AnnualBudget: decimal.NewFromInt(120_000_000)}
	s, posting, ok := AcademyMonth(s)
	if !ok || !posting.Amount.Equal(decimal.NewFromInt(-10_000_000)) || !s.Cumulative.Equal(decimal.NewFromInt(10_000_000)) {
		t.Fatalf("academy month got %v %s %s", ok, posting.Amount, s.Cumulative)
	}

	if got := TransferProbability(p, decimal.NewFromInt(100_000_000)); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("probability got %v", got)
	}
	if got := TransferProbability(p, decimal.NewFromInt(10_000_000_000)); got != 0.5 {
		t.Fatalf("probability cap got %v", got)
	}

	club, season := uuid.New(), uuid.New()
	rich := AcademyState{Cumulative: decimal.NewFromInt(10_000_000_000)}
	first, pa, oka := AcademyTransfer(p, rich, club, season)
	_, pb, okb := AcademyTransfer(p, rich, club, season)
	if oka != okb || !pa.Amount.Equal(pb.Amount) {
		t.Fatalf("transfer must be reproducible")
	}
	if oka && (pa.Amount.LessThan(decimal.NewFromInt(50_000_000)) || pa.Amount.GreaterThan(decimal.NewFromInt(200_000_000))) {
		t.Fatalf("fee out of range: %s", pa.Amount)
	}
	if _, _, ok := AcademyTransfer(p, first, club, season); ok {
		t.Fatalf("transfer must resolve once per season")
	}
}

func TestMatchdayAndRevenueItems(t *testing.T) {
	p := DefaultParams().Revenue
	fixture := uuid.New()
	postings := Matchday(p, fixture, 10_000, decimal.NewFromInt(2500))
	want := map[ledger.Category]int64{
		ledger.CategoryTicketRevenue:      25_000_000,
		ledger.CategoryMerchandiseRevenue: 8_000_000,
		ledger.CategoryMerchandiseCost:    -4_800_000,
		ledger.CategoryMatchOperationCost: -3_000_000,
	}
	for _, posting := range postings {
		if posting.Kind.Correlation != fixture {
			t.Fatalf("%s not correlated to fixture", posting.Kind)
		}
		if err := posting.Kind.Validate(); err != nil {
			t.Fatalf("invalid kind: %v", err)
		}
		if !posting.Amount.Equal(decimal.NewFromInt(want[posting.Kind.Category])) {
			t.Fatalf("%s got %s", posting.Kind.Category, posting.Amount)
		}
	}

	if _, ok := Prize(p, 10, 1); ok {
		t.Fatalf("prize outside month 11")
	}
	if prize, ok := Prize(p, 11, 3); !ok || !prize.Amount.Equal(decimal.NewFromInt(100_000_000)) {
		t.Fatalf("prize rank 3 got %v", prize.Amount)
	}
	if _, ok := Prize(p, 11, 6); ok {
		t.Fatalf("no prize for rank 6")
	}
	if _, ok := Tax(p, 2, decimal.NewFromInt(-5)); ok {
		t.Fatalf("no tax on a loss")
	}
	if tax, ok := Tax(p, 2, decimal.NewFromInt(100_000_000)); !ok || !tax.Amount.Equal(decimal.NewFromInt(-33_000_000)) {
		t.Fatalf("tax got %v", tax.Amount)
	}
	if got := DecisionExpenses(Spend{Sales: decimal.NewFromInt(5), Promo: decimal.Zero}); len(got) != 1 || got[0].Kind.Category != ledger.CategorySalesExpense {
		t.Fatalf("decision expenses got %+v", got)
	}
}

func TestRolloverCarriesState(t *testing.T) {
	p := DefaultParams()
	s := NewSeasonState(p, decimal.NewFromInt(600_000_000))
	s.Reinforcement.PlanNextSeason(11, decimal.NewFromInt(700_000_000))
	s.Academy.NextBudget = decimal.NewFromInt(24_000_000)
	s.Academy.Cumulative = decimal.NewFromInt(5)
	n := 7
	s.Sponsor.NextCount = &n
	s.Sales.CumRet = 1.5
	s.LastPreMatchMonth = 12

	next := Rollover(p, s)
	if !next.Reinforcement.AnnualBudget.Equal(decimal.NewFromInt(700_000_000)) || !next.Reinforcement.AdditionalBudget.IsZero() {
		t.Fatalf("reinforcement not rolled: %+v", next.Reinforcement)
	}
	if !next.Academy.AnnualBudget.Equal(decimal.NewFromInt(24_000_000)) || !next.Academy.Cumulative.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("academy not rolled: %+v", next.Academy)
	}
	if next.Sponsor.Count != 7 || next.Sales.CumRet != 1.5 || next.LastPreMatchMonth != 0 {
		t.Fatalf("carry over wrong: %+v", next)
	}

	c := next.Clone()
	c.Staff.Counts[RoleCoach] = 9
	if next.Staff.Counts[RoleCoach] == 9 {
		t.Fatalf("clone aliases staff counts")
	}
}
