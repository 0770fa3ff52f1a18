package sim

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestKeySeedIsStable(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	if NewKey("match", a, b).Seed() != NewKey("match", a, b).Seed() {
		t.Fatalf("seed must be deterministic")
	}
	if NewKey("match", a, b).Seed() == NewKey("match", b, a).Seed() {
		t.Fatalf("seed must depend on identifier order")
	}
	if NewKey("match", a).Seed() == NewKey("weather", a).Seed() {
		t.Fatalf("seed must depend on domain")
	}
	if NewKey("x", a).With(1, 2).Seed() == NewKey("x", a).With(12).Seed() {
		t.Fatalf("integer fields must not collide by concatenation")
	}
	k := NewKey("x", a)
	if k.Rand("one").Float64() == k.Rand("two").Float64() {
		t.Fatalf("streams should be independent")
	}
}

func TestTeamPower(t *testing.T) {
	p := DefaultParams()
	if got := TeamPower(p, decimal.Zero, decimal.Zero); got != 0 {
		t.Fatalf("zero budgets got %v", got)
	}
	got := TeamPower(p, decimal.NewFromInt(500_000_000), decimal.NewFromInt(100_000_000))
	want := 10*math.Log(2) + math.Log(2)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		recent []Result
		want   int
	}{
		{nil, 0},
		{[]Result{Win, Win, Loss}, 2},
		{[]Result{Loss, Loss, Loss}, -3},
		{[]Result{Draw, Win, Win}, 0},
		{[]Result{Win, Draw, Win}, 1},
	}
	for _, tc := range tests {
		if got := Streak(tc.recent); got != tc.want {
			t.Fatalf("streak %v got %d want %d", tc.recent, got, tc.want)
		}
	}
}

func TestEffectiveRatingCapsStreak(t *testing.T) {
	p := DefaultParams()
	if got := EffectiveRating(p, 10, true, 9); got != 15 {
		t.Fatalf("got %v want 15", got)
	}
	if got := EffectiveRating(p, 10, false, -3); got != 8.5 {
		t.Fatalf("got %v want 8.5", got)
	}
}

func TestOutcomeProbabilitiesSumToOne(t *testing.T) {
	p := DefaultParams()
	for _, d := range []float64{-20, -3, 0, 1.5, 7, 30} {
		probs := OutcomeProbabilities(p, 10+d, 10)
		sum := probs.Home + probs.Draw + probs.Away
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("delta=%v sum=%v", d, sum)
		}
		if probs.Home < 0 || probs.Draw < 0 || probs.Away < 0 {
			t.Fatalf("delta=%v negative probability %+v", d, probs)
		}
	}
	even := OutcomeProbabilities(p, 5, 5)
	if math.Abs(even.Draw-0.30) > 1e-12 || math.Abs(even.Home-even.Away) > 1e-12 {
		t.Fatalf("equal ratings got %+v", even)
	}
}

func TestDrawOutcomeThresholds(t *testing.T) {
	probs := Probabilities{Home: 0.5, Draw: 0.2, Away: 0.3}
	tests := []struct {
		r    float64
		want Outcome
	}{
		{0, HomeWin},
		{0.4999, HomeWin},
		{0.5, DrawResult},
		{0.6999, DrawResult},
		{0.75, AwayWin},
		{0.9999, AwayWin},
	}
	for _, tc := range tests {
		if got := DrawOutcome(probs, tc.r); got != tc.want {
			t.Fatalf("r=%v got %s want %s", tc.r, got, tc.want)
		}
	}
}

func TestDetermineScoreStaysInCandidateSet(t *testing.T) {
	p := DefaultParams()
	for _, o := range []Outcome{HomeWin, DrawResult, AwayWin} {
		allowed := map[Score]bool{}
		for _, s := range Candidates(o) {
			allowed[s] = true
		}
		for seed := uint64(0); seed < 500; seed++ {
			s := DetermineScore(p, o, 12+float64(seed%7), 9, seed)
			if !allowed[s] {
				t.Fatalf("outcome %s seed %d produced %v", o, seed, s)
			}
			if s.Outcome() != o {
				t.Fatalf("score %v does not match outcome %s", s, o)
			}
		}
	}
}

func TestScoreWeightsFavorMarginWhenGapIsLarge(t *testing.T) {
	p := DefaultParams()
	even := ScoreWeights(p, HomeWin, 10, 10)
	wide := ScoreWeights(p, HomeWin, 30, 10)
	// index 6 is 4-0, index 0 is 1-0
	if !(wide[6] > even[6]) {
		t.Fatalf("4-0 weight should grow with the gap: even=%v wide=%v", even[6], wide[6])
	}
	if !(wide[0] < even[0]) {
		t.Fatalf("1-0 weight should shrink with the gap: even=%v wide=%v", even[0], wide[0])
	}
	sum := 0.0
	for _, w := range wide {
		sum += w
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("weights not normalized: %v", sum)
	}
}

func TestSimulateMatchIsReproducible(t *testing.T) {
	p := DefaultParams()
	in := MatchInput{FixtureID: uuid.New(), TurnID: uuid.New(), HomeER: 14.2, AwayER: 11.7}
	first := SimulateMatch(p, in)
	for i := 0; i < 20; i++ {
		if got := SimulateMatch(p, in); got != first {
			t.Fatalf("replay %d got %+v want %+v", i, got, first)
		}
	}
	if first.Score.Outcome() != first.Outcome {
		t.Fatalf("score %v inconsistent with outcome %s", first.Score, first.Outcome)
	}
}

func TestFixtureWeatherIsReproducible(t *testing.T) {
	p := DefaultParams()
	id := uuid.New()
	if FixtureWeather(p, id) != FixtureWeather(p, id) {
		t.Fatalf("weather must be deterministic per fixture")
	}
	if DrawWeather(p, 0.0) != Sunny || DrawWeather(p, 0.6) != Cloudy || DrawWeather(p, 0.9) != Rain {
		t.Fatalf("weather thresholds wrong")
	}
}

func TestComputeAttendance(t *testing.T) {
	p := DefaultParams()
	got := ComputeAttendance(p, AttendanceInput{
		Month:       3,
		HomeFanbase: 60000,
		AwayFanbase: 60000,
		Weather:     Sunny,
		Perf:        0.5,
		Hist:        0.5,
		Promo:       decimal.Zero,
	})
	// z = -1.986 + 0.4 + 0.2 = -1.386 -> sigmoid ~= 0.2000
	if got.Home < 11990 || got.Home > 12010 {
		t.Fatalf("home=%d", got.Home)
	}
	if got.Away < 1079 || got.Away > 1080 {
		t.Fatalf("away=%d want ~1080", got.Away)
	}
	if got.Total != got.Home+got.Away {
		t.Fatalf("total mismatch %+v", got)
	}
}

func TestComputeAttendanceRebalancesOverCapacity(t *testing.T) {
	p := DefaultParams()
	got := ComputeAttendance(p, AttendanceInput{
		Month:       1,
		HomeFanbase: 250000,
		AwayFanbase: 250000,
		Weather:     Sunny,
		Perf:        1,
		Hist:        1,
		Promo:       decimal.NewFromInt(50_000_000),
	})
	if got.Total != p.Attendance.Capacity {
		t.Fatalf("total=%d want capacity", got.Total)
	}
	if got.Home+got.Away != got.Total {
		t.Fatalf("parts %d+%d != %d", got.Home, got.Away, got.Total)
	}
	if got.Away > int(p.Attendance.AwayMaxRatio*float64(p.Attendance.Capacity)) {
		t.Fatalf("away over cap: %d", got.Away)
	}
}

func TestDefaultParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	p := DefaultParams()
	p.Weather[0].Probability = 0.9
	if err := p.Validate(); err == nil {
		t.Fatalf("expected probability sum error")
	}
}
