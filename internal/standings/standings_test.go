package standings

import (
	"testing"

	"github.com/google/uuid"
)

func club(name string) Club {
	return Club{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)), Name: name}
}

func TestSingleFixture(t *testing.T) {
	home, away := club("Home"), club("Away")
	rows := Compute([]Club{away, home}, []MatchResult{
		{HomeClubID: home.ID, AwayClubID: away.ID, HomeGoals: 2, AwayGoals: 1, MonthIndex: 1},
	}, nil)

	if rows[0].ClubID != home.ID || rows[0].Points != 3 || rows[0].GoalDiff != 1 || rows[0].Rank != 1 {
		t.Fatalf("home row wrong: %+v", rows[0])
	}
	if rows[1].ClubID != away.ID || rows[1].Points != 0 || rows[1].GoalDiff != -1 || rows[1].Rank != 2 {
		t.Fatalf("away row wrong: %+v", rows[1])
	}
}

func TestPointsTotal(t *testing.T) {
	a, b, c := club("A"), club("B"), club("C")
	results := []MatchResult{
		{HomeClubID: a.ID, AwayClubID: b.ID, HomeGoals: 1, AwayGoals: 1},
		{HomeClubID: b.ID, AwayClubID: c.ID, HomeGoals: 3, AwayGoals: 0},
		{HomeClubID: c.ID, AwayClubID: a.ID, HomeGoals: 2, AwayGoals: 2},
		{HomeClubID: a.ID, AwayClubID: c.ID, HomeGoals: 0, AwayGoals: 1},
	}
	rows := Compute([]Club{a, b, c}, results, nil)
	total := 0
	for _, r := range rows {
		total += r.Points
	}
	decisive, drawn := 2, 2
	if total != 3*decisive+2*drawn {
		t.Fatalf("total points %d want %d", total, 3*decisive+2*drawn)
	}
}

func TestHeadToHeadUsesOnlyTiedClubs(t *testing.T) {
	// A and B finish level on points, GD and GF. B beat A directly, so B
	// must rank above A even though A's name sorts first. C's results
	// against both must not influence the mini table.
	a, b, c, d := club("A"), club("B"), club("C"), club("D")
	results := []MatchResult{
		{HomeClubID: b.ID, AwayClubID: a.ID, HomeGoals: 1, AwayGoals: 0},
		{HomeClubID: a.ID, AwayClubID: c.ID, HomeGoals: 2, AwayGoals: 0},
		{HomeClubID: c.ID, AwayClubID: b.ID, HomeGoals: 1, AwayGoals: 0},
		{HomeClubID: a.ID, AwayClubID: d.ID, HomeGoals: 1, AwayGoals: 0},
		{HomeClubID: b.ID, AwayClubID: d.ID, HomeGoals: 2, AwayGoals: 0},
	}
	rows := Compute([]Club{a, b, c, d}, results, nil)
	if rows[0].ClubID != b.ID || rows[1].ClubID != a.ID {
		t.Fatalf("expected B then A, got %s then %s", rows[0].ClubName, rows[1].ClubName)
	}
	if rows[0].Points != rows[1].Points || rows[0].GoalDiff != rows[1].GoalDiff || rows[0].GoalsFor != rows[1].GoalsFor {
		t.Fatalf("test setup: A and B should be level: %+v %+v", rows[0], rows[1])
	}
}

func TestNameIsFinalFallback(t *testing.T) {
	zed, amy := club("Zed"), club("Amy")
	rows := Compute([]Club{zed, amy}, []MatchResult{
		{HomeClubID: zed.ID, AwayClubID: amy.ID, HomeGoals: 1, AwayGoals: 1},
	}, nil)
	if rows[0].ClubName != "Amy" || rows[1].ClubName != "Zed" {
		t.Fatalf("expected name order, got %s %s", rows[0].ClubName, rows[1].ClubName)
	}
}

func TestPenaltiesClipAndResort(t *testing.T) {
	a, b := club("A"), club("B")
	results := []MatchResult{
		{HomeClubID: a.ID, AwayClubID: b.ID, HomeGoals: 3, AwayGoals: 0},
		{HomeClubID: b.ID, AwayClubID: a.ID, HomeGoals: 1, AwayGoals: 0},
	}
	rows := Compute([]Club{a, b}, results, []Penalty{{ClubID: a.ID, Points: -6}})
	if rows[0].ClubID != b.ID {
		t.Fatalf("penalized club should drop, got %s first", rows[0].ClubName)
	}
	if rows[1].Points != 0 || rows[1].PenaltyPoints != -6 {
		t.Fatalf("points should clip at zero: %+v", rows[1])
	}
}

func TestUpTo(t *testing.T) {
	a, b := club("A"), club("B")
	results := []MatchResult{
		{HomeClubID: a.ID, AwayClubID: b.ID, HomeGoals: 1, AwayGoals: 0, MonthIndex: 1},
		{HomeClubID: b.ID, AwayClubID: a.ID, HomeGoals: 4, AwayGoals: 0, MonthIndex: 2},
	}
	rows := Compute([]Club{a, b}, UpTo(results, 1), nil)
	if rows[0].ClubID != a.ID || rows[0].Played != 1 {
		t.Fatalf("month bound ignored: %+v", rows)
	}
}

func TestPerformanceAndHistorical(t *testing.T) {
	a, b, c := club("A"), club("B"), club("C")
	empty := Compute([]Club{a, b, c}, nil, nil)
	if got := Performance(empty, a.ID); got != 0.5 {
		t.Fatalf("no matches got %v", got)
	}
	table := []Row{{ClubID: a.ID, Rank: 1}, {ClubID: b.ID, Rank: 2}, {ClubID: c.ID, Rank: 3}}
	if got := Historical([][]Row{table}, c.ID); got != 0 {
		t.Fatalf("last place got %v", got)
	}
	if got := Historical([][]Row{table, table}, b.ID); got != 0.5 {
		t.Fatalf("middle got %v", got)
	}
	if got := Historical(nil, a.ID); got != 0.5 {
		t.Fatalf("no history got %v", got)
	}
}
