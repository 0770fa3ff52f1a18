package fixtures

import (
	"testing"

	"github.com/google/uuid"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestRoundRobinEven(t *testing.T) {
	clubs := ids(4)
	got := RoundRobin(clubs, 10)
	if len(got) != 20 {
		t.Fatalf("expected 20 fixtures, got %d", len(got))
	}
	perMonth := map[int]map[uuid.UUID]bool{}
	home := map[uuid.UUID]int{}
	meetings := map[[2]uuid.UUID]int{}
	for _, p := range got {
		if p.IsBye {
			t.Fatalf("no byes expected with an even count")
		}
		if perMonth[p.MonthIndex] == nil {
			perMonth[p.MonthIndex] = map[uuid.UUID]bool{}
		}
		for _, c := range []uuid.UUID{p.HomeClubID, p.AwayClubID} {
			if perMonth[p.MonthIndex][c] {
				t.Fatalf("club plays twice in month %d", p.MonthIndex)
			}
			perMonth[p.MonthIndex][c] = true
		}
		home[p.HomeClubID]++
		a, b := p.HomeClubID, p.AwayClubID
		if a.String() > b.String() {
			a, b = b, a
		}
		meetings[[2]uuid.UUID{a, b}]++
	}
	if len(perMonth) != 10 {
		t.Fatalf("expected 10 match months, got %d", len(perMonth))
	}
	for _, c := range clubs {
		if home[c] < 4 || home[c] > 6 {
			t.Fatalf("home games unbalanced: %v", home)
		}
	}
	if len(meetings) != 6 {
		t.Fatalf("every pair should meet, got %d pairs", len(meetings))
	}
}

func TestRoundRobinOddHasOneByePerMonth(t *testing.T) {
	clubs := ids(5)
	got := RoundRobin(clubs, 10)
	byes := map[int]int{}
	byeClubs := map[uuid.UUID]int{}
	for _, p := range got {
		if p.IsBye {
			byes[p.MonthIndex]++
			byeClubs[p.ByeClubID]++
			if p.HomeClubID != uuid.Nil || p.AwayClubID != uuid.Nil {
				t.Fatalf("bye must not carry clubs: %+v", p)
			}
		}
	}
	for m := 1; m <= 10; m++ {
		if byes[m] != 1 {
			t.Fatalf("month %d has %d byes", m, byes[m])
		}
	}
	for _, c := range clubs {
		if byeClubs[c] != 2 {
			t.Fatalf("each club should sit out twice: %v", byeClubs)
		}
	}
}

func TestRoundRobinTooFewClubs(t *testing.T) {
	if got := RoundRobin(ids(1), 10); got != nil {
		t.Fatalf("expected nothing for one club, got %v", got)
	}
}
