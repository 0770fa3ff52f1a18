package fixtures

import "github.com/google/uuid"

// Pairing is one slot of a match month. A bye has no home or away club.
type Pairing struct {
	MonthIndex int
	HomeClubID uuid.UUID
	AwayClubID uuid.UUID
	IsBye      bool
	ByeClubID  uuid.UUID
}

// RoundRobin schedules clubs over months using the circle method, repeating
// the rotation with home and away swapped when months outnumber rounds. An
// odd club count gives one club a bye each month. Home slots are evened out
// as the schedule is built.
func RoundRobin(clubs []uuid.UUID, months int) []Pairing {
	if len(clubs) < 2 || months <= 0 {
		return nil
	}
	slots := append([]uuid.UUID(nil), clubs...)
	if len(slots)%2 == 1 {
		slots = append(slots, uuid.Nil)
	}
	rounds := circle(slots)
	if len(rounds) == 0 {
		return nil
	}

	homeCount := make(map[uuid.UUID]int, len(clubs))
	out := make([]Pairing, 0, months*len(slots)/2)
	for month := 1; month <= months; month++ {
		r := (month - 1) % len(rounds)
		swap := ((month-1)/len(rounds))%2 == 1
		for _, pair := range rounds[r] {
			home, away := pair[0], pair[1]
			if home == uuid.Nil || away == uuid.Nil {
				bye := home
				if bye == uuid.Nil {
					bye = away
				}
				out = append(out, Pairing{MonthIndex: month, IsBye: true, ByeClubID: bye})
				continue
			}
			if swap {
				home, away = away, home
			}
			if homeCount[home] > homeCount[away] {
				home, away = away, home
			}
			homeCount[home]++
			out = append(out, Pairing{MonthIndex: month, HomeClubID: home, AwayClubID: away})
		}
	}
	return out
}

func circle(slots []uuid.UUID) [][][2]uuid.UUID {
	n := len(slots)
	if n < 2 {
		return nil
	}
	fixed := slots[0]
	rest := append([]uuid.UUID(nil), slots[1:]...)
	rounds := make([][][2]uuid.UUID, 0, n-1)
	for range n - 1 {
		current := append([]uuid.UUID{fixed}, rest...)
		pairs := make([][2]uuid.UUID, 0, n/2)
		for i := 0; i < n/2; i++ {
			pairs = append(pairs, [2]uuid.UUID{current[i], current[n-1-i]})
		}
		rest = append([]uuid.UUID{current[n-1]}, current[1:n-1]...)
		rounds = append(rounds, pairs)
	}
	return rounds
}
