package standings

import (
	"sort"

	"github.com/google/uuid"
)

const (
	PointsWin  = 3
	PointsDraw = 1
)

type Club struct {
	ID   uuid.UUID
	Name string
}

// MatchResult is a played match as the table sees it.
type MatchResult struct {
	HomeClubID uuid.UUID
	AwayClubID uuid.UUID
	HomeGoals  int
	AwayGoals  int
	MonthIndex int
}

// Penalty is a point deduction; Points is negative.
type Penalty struct {
	ClubID uuid.UUID
	Points int
}

type Row struct {
	ClubID        uuid.UUID `json:"club_id"`
	ClubName      string    `json:"club_name"`
	Played        int       `json:"played"`
	Won           int       `json:"won"`
	Drawn         int       `json:"drawn"`
	Lost          int       `json:"lost"`
	GoalsFor      int       `json:"gf"`
	GoalsAgainst  int       `json:"ga"`
	GoalDiff      int       `json:"gd"`
	Points        int       `json:"points"`
	PenaltyPoints int       `json:"penalty_points"`
	Rank          int       `json:"rank"`
}

// UpTo keeps the results played in or before month. A month <= 0 keeps everything.
func UpTo(results []MatchResult, month int) []MatchResult {
	if month <= 0 {
		return results
	}
	out := make([]MatchResult, 0, len(results))
	for _, r := range results {
		if r.MonthIndex <= month {
			out = append(out, r)
		}
	}
	return out
}

// Compute builds the ranked table. Ties on (points, goal difference, goals
// for) are broken by a head-to-head table restricted to the tied clubs, then
// by club name. Penalties are applied after the base ordering.
func Compute(clubs []Club, results []MatchResult, penalties []Penalty) []Row {
	rows := aggregate(clubs, results)

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ClubName < rows[j].ClubName })
	sort.SliceStable(rows, func(i, j int) bool { return better(rows[i], rows[j]) })
	breakTies(rows, results)

	if len(penalties) > 0 {
		deductions := make(map[uuid.UUID]int, len(penalties))
		for _, p := range penalties {
			deductions[p.ClubID] += p.Points
		}
		for i := range rows {
			d, ok := deductions[rows[i].ClubID]
			if !ok {
				continue
			}
			rows[i].PenaltyPoints = d
			rows[i].Points = max(0, rows[i].Points+d)
		}
		sort.SliceStable(rows, func(i, j int) bool { return better(rows[i], rows[j]) })
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func aggregate(clubs []Club, results []MatchResult) []Row {
	index := make(map[uuid.UUID]int, len(clubs))
	rows := make([]Row, len(clubs))
	for i, c := range clubs {
		rows[i] = Row{ClubID: c.ID, ClubName: c.Name}
		index[c.ID] = i
	}
	for _, m := range results {
		hi, okHome := index[m.HomeClubID]
		ai, okAway := index[m.AwayClubID]
		if okHome {
			record(&rows[hi], m.HomeGoals, m.AwayGoals)
		}
		if okAway {
			record(&rows[ai], m.AwayGoals, m.HomeGoals)
		}
	}
	return rows
}

func record(r *Row, gf, ga int) {
	r.Played++
	r.GoalsFor += gf
	r.GoalsAgainst += ga
	r.GoalDiff = r.GoalsFor - r.GoalsAgainst
	switch {
	case gf > ga:
		r.Won++
		r.Points += PointsWin
	case gf == ga:
		r.Drawn++
		r.Points += PointsDraw
	default:
		r.Lost++
	}
}

func better(a, b Row) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDiff != b.GoalDiff {
		return a.GoalDiff > b.GoalDiff
	}
	return a.GoalsFor > b.GoalsFor
}

func tied(a, b Row) bool {
	return a.Points == b.Points && a.GoalDiff == b.GoalDiff && a.GoalsFor == b.GoalsFor
}

func breakTies(rows []Row, results []MatchResult) {
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && tied(rows[start], rows[end]) {
			end++
		}
		if end-start > 1 {
			orderHeadToHead(rows[start:end], results)
		}
		start = end
	}
}

// orderHeadToHead re-sorts a tied group using only the matches played among
// its members. The group arrives in name order, which survives remaining ties.
func orderHeadToHead(group []Row, results []MatchResult) {
	members := make(map[uuid.UUID]bool, len(group))
	clubs := make([]Club, len(group))
	for i, r := range group {
		members[r.ClubID] = true
		clubs[i] = Club{ID: r.ClubID, Name: r.ClubName}
	}
	var among []MatchResult
	for _, m := range results {
		if members[m.HomeClubID] && members[m.AwayClubID] {
			among = append(among, m)
		}
	}
	mini := aggregate(clubs, among)
	h2h := make(map[uuid.UUID]Row, len(mini))
	for _, r := range mini {
		h2h[r.ClubID] = r
	}
	sort.SliceStable(group, func(i, j int) bool {
		return better(h2h[group[i].ClubID], h2h[group[j].ClubID])
	})
}

// NormalizedRank maps rank 1..n onto [0,1] with 1 for the leader. A table
// of one club, or an unknown rank, yields 0.5.
func NormalizedRank(rank, n int) float64 {
	if n <= 1 || rank < 1 {
		return 0.5
	}
	return 1 - float64(rank-1)/float64(n-1)
}

// Performance is the normalized rank of club in rows, or 0.5 if the table
// has no played matches or does not list the club.
func Performance(rows []Row, clubID uuid.UUID) float64 {
	played := false
	for _, r := range rows {
		if r.Played > 0 {
			played = true
			break
		}
	}
	if !played {
		return 0.5
	}
	for _, r := range rows {
		if r.ClubID == clubID {
			return NormalizedRank(r.Rank, len(rows))
		}
	}
	return 0.5
}

// Historical averages the club's normalized final rank over earlier final tables.
func Historical(finalTables [][]Row, clubID uuid.UUID) float64 {
	total, n := 0.0, 0
	for _, table := range finalTables {
		for _, r := range table {
			if r.ClubID == clubID {
				total += NormalizedRank(r.Rank, len(table))
				n++
				break
			}
		}
	}
	if n == 0 {
		return 0.5
	}
	return total / float64(n)
}
