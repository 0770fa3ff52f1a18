package game

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClubResult is one club's record over the finalized seasons of a game.
type ClubResult struct {
	ClubID                uuid.UUID       `json:"club_id"`
	ClubName              string          `json:"club_name"`
	SeasonsPlayed         int             `json:"seasons_played"`
	LastSeasonIncome      decimal.Decimal `json:"last_season_income"`
	LastSeasonIncomeRank  int             `json:"last_season_income_rank"`
	FinalBalance          decimal.Decimal `json:"final_balance"`
	FinalBalanceRank      int             `json:"final_balance_rank"`
	Championships         int             `json:"championships"`
	RunnerUps             int             `json:"runner_ups"`
	AverageRank           float64         `json:"average_rank"`
	AverageHomeAttendance float64         `json:"average_home_attendance"`
	AttendanceRank        int             `json:"attendance_rank"`
}

// GameResults summarizes the finalized seasons of a game per club, in club
// name order.
func (s *Service) GameResults(ctx context.Context, gameID uuid.UUID) ([]ClubResult, error) {
	var out []ClubResult
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = gameResults(ctx, tx, gameID)
		return err
	})
	return out, err
}

func gameResults(ctx context.Context, tx Tx, gameID uuid.UUID) ([]ClubResult, error) {
	if _, err := tx.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	clubs, err := tx.ListClubs(ctx, gameID)
	if err != nil {
		return nil, err
	}
	seasons, err := tx.ListSeasons(ctx, gameID)
	if err != nil {
		return nil, err
	}

	out := make([]ClubResult, len(clubs))
	index := make(map[uuid.UUID]int, len(clubs))
	rankSum := make([]int, len(clubs))
	attendance := make([]int, len(clubs))
	homeGames := make([]int, len(clubs))
	for i, c := range clubs {
		index[c.ID] = i
		out[i] = ClubResult{ClubID: c.ID, ClubName: c.Name, LastSeasonIncome: decimal.Zero}
		fs, err := tx.GetFinancialState(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out[i].FinalBalance = fs.Balance
	}

	var last *Season
	for _, season := range seasons {
		if !season.IsFinalized {
			continue
		}
		last = &season
		rows, err := tx.ListFinalStandings(ctx, season.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			i, ok := index[row.ClubID]
			if !ok {
				continue
			}
			out[i].SeasonsPlayed++
			rankSum[i] += row.Rank
			switch row.Rank {
			case 1:
				out[i].Championships++
			case 2:
				out[i].RunnerUps++
			}
		}

		fixtures, err := tx.ListFixtures(ctx, season.ID)
		if err != nil {
			return nil, err
		}
		matches, err := tx.ListMatches(ctx, season.ID)
		if err != nil {
			return nil, err
		}
		played := indexMatches(matches)
		for _, f := range fixtures {
			if f.IsBye || played[f.ID].Status != MatchPlayed {
				continue
			}
			if i, ok := index[f.HomeClubID]; ok {
				attendance[i] += f.TotalAttendance
				homeGames[i]++
			}
		}
	}

	for i := range out {
		if out[i].SeasonsPlayed > 0 {
			out[i].AverageRank = float64(rankSum[i]) / float64(out[i].SeasonsPlayed)
		}
		if homeGames[i] > 0 {
			out[i].AverageHomeAttendance = float64(attendance[i]) / float64(homeGames[i])
		}
		if last == nil {
			continue
		}
		snaps, err := tx.ListSnapshots(ctx, out[i].ClubID, last.ID)
		if err != nil {
			return nil, err
		}
		for _, snap := range snaps {
			out[i].LastSeasonIncome = out[i].LastSeasonIncome.Add(snap.Income)
		}
	}

	rankBy(out, func(a, b ClubResult) bool { return a.LastSeasonIncome.GreaterThan(b.LastSeasonIncome) },
		func(r *ClubResult, rank int) { r.LastSeasonIncomeRank = rank })
	rankBy(out, func(a, b ClubResult) bool { return a.FinalBalance.GreaterThan(b.FinalBalance) },
		func(r *ClubResult, rank int) { r.FinalBalanceRank = rank })
	rankBy(out, func(a, b ClubResult) bool { return a.AverageHomeAttendance > b.AverageHomeAttendance },
		func(r *ClubResult, rank int) { r.AttendanceRank = rank })
	return out, nil
}

// rankBy assigns 1-based ranks by better without reordering results. Ties
// keep name order.
func rankBy(results []ClubResult, better func(a, b ClubResult) bool, set func(*ClubResult, int)) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return better(results[order[a]], results[order[b]]) })
	for rank, i := range order {
		set(&results[i], rank+1)
	}
}
