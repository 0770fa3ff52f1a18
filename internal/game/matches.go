package game

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"pitchside/internal/sim"
)

// playMatches simulates the scheduled matches of the turn's month. Played
// matches are left alone so a second pass returns the same results.
func (s *Service) playMatches(ctx context.Context, tx Tx, r *resolution) ([]FixtureView, error) {
	sp := s.params.Sim
	month := r.turn.MonthIndex
	var out []FixtureView
	for i, f := range r.fixtures {
		if f.MonthIndex != month || f.IsBye {
			continue
		}
		m, ok := r.matches[f.ID]
		if !ok {
			// Finalization reports the missing match.
			s.log.Warn("fixture without match", "fixture_id", f.ID, "season_id", r.season.ID)
			continue
		}
		if m.Status == MatchPlayed {
			out = append(out, FixtureView{Fixture: f, Match: &m})
			continue
		}

		home := r.states[f.HomeClubID].State
		away := r.states[f.AwayClubID].State
		erHome := sim.EffectiveRating(sp, sim.TeamPower(sp, home.Reinforcement.SeasonBudget(), home.Academy.Cumulative), true, sim.Streak(r.recent(f.HomeClubID)))
		erAway := sim.EffectiveRating(sp, sim.TeamPower(sp, away.Reinforcement.SeasonBudget(), away.Academy.Cumulative), false, sim.Streak(r.recent(f.AwayClubID)))
		res := sim.SimulateMatch(sp, sim.MatchInput{
			FixtureID: f.ID,
			TurnID:    r.turn.ID,
			HomeER:    erHome,
			AwayER:    erAway,
		})

		f.Weather = sim.FixtureWeather(sp, f.ID)
		att := sim.ComputeAttendance(sp, sim.AttendanceInput{
			Month:       month,
			HomeFanbase: home.Fanbase.Count,
			AwayFanbase: away.Fanbase.Count,
			Weather:     f.Weather,
			Perf:        r.perf[f.HomeClubID],
			Hist:        r.hist[f.HomeClubID],
			Promo:       r.prevDecisions[f.HomeClubID].NextHomePromo,
		})
		f.HomeAttendance = att.Home
		f.AwayAttendance = att.Away
		f.TotalAttendance = att.Total
		if err := tx.UpdateFixture(ctx, f); err != nil {
			return nil, err
		}

		playedAt := r.now
		m.Status = MatchPlayed
		m.HomeGoals = res.Score.Home
		m.AwayGoals = res.Score.Away
		m.PlayedAt = &playedAt
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return nil, err
		}
		r.fixtures[i] = f
		r.matches[f.ID] = m
		s.log.Debug("match played",
			"fixture_id", f.ID,
			"outcome", res.Outcome.String(),
			"home_goals", m.HomeGoals,
			"away_goals", m.AwayGoals,
			"attendance", att.Total,
		)
		out = append(out, FixtureView{Fixture: f, Match: &m})
	}
	return out, nil
}

// recent lists a club's results from months before the current one, most
// recent first.
func (r *resolution) recent(clubID uuid.UUID) []sim.Result {
	type played struct {
		month  int
		result sim.Result
	}
	var rows []played
	for _, f := range r.fixtures {
		if f.IsBye || f.MonthIndex >= r.turn.MonthIndex {
			continue
		}
		if f.HomeClubID != clubID && f.AwayClubID != clubID {
			continue
		}
		m, ok := r.matches[f.ID]
		if !ok || m.Status != MatchPlayed {
			continue
		}
		gf, ga := m.HomeGoals, m.AwayGoals
		if f.AwayClubID == clubID {
			gf, ga = ga, gf
		}
		res := sim.Draw
		switch {
		case gf > ga:
			res = sim.Win
		case gf < ga:
			res = sim.Loss
		}
		rows = append(rows, played{month: f.MonthIndex, result: res})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].month > rows[j].month })
	out := make([]sim.Result, len(rows))
	for i, p := range rows {
		out[i] = p.result
	}
	return out
}
