package game

import (
	"context"

	"github.com/google/uuid"

	"pitchside/internal/standings"
)

// SeasonStatus reports how many of the season's matches exist and are played.
func (s *Service) SeasonStatus(ctx context.Context, seasonID uuid.UUID) (CompletionReport, error) {
	var out CompletionReport
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		if _, err := tx.GetSeason(ctx, seasonID); err != nil {
			return err
		}
		out, err = completion(ctx, tx, seasonID)
		return err
	})
	return out, err
}

func completion(ctx context.Context, tx Tx, seasonID uuid.UUID) (CompletionReport, error) {
	fixtures, err := tx.ListFixtures(ctx, seasonID)
	if err != nil {
		return CompletionReport{}, err
	}
	matches, err := tx.ListMatches(ctx, seasonID)
	if err != nil {
		return CompletionReport{}, err
	}
	byFixture := indexMatches(matches)
	r := CompletionReport{SeasonID: seasonID}
	for _, f := range fixtures {
		if f.IsBye {
			continue
		}
		r.TotalFixtures++
		m, ok := byFixture[f.ID]
		if !ok {
			r.MissingMatches++
			continue
		}
		r.FixturesWithMatch++
		if m.Status == MatchPlayed {
			r.PlayedMatches++
		} else {
			r.UnplayedMatches++
		}
	}
	r.IsCompleted = r.MissingMatches == 0 && r.UnplayedMatches == 0
	return r, nil
}

// FinalizeSeason freezes the season's table. A finalized season returns the
// stored rows; an incomplete one returns a *CompletionError and stores nothing.
func (s *Service) FinalizeSeason(ctx context.Context, seasonID uuid.UUID) (FinalizeResult, error) {
	var out FinalizeResult
	var fresh bool
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, fresh, err = s.finalizeTx(ctx, tx, seasonID)
		return err
	})
	if err != nil {
		return FinalizeResult{}, err
	}
	if fresh {
		s.log.Info("season finalized", "season_id", seasonID, "clubs", len(out.Standings))
	}
	return out, nil
}

// finalizeTx reports true when this call did the freezing.
func (s *Service) finalizeTx(ctx context.Context, tx Tx, seasonID uuid.UUID) (FinalizeResult, bool, error) {
	season, err := tx.LockSeason(ctx, seasonID)
	if err != nil {
		return FinalizeResult{}, false, err
	}
	report, err := completion(ctx, tx, seasonID)
	if err != nil {
		return FinalizeResult{}, false, err
	}
	if season.IsFinalized {
		rows, err := tx.ListFinalStandings(ctx, seasonID)
		if err != nil {
			return FinalizeResult{}, false, err
		}
		return FinalizeResult{Season: season, Standings: rows, Report: report}, false, nil
	}
	if !report.IsCompleted {
		return FinalizeResult{}, false, &CompletionError{Report: report}
	}
	rows, err := liveStandings(ctx, tx, season, 0)
	if err != nil {
		return FinalizeResult{}, false, err
	}
	if err := tx.PutFinalStandings(ctx, seasonID, rows); err != nil {
		return FinalizeResult{}, false, err
	}
	now := s.clock()
	season.IsFinalized = true
	season.FinalizedAt = &now
	if err := tx.UpdateSeason(ctx, season); err != nil {
		return FinalizeResult{}, false, err
	}
	return FinalizeResult{Season: season, Standings: rows, Report: report}, true, nil
}

// Standings returns the season table. With upTo in 1..10 only matches of
// those months count. A finalized season without a bound returns its frozen
// rows.
func (s *Service) Standings(ctx context.Context, seasonID uuid.UUID, upTo int) ([]standings.Row, error) {
	var out []standings.Row
	err := s.store.InTx(ctx, func(tx Tx) error {
		season, err := tx.GetSeason(ctx, seasonID)
		if err != nil {
			return err
		}
		if season.IsFinalized && upTo <= 0 {
			out, err = tx.ListFinalStandings(ctx, seasonID)
			return err
		}
		out, err = liveStandings(ctx, tx, season, upTo)
		return err
	})
	return out, err
}

func liveStandings(ctx context.Context, tx Tx, season Season, upTo int) ([]standings.Row, error) {
	clubs, err := tx.ListClubs(ctx, season.GameID)
	if err != nil {
		return nil, err
	}
	fixtures, err := tx.ListFixtures(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	matches, err := tx.ListMatches(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	penalties, err := tx.ListPenalties(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	r := &resolution{fixtures: fixtures, matches: indexMatches(matches)}
	results := standings.UpTo(r.results(func(int) bool { return true }), upTo)
	return standings.Compute(standingClubs(clubs), results, standingPenalties(penalties)), nil
}
