package game

import (
	"context"
)

// rolloverTx closes a season whose last turn every club has acknowledged and
// starts the next one with its first turn collecting.
func (s *Service) rolloverTx(ctx context.Context, tx Tx, season Season) (Season, error) {
	res, _, err := s.finalizeTx(ctx, tx, season.ID)
	if err != nil {
		return Season{}, err
	}
	done := res.Season
	done.Status = SeasonFinished
	if err := tx.UpdateSeason(ctx, done); err != nil {
		return Season{}, err
	}

	g, err := tx.GetGame(ctx, done.GameID)
	if err != nil {
		return Season{}, err
	}
	label, err := NextYearLabel(done.YearLabel)
	if err != nil {
		return Season{}, err
	}
	next, err := s.createSeasonTx(ctx, tx, g, label, &done)
	if err != nil {
		return Season{}, err
	}
	turns, err := tx.ListTurns(ctx, next.ID)
	if err != nil {
		return Season{}, err
	}
	if len(turns) == 0 {
		return Season{}, ErrIntegrity
	}
	first := turns[0]
	now := s.clock()
	first.State = TurnCollecting
	first.OpenedAt = &now
	if err := tx.UpdateTurn(ctx, first); err != nil {
		return Season{}, err
	}
	return next, nil
}
