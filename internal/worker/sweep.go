// Package worker advances games whose current turn is ready: a collecting
// turn with every decision in is locked, and a locked turn is resolved.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"pitchside/internal/game"
)

// Outcome is what one sweep did to one game.
type Outcome string

const (
	OutcomeIdle     Outcome = "idle"
	OutcomeLocked   Outcome = "locked"
	OutcomeResolved Outcome = "resolved"
	OutcomeFailed   Outcome = "failed"
)

type Sweeper struct {
	svc   *game.Service
	log   *slog.Logger
	limit int
}

func NewSweeper(svc *game.Service, logger *slog.Logger, concurrency int) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Sweeper{svc: svc, log: logger, limit: concurrency}
}

// Sweep visits every active game once. A failing game does not stop the
// others; the failures are joined into the returned error.
func (s *Sweeper) Sweep(ctx context.Context) (map[string]Outcome, error) {
	games, err := s.svc.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		outcomes = make(map[string]Outcome, len(games))
		errs     []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for _, gm := range games {
		if gm.Status != game.GameActive {
			continue
		}
		g.Go(func() error {
			outcome, err := s.advance(gctx, gm)
			mu.Lock()
			defer mu.Unlock()
			outcomes[gm.ID.String()] = outcome
			if err != nil {
				errs = append(errs, err)
				s.log.Error("sweep game failed", "game_id", gm.ID, "err", err)
				return nil
			}
			s.log.Info("sweep game", "game_id", gm.ID, "outcome", outcome)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, errors.Join(errs...)
}

func (s *Sweeper) advance(ctx context.Context, gm game.Game) (Outcome, error) {
	_, turn, err := s.svc.CurrentTurn(ctx, gm.ID)
	if errors.Is(err, game.ErrNotFound) {
		return OutcomeIdle, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}

	outcome := OutcomeIdle
	if turn.State == game.TurnCollecting {
		locked, err := s.svc.LockTurn(ctx, turn.ID)
		switch {
		case errors.Is(err, game.ErrState):
			// Decisions still missing.
			return OutcomeIdle, nil
		case err != nil:
			return OutcomeFailed, err
		}
		turn = locked
		outcome = OutcomeLocked
	}
	if turn.State != game.TurnLocked {
		return outcome, nil
	}
	report, err := s.svc.ResolveTurn(ctx, turn.ID)
	if err != nil {
		if errors.Is(err, game.ErrState) {
			return outcome, nil
		}
		return OutcomeFailed, err
	}
	s.log.Info("turn resolved", "game_id", gm.ID, "turn_id", turn.ID, "month", turn.MonthIndex, "clubs", len(report.Clubs))
	return OutcomeResolved, nil
}
