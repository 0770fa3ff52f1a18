package game

import (
	"context"

	"github.com/google/uuid"
)

// ResolveAgain reruns the resolution steps of a turn regardless of its state.
// Replaying an older turn leaves the club balance where the latest turn put it.
func (s *Service) ResolveAgain(ctx context.Context, turnID uuid.UUID) (ResolveReport, error) {
	var out ResolveReport
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		out, err = s.resolveTx(ctx, tx, t)
		return err
	})
	return out, err
}

// StoreTx exposes the store so tests can shape data the service never writes.
func (s *Service) StoreTx(ctx context.Context, fn func(Tx) error) error {
	return s.store.InTx(ctx, fn)
}
