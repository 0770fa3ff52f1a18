package game

import (
	"context"

	"github.com/google/uuid"
)

var penaltyNamespace = uuid.MustParse("6f2b0e0c-6a53-4c1e-9d8e-5b1f3c9a7d42")

// penaltyID is stable for a (club, season, reason) so that a replayed
// resolution would produce the same row.
func penaltyID(clubID, seasonID uuid.UUID, reason string) uuid.UUID {
	name := make([]byte, 0, 32+len(reason))
	name = append(name, clubID[:]...)
	name = append(name, seasonID[:]...)
	name = append(name, reason...)
	return uuid.NewSHA1(penaltyNamespace, name)
}

// checkBankruptcy updates fs after the balance moved. A negative balance
// marks the club bankrupt and costs six points once per season; a balance
// back at or above zero clears the flag but never the penalty.
func (s *Service) checkBankruptcy(ctx context.Context, tx Tx, r *resolution, fs *FinancialState) (bool, error) {
	if !fs.Balance.IsNegative() {
		if fs.IsBankrupt {
			fs.IsBankrupt = false
			fs.BankruptSinceTurnID = uuid.Nil
		}
		return false, nil
	}
	if !fs.IsBankrupt {
		fs.IsBankrupt = true
		fs.BankruptSinceTurnID = r.turn.ID
	}
	if fs.PointPenaltyApplied && fs.PenaltySeasonID == r.season.ID {
		return false, nil
	}
	inserted, err := tx.InsertPenalty(ctx, PointPenalty{
		ID:             penaltyID(fs.ClubID, r.season.ID, PenaltyReasonBankruptcy),
		ClubID:         fs.ClubID,
		SeasonID:       r.season.ID,
		TurnID:         r.turn.ID,
		PointsDeducted: BankruptcyPenaltyPoints,
		Reason:         PenaltyReasonBankruptcy,
		CreatedAt:      r.now,
	})
	if err != nil {
		return false, err
	}
	fs.PointPenaltyApplied = true
	fs.PenaltySeasonID = r.season.ID
	return inserted, nil
}

// BankruptcyStatus reports a club's bankruptcy flags and the points it has
// lost in the given season.
func (s *Service) BankruptcyStatus(ctx context.Context, clubID, seasonID uuid.UUID) (BankruptcyStatus, error) {
	var out BankruptcyStatus
	err := s.store.InTx(ctx, func(tx Tx) error {
		fs, err := tx.GetFinancialState(ctx, clubID)
		if err != nil {
			return err
		}
		penalties, err := tx.ListPenalties(ctx, seasonID)
		if err != nil {
			return err
		}
		out = bankruptcyStatus(fs, seasonID, penalties)
		return nil
	})
	return out, err
}

// BankruptClubs lists the status of every club of the game that is currently
// bankrupt.
func (s *Service) BankruptClubs(ctx context.Context, gameID uuid.UUID) ([]BankruptcyStatus, error) {
	var out []BankruptcyStatus
	err := s.store.InTx(ctx, func(tx Tx) error {
		season, err := runningSeason(ctx, tx, gameID)
		if err != nil {
			return err
		}
		clubs, err := tx.ListClubs(ctx, gameID)
		if err != nil {
			return err
		}
		penalties, err := tx.ListPenalties(ctx, season.ID)
		if err != nil {
			return err
		}
		out = out[:0]
		for _, c := range clubs {
			fs, err := tx.GetFinancialState(ctx, c.ID)
			if err != nil {
				return err
			}
			if fs.IsBankrupt {
				out = append(out, bankruptcyStatus(fs, season.ID, penalties))
			}
		}
		return nil
	})
	return out, err
}

func bankruptcyStatus(fs FinancialState, seasonID uuid.UUID, penalties []PointPenalty) BankruptcyStatus {
	st := BankruptcyStatus{
		ClubID:              fs.ClubID,
		IsBankrupt:          fs.IsBankrupt,
		BankruptSinceTurnID: fs.BankruptSinceTurnID,
		PenaltyApplied:      fs.PointPenaltyApplied && fs.PenaltySeasonID == seasonID,
		CanAddReinforcement: !fs.IsBankrupt,
	}
	for _, p := range penalties {
		if p.ClubID == fs.ClubID {
			st.TotalPenaltyPoints += p.PointsDeducted
		}
	}
	return st
}
