package game

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"pitchside/internal/decision"
)

// OpenTurn starts collecting decisions for a turn. Every earlier turn of the
// season must already be acknowledged.
func (s *Service) OpenTurn(ctx context.Context, turnID uuid.UUID) (Turn, error) {
	var out Turn
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.LockTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if !t.State.CanAdvance(TurnCollecting) {
			return stateErr("turn %s is %s, cannot open", t.ID, t.State)
		}
		season, err := tx.GetSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		if season.Status != SeasonRunning {
			return stateErr("season %s is %s", season.ID, season.Status)
		}
		turns, err := tx.ListTurns(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		for _, other := range turns {
			if other.MonthIndex < t.MonthIndex && other.State != TurnAcked {
				return stateErr("month %d is still %s", other.MonthIndex, other.State)
			}
		}
		now := s.clock()
		t.State = TurnCollecting
		t.OpenedAt = &now
		if err := tx.UpdateTurn(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// CommitDecision validates and stores a club's decision. A club may replace
// its decision as long as the turn is collecting.
func (s *Service) CommitDecision(ctx context.Context, turnID, clubID uuid.UUID, payload decision.Payload) (Decision, error) {
	var out Decision
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if t.State != TurnCollecting {
			return stateErr("turn %s is %s, decisions are closed", t.ID, t.State)
		}
		season, err := tx.GetSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		club, err := tx.GetClub(ctx, clubID)
		if err != nil {
			return err
		}
		if club.GameID != season.GameID {
			return ErrNotFound
		}
		vctx, err := decisionContext(ctx, tx, t, clubID)
		if err != nil {
			return err
		}
		if err := decision.Validate(payload, vctx); err != nil {
			return validationErr(err)
		}
		now := s.clock()
		out = Decision{TurnID: t.ID, ClubID: clubID, State: DecisionCommitted, Payload: payload, CommittedAt: &now}
		return tx.PutDecision(ctx, out)
	})
	return out, err
}

func decisionContext(ctx context.Context, tx Tx, t Turn, clubID uuid.UUID) (decision.Context, error) {
	fs, err := tx.GetFinancialState(ctx, clubID)
	if err != nil {
		return decision.Context{}, err
	}
	fixtures, err := tx.ListFixtures(ctx, t.SeasonID)
	if err != nil {
		return decision.Context{}, err
	}
	home := false
	for _, f := range fixtures {
		if f.MonthIndex == t.MonthIndex+1 && !f.IsBye && f.HomeClubID == clubID {
			home = true
			break
		}
	}
	return decision.Context{
		Month:                   t.MonthIndex,
		HasHomeFixtureNextMonth: home,
		IsBankrupt:              fs.IsBankrupt,
	}, nil
}

// LockTurn closes decision collection. Every club must have committed.
func (s *Service) LockTurn(ctx context.Context, turnID uuid.UUID) (Turn, error) {
	var out Turn
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.LockTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if !t.State.CanAdvance(TurnLocked) {
			return stateErr("turn %s is %s, cannot lock", t.ID, t.State)
		}
		season, err := tx.GetSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		clubs, err := tx.ListClubs(ctx, season.GameID)
		if err != nil {
			return err
		}
		decisions, err := tx.ListDecisions(ctx, t.ID)
		if err != nil {
			return err
		}
		byClub := make(map[uuid.UUID]Decision, len(decisions))
		for _, d := range decisions {
			byClub[d.ClubID] = d
		}
		var missing []string
		for _, c := range clubs {
			if d, ok := byClub[c.ID]; !ok || d.State != DecisionCommitted {
				missing = append(missing, c.Name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return stateErr("uncommitted decisions: %s", strings.Join(missing, ", "))
		}
		for _, c := range clubs {
			d := byClub[c.ID]
			d.State = DecisionLocked
			if err := tx.PutDecision(ctx, d); err != nil {
				return err
			}
		}
		now := s.clock()
		t.State = TurnLocked
		t.LockedAt = &now
		if err := tx.UpdateTurn(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// AckTurn records that a club has seen a resolved turn. The last ack moves
// the season forward: the next month opens, or after July the season is
// finalized and the next one begins.
func (s *Service) AckTurn(ctx context.Context, turnID, clubID uuid.UUID) (Turn, error) {
	var out Turn
	var rolled *Season
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.LockTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if t.State == TurnAcked {
			out = t
			return nil
		}
		if t.State != TurnResolved {
			return stateErr("turn %s is %s, nothing to acknowledge", t.ID, t.State)
		}
		season, err := tx.GetSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		club, err := tx.GetClub(ctx, clubID)
		if err != nil {
			return err
		}
		if club.GameID != season.GameID {
			return ErrNotFound
		}
		now := s.clock()
		if _, err := tx.InsertAck(ctx, Ack{TurnID: t.ID, ClubID: clubID, AckedAt: now}); err != nil {
			return err
		}

		clubs, err := tx.ListClubs(ctx, season.GameID)
		if err != nil {
			return err
		}
		acks, err := tx.ListAcks(ctx, t.ID)
		if err != nil {
			return err
		}
		acked := make(map[uuid.UUID]bool, len(acks))
		for _, a := range acks {
			acked[a.ClubID] = true
		}
		for _, c := range clubs {
			if !acked[c.ID] {
				out = t
				return nil
			}
		}

		t.State = TurnAcked
		t.AckedAt = &now
		if err := tx.UpdateTurn(ctx, t); err != nil {
			return err
		}
		out = t

		if t.MonthIndex < MonthsPerSeason {
			return s.openNextTurnTx(ctx, tx, t)
		}
		next, err := s.rolloverTx(ctx, tx, season)
		if err != nil {
			return err
		}
		rolled = &next
		return nil
	})
	if err != nil {
		return Turn{}, err
	}
	if rolled != nil {
		s.log.Info("season rolled over", "game_id", rolled.GameID, "season_id", rolled.ID, "year", rolled.YearLabel)
	}
	return out, nil
}

func (s *Service) openNextTurnTx(ctx context.Context, tx Tx, t Turn) error {
	turns, err := tx.ListTurns(ctx, t.SeasonID)
	if err != nil {
		return err
	}
	for _, next := range turns {
		if next.MonthIndex != t.MonthIndex+1 {
			continue
		}
		if next.State != TurnOpen {
			return stateErr("turn %s is already %s", next.ID, next.State)
		}
		now := s.clock()
		next.State = TurnCollecting
		next.OpenedAt = &now
		return tx.UpdateTurn(ctx, next)
	}
	return ErrIntegrity
}
