package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/sim"
)

const (
	DisclosureFinancialSummary  = "financial_summary"
	DisclosureTeamPowerDecember = "team_power_december"
	DisclosureTeamPowerJuly     = "team_power_july"

	teamPowerNoiseSigma = 1.5
)

type financialSummaryRow struct {
	ClubID   uuid.UUID       `json:"club_id"`
	ClubName string          `json:"club_name"`
	SeasonID uuid.UUID       `json:"season_id"`
	Months   int             `json:"months"`
	Income   decimal.Decimal `json:"income_total"`
	Expense  decimal.Decimal `json:"expense_total"`
	Closing  decimal.Decimal `json:"closing_balance"`
}

type teamPowerRow struct {
	ClubID    uuid.UUID `json:"club_id"`
	ClubName  string    `json:"club_name"`
	TeamPower float64   `json:"team_power"`
}

// publishDisclosures stores the public reports due at the end of December
// and July. Each report exists at most once per season.
func (s *Service) publishDisclosures(ctx context.Context, tx Tx, r *resolution) error {
	switch r.turn.MonthIndex {
	case DisclosureMonthDecember:
		summary, err := s.financialSummary(ctx, tx, r)
		if err != nil {
			return err
		}
		if err := s.disclose(ctx, tx, r, DisclosureFinancialSummary, summary); err != nil {
			return err
		}
		return s.disclose(ctx, tx, r, DisclosureTeamPowerDecember, s.teamPowers(r, false))
	case DisclosureMonthJuly:
		return s.disclose(ctx, tx, r, DisclosureTeamPowerJuly, s.teamPowers(r, true))
	}
	return nil
}

func (s *Service) disclose(ctx context.Context, tx Tx, r *resolution, kind string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	_, err = tx.InsertDisclosure(ctx, Disclosure{
		SeasonID:   r.season.ID,
		Type:       kind,
		MonthIndex: r.turn.MonthIndex,
		TurnID:     r.turn.ID,
		Data:       raw,
		CreatedAt:  r.now,
	})
	return err
}

// financialSummary covers the previous season when it is finalized, and the
// months played so far otherwise.
func (s *Service) financialSummary(ctx context.Context, tx Tx, r *resolution) ([]financialSummaryRow, error) {
	seasonID := r.season.ID
	if r.prevSeason != nil && r.prevSeason.IsFinalized {
		seasonID = r.prevSeason.ID
	}
	rows := make([]financialSummaryRow, 0, len(r.clubs))
	for _, c := range r.clubs {
		snaps, err := tx.ListSnapshots(ctx, c.ID, seasonID)
		if err != nil {
			return nil, err
		}
		row := financialSummaryRow{ClubID: c.ID, ClubName: c.Name, SeasonID: seasonID, Income: decimal.Zero, Expense: decimal.Zero, Closing: decimal.Zero}
		for _, snap := range snaps {
			row.Months++
			row.Income = row.Income.Add(snap.Income)
			row.Expense = row.Expense.Add(snap.Expense)
			row.Closing = snap.Closing
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) teamPowers(r *resolution, noisy bool) []teamPowerRow {
	rows := make([]teamPowerRow, 0, len(r.clubs))
	for _, c := range r.clubs {
		st := r.states[c.ID].State
		tp := sim.TeamPower(s.params.Sim, st.Reinforcement.SeasonBudget(), st.Academy.Cumulative)
		if noisy {
			tp += sim.NewKey("disclosure", c.ID, r.season.ID).Rand("team-power").NormFloat64() * teamPowerNoiseSigma
		}
		rows = append(rows, teamPowerRow{ClubID: c.ID, ClubName: c.Name, TeamPower: math.Round(tp*100) / 100})
	}
	return rows
}

// Disclosures lists the public reports published for a season.
func (s *Service) Disclosures(ctx context.Context, seasonID uuid.UUID) ([]Disclosure, error) {
	var out []Disclosure
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetSeason(ctx, seasonID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListDisclosures(ctx, seasonID)
		return err
	})
	return out, err
}
