package game

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pitchside/internal/econ"
	"pitchside/internal/ledger"
	"pitchside/internal/standings"
)

// postMatch books the month's post-match revenue and costs, persists every
// new ledger row of the turn, writes the snapshot and moves the balance.
func (s *Service) postMatch(ctx context.Context, tx Tx, r *resolution, clubID uuid.UUID) (ClubReport, error) {
	rp := s.params.Econ.Revenue
	month := r.turn.MonthIndex
	profile := r.profiles[clubID]
	book := r.books[clubID]

	var postings []ledger.Posting
	post := func(p ledger.Posting, ok bool) {
		if ok {
			postings = append(postings, p)
		}
	}

	post(econ.Distribution(rp, month))
	for _, f := range r.fixtures {
		if f.MonthIndex != month || f.IsBye || f.HomeClubID != clubID {
			continue
		}
		if m, ok := r.matches[f.ID]; !ok || m.Status != MatchPlayed {
			continue
		}
		postings = append(postings, econ.Matchday(rp, f.ID, f.TotalAttendance, profile.TicketPrice)...)
	}
	if month == rp.PrizeMonth {
		post(econ.Prize(rp, month, r.prizeRank(clubID)))
	}
	if month == rp.TaxMonth {
		profit, err := priorSeasonProfit(ctx, tx, r, clubID)
		if err != nil {
			return ClubReport{}, err
		}
		post(econ.Tax(rp, month, profit))
	}
	post(econ.SponsorBase(profile.SponsorBaseMonthly))
	post(econ.AdminCost(profile.MonthlyCost))
	if err := book.PostAll(postings); err != nil {
		return ClubReport{}, err
	}

	created := book.Pending()
	for _, e := range created {
		if _, err := tx.AppendLedger(ctx, e); err != nil {
			return ClubReport{}, err
		}
	}

	fs, err := tx.GetFinancialState(ctx, clubID)
	if err != nil {
		return ClubReport{}, err
	}
	opening := fs.Balance
	// A snapshot for a turn other than the last applied one means an older
	// month is being replayed; the balance already moved past it.
	stale := false
	prev, err := tx.GetSnapshot(ctx, clubID, r.turn.ID)
	switch {
	case err == nil:
		opening = prev.Opening
		stale = fs.LastAppliedTurnID != r.turn.ID
	case !errors.Is(err, ErrNotFound):
		return ClubReport{}, err
	}
	snap := ledger.NewSnapshot(clubID, r.season.ID, r.turn.ID, month, opening, book.All())
	if err := tx.PutSnapshot(ctx, snap); err != nil {
		return ClubReport{}, err
	}

	newPenalty := false
	if !stale {
		fs.Balance = snap.Closing
		fs.LastAppliedTurnID = r.turn.ID
		if newPenalty, err = s.checkBankruptcy(ctx, tx, r, &fs); err != nil {
			return ClubReport{}, err
		}
		if err := tx.PutFinancialState(ctx, fs); err != nil {
			return ClubReport{}, err
		}
	}
	return ClubReport{
		ClubID:     clubID,
		Created:    created,
		Snapshot:   snap,
		State:      r.states[clubID].State,
		Bankrupt:   fs.IsBankrupt,
		NewPenalty: newPenalty,
	}, nil
}

// prizeRank is the club's rank in the table of the last match month,
// penalties included.
func (r *resolution) prizeRank(clubID uuid.UUID) int {
	table := standings.Compute(standingClubs(r.clubs), r.results(func(m int) bool { return m <= PrizeStandingsMonth }), standingPenalties(r.penalties))
	for _, row := range table {
		if row.ClubID == clubID {
			return row.Rank
		}
	}
	return len(table)
}
