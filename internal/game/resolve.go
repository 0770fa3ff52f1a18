package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/decision"
	"pitchside/internal/econ"
	"pitchside/internal/ledger"
	"pitchside/internal/standings"
)

// resolution is everything one turn's resolution reads, loaded once at the
// start of the transaction and threaded through every phase.
type resolution struct {
	season   Season
	turn     Turn
	now      time.Time
	clubs    []Club
	fixtures []Fixture
	// matches is keyed by fixture.
	matches       map[uuid.UUID]Match
	decisions     map[uuid.UUID]decision.Payload
	prevDecisions map[uuid.UUID]decision.Payload
	states        map[uuid.UUID]*ClubSeasonState
	profiles      map[uuid.UUID]FinancialProfile
	books         map[uuid.UUID]*ledger.Book
	penalties     []PointPenalty
	perf          map[uuid.UUID]float64
	hist          map[uuid.UUID]float64
	prevSeason    *Season
}

// ResolveTurn runs the month: pre-match economics, the month's matches,
// post-match economics with the snapshot, and the bankruptcy check, all in
// one transaction.
func (s *Service) ResolveTurn(ctx context.Context, turnID uuid.UUID) (ResolveReport, error) {
	var report ResolveReport
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.LockTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if !t.State.CanAdvance(TurnResolved) {
			return stateErr("turn %s is %s, cannot resolve", t.ID, t.State)
		}
		report, err = s.resolveTx(ctx, tx, t)
		if err != nil {
			return err
		}
		now := s.clock()
		t.State = TurnResolved
		t.ResolvedAt = &now
		if err := tx.UpdateTurn(ctx, t); err != nil {
			return err
		}
		report.Turn = t
		return nil
	})
	if err != nil {
		return ResolveReport{}, err
	}
	created := 0
	for _, c := range report.Clubs {
		created += len(c.Created)
		if c.NewPenalty {
			s.log.Info("club bankrupt", "club_id", c.ClubID, "turn_id", turnID, "balance", c.Snapshot.Closing.String(), "penalty_points", BankruptcyPenaltyPoints)
		}
	}
	s.log.Info("turn resolved",
		"turn_id", turnID,
		"season_id", report.Turn.SeasonID,
		"month", report.Turn.MonthIndex,
		"matches", len(report.Matches),
		"ledger_entries", created,
	)
	return report, nil
}

// resolveTx is safe to run again on a turn it already resolved: ledger kinds
// that exist are skipped, played matches are kept and pre-match state is
// guarded by LastPreMatchMonth.
func (s *Service) resolveTx(ctx context.Context, tx Tx, t Turn) (ResolveReport, error) {
	r, err := s.loadResolution(ctx, tx, t)
	if err != nil {
		return ResolveReport{}, err
	}
	for _, c := range r.clubs {
		if err := s.preMatch(ctx, tx, r, c.ID); err != nil {
			return ResolveReport{}, err
		}
	}
	matches, err := s.playMatches(ctx, tx, r)
	if err != nil {
		return ResolveReport{}, err
	}
	report := ResolveReport{Turn: t, Matches: matches}
	for _, c := range r.clubs {
		cr, err := s.postMatch(ctx, tx, r, c.ID)
		if err != nil {
			return ResolveReport{}, err
		}
		report.Clubs = append(report.Clubs, cr)
	}
	if err := s.publishDisclosures(ctx, tx, r); err != nil {
		return ResolveReport{}, err
	}
	return report, nil
}

func (s *Service) loadResolution(ctx context.Context, tx Tx, t Turn) (*resolution, error) {
	season, err := tx.GetSeason(ctx, t.SeasonID)
	if err != nil {
		return nil, err
	}
	if season.IsFinalized {
		return nil, stateErr("season %s is finalized", season.ID)
	}
	r := &resolution{
		season:        season,
		turn:          t,
		now:           s.clock(),
		matches:       map[uuid.UUID]Match{},
		decisions:     map[uuid.UUID]decision.Payload{},
		prevDecisions: map[uuid.UUID]decision.Payload{},
		states:        map[uuid.UUID]*ClubSeasonState{},
		profiles:      map[uuid.UUID]FinancialProfile{},
		books:         map[uuid.UUID]*ledger.Book{},
		perf:          map[uuid.UUID]float64{},
		hist:          map[uuid.UUID]float64{},
	}
	if r.clubs, err = tx.ListClubs(ctx, season.GameID); err != nil {
		return nil, err
	}
	if r.fixtures, err = tx.ListFixtures(ctx, season.ID); err != nil {
		return nil, err
	}
	ms, err := tx.ListMatches(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	r.matches = indexMatches(ms)

	ds, err := tx.ListDecisions(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	for _, d := range ds {
		r.decisions[d.ClubID] = d.Payload
	}
	turns, err := tx.ListTurns(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	for _, prev := range turns {
		if prev.MonthIndex != t.MonthIndex-1 {
			continue
		}
		pds, err := tx.ListDecisions(ctx, prev.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range pds {
			r.prevDecisions[d.ClubID] = d.Payload
		}
	}

	for _, c := range r.clubs {
		st, err := tx.GetClubSeasonState(ctx, c.ID, season.ID)
		if err != nil {
			return nil, err
		}
		r.states[c.ID] = &st
		profile, err := tx.GetFinancialProfile(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		r.profiles[c.ID] = profile
		existing, err := tx.ListLedger(ctx, c.ID, t.ID)
		if err != nil {
			return nil, err
		}
		r.books[c.ID] = ledger.NewBook(c.ID, t.ID, existing, r.now)
	}

	if r.penalties, err = tx.ListPenalties(ctx, season.ID); err != nil {
		return nil, err
	}
	live := standings.Compute(standingClubs(r.clubs), r.results(func(m int) bool { return m < t.MonthIndex }), standingPenalties(r.penalties))
	for _, c := range r.clubs {
		r.perf[c.ID] = standings.Performance(live, c.ID)
	}

	seasons, err := tx.ListSeasons(ctx, season.GameID)
	if err != nil {
		return nil, err
	}
	var finals [][]standings.Row
	for i, other := range seasons {
		if other.ID == season.ID {
			if i > 0 {
				p := seasons[i-1]
				r.prevSeason = &p
			}
			break
		}
		if !other.IsFinalized {
			continue
		}
		rows, err := tx.ListFinalStandings(ctx, other.ID)
		if err != nil {
			return nil, err
		}
		finals = append(finals, rows)
	}
	for _, c := range r.clubs {
		r.hist[c.ID] = standings.Historical(finals, c.ID)
	}
	return r, nil
}

// results lists the played matches of months accepted by keep.
func (r *resolution) results(keep func(month int) bool) []standings.MatchResult {
	var out []standings.MatchResult
	for _, f := range r.fixtures {
		if f.IsBye || !keep(f.MonthIndex) {
			continue
		}
		m, ok := r.matches[f.ID]
		if !ok || m.Status != MatchPlayed {
			continue
		}
		out = append(out, standings.MatchResult{
			HomeClubID: f.HomeClubID,
			AwayClubID: f.AwayClubID,
			HomeGoals:  m.HomeGoals,
			AwayGoals:  m.AwayGoals,
			MonthIndex: f.MonthIndex,
		})
	}
	return out
}

func standingClubs(clubs []Club) []standings.Club {
	out := make([]standings.Club, len(clubs))
	for i, c := range clubs {
		out[i] = standings.Club{ID: c.ID, Name: c.Name}
	}
	return out
}

func standingPenalties(ps []PointPenalty) []standings.Penalty {
	out := make([]standings.Penalty, len(ps))
	for i, p := range ps {
		out[i] = standings.Penalty{ClubID: p.ClubID, Points: p.PointsDeducted}
	}
	return out
}

// preMatch applies the month's economic state changes for one club and books
// their costs and revenues. It runs at most once per club and month.
func (s *Service) preMatch(ctx context.Context, tx Tx, r *resolution, clubID uuid.UUID) error {
	css := r.states[clubID]
	month := r.turn.MonthIndex
	if css.State.LastPreMatchMonth >= month {
		return nil
	}
	ep := s.params.Econ
	st := css.State.Clone()
	d := r.decisions[clubID]
	prev := r.prevDecisions[clubID]
	perf, hist := r.perf[clubID], r.hist[clubID]

	var postings []ledger.Posting
	post := func(p ledger.Posting, ok bool) {
		if ok {
			postings = append(postings, p)
		}
	}

	if month == 1 {
		st.Staff = econ.ApplyPendingStaff(st.Staff)
	}
	if d.SalesAllocationNew != nil {
		st.Sales.SetAllocation(month, *d.SalesAllocationNew)
	}

	st.Fanbase = econ.StepFanbase(ep.Fanbase, st.Fanbase, econ.FanbaseInput{
		Promo:    prev.PromoExpense,
		Hometown: prev.HometownExpense,
		Perf:     perf,
		Hist:     hist,
	}, clubID, r.turn.ID)

	salesStaff := st.Staff.Count(econ.RoleSales, ep.Sales.DefaultSalesFTE)
	st.Sales = econ.StepSales(ep.Sales, st.Sales, month, salesStaff, d.SalesExpense)

	st.Sponsor = econ.StepSponsor(ep.Sponsor, st.Sponsor, month, econ.PipelineInput{
		CumRet:  st.Sales.CumRet,
		CumNew:  st.Sales.CumNew,
		Perf:    perf,
		Hist:    hist,
		Fanbase: st.Fanbase.Count,
	}, clubID, r.turn.ID)
	post(econ.SponsorRevenue(&st.Sponsor, month))

	if month == AdditionalReinforcementMonth && d.AdditionalReinforcement.IsPositive() {
		st.Reinforcement.AdditionalBudget = d.AdditionalReinforcement
	}
	postings = append(postings, econ.ReinforcementPostings(ep.Reinforcement, st.Reinforcement, month)...)
	if d.ReinforcementBudget.IsPositive() {
		st.Reinforcement.PlanNextSeason(month, d.ReinforcementBudget)
	}

	post(econ.StaffCost(ep.Staff, st.Staff))
	if plan := d.Plan(); plan != nil {
		var severance ledger.Posting
		var ok bool
		st.Staff, severance, ok = econ.PlanStaff(ep.Staff, st.Staff, plan)
		post(severance, ok)
	}

	var academy ledger.Posting
	var ok bool
	st.Academy, academy, ok = econ.AcademyMonth(st.Academy)
	post(academy, ok)
	if month == MonthsPerSeason {
		if d.AcademyBudget.IsPositive() {
			st.Academy.NextBudget = d.AcademyBudget
		}
		st.Academy, academy, ok = econ.AcademyTransfer(ep.Academy, st.Academy, clubID, r.season.ID)
		post(academy, ok)
	}

	postings = append(postings, econ.DecisionExpenses(d.Spend())...)
	if err := r.books[clubID].PostAll(postings); err != nil {
		return err
	}

	st.LastPreMatchMonth = month
	css.State = st
	return tx.PutClubSeasonState(ctx, *css)
}

// priorSeasonProfit sums the club's ledger over the previous season.
func priorSeasonProfit(ctx context.Context, tx Tx, r *resolution, clubID uuid.UUID) (decimal.Decimal, error) {
	if r.prevSeason == nil {
		return decimal.Zero, nil
	}
	entries, err := tx.ListSeasonLedger(ctx, clubID, r.prevSeason.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return decimal.Zero, err
	}
	return ledger.Sum(entries), nil
}
