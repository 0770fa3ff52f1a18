package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pitchside/internal/game"
	"pitchside/internal/ledger"
	"pitchside/internal/sim"
	"pitchside/internal/standings"
)

func (t *Tx) CreateGame(ctx context.Context, g game.Game) error {
	_, err := t.exec(ctx, `
		INSERT INTO games (id, name, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, g.ID, g.Name, string(g.Status), utc(g.CreatedAt))
	return err
}

const gameCols = `id, name, status, created_at`

func scanGame(r Row) (game.Game, error) {
	var g game.Game
	var status string
	if err := r.Scan(&g.ID, &g.Name, &status, scanTime(&g.CreatedAt)); err != nil {
		return game.Game{}, err
	}
	g.Status = game.GameStatus(status)
	return g, nil
}

func (t *Tx) GetGame(ctx context.Context, id uuid.UUID) (game.Game, error) {
	g, err := scanGame(t.queryRow(ctx, `SELECT `+gameCols+` FROM games WHERE id = $1`, id))
	return g, notFound(err, "game")
}

func (t *Tx) ListGames(ctx context.Context) ([]game.Game, error) {
	rows, err := t.query(ctx, `SELECT `+gameCols+` FROM games ORDER BY created_at, id`)
	return collect(rows, err, scanGame)
}

func (t *Tx) CreateClub(ctx context.Context, c game.Club) error {
	_, err := t.exec(ctx, `
		INSERT INTO clubs (id, game_id, name, short_name, token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.GameID, c.Name, c.ShortName, c.TokenHash, utc(c.CreatedAt))
	return err
}

const clubCols = `id, game_id, name, short_name, token_hash, created_at`

func scanClub(r Row) (game.Club, error) {
	var c game.Club
	err := r.Scan(&c.ID, &c.GameID, &c.Name, &c.ShortName, &c.TokenHash, scanTime(&c.CreatedAt))
	return c, err
}

func (t *Tx) GetClub(ctx context.Context, id uuid.UUID) (game.Club, error) {
	c, err := scanClub(t.queryRow(ctx, `SELECT `+clubCols+` FROM clubs WHERE id = $1`, id))
	return c, notFound(err, "club")
}

func (t *Tx) ListClubs(ctx context.Context, gameID uuid.UUID) ([]game.Club, error) {
	rows, err := t.query(ctx, `SELECT `+clubCols+` FROM clubs WHERE game_id = $1 ORDER BY name, id`, gameID)
	return collect(rows, err, scanClub)
}

func (t *Tx) CreateSeason(ctx context.Context, s game.Season) error {
	_, err := t.exec(ctx, `
		INSERT INTO seasons (id, game_id, seq, year_label, status, is_finalized, finalized_at, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM seasons WHERE game_id = $2), $3, $4, $5, $6, $7)
	`, s.ID, s.GameID, s.YearLabel, string(s.Status), s.IsFinalized, utcPtr(s.FinalizedAt), utc(s.CreatedAt))
	return err
}

const seasonCols = `id, game_id, year_label, status, is_finalized, finalized_at, created_at`

func scanSeason(r Row) (game.Season, error) {
	var s game.Season
	var status string
	if err := r.Scan(&s.ID, &s.GameID, &s.YearLabel, &status, &s.IsFinalized, scanNullTime(&s.FinalizedAt), scanTime(&s.CreatedAt)); err != nil {
		return game.Season{}, err
	}
	s.Status = game.SeasonStatus(status)
	return s, nil
}

func (t *Tx) GetSeason(ctx context.Context, id uuid.UUID) (game.Season, error) {
	s, err := scanSeason(t.queryRow(ctx, `SELECT `+seasonCols+` FROM seasons WHERE id = $1`, id))
	return s, notFound(err, "season")
}

func (t *Tx) LockSeason(ctx context.Context, id uuid.UUID) (game.Season, error) {
	s, err := scanSeason(t.queryRow(ctx, t.lock(`SELECT `+seasonCols+` FROM seasons WHERE id = $1`), id))
	return s, notFound(err, "season")
}

func (t *Tx) ListSeasons(ctx context.Context, gameID uuid.UUID) ([]game.Season, error) {
	rows, err := t.query(ctx, `SELECT `+seasonCols+` FROM seasons WHERE game_id = $1 ORDER BY seq`, gameID)
	return collect(rows, err, scanSeason)
}

func (t *Tx) UpdateSeason(ctx context.Context, s game.Season) error {
	n, err := t.exec(ctx, `
		UPDATE seasons SET year_label = $2, status = $3, is_finalized = $4, finalized_at = $5
		WHERE id = $1
	`, s.ID, s.YearLabel, string(s.Status), s.IsFinalized, utcPtr(s.FinalizedAt))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: season %s", game.ErrNotFound, s.ID)
	}
	return nil
}

func (t *Tx) CreateTurn(ctx context.Context, tn game.Turn) error {
	_, err := t.exec(ctx, `
		INSERT INTO turns (id, season_id, month_index, month_name, state, opened_at, locked_at, resolved_at, acked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, tn.ID, tn.SeasonID, tn.MonthIndex, tn.MonthName, string(tn.State),
		utcPtr(tn.OpenedAt), utcPtr(tn.LockedAt), utcPtr(tn.ResolvedAt), utcPtr(tn.AckedAt))
	return err
}

const turnCols = `id, season_id, month_index, month_name, state, opened_at, locked_at, resolved_at, acked_at`

func scanTurn(r Row) (game.Turn, error) {
	var tn game.Turn
	var state string
	err := r.Scan(&tn.ID, &tn.SeasonID, &tn.MonthIndex, &tn.MonthName, &state,
		scanNullTime(&tn.OpenedAt), scanNullTime(&tn.LockedAt), scanNullTime(&tn.ResolvedAt), scanNullTime(&tn.AckedAt))
	if err != nil {
		return game.Turn{}, err
	}
	tn.State = game.TurnState(state)
	return tn, nil
}

func (t *Tx) GetTurn(ctx context.Context, id uuid.UUID) (game.Turn, error) {
	tn, err := scanTurn(t.queryRow(ctx, `SELECT `+turnCols+` FROM turns WHERE id = $1`, id))
	return tn, notFound(err, "turn")
}

func (t *Tx) LockTurn(ctx context.Context, id uuid.UUID) (game.Turn, error) {
	tn, err := scanTurn(t.queryRow(ctx, t.lock(`SELECT `+turnCols+` FROM turns WHERE id = $1`), id))
	return tn, notFound(err, "turn")
}

func (t *Tx) ListTurns(ctx context.Context, seasonID uuid.UUID) ([]game.Turn, error) {
	rows, err := t.query(ctx, `SELECT `+turnCols+` FROM turns WHERE season_id = $1 ORDER BY month_index`, seasonID)
	return collect(rows, err, scanTurn)
}

func (t *Tx) UpdateTurn(ctx context.Context, tn game.Turn) error {
	n, err := t.exec(ctx, `
		UPDATE turns SET state = $2, opened_at = $3, locked_at = $4, resolved_at = $5, acked_at = $6
		WHERE id = $1
	`, tn.ID, string(tn.State), utcPtr(tn.OpenedAt), utcPtr(tn.LockedAt), utcPtr(tn.ResolvedAt), utcPtr(tn.AckedAt))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: turn %s", game.ErrNotFound, tn.ID)
	}
	return nil
}

func (t *Tx) PutDecision(ctx context.Context, d game.Decision) error {
	payload, err := encodeJSON(d.Payload)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	_, err = t.exec(ctx, `
		INSERT INTO decisions (turn_id, club_id, state, payload, committed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (turn_id, club_id) DO UPDATE
		SET state = excluded.state, payload = excluded.payload, committed_at = excluded.committed_at
	`, d.TurnID, d.ClubID, string(d.State), payload, utcPtr(d.CommittedAt))
	return err
}

const decisionCols = `turn_id, club_id, state, CAST(payload AS TEXT), committed_at`

func scanDecision(r Row) (game.Decision, error) {
	var d game.Decision
	var state string
	if err := r.Scan(&d.TurnID, &d.ClubID, &state, scanJSON(&d.Payload), scanNullTime(&d.CommittedAt)); err != nil {
		return game.Decision{}, err
	}
	d.State = game.DecisionState(state)
	return d, nil
}

func (t *Tx) GetDecision(ctx context.Context, turnID, clubID uuid.UUID) (game.Decision, error) {
	d, err := scanDecision(t.queryRow(ctx, `SELECT `+decisionCols+` FROM decisions WHERE turn_id = $1 AND club_id = $2`, turnID, clubID))
	return d, notFound(err, "decision")
}

func (t *Tx) ListDecisions(ctx context.Context, turnID uuid.UUID) ([]game.Decision, error) {
	rows, err := t.query(ctx, `SELECT `+decisionCols+` FROM decisions WHERE turn_id = $1 ORDER BY club_id`, turnID)
	return collect(rows, err, scanDecision)
}

func (t *Tx) InsertAck(ctx context.Context, a game.Ack) (bool, error) {
	n, err := t.exec(ctx, `
		INSERT INTO acks (turn_id, club_id, acked_at) VALUES ($1, $2, $3)
		ON CONFLICT (turn_id, club_id) DO NOTHING
	`, a.TurnID, a.ClubID, utc(a.AckedAt))
	return n > 0, err
}

func (t *Tx) ListAcks(ctx context.Context, turnID uuid.UUID) ([]game.Ack, error) {
	rows, err := t.query(ctx, `SELECT turn_id, club_id, acked_at FROM acks WHERE turn_id = $1 ORDER BY club_id`, turnID)
	return collect(rows, err, func(r Row) (game.Ack, error) {
		var a game.Ack
		err := r.Scan(&a.TurnID, &a.ClubID, scanTime(&a.AckedAt))
		return a, err
	})
}

func (t *Tx) CreateFixture(ctx context.Context, f game.Fixture) error {
	_, err := t.exec(ctx, `
		INSERT INTO fixtures (id, season_id, month_index, home_club_id, away_club_id, is_bye, bye_club_id,
			weather, home_attendance, away_attendance, total_attendance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, f.ID, f.SeasonID, f.MonthIndex, f.HomeClubID, f.AwayClubID, f.IsBye, f.ByeClubID,
		string(f.Weather), f.HomeAttendance, f.AwayAttendance, f.TotalAttendance)
	return err
}

func (t *Tx) UpdateFixture(ctx context.Context, f game.Fixture) error {
	n, err := t.exec(ctx, `
		UPDATE fixtures SET weather = $2, home_attendance = $3, away_attendance = $4, total_attendance = $5
		WHERE id = $1
	`, f.ID, string(f.Weather), f.HomeAttendance, f.AwayAttendance, f.TotalAttendance)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: fixture %s", game.ErrNotFound, f.ID)
	}
	return nil
}

func (t *Tx) ListFixtures(ctx context.Context, seasonID uuid.UUID) ([]game.Fixture, error) {
	rows, err := t.query(ctx, `
		SELECT id, season_id, month_index, home_club_id, away_club_id, is_bye, bye_club_id,
			weather, home_attendance, away_attendance, total_attendance
		FROM fixtures WHERE season_id = $1
		ORDER BY month_index, id
	`, seasonID)
	return collect(rows, err, func(r Row) (game.Fixture, error) {
		var f game.Fixture
		var weather string
		err := r.Scan(&f.ID, &f.SeasonID, &f.MonthIndex, &f.HomeClubID, &f.AwayClubID, &f.IsBye, &f.ByeClubID,
			&weather, &f.HomeAttendance, &f.AwayAttendance, &f.TotalAttendance)
		f.Weather = sim.Weather(weather)
		return f, err
	})
}

func (t *Tx) CreateMatch(ctx context.Context, m game.Match) error {
	_, err := t.exec(ctx, `
		INSERT INTO matches (id, fixture_id, status, home_goals, away_goals, played_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.FixtureID, string(m.Status), m.HomeGoals, m.AwayGoals, utcPtr(m.PlayedAt))
	return err
}

func (t *Tx) UpdateMatch(ctx context.Context, m game.Match) error {
	n, err := t.exec(ctx, `
		UPDATE matches SET status = $2, home_goals = $3, away_goals = $4, played_at = $5
		WHERE id = $1
	`, m.ID, string(m.Status), m.HomeGoals, m.AwayGoals, utcPtr(m.PlayedAt))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: match %s", game.ErrNotFound, m.ID)
	}
	return nil
}

func (t *Tx) ListMatches(ctx context.Context, seasonID uuid.UUID) ([]game.Match, error) {
	rows, err := t.query(ctx, `
		SELECT m.id, m.fixture_id, m.status, m.home_goals, m.away_goals, m.played_at
		FROM matches m JOIN fixtures f ON f.id = m.fixture_id
		WHERE f.season_id = $1
		ORDER BY m.id
	`, seasonID)
	return collect(rows, err, func(r Row) (game.Match, error) {
		var m game.Match
		var status string
		err := r.Scan(&m.ID, &m.FixtureID, &status, &m.HomeGoals, &m.AwayGoals, scanNullTime(&m.PlayedAt))
		m.Status = game.MatchStatus(status)
		return m, err
	})
}

func (t *Tx) AppendLedger(ctx context.Context, e ledger.Entry) (bool, error) {
	if err := e.Kind.Validate(); err != nil {
		return false, err
	}
	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := encodeJSON(meta)
	if err != nil {
		return false, fmt.Errorf("encode ledger metadata: %w", err)
	}
	n, err := t.exec(ctx, `
		INSERT INTO ledger_entries (club_id, turn_id, category, correlation_id, amount, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (club_id, turn_id, category, correlation_id) DO NOTHING
	`, e.ClubID, e.TurnID, e.Kind.Category.String(), e.Kind.Correlation, e.Amount, raw, utc(e.CreatedAt))
	return n > 0, err
}

const ledgerCols = `l.club_id, l.turn_id, l.category, l.correlation_id, CAST(l.amount AS TEXT), CAST(l.meta AS TEXT), l.created_at`

func scanEntry(r Row) (ledger.Entry, error) {
	var e ledger.Entry
	var category string
	var meta map[string]any
	if err := r.Scan(&e.ClubID, &e.TurnID, &category, &e.Kind.Correlation, &e.Amount, scanJSON(&meta), scanTime(&e.CreatedAt)); err != nil {
		return ledger.Entry{}, err
	}
	c, err := ledger.ParseCategory(category)
	if err != nil {
		return ledger.Entry{}, err
	}
	e.Kind.Category = c
	if len(meta) > 0 {
		e.Meta = meta
	}
	return e, nil
}

func (t *Tx) ListLedger(ctx context.Context, clubID, turnID uuid.UUID) ([]ledger.Entry, error) {
	rows, err := t.query(ctx, `SELECT `+ledgerCols+` FROM ledger_entries l WHERE l.club_id = $1 AND l.turn_id = $2`, clubID, turnID)
	out, err := collect(rows, err, scanEntry)
	if err != nil {
		return nil, err
	}
	ledger.SortEntries(out)
	return out, nil
}

func (t *Tx) ListSeasonLedger(ctx context.Context, clubID, seasonID uuid.UUID) ([]ledger.Entry, error) {
	rows, err := t.query(ctx, `
		SELECT `+ledgerCols+`
		FROM ledger_entries l JOIN turns t ON t.id = l.turn_id
		WHERE l.club_id = $1 AND t.season_id = $2
		ORDER BY t.month_index, l.category, l.correlation_id
	`, clubID, seasonID)
	return collect(rows, err, scanEntry)
}

func (t *Tx) PutSnapshot(ctx context.Context, s ledger.Snapshot) error {
	_, err := t.exec(ctx, `
		INSERT INTO snapshots (club_id, season_id, turn_id, month_index, opening_balance, income_total, expense_total, closing_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (club_id, turn_id) DO UPDATE
		SET opening_balance = excluded.opening_balance, income_total = excluded.income_total,
			expense_total = excluded.expense_total, closing_balance = excluded.closing_balance
	`, s.ClubID, s.SeasonID, s.TurnID, s.MonthIndex, s.Opening, s.Income, s.Expense, s.Closing)
	return err
}

const snapshotCols = `club_id, season_id, turn_id, month_index, CAST(opening_balance AS TEXT), CAST(income_total AS TEXT),
	CAST(expense_total AS TEXT), CAST(closing_balance AS TEXT)`

func scanSnapshot(r Row) (ledger.Snapshot, error) {
	var s ledger.Snapshot
	err := r.Scan(&s.ClubID, &s.SeasonID, &s.TurnID, &s.MonthIndex, &s.Opening, &s.Income, &s.Expense, &s.Closing)
	return s, err
}

func (t *Tx) GetSnapshot(ctx context.Context, clubID, turnID uuid.UUID) (ledger.Snapshot, error) {
	s, err := scanSnapshot(t.queryRow(ctx, `SELECT `+snapshotCols+` FROM snapshots WHERE club_id = $1 AND turn_id = $2`, clubID, turnID))
	return s, notFound(err, "snapshot")
}

func (t *Tx) ListSnapshots(ctx context.Context, clubID, seasonID uuid.UUID) ([]ledger.Snapshot, error) {
	rows, err := t.query(ctx, `SELECT `+snapshotCols+` FROM snapshots WHERE club_id = $1 AND season_id = $2 ORDER BY month_index`, clubID, seasonID)
	return collect(rows, err, scanSnapshot)
}

func (t *Tx) GetFinancialState(ctx context.Context, clubID uuid.UUID) (game.FinancialState, error) {
	var fs game.FinancialState
	err := t.queryRow(ctx, `
		SELECT club_id, CAST(balance AS TEXT), is_bankrupt, bankrupt_since_turn_id, point_penalty_applied,
			penalty_season_id, last_applied_turn_id
		FROM financial_states WHERE club_id = $1
	`, clubID).Scan(&fs.ClubID, &fs.Balance, &fs.IsBankrupt, &fs.BankruptSinceTurnID, &fs.PointPenaltyApplied,
		&fs.PenaltySeasonID, &fs.LastAppliedTurnID)
	return fs, notFound(err, "financial state")
}

func (t *Tx) PutFinancialState(ctx context.Context, fs game.FinancialState) error {
	_, err := t.exec(ctx, `
		INSERT INTO financial_states (club_id, balance, is_bankrupt, bankrupt_since_turn_id, point_penalty_applied,
			penalty_season_id, last_applied_turn_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (club_id) DO UPDATE
		SET balance = excluded.balance, is_bankrupt = excluded.is_bankrupt,
			bankrupt_since_turn_id = excluded.bankrupt_since_turn_id,
			point_penalty_applied = excluded.point_penalty_applied,
			penalty_season_id = excluded.penalty_season_id,
			last_applied_turn_id = excluded.last_applied_turn_id
	`, fs.ClubID, fs.Balance, fs.IsBankrupt, fs.BankruptSinceTurnID, fs.PointPenaltyApplied, fs.PenaltySeasonID, fs.LastAppliedTurnID)
	return err
}

func (t *Tx) GetFinancialProfile(ctx context.Context, clubID uuid.UUID) (game.FinancialProfile, error) {
	var fp game.FinancialProfile
	err := t.queryRow(ctx, `
		SELECT club_id, CAST(sponsor_base_monthly AS TEXT), CAST(monthly_cost AS TEXT), CAST(ticket_price AS TEXT),
			CAST(initial_balance AS TEXT), CAST(starting_reinforcement AS TEXT)
		FROM financial_profiles WHERE club_id = $1
	`, clubID).Scan(&fp.ClubID, &fp.SponsorBaseMonthly, &fp.MonthlyCost, &fp.TicketPrice, &fp.InitialBalance, &fp.StartingReinforcement)
	return fp, notFound(err, "financial profile")
}

func (t *Tx) PutFinancialProfile(ctx context.Context, fp game.FinancialProfile) error {
	_, err := t.exec(ctx, `
		INSERT INTO financial_profiles (club_id, sponsor_base_monthly, monthly_cost, ticket_price, initial_balance, starting_reinforcement)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (club_id) DO UPDATE
		SET sponsor_base_monthly = excluded.sponsor_base_monthly, monthly_cost = excluded.monthly_cost,
			ticket_price = excluded.ticket_price, initial_balance = excluded.initial_balance,
			starting_reinforcement = excluded.starting_reinforcement
	`, fp.ClubID, fp.SponsorBaseMonthly, fp.MonthlyCost, fp.TicketPrice, fp.InitialBalance, fp.StartingReinforcement)
	return err
}

func (t *Tx) GetClubSeasonState(ctx context.Context, clubID, seasonID uuid.UUID) (game.ClubSeasonState, error) {
	s := game.ClubSeasonState{ClubID: clubID, SeasonID: seasonID}
	err := t.queryRow(ctx, `
		SELECT CAST(state AS TEXT) FROM club_season_states WHERE club_id = $1 AND season_id = $2
	`, clubID, seasonID).Scan(scanJSON(&s.State))
	return s, notFound(err, "club season state")
}

func (t *Tx) PutClubSeasonState(ctx context.Context, s game.ClubSeasonState) error {
	raw, err := encodeJSON(s.State)
	if err != nil {
		return fmt.Errorf("encode club state: %w", err)
	}
	_, err = t.exec(ctx, `
		INSERT INTO club_season_states (club_id, season_id, state) VALUES ($1, $2, $3)
		ON CONFLICT (club_id, season_id) DO UPDATE SET state = excluded.state
	`, s.ClubID, s.SeasonID, raw)
	return err
}

func (t *Tx) InsertPenalty(ctx context.Context, p game.PointPenalty) (bool, error) {
	n, err := t.exec(ctx, `
		INSERT INTO point_penalties (id, club_id, season_id, turn_id, points_deducted, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (club_id, season_id, reason) DO NOTHING
	`, p.ID, p.ClubID, p.SeasonID, p.TurnID, p.PointsDeducted, p.Reason, utc(p.CreatedAt))
	return n > 0, err
}

func (t *Tx) ListPenalties(ctx context.Context, seasonID uuid.UUID) ([]game.PointPenalty, error) {
	rows, err := t.query(ctx, `
		SELECT id, club_id, season_id, turn_id, points_deducted, reason, created_at
		FROM point_penalties WHERE season_id = $1
		ORDER BY created_at, id
	`, seasonID)
	return collect(rows, err, func(r Row) (game.PointPenalty, error) {
		var p game.PointPenalty
		err := r.Scan(&p.ID, &p.ClubID, &p.SeasonID, &p.TurnID, &p.PointsDeducted, &p.Reason, scanTime(&p.CreatedAt))
		return p, err
	})
}

func (t *Tx) PutFinalStandings(ctx context.Context, seasonID uuid.UUID, rows []standings.Row) error {
	if _, err := t.exec(ctx, `DELETE FROM final_standings WHERE season_id = $1`, seasonID); err != nil {
		return err
	}
	for _, r := range rows {
		_, err := t.exec(ctx, `
			INSERT INTO final_standings (season_id, club_id, club_name, rank, played, won, drawn, lost,
				goals_for, goals_against, goal_diff, points, penalty_points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, seasonID, r.ClubID, r.ClubName, r.Rank, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points, r.PenaltyPoints)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) ListFinalStandings(ctx context.Context, seasonID uuid.UUID) ([]standings.Row, error) {
	rows, err := t.query(ctx, `
		SELECT club_id, club_name, rank, played, won, drawn, lost, goals_for, goals_against, goal_diff, points, penalty_points
		FROM final_standings WHERE season_id = $1
		ORDER BY rank
	`, seasonID)
	return collect(rows, err, func(r Row) (standings.Row, error) {
		var s standings.Row
		err := r.Scan(&s.ClubID, &s.ClubName, &s.Rank, &s.Played, &s.Won, &s.Drawn, &s.Lost,
			&s.GoalsFor, &s.GoalsAgainst, &s.GoalDiff, &s.Points, &s.PenaltyPoints)
		return s, err
	})
}

func (t *Tx) InsertDisclosure(ctx context.Context, d game.Disclosure) (bool, error) {
	n, err := t.exec(ctx, `
		INSERT INTO disclosures (season_id, type, month_index, turn_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season_id, type) DO NOTHING
	`, d.SeasonID, d.Type, d.MonthIndex, d.TurnID, string(d.Data), utc(d.CreatedAt))
	return n > 0, err
}

func (t *Tx) ListDisclosures(ctx context.Context, seasonID uuid.UUID) ([]game.Disclosure, error) {
	rows, err := t.query(ctx, `
		SELECT season_id, type, month_index, turn_id, CAST(data AS TEXT), created_at
		FROM disclosures WHERE season_id = $1
		ORDER BY month_index, type
	`, seasonID)
	return collect(rows, err, func(r Row) (game.Disclosure, error) {
		var d game.Disclosure
		err := r.Scan(&d.SeasonID, &d.Type, &d.MonthIndex, &d.TurnID, scanJSON(&d.Data), scanTime(&d.CreatedAt))
		return d, err
	})
}
