// Package memstore keeps the whole game in memory. A transaction works on a
// copy of the data and swaps it in on success, so a failed transaction
// leaves nothing behind.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"pitchside/internal/game"
	"pitchside/internal/ledger"
	"pitchside/internal/standings"
)

var _ game.Store = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	data *data
}

func New() *Store {
	return &Store{data: newData()}
}

// InTx runs fn with exclusive access. Transactions never conflict, so there
// is nothing to retry.
func (s *Store) InTx(ctx context.Context, fn func(game.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&tx{d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

type pair struct{ a, b uuid.UUID }

type penaltyKey struct {
	club, season uuid.UUID
	reason       string
}

type ledgerKey struct {
	club, turn uuid.UUID
	kind       ledger.Kind
}

type disclosureKey struct {
	season uuid.UUID
	kind   string
}

type data struct {
	games       map[uuid.UUID]game.Game
	clubs       map[uuid.UUID]game.Club
	seasons     map[uuid.UUID]game.Season
	seasonOrder []uuid.UUID
	turns       map[uuid.UUID]game.Turn
	decisions   map[pair]game.Decision
	acks        map[pair]game.Ack
	fixtures    map[uuid.UUID]game.Fixture
	matches     map[uuid.UUID]game.Match
	ledger      map[ledgerKey]ledger.Entry
	snapshots   map[pair]ledger.Snapshot
	finStates   map[uuid.UUID]game.FinancialState
	profiles    map[uuid.UUID]game.FinancialProfile
	clubStates  map[pair]game.ClubSeasonState
	penalties   map[penaltyKey]game.PointPenalty
	finals      map[uuid.UUID][]standings.Row
	disclosures map[disclosureKey]game.Disclosure
}

func newData() *data {
	return &data{
		games:       map[uuid.UUID]game.Game{},
		clubs:       map[uuid.UUID]game.Club{},
		seasons:     map[uuid.UUID]game.Season{},
		turns:       map[uuid.UUID]game.Turn{},
		decisions:   map[pair]game.Decision{},
		acks:        map[pair]game.Ack{},
		fixtures:    map[uuid.UUID]game.Fixture{},
		matches:     map[uuid.UUID]game.Match{},
		ledger:      map[ledgerKey]ledger.Entry{},
		snapshots:   map[pair]ledger.Snapshot{},
		finStates:   map[uuid.UUID]game.FinancialState{},
		profiles:    map[uuid.UUID]game.FinancialProfile{},
		clubStates:  map[pair]game.ClubSeasonState{},
		penalties:   map[penaltyKey]game.PointPenalty{},
		finals:      map[uuid.UUID][]standings.Row{},
		disclosures: map[disclosureKey]game.Disclosure{},
	}
}

// clone copies every table. Rows are values; the nested maps inside club
// season states are copied on the way in and out, so sharing the rest is
// safe.
func (d *data) clone() *data {
	return &data{
		games:       maps.Clone(d.games),
		clubs:       maps.Clone(d.clubs),
		seasons:     maps.Clone(d.seasons),
		seasonOrder: slices.Clone(d.seasonOrder),
		turns:       maps.Clone(d.turns),
		decisions:   maps.Clone(d.decisions),
		acks:        maps.Clone(d.acks),
		fixtures:    maps.Clone(d.fixtures),
		matches:     maps.Clone(d.matches),
		ledger:      maps.Clone(d.ledger),
		snapshots:   maps.Clone(d.snapshots),
		finStates:   maps.Clone(d.finStates),
		profiles:    maps.Clone(d.profiles),
		clubStates:  maps.Clone(d.clubStates),
		penalties:   maps.Clone(d.penalties),
		finals:      maps.Clone(d.finals),
		disclosures: maps.Clone(d.disclosures),
	}
}

type tx struct {
	d *data
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", game.ErrNotFound, what, id)
}

func duplicate(what string, id any) error {
	return fmt.Errorf("%w: duplicate %s %v", game.ErrIntegrity, what, id)
}

func byID[T any](id func(T) uuid.UUID) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(id(a).String(), id(b).String()) }
}

func (t *tx) CreateGame(_ context.Context, g game.Game) error {
	if _, ok := t.d.games[g.ID]; ok {
		return duplicate("game", g.ID)
	}
	t.d.games[g.ID] = g
	return nil
}

func (t *tx) GetGame(_ context.Context, id uuid.UUID) (game.Game, error) {
	g, ok := t.d.games[id]
	if !ok {
		return game.Game{}, notFound("game", id)
	}
	return g, nil
}

func (t *tx) ListGames(_ context.Context) ([]game.Game, error) {
	out := slices.Collect(maps.Values(t.d.games))
	slices.SortFunc(out, func(a, b game.Game) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (t *tx) CreateClub(_ context.Context, c game.Club) error {
	if _, ok := t.d.clubs[c.ID]; ok {
		return duplicate("club", c.ID)
	}
	for _, other := range t.d.clubs {
		if other.GameID == c.GameID && other.Name == c.Name {
			return duplicate("club name", c.Name)
		}
	}
	t.d.clubs[c.ID] = c
	return nil
}

func (t *tx) GetClub(_ context.Context, id uuid.UUID) (game.Club, error) {
	c, ok := t.d.clubs[id]
	if !ok {
		return game.Club{}, notFound("club", id)
	}
	return c, nil
}

func (t *tx) ListClubs(_ context.Context, gameID uuid.UUID) ([]game.Club, error) {
	var out []game.Club
	for _, c := range t.d.clubs {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b game.Club) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (t *tx) CreateSeason(_ context.Context, s game.Season) error {
	if _, ok := t.d.seasons[s.ID]; ok {
		return duplicate("season", s.ID)
	}
	t.d.seasons[s.ID] = s
	t.d.seasonOrder = append(t.d.seasonOrder, s.ID)
	return nil
}

func (t *tx) GetSeason(_ context.Context, id uuid.UUID) (game.Season, error) {
	s, ok := t.d.seasons[id]
	if !ok {
		return game.Season{}, notFound("season", id)
	}
	return s, nil
}

// LockSeason needs no extra work: the store mutex is already exclusive.
func (t *tx) LockSeason(ctx context.Context, id uuid.UUID) (game.Season, error) {
	return t.GetSeason(ctx, id)
}

func (t *tx) ListSeasons(_ context.Context, gameID uuid.UUID) ([]game.Season, error) {
	var out []game.Season
	for _, id := range t.d.seasonOrder {
		if s := t.d.seasons[id]; s.GameID == gameID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *tx) UpdateSeason(_ context.Context, s game.Season) error {
	if _, ok := t.d.seasons[s.ID]; !ok {
		return notFound("season", s.ID)
	}
	t.d.seasons[s.ID] = s
	return nil
}

func (t *tx) CreateTurn(_ context.Context, tn game.Turn) error {
	if _, ok := t.d.turns[tn.ID]; ok {
		return duplicate("turn", tn.ID)
	}
	t.d.turns[tn.ID] = tn
	return nil
}

func (t *tx) GetTurn(_ context.Context, id uuid.UUID) (game.Turn, error) {
	tn, ok := t.d.turns[id]
	if !ok {
		return game.Turn{}, notFound("turn", id)
	}
	return tn, nil
}

func (t *tx) LockTurn(ctx context.Context, id uuid.UUID) (game.Turn, error) {
	return t.GetTurn(ctx, id)
}

func (t *tx) ListTurns(_ context.Context, seasonID uuid.UUID) ([]game.Turn, error) {
	var out []game.Turn
	for _, tn := range t.d.turns {
		if tn.SeasonID == seasonID {
			out = append(out, tn)
		}
	}
	slices.SortFunc(out, func(a, b game.Turn) int { return cmp.Compare(a.MonthIndex, b.MonthIndex) })
	return out, nil
}

func (t *tx) UpdateTurn(_ context.Context, tn game.Turn) error {
	if _, ok := t.d.turns[tn.ID]; !ok {
		return notFound("turn", tn.ID)
	}
	t.d.turns[tn.ID] = tn
	return nil
}

func (t *tx) PutDecision(_ context.Context, d game.Decision) error {
	t.d.decisions[pair{d.TurnID, d.ClubID}] = d
	return nil
}

func (t *tx) GetDecision(_ context.Context, turnID, clubID uuid.UUID) (game.Decision, error) {
	d, ok := t.d.decisions[pair{turnID, clubID}]
	if !ok {
		return game.Decision{}, notFound("decision", clubID)
	}
	return d, nil
}

func (t *tx) ListDecisions(_ context.Context, turnID uuid.UUID) ([]game.Decision, error) {
	var out []game.Decision
	for k, d := range t.d.decisions {
		if k.a == turnID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, byID(func(d game.Decision) uuid.UUID { return d.ClubID }))
	return out, nil
}

func (t *tx) InsertAck(_ context.Context, a game.Ack) (bool, error) {
	k := pair{a.TurnID, a.ClubID}
	if _, ok := t.d.acks[k]; ok {
		return false, nil
	}
	t.d.acks[k] = a
	return true, nil
}

func (t *tx) ListAcks(_ context.Context, turnID uuid.UUID) ([]game.Ack, error) {
	var out []game.Ack
	for k, a := range t.d.acks {
		if k.a == turnID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, byID(func(a game.Ack) uuid.UUID { return a.ClubID }))
	return out, nil
}

func (t *tx) CreateFixture(_ context.Context, f game.Fixture) error {
	if _, ok := t.d.fixtures[f.ID]; ok {
		return duplicate("fixture", f.ID)
	}
	t.d.fixtures[f.ID] = f
	return nil
}

func (t *tx) UpdateFixture(_ context.Context, f game.Fixture) error {
	if _, ok := t.d.fixtures[f.ID]; !ok {
		return notFound("fixture", f.ID)
	}
	t.d.fixtures[f.ID] = f
	return nil
}

func (t *tx) ListFixtures(_ context.Context, seasonID uuid.UUID) ([]game.Fixture, error) {
	var out []game.Fixture
	for _, f := range t.d.fixtures {
		if f.SeasonID == seasonID {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b game.Fixture) int {
		if c := cmp.Compare(a.MonthIndex, b.MonthIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (t *tx) CreateMatch(_ context.Context, m game.Match) error {
	if _, ok := t.d.matches[m.ID]; ok {
		return duplicate("match", m.ID)
	}
	for _, other := range t.d.matches {
		if other.FixtureID == m.FixtureID {
			return duplicate("match for fixture", m.FixtureID)
		}
	}
	t.d.matches[m.ID] = m
	return nil
}

func (t *tx) UpdateMatch(_ context.Context, m game.Match) error {
	if _, ok := t.d.matches[m.ID]; !ok {
		return notFound("match", m.ID)
	}
	t.d.matches[m.ID] = m
	return nil
}

func (t *tx) ListMatches(_ context.Context, seasonID uuid.UUID) ([]game.Match, error) {
	var out []game.Match
	for _, m := range t.d.matches {
		if t.d.fixtures[m.FixtureID].SeasonID == seasonID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, byID(func(m game.Match) uuid.UUID { return m.ID }))
	return out, nil
}

func (t *tx) AppendLedger(_ context.Context, e ledger.Entry) (bool, error) {
	if err := e.Kind.Validate(); err != nil {
		return false, err
	}
	k := ledgerKey{e.ClubID, e.TurnID, e.Kind}
	if _, ok := t.d.ledger[k]; ok {
		return false, nil
	}
	t.d.ledger[k] = e
	return true, nil
}

func (t *tx) ListLedger(_ context.Context, clubID, turnID uuid.UUID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for k, e := range t.d.ledger {
		if k.club == clubID && k.turn == turnID {
			out = append(out, e)
		}
	}
	ledger.SortEntries(out)
	return out, nil
}

func (t *tx) ListSeasonLedger(_ context.Context, clubID, seasonID uuid.UUID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for k, e := range t.d.ledger {
		if k.club == clubID && t.d.turns[k.turn].SeasonID == seasonID {
			out = append(out, e)
		}
	}
	ledger.SortEntries(out)
	slices.SortStableFunc(out, func(a, b ledger.Entry) int {
		return cmp.Compare(t.d.turns[a.TurnID].MonthIndex, t.d.turns[b.TurnID].MonthIndex)
	})
	return out, nil
}

func (t *tx) PutSnapshot(_ context.Context, s ledger.Snapshot) error {
	t.d.snapshots[pair{s.ClubID, s.TurnID}] = s
	return nil
}

func (t *tx) GetSnapshot(_ context.Context, clubID, turnID uuid.UUID) (ledger.Snapshot, error) {
	s, ok := t.d.snapshots[pair{clubID, turnID}]
	if !ok {
		return ledger.Snapshot{}, notFound("snapshot", turnID)
	}
	return s, nil
}

func (t *tx) ListSnapshots(_ context.Context, clubID, seasonID uuid.UUID) ([]ledger.Snapshot, error) {
	var out []ledger.Snapshot
	for _, s := range t.d.snapshots {
		if s.ClubID == clubID && s.SeasonID == seasonID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b ledger.Snapshot) int { return cmp.Compare(a.MonthIndex, b.MonthIndex) })
	return out, nil
}

func (t *tx) GetFinancialState(_ context.Context, clubID uuid.UUID) (game.FinancialState, error) {
	fs, ok := t.d.finStates[clubID]
	if !ok {
		return game.FinancialState{}, notFound("financial state", clubID)
	}
	return fs, nil
}

func (t *tx) PutFinancialState(_ context.Context, fs game.FinancialState) error {
	t.d.finStates[fs.ClubID] = fs
	return nil
}

func (t *tx) GetFinancialProfile(_ context.Context, clubID uuid.UUID) (game.FinancialProfile, error) {
	fp, ok := t.d.profiles[clubID]
	if !ok {
		return game.FinancialProfile{}, notFound("financial profile", clubID)
	}
	return fp, nil
}

func (t *tx) PutFinancialProfile(_ context.Context, fp game.FinancialProfile) error {
	t.d.profiles[fp.ClubID] = fp
	return nil
}

func (t *tx) GetClubSeasonState(_ context.Context, clubID, seasonID uuid.UUID) (game.ClubSeasonState, error) {
	s, ok := t.d.clubStates[pair{clubID, seasonID}]
	if !ok {
		return game.ClubSeasonState{}, notFound("club season state", clubID)
	}
	s.State = s.State.Clone()
	return s, nil
}

func (t *tx) PutClubSeasonState(_ context.Context, s game.ClubSeasonState) error {
	s.State = s.State.Clone()
	t.d.clubStates[pair{s.ClubID, s.SeasonID}] = s
	return nil
}

func (t *tx) InsertPenalty(_ context.Context, p game.PointPenalty) (bool, error) {
	k := penaltyKey{p.ClubID, p.SeasonID, p.Reason}
	if _, ok := t.d.penalties[k]; ok {
		return false, nil
	}
	t.d.penalties[k] = p
	return true, nil
}

func (t *tx) ListPenalties(_ context.Context, seasonID uuid.UUID) ([]game.PointPenalty, error) {
	var out []game.PointPenalty
	for k, p := range t.d.penalties {
		if k.season == seasonID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b game.PointPenalty) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (t *tx) PutFinalStandings(_ context.Context, seasonID uuid.UUID, rows []standings.Row) error {
	out := slices.Clone(rows)
	slices.SortFunc(out, func(a, b standings.Row) int { return cmp.Compare(a.Rank, b.Rank) })
	t.d.finals[seasonID] = out
	return nil
}

func (t *tx) ListFinalStandings(_ context.Context, seasonID uuid.UUID) ([]standings.Row, error) {
	return slices.Clone(t.d.finals[seasonID]), nil
}

func (t *tx) InsertDisclosure(_ context.Context, d game.Disclosure) (bool, error) {
	k := disclosureKey{d.SeasonID, d.Type}
	if _, ok := t.d.disclosures[k]; ok {
		return false, nil
	}
	t.d.disclosures[k] = d
	return true, nil
}

func (t *tx) ListDisclosures(_ context.Context, seasonID uuid.UUID) ([]game.Disclosure, error) {
	var out []game.Disclosure
	for k, d := range t.d.disclosures {
		if k.season == seasonID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b game.Disclosure) int {
		if c := cmp.Compare(a.MonthIndex, b.MonthIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return out, nil
}
