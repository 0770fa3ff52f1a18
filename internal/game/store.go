package game

import (
	"context"

	"github.com/google/uuid"

	"pitchside/internal/ledger"
	"pitchside/internal/standings"
)

// Store runs fn inside one atomic unit of work. If fn returns an error
// nothing it did is kept. Implementations retry on serialization conflicts
// and return ErrTxConflict when they give up.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the persistence surface the engine needs. Getters return ErrNotFound
// for missing rows. List methods return rows in a stable order.
type Tx interface {
	CreateGame(ctx context.Context, g Game) error
	GetGame(ctx context.Context, id uuid.UUID) (Game, error)
	ListGames(ctx context.Context) ([]Game, error)

	CreateClub(ctx context.Context, c Club) error
	GetClub(ctx context.Context, id uuid.UUID) (Club, error)
	// ListClubs orders by name, then id.
	ListClubs(ctx context.Context, gameID uuid.UUID) ([]Club, error)

	CreateSeason(ctx context.Context, s Season) error
	GetSeason(ctx context.Context, id uuid.UUID) (Season, error)
	// LockSeason is GetSeason holding an exclusive lock until commit.
	LockSeason(ctx context.Context, id uuid.UUID) (Season, error)
	// ListSeasons orders by creation.
	ListSeasons(ctx context.Context, gameID uuid.UUID) ([]Season, error)
	UpdateSeason(ctx context.Context, s Season) error

	CreateTurn(ctx context.Context, t Turn) error
	GetTurn(ctx context.Context, id uuid.UUID) (Turn, error)
	LockTurn(ctx context.Context, id uuid.UUID) (Turn, error)
	// ListTurns orders by month.
	ListTurns(ctx context.Context, seasonID uuid.UUID) ([]Turn, error)
	UpdateTurn(ctx context.Context, t Turn) error

	PutDecision(ctx context.Context, d Decision) error
	GetDecision(ctx context.Context, turnID, clubID uuid.UUID) (Decision, error)
	ListDecisions(ctx context.Context, turnID uuid.UUID) ([]Decision, error)

	// InsertAck reports false when the club had already acked.
	InsertAck(ctx context.Context, a Ack) (bool, error)
	ListAcks(ctx context.Context, turnID uuid.UUID) ([]Ack, error)

	CreateFixture(ctx context.Context, f Fixture) error
	UpdateFixture(ctx context.Context, f Fixture) error
	// ListFixtures orders by month, then id.
	ListFixtures(ctx context.Context, seasonID uuid.UUID) ([]Fixture, error)

	CreateMatch(ctx context.Context, m Match) error
	UpdateMatch(ctx context.Context, m Match) error
	ListMatches(ctx context.Context, seasonID uuid.UUID) ([]Match, error)

	// AppendLedger reports false when an entry of the same kind already
	// exists for the club and turn.
	AppendLedger(ctx context.Context, e ledger.Entry) (bool, error)
	ListLedger(ctx context.Context, clubID, turnID uuid.UUID) ([]ledger.Entry, error)
	ListSeasonLedger(ctx context.Context, clubID, seasonID uuid.UUID) ([]ledger.Entry, error)

	PutSnapshot(ctx context.Context, s ledger.Snapshot) error
	GetSnapshot(ctx context.Context, clubID, turnID uuid.UUID) (ledger.Snapshot, error)
	// ListSnapshots orders by month.
	ListSnapshots(ctx context.Context, clubID, seasonID uuid.UUID) ([]ledger.Snapshot, error)

	GetFinancialState(ctx context.Context, clubID uuid.UUID) (FinancialState, error)
	PutFinancialState(ctx context.Context, fs FinancialState) error
	GetFinancialProfile(ctx context.Context, clubID uuid.UUID) (FinancialProfile, error)
	PutFinancialProfile(ctx context.Context, fp FinancialProfile) error

	GetClubSeasonState(ctx context.Context, clubID, seasonID uuid.UUID) (ClubSeasonState, error)
	PutClubSeasonState(ctx context.Context, s ClubSeasonState) error

	// InsertPenalty reports false when the (club, season, reason) penalty exists.
	InsertPenalty(ctx context.Context, p PointPenalty) (bool, error)
	ListPenalties(ctx context.Context, seasonID uuid.UUID) ([]PointPenalty, error)

	PutFinalStandings(ctx context.Context, seasonID uuid.UUID, rows []standings.Row) error
	// ListFinalStandings orders by rank.
	ListFinalStandings(ctx context.Context, seasonID uuid.UUID) ([]standings.Row, error)

	// InsertDisclosure reports false when the (season, type) disclosure exists.
	InsertDisclosure(ctx context.Context, d Disclosure) (bool, error)
	ListDisclosures(ctx context.Context, seasonID uuid.UUID) ([]Disclosure, error)
}
