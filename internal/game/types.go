package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/decision"
	"pitchside/internal/econ"
	"pitchside/internal/ledger"
	"pitchside/internal/sim"
	"pitchside/internal/standings"
)

type Game struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Status    GameStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type Club struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"game_id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Season struct {
	ID          uuid.UUID    `json:"id"`
	GameID      uuid.UUID    `json:"game_id"`
	YearLabel   string       `json:"year_label"`
	Status      SeasonStatus `json:"status"`
	IsFinalized bool         `json:"is_finalized"`
	FinalizedAt *time.Time   `json:"finalized_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Turn struct {
	ID         uuid.UUID  `json:"id"`
	SeasonID   uuid.UUID  `json:"season_id"`
	MonthIndex int        `json:"month_index"`
	MonthName  string     `json:"month_name"`
	State      TurnState  `json:"state"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	AckedAt    *time.Time `json:"acked_at,omitempty"`
}

type Decision struct {
	TurnID      uuid.UUID        `json:"turn_id"`
	ClubID      uuid.UUID        `json:"club_id"`
	State       DecisionState    `json:"state"`
	Payload     decision.Payload `json:"payload"`
	CommittedAt *time.Time       `json:"committed_at,omitempty"`
}

type Ack struct {
	TurnID  uuid.UUID `json:"turn_id"`
	ClubID  uuid.UUID `json:"club_id"`
	AckedAt time.Time `json:"acked_at"`
}

// Fixture is a scheduled slot. A bye carries only ByeClubID.
type Fixture struct {
	ID              uuid.UUID   `json:"id"`
	SeasonID        uuid.UUID   `json:"season_id"`
	MonthIndex      int         `json:"month_index"`
	HomeClubID      uuid.UUID   `json:"home_club_id"`
	AwayClubID      uuid.UUID   `json:"away_club_id"`
	IsBye           bool        `json:"is_bye"`
	ByeClubID       uuid.UUID   `json:"bye_club_id"`
	Weather         sim.Weather `json:"weather,omitempty"`
	HomeAttendance  int         `json:"home_attendance"`
	AwayAttendance  int         `json:"away_attendance"`
	TotalAttendance int         `json:"total_attendance"`
}

type Match struct {
	ID        uuid.UUID   `json:"id"`
	FixtureID uuid.UUID   `json:"fixture_id"`
	Status    MatchStatus `json:"status"`
	HomeGoals int         `json:"home_goals"`
	AwayGoals int         `json:"away_goals"`
	PlayedAt  *time.Time  `json:"played_at,omitempty"`
}

type FinancialState struct {
	ClubID              uuid.UUID       `json:"club_id"`
	Balance             decimal.Decimal `json:"balance"`
	IsBankrupt          bool            `json:"is_bankrupt"`
	BankruptSinceTurnID uuid.UUID       `json:"bankrupt_since_turn_id"`
	PointPenaltyApplied bool            `json:"point_penalty_applied"`
	PenaltySeasonID     uuid.UUID       `json:"penalty_season_id"`
	LastAppliedTurnID   uuid.UUID       `json:"last_applied_turn_id"`
}

type FinancialProfile struct {
	ClubID                uuid.UUID       `json:"club_id"`
	SponsorBaseMonthly    decimal.Decimal `json:"sponsor_base_monthly"`
	MonthlyCost           decimal.Decimal `json:"monthly_cost"`
	TicketPrice           decimal.Decimal `json:"ticket_price"`
	InitialBalance        decimal.Decimal `json:"initial_balance"`
	// StartingReinforcement is the reinforcement budget of the club's first season.
	StartingReinforcement decimal.Decimal `json:"starting_reinforcement"`
}

type ClubSeasonState struct {
	ClubID   uuid.UUID        `json:"club_id"`
	SeasonID uuid.UUID        `json:"season_id"`
	State    econ.SeasonState `json:"state"`
}

type PointPenalty struct {
	ID             uuid.UUID `json:"id"`
	ClubID         uuid.UUID `json:"club_id"`
	SeasonID       uuid.UUID `json:"season_id"`
	TurnID         uuid.UUID `json:"turn_id"`
	PointsDeducted int       `json:"points_deducted"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

type Disclosure struct {
	SeasonID   uuid.UUID       `json:"season_id"`
	Type       string          `json:"type"`
	MonthIndex int             `json:"month_index"`
	TurnID     uuid.UUID       `json:"turn_id"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
}

// FixtureView pairs a fixture with its match, if one exists.
type FixtureView struct {
	Fixture
	Match *Match `json:"match,omitempty"`
}

type CompletionReport struct {
	SeasonID          uuid.UUID `json:"season_id"`
	TotalFixtures     int       `json:"total_fixtures"`
	FixturesWithMatch int       `json:"fixtures_with_match"`
	PlayedMatches     int       `json:"played_matches"`
	MissingMatches    int       `json:"missing_matches"`
	UnplayedMatches   int       `json:"unplayed_matches"`
	IsCompleted       bool      `json:"is_completed"`
}

type FinalizeResult struct {
	Season    Season           `json:"season"`
	Standings []standings.Row  `json:"standings"`
	Report    CompletionReport `json:"report"`
}

type BankruptcyStatus struct {
	ClubID              uuid.UUID `json:"club_id"`
	IsBankrupt          bool      `json:"is_bankrupt"`
	BankruptSinceTurnID uuid.UUID `json:"bankrupt_since_turn_id"`
	PenaltyApplied      bool      `json:"penalty_applied"`
	TotalPenaltyPoints  int       `json:"total_penalty_points"`
	CanAddReinforcement bool      `json:"can_add_reinforcement"`
}

// ClubReport is what one turn's resolution did to one club.
type ClubReport struct {
	ClubID     uuid.UUID        `json:"club_id"`
	Created    []ledger.Entry   `json:"created"`
	Snapshot   ledger.Snapshot  `json:"snapshot"`
	State      econ.SeasonState `json:"state"`
	Bankrupt   bool             `json:"bankrupt"`
	NewPenalty bool             `json:"new_penalty"`
}

type ResolveReport struct {
	Turn    Turn          `json:"turn"`
	Matches []FixtureView `json:"matches"`
	Clubs   []ClubReport  `json:"clubs"`
}

type NewClubInput struct {
	GameID    uuid.UUID
	Name      string
	ShortName string
	TokenHash string
	// Profile overrides the default financial profile when set.
	Profile *FinancialProfile
}
