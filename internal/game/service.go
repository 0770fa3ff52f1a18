package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/decision"
	"pitchside/internal/econ"
	"pitchside/internal/fixtures"
	"pitchside/internal/ledger"
	"pitchside/internal/sim"
)

// Params are the tunable model coefficients.
type Params struct {
	Sim  sim.Params
	Econ econ.Params
}

func DefaultParams() Params {
	return Params{Sim: sim.DefaultParams(), Econ: econ.DefaultParams()}
}

type Service struct {
	store  Store
	params Params
	log    *slog.Logger
	now    func() time.Time
}

func NewService(store Store, params Params, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		params: params,
		log:    logger,
		now:    time.Now,
	}
}

// SetClock replaces the wall clock used for timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) CreateGame(ctx context.Context, name string) (Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Game{}, fmt.Errorf("%w: game name is required", ErrValidation)
	}
	g := Game{ID: uuid.New(), Name: name, Status: GameActive, CreatedAt: s.clock()}
	err := s.store.InTx(ctx, func(tx Tx) error {
		return tx.CreateGame(ctx, g)
	})
	if err != nil {
		return Game{}, err
	}
	return g, nil
}

// AddClub registers a club. Clubs can only join before the first season.
func (s *Service) AddClub(ctx context.Context, in NewClubInput) (Club, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ShortName = strings.TrimSpace(in.ShortName)
	if in.Name == "" {
		return Club{}, fmt.Errorf("%w: club name is required", ErrValidation)
	}
	if in.ShortName == "" {
		in.ShortName = in.Name
	}

	club := Club{
		ID:        uuid.New(),
		GameID:    in.GameID,
		Name:      in.Name,
		ShortName: in.ShortName,
		TokenHash: in.TokenHash,
		CreatedAt: s.clock(),
	}
	profile := FinancialProfile{
		TicketPrice: decimal.NewFromInt(s.params.Econ.Revenue.DefaultTicketYen),
	}
	if in.Profile != nil {
		profile = *in.Profile
		if profile.TicketPrice.IsZero() {
			profile.TicketPrice = decimal.NewFromInt(s.params.Econ.Revenue.DefaultTicketYen)
		}
	}
	profile.ClubID = club.ID
	if profile.TicketPrice.IsNegative() || profile.MonthlyCost.IsNegative() || profile.SponsorBaseMonthly.IsNegative() || profile.StartingReinforcement.IsNegative() {
		return Club{}, fmt.Errorf("%w: profile amounts must not be negative", ErrValidation)
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetGame(ctx, in.GameID); err != nil {
			return err
		}
		seasons, err := tx.ListSeasons(ctx, in.GameID)
		if err != nil {
			return err
		}
		if len(seasons) > 0 {
			return stateErr("clubs cannot join after the first season was created")
		}
		clubs, err := tx.ListClubs(ctx, in.GameID)
		if err != nil {
			return err
		}
		for _, c := range clubs {
			if strings.EqualFold(c.Name, club.Name) {
				return fmt.Errorf("%w: club name %q is taken", ErrValidation, club.Name)
			}
		}
		if err := tx.CreateClub(ctx, club); err != nil {
			return err
		}
		if err := tx.PutFinancialProfile(ctx, profile); err != nil {
			return err
		}
		return tx.PutFinancialState(ctx, FinancialState{ClubID: club.ID, Balance: ledger.Quantize(profile.InitialBalance)})
	})
	if err != nil {
		return Club{}, err
	}
	return club, nil
}

// CreateSeason starts the first season of a game. Later seasons are created
// when the last turn of the running season is acknowledged.
func (s *Service) CreateSeason(ctx context.Context, gameID uuid.UUID, yearLabel string) (Season, error) {
	if _, err := NextYearLabel(yearLabel); err != nil {
		return Season{}, err
	}
	var out Season
	err := s.store.InTx(ctx, func(tx Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if g.Status != GameActive {
			return stateErr("game %s is %s", g.ID, g.Status)
		}
		seasons, err := tx.ListSeasons(ctx, gameID)
		if err != nil {
			return err
		}
		if len(seasons) > 0 {
			return stateErr("game already has a season")
		}
		out, err = s.createSeasonTx(ctx, tx, g, strings.TrimSpace(yearLabel), nil)
		return err
	})
	if err != nil {
		return Season{}, err
	}
	s.log.Info("season created", "game_id", gameID, "season_id", out.ID, "year", out.YearLabel)
	return out, nil
}

// createSeasonTx lays out a season: 12 turns, the fixture schedule with a
// match per real fixture, a draft decision per club and turn, and each club's
// economic state, carried over from prev when given.
func (s *Service) createSeasonTx(ctx context.Context, tx Tx, g Game, yearLabel string, prev *Season) (Season, error) {
	clubs, err := tx.ListClubs(ctx, g.ID)
	if err != nil {
		return Season{}, err
	}
	if len(clubs) < 2 {
		return Season{}, fmt.Errorf("%w: a season needs at least two clubs", ErrValidation)
	}
	now := s.clock()
	season := Season{ID: uuid.New(), GameID: g.ID, YearLabel: yearLabel, Status: SeasonRunning, CreatedAt: now}
	if err := tx.CreateSeason(ctx, season); err != nil {
		return Season{}, err
	}

	turns := make([]Turn, 0, MonthsPerSeason)
	for m := 1; m <= MonthsPerSeason; m++ {
		t := Turn{ID: uuid.New(), SeasonID: season.ID, MonthIndex: m, MonthName: MonthName(m), State: TurnOpen}
		if err := tx.CreateTurn(ctx, t); err != nil {
			return Season{}, err
		}
		turns = append(turns, t)
	}

	ids := make([]uuid.UUID, len(clubs))
	for i, c := range clubs {
		ids[i] = c.ID
	}
	for _, p := range fixtures.RoundRobin(ids, MatchMonths) {
		f := Fixture{
			ID:         uuid.New(),
			SeasonID:   season.ID,
			MonthIndex: p.MonthIndex,
			HomeClubID: p.HomeClubID,
			AwayClubID: p.AwayClubID,
			IsBye:      p.IsBye,
			ByeClubID:  p.ByeClubID,
		}
		if err := tx.CreateFixture(ctx, f); err != nil {
			return Season{}, err
		}
		if f.IsBye {
			continue
		}
		if err := tx.CreateMatch(ctx, Match{ID: uuid.New(), FixtureID: f.ID, Status: MatchScheduled}); err != nil {
			return Season{}, err
		}
	}

	for _, t := range turns {
		for _, c := range clubs {
			if err := tx.PutDecision(ctx, Decision{TurnID: t.ID, ClubID: c.ID, State: DecisionDraft}); err != nil {
				return Season{}, err
			}
		}
	}

	for _, c := range clubs {
		var st econ.SeasonState
		if prev == nil {
			profile, err := tx.GetFinancialProfile(ctx, c.ID)
			if err != nil {
				return Season{}, err
			}
			st = econ.NewSeasonState(s.params.Econ, profile.StartingReinforcement)
		} else {
			last, err := tx.GetClubSeasonState(ctx, c.ID, prev.ID)
			if err != nil {
				return Season{}, err
			}
			st = econ.Rollover(s.params.Econ, last.State)
		}
		if err := tx.PutClubSeasonState(ctx, ClubSeasonState{ClubID: c.ID, SeasonID: season.ID, State: st}); err != nil {
			return Season{}, err
		}
	}
	return season, nil
}

func (s *Service) Game(ctx context.Context, id uuid.UUID) (Game, error) {
	var out Game
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.GetGame(ctx, id)
		return err
	})
	return out, err
}

func (s *Service) ListGames(ctx context.Context) ([]Game, error) {
	var out []Game
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.ListGames(ctx)
		return err
	})
	return out, err
}

func (s *Service) Club(ctx context.Context, id uuid.UUID) (Club, error) {
	var out Club
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.GetClub(ctx, id)
		return err
	})
	return out, err
}

func (s *Service) Clubs(ctx context.Context, gameID uuid.UUID) ([]Club, error) {
	var out []Club
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.ListClubs(ctx, gameID)
		return err
	})
	return out, err
}

func (s *Service) Season(ctx context.Context, id uuid.UUID) (Season, error) {
	var out Season
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.GetSeason(ctx, id)
		return err
	})
	return out, err
}

func (s *Service) Seasons(ctx context.Context, gameID uuid.UUID) ([]Season, error) {
	var out []Season
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.ListSeasons(ctx, gameID)
		return err
	})
	return out, err
}

func (s *Service) Turn(ctx context.Context, id uuid.UUID) (Turn, error) {
	var out Turn
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.GetTurn(ctx, id)
		return err
	})
	return out, err
}

func (s *Service) Turns(ctx context.Context, seasonID uuid.UUID) ([]Turn, error) {
	var out []Turn
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.ListTurns(ctx, seasonID)
		return err
	})
	return out, err
}

// GameForSeason resolves the game a season belongs to.
func (s *Service) GameForSeason(ctx context.Context, seasonID uuid.UUID) (uuid.UUID, error) {
	season, err := s.Season(ctx, seasonID)
	if err != nil {
		return uuid.Nil, err
	}
	return season.GameID, nil
}

// GameForTurn resolves the game a turn belongs to.
func (s *Service) GameForTurn(ctx context.Context, turnID uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := s.store.InTx(ctx, func(tx Tx) error {
		t, err := tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		season, err := tx.GetSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		out = season.GameID
		return nil
	})
	return out, err
}

// CurrentTurn is the earliest turn of the running season that is not yet
// acknowledged by every club.
func (s *Service) CurrentTurn(ctx context.Context, gameID uuid.UUID) (Season, Turn, error) {
	var season Season
	var turn Turn
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		season, err = runningSeason(ctx, tx, gameID)
		if err != nil {
			return err
		}
		turns, err := tx.ListTurns(ctx, season.ID)
		if err != nil {
			return err
		}
		for _, t := range turns {
			if t.State != TurnAcked {
				turn = t
				return nil
			}
		}
		return fmt.Errorf("%w: season %s has no open turn", ErrNotFound, season.ID)
	})
	return season, turn, err
}

func runningSeason(ctx context.Context, tx Tx, gameID uuid.UUID) (Season, error) {
	seasons, err := tx.ListSeasons(ctx, gameID)
	if err != nil {
		return Season{}, err
	}
	for i := len(seasons) - 1; i >= 0; i-- {
		if seasons[i].Status == SeasonRunning {
			return seasons[i], nil
		}
	}
	return Season{}, fmt.Errorf("%w: game %s has no running season", ErrNotFound, gameID)
}

func (s *Service) Decision(ctx context.Context, turnID, clubID uuid.UUID) (Decision, error) {
	var out Decision
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.GetDecision(ctx, turnID, clubID)
		return err
	})
	return out, err
}

func (s *Service) Ledger(ctx context.Context, clubID, turnID uuid.UUID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetClub(ctx, clubID); err != nil {
			return err
		}
		entries, err := tx.ListLedger(ctx, clubID, turnID)
		if err != nil {
			return err
		}
		ledger.SortEntries(entries)
		out = entries
		return nil
	})
	return out, err
}

func (s *Service) Snapshots(ctx context.Context, clubID, seasonID uuid.UUID) ([]ledger.Snapshot, error) {
	var out []ledger.Snapshot
	err := s.store.InTx(ctx, func(tx Tx) (err error) {
		out, err = tx.ListSnapshots(ctx, clubID, seasonID)
		return err
	})
	return out, err
}

func (s *Service) Fixtures(ctx context.Context, seasonID uuid.UUID) ([]FixtureView, error) {
	var out []FixtureView
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetSeason(ctx, seasonID); err != nil {
			return err
		}
		fs, err := tx.ListFixtures(ctx, seasonID)
		if err != nil {
			return err
		}
		ms, err := tx.ListMatches(ctx, seasonID)
		if err != nil {
			return err
		}
		byFixture := indexMatches(ms)
		out = make([]FixtureView, 0, len(fs))
		for _, f := range fs {
			v := FixtureView{Fixture: f}
			if m, ok := byFixture[f.ID]; ok {
				v.Match = &m
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func indexMatches(ms []Match) map[uuid.UUID]Match {
	out := make(map[uuid.UUID]Match, len(ms))
	for _, m := range ms {
		out[m.FixtureID] = m
	}
	return out
}

// validationErr makes a decision validation failure match ErrValidation
// while keeping the field detail reachable through errors.As.
func validationErr(err error) error {
	var ve *decision.ValidationError
	if errors.As(err, &ve) || errors.Is(err, decision.ErrInvalid) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}
