package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/auth"
	"pitchside/internal/decision"
	"pitchside/internal/game"
)

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.game.CreateGame(r.Context(), in.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

type profileInput struct {
	SponsorBaseMonthly    *decimal.Decimal `json:"sponsor_base_monthly"`
	MonthlyCost           *decimal.Decimal `json:"monthly_cost"`
	TicketPrice           *decimal.Decimal `json:"ticket_price"`
	InitialBalance        *decimal.Decimal `json:"initial_balance"`
	StartingReinforcement *decimal.Decimal `json:"starting_reinforcement"`
}

func (p *profileInput) apply(fp *game.FinancialProfile) {
	set := func(dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil {
			*dst = *v
		}
	}
	set(&fp.SponsorBaseMonthly, p.SponsorBaseMonthly)
	set(&fp.MonthlyCost, p.MonthlyCost)
	set(&fp.TicketPrice, p.TicketPrice)
	set(&fp.InitialBalance, p.InitialBalance)
	set(&fp.StartingReinforcement, p.StartingReinforcement)
}

// handleAddClub registers a club and returns its bearer token. The token is
// shown only here; the store keeps its hash.
func (s *Server) handleAddClub(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var in struct {
		Name      string        `json:"name"`
		ShortName string        `json:"short_name"`
		Profile   *profileInput `json:"profile"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := auth.NewToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	input := game.NewClubInput{GameID: gameID, Name: in.Name, ShortName: in.ShortName, TokenHash: hash}
	if in.Profile != nil {
		var fp game.FinancialProfile
		in.Profile.apply(&fp)
		input.Profile = &fp
	}
	club, err := s.game.AddClub(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"club": club, "token": token})
}

func (s *Server) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var in struct {
		YearLabel string `json:"year_label"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	season, err := s.game.CreateSeason(r.Context(), gameID, in.YearLabel)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, season)
}

func (s *Server) handleCurrentTurn(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	season, turn, err := s.game.CurrentTurn(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "turn": turn})
}

func (s *Server) handleGameResults(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	out, err := s.game.GameResults(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	season, err := s.game.Season(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	turns, err := s.game.Turns(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "turns": turns})
}

func (s *Server) handleSeasonStatus(w http.ResponseWriter, r *http.Request) {
	seasonID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	out, err := s.game.SeasonStatus(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	seasonID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	out, err := s.game.FinalizeSeason(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	seasonID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	upTo := 0
	if v := strings.TrimSpace(r.URL.Query().Get("up_to")); v != "" {
		upTo, err = strconv.Atoi(v)
		if err != nil || upTo < 0 || upTo > game.MonthsPerSeason {
			writeError(w, http.StatusBadRequest, "up_to must be a month between 0 and 12")
			return
		}
	}
	rows, err := s.game.Standings(r.Context(), seasonID, upTo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	seasonID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	out, err := s.game.Fixtures(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fixtures": out})
}

func (s *Server) handleDisclosures(w http.ResponseWriter, r *http.Request) {
	seasonID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	out, err := s.game.Disclosures(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disclosures": out})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	turnID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn id")
		return
	}
	out, err := s.game.Turn(r.Context(), turnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOpenTurn(w http.ResponseWriter, r *http.Request) {
	s.turnAction(w, r, s.game.OpenTurn)
}

func (s *Server) handleLockTurn(w http.ResponseWriter, r *http.Request) {
	s.turnAction(w, r, s.game.LockTurn)
}

func (s *Server) turnAction(w http.ResponseWriter, r *http.Request, act func(context.Context, uuid.UUID) (game.Turn, error)) {
	turnID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn id")
		return
	}
	out, err := act(r.Context(), turnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolveTurn(w http.ResponseWriter, r *http.Request) {
	turnID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn id")
		return
	}
	out, err := s.game.ResolveTurn(r.Context(), turnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	turnID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn id")
		return
	}
	caller, _ := callerFromContext(r.Context())
	out, err := s.game.Decision(r.Context(), turnID, caller.ClubID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommitDecision(w http.ResponseWriter, r *http.Request) {
	turnID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn id")
		return
	}
	caller, _ := callerFromContext(r.Context())
	var payload decision.Payload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.game.CommitDecision(r.Context(), turnID, caller.ClubID, payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info("decision committed", "turn_id", turnID, "club_id", caller.ClubID, "idempotency_key", idempotencyKey(r))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	turnID, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn id")
		return
	}
	caller, _ := callerFromContext(r.Context())
	out, err := s.game.AckTurn(r.Context(), turnID, caller.ClubID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClub(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFromContext(r.Context())
	club, err := s.game.Club(r.Context(), caller.ClubID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFromContext(r.Context())
	turnID, err := uuid.Parse(r.URL.Query().Get("turn"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "turn query parameter must be a turn id")
		return
	}
	entries, err := s.game.Ledger(r.Context(), caller.ClubID, turnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFromContext(r.Context())
	seasonID, err := uuid.Parse(r.URL.Query().Get("season"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "season query parameter must be a season id")
		return
	}
	out, err := s.game.Snapshots(r.Context(), caller.ClubID, seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": out})
}

func (s *Server) handleBankruptcy(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFromContext(r.Context())
	seasonID, err := uuid.Parse(r.URL.Query().Get("season"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "season query parameter must be a season id")
		return
	}
	out, err := s.game.BankruptcyStatus(r.Context(), caller.ClubID, seasonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
