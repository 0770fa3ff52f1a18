package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pitchside/internal/auth"
	"pitchside/internal/config"
	"pitchside/internal/decision"
	"pitchside/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

type contextKey string

const callerContextKey contextKey = "caller"

// Caller is who presented the bearer token: the game master, or a club.
type Caller struct {
	GM     bool
	ClubID uuid.UUID
}

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
	}).Handler(s.mux)
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/games/{id}/current", s.handleCurrentTurn)
		r.Get("/games/{id}/results", s.handleGameResults)
		r.Get("/seasons/{id}", s.handleSeason)
		r.Get("/seasons/{id}/status", s.handleSeasonStatus)
		r.Get("/seasons/{id}/standings", s.handleStandings)
		r.Get("/seasons/{id}/fixtures", s.handleFixtures)
		r.Get("/seasons/{id}/disclosures", s.handleDisclosures)
		r.Get("/turns/{id}", s.handleTurn)

		r.Group(func(r chi.Router) {
			r.Use(s.gmOnly)
			r.Post("/games", s.handleCreateGame)
			r.Post("/games/{id}/clubs", s.handleAddClub)
			r.Post("/games/{id}/seasons", s.handleCreateSeason)
			r.Post("/seasons/{id}/finalize", s.handleFinalize)
			r.Post("/turns/{id}/open", s.handleOpenTurn)
			r.Post("/turns/{id}/lock", s.handleLockTurn)
			r.Post("/turns/{id}/resolve", s.handleResolveTurn)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.clubOrGM)
			r.Get("/turns/{id}/decisions/{club}", s.handleGetDecision)
			r.Put("/turns/{id}/decisions/{club}", s.handleCommitDecision)
			r.Post("/turns/{id}/acks/{club}", s.handleAck)
		})

		r.Route("/clubs/{club}", func(r chi.Router) {
			r.Use(s.clubOrGM)
			r.Get("/", s.handleClub)
			r.Get("/ledger", s.handleLedger)
			r.Get("/snapshots", s.handleSnapshots)
			r.Get("/bankruptcy", s.handleBankruptcy)
		})
	})
}

func (s *Server) gmOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !auth.VerifyToken(s.cfg.GMTokenHash, token) {
			writeError(w, http.StatusForbidden, "game master token required")
			return
		}
		ctx := context.WithValue(r.Context(), callerContextKey, Caller{GM: true})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clubOrGM admits the game master or the club named by the {club} route
// parameter.
func (s *Server) clubOrGM(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		clubID, err := uuid.Parse(chi.URLParam(r, "club"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid club id")
			return
		}
		caller := Caller{ClubID: clubID}
		if auth.VerifyToken(s.cfg.GMTokenHash, token) {
			caller.GM = true
		} else {
			club, err := s.game.Club(r.Context(), clubID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if !auth.VerifyToken(club.TokenHash, token) {
				writeError(w, http.StatusForbidden, "token does not belong to this club")
				return
			}
		}
		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerContextKey).(Caller)
	return c, ok
}

func writeDomainError(w http.ResponseWriter, err error) {
	var incomplete *game.CompletionError
	var invalid *decision.ValidationError
	switch {
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "report": incomplete.Report})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "field": invalid.Field})
	case errors.Is(err, game.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrState), errors.Is(err, game.ErrIntegrity), errors.Is(err, game.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
