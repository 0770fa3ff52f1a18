package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"pitchside/internal/auth"
	"pitchside/internal/config"
	"pitchside/internal/game"
	"pitchside/internal/store/memstore"
)

const gmToken = "pst_gamemaster"

type testServer struct {
	t *testing.T
	h http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	auth.Cost = bcrypt.MinCost
	hash, err := auth.HashToken(gmToken)
	if err != nil {
		t.Fatalf("hash gm token: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(memstore.New(), game.DefaultParams(), logger)
	srv := New(config.APIConfig{GMTokenHash: hash}, logger, svc)
	return &testServer{t: t, h: srv.Handler()}
}

// do sends body as JSON and decodes the response into out when out is set.
func (ts *testServer) do(method, path, token string, body any, out any) int {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			ts.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type clubCreated struct {
	Club  game.Club `json:"club"`
	Token string    `json:"token"`
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]any
	if code := ts.do(http.MethodGet, "/healthz", "", nil, &out); code != http.StatusOK || out["ok"] != true {
		t.Fatalf("healthz: %d %v", code, out)
	}
}

func TestGMEndpointsRequireGMToken(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]string{"name": "league"}
	if code := ts.do(http.MethodPost, "/v1/games", "", body, nil); code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d", code)
	}
	if code := ts.do(http.MethodPost, "/v1/games", "pst_wrong", body, nil); code != http.StatusForbidden {
		t.Fatalf("wrong token: got %d", code)
	}
	var g game.Game
	if code := ts.do(http.MethodPost, "/v1/games", gmToken, body, &g); code != http.StatusCreated || g.Name != "league" {
		t.Fatalf("gm token: got %d %+v", code, g)
	}
}

func TestTurnFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	var g game.Game
	if code := ts.do(http.MethodPost, "/v1/games", gmToken, map[string]string{"name": "league"}, &g); code != http.StatusCreated {
		t.Fatalf("create game: %d", code)
	}
	clubs := map[string]clubCreated{}
	for _, name := range []string{"Alpha", "Bravo"} {
		var c clubCreated
		code := ts.do(http.MethodPost, "/v1/games/"+g.ID.String()+"/clubs", gmToken, map[string]string{"name": name}, &c)
		if code != http.StatusCreated || c.Token == "" {
			t.Fatalf("add club %s: %d %+v", name, code, c)
		}
		clubs[name] = c
	}
	var season game.Season
	if code := ts.do(http.MethodPost, "/v1/games/"+g.ID.String()+"/seasons", gmToken, map[string]string{"year_label": "2025"}, &season); code != http.StatusCreated {
		t.Fatalf("create season: %d", code)
	}

	var current struct {
		Turn game.Turn `json:"turn"`
	}
	if code := ts.do(http.MethodGet, "/v1/games/"+g.ID.String()+"/current", "", nil, &current); code != http.StatusOK {
		t.Fatalf("current turn: %d", code)
	}
	turn := current.Turn
	if turn.MonthIndex != 1 || turn.State != game.TurnOpen {
		t.Fatalf("unexpected first turn %+v", turn)
	}
	turnPath := "/v1/turns/" + turn.ID.String()
	if code := ts.do(http.MethodPost, turnPath+"/open", gmToken, nil, nil); code != http.StatusOK {
		t.Fatalf("open: %d", code)
	}

	alpha, bravo := clubs["Alpha"], clubs["Bravo"]
	alphaDecision := turnPath + "/decisions/" + alpha.Club.ID.String()
	bravoDecision := turnPath + "/decisions/" + bravo.Club.ID.String()

	if code := ts.do(http.MethodPut, bravoDecision, alpha.Token, map[string]any{}, nil); code != http.StatusForbidden {
		t.Fatalf("club committing for another club: got %d", code)
	}
	var bad map[string]any
	code := ts.do(http.MethodPut, alphaDecision, alpha.Token, map[string]any{"additional_reinforcement": "1000000"}, &bad)
	if code != http.StatusBadRequest || bad["field"] != "additional_reinforcement" {
		t.Fatalf("inadmissible decision: got %d %v", code, bad)
	}
	if code := ts.do(http.MethodPut, alphaDecision, alpha.Token, map[string]any{"promo_expense": "1000000"}, nil); code != http.StatusOK {
		t.Fatalf("commit alpha: %d", code)
	}
	if code := ts.do(http.MethodPost, turnPath+"/lock", gmToken, nil, nil); code != http.StatusConflict {
		t.Fatalf("lock with a missing decision: got %d", code)
	}
	if code := ts.do(http.MethodPut, bravoDecision, bravo.Token, map[string]any{}, nil); code != http.StatusOK {
		t.Fatalf("commit bravo: %d", code)
	}
	if code := ts.do(http.MethodPost, turnPath+"/lock", gmToken, nil, nil); code != http.StatusOK {
		t.Fatalf("lock: %d", code)
	}
	var report struct {
		Turn  game.Turn         `json:"turn"`
		Clubs []json.RawMessage `json:"clubs"`
	}
	if code := ts.do(http.MethodPost, turnPath+"/resolve", gmToken, nil, &report); code != http.StatusOK {
		t.Fatalf("resolve: %d", code)
	}
	if report.Turn.State != game.TurnResolved || len(report.Clubs) != 2 {
		t.Fatalf("unexpected report %+v", report.Turn)
	}
	if code := ts.do(http.MethodPost, turnPath+"/resolve", gmToken, nil, nil); code != http.StatusConflict {
		t.Fatalf("second resolve: got %d", code)
	}

	var ledgerOut struct {
		Entries []map[string]any `json:"entries"`
	}
	ledgerPath := "/v1/clubs/" + alpha.Club.ID.String() + "/ledger?turn=" + turn.ID.String()
	if code := ts.do(http.MethodGet, ledgerPath, bravo.Token, nil, nil); code != http.StatusForbidden {
		t.Fatalf("reading another club's ledger: got %d", code)
	}
	if code := ts.do(http.MethodGet, ledgerPath, alpha.Token, nil, &ledgerOut); code != http.StatusOK || len(ledgerOut.Entries) == 0 {
		t.Fatalf("ledger: %d with %d entries", code, len(ledgerOut.Entries))
	}

	var standingsOut struct {
		Rows []map[string]any `json:"rows"`
	}
	if code := ts.do(http.MethodGet, "/v1/seasons/"+season.ID.String()+"/standings?up_to=1", "", nil, &standingsOut); code != http.StatusOK || len(standingsOut.Rows) != 2 {
		t.Fatalf("standings: %d %v", code, standingsOut.Rows)
	}
	if code := ts.do(http.MethodGet, "/v1/seasons/"+season.ID.String()+"/standings?up_to=13", "", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("out of range up_to: got %d", code)
	}

	var incomplete struct {
		Report game.CompletionReport `json:"report"`
	}
	if code := ts.do(http.MethodPost, "/v1/seasons/"+season.ID.String()+"/finalize", gmToken, nil, &incomplete); code != http.StatusConflict {
		t.Fatalf("finalize early: got %d", code)
	}
	if incomplete.Report.IsCompleted || incomplete.Report.UnplayedMatches == 0 {
		t.Fatalf("unexpected completion report %+v", incomplete.Report)
	}

	for _, c := range clubs {
		if code := ts.do(http.MethodPost, turnPath+"/acks/"+c.Club.ID.String(), c.Token, nil, nil); code != http.StatusOK {
			t.Fatalf("ack %s: %d", c.Club.Name, code)
		}
	}
	if code := ts.do(http.MethodGet, "/v1/games/"+g.ID.String()+"/current", "", nil, &current); code != http.StatusOK || current.Turn.MonthIndex != 2 {
		t.Fatalf("current after ack: %d %+v", code, current.Turn)
	}
}

func TestUnknownSeasonIs404(t *testing.T) {
	ts := newTestServer(t)
	code := ts.do(http.MethodGet, "/v1/seasons/9b2f7b8e-1d0a-4a44-9d8b-7a9f1b0c2d3e/status", "", nil, nil)
	if code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", code)
	}
}
