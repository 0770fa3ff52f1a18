package sqlitestore_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/decision"
	"pitchside/internal/game"
	"pitchside/internal/ledger"
	"pitchside/internal/store/sqlitestore"
)

func openStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	st, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "pitch.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newService(st game.Store) *game.Service {
	svc := game.NewService(st, game.DefaultParams(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return clock })
	return svc
}

func TestSeasonRunsOnSQLite(t *testing.T) {
	ctx := context.Background()
	svc := newService(openStore(t))

	g, err := svc.CreateGame(ctx, "league")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	var clubs []game.Club
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		c, err := svc.AddClub(ctx, game.NewClubInput{GameID: g.ID, Name: name})
		if err != nil {
			t.Fatalf("add club: %v", err)
		}
		clubs = append(clubs, c)
	}
	if _, err := svc.AddClub(ctx, game.NewClubInput{GameID: g.ID, Name: "Alpha"}); err == nil {
		t.Fatalf("duplicate club name accepted")
	}
	season, err := svc.CreateSeason(ctx, g.ID, "2025")
	if err != nil {
		t.Fatalf("create season: %v", err)
	}

	for month := 1; month <= game.MonthsPerSeason; month++ {
		_, turn, err := svc.CurrentTurn(ctx, g.ID)
		if err != nil {
			t.Fatalf("current turn: %v", err)
		}
		if turn.MonthIndex != month {
			t.Fatalf("month %d: current turn is month %d", month, turn.MonthIndex)
		}
		if turn.State == game.TurnOpen {
			if _, err := svc.OpenTurn(ctx, turn.ID); err != nil {
				t.Fatalf("open: %v", err)
			}
		}
		for _, c := range clubs {
			if _, err := svc.CommitDecision(ctx, turn.ID, c.ID, decision.Payload{}); err != nil {
				t.Fatalf("commit: %v", err)
			}
		}
		if _, err := svc.LockTurn(ctx, turn.ID); err != nil {
			t.Fatalf("lock: %v", err)
		}
		report, err := svc.ResolveTurn(ctx, turn.ID)
		if err != nil {
			t.Fatalf("resolve month %d: %v", month, err)
		}
		for _, cr := range report.Clubs {
			if !cr.Snapshot.Balanced() {
				t.Fatalf("month %d: unbalanced snapshot %+v", month, cr.Snapshot)
			}
		}
		for _, c := range clubs {
			if _, err := svc.AckTurn(ctx, turn.ID, c.ID); err != nil {
				t.Fatalf("ack: %v", err)
			}
		}
	}

	final, err := svc.Standings(ctx, season.ID, 0)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(final) != len(clubs) {
		t.Fatalf("got %d standings rows, want %d", len(final), len(clubs))
	}
	played := 0
	for i, row := range final {
		if row.Rank != i+1 {
			t.Fatalf("row %d has rank %d", i, row.Rank)
		}
		played += row.Played
	}
	// Three clubs leave one match a month over ten match months.
	if played != 20 {
		t.Fatalf("total played = %d, want 20", played)
	}
	report, err := svc.SeasonStatus(ctx, season.ID)
	if err != nil {
		t.Fatalf("season status: %v", err)
	}
	if !report.IsCompleted {
		t.Fatalf("season not complete: %+v", report)
	}
	seasons, err := svc.Seasons(ctx, g.ID)
	if err != nil {
		t.Fatalf("seasons: %v", err)
	}
	if len(seasons) != 2 || !seasons[0].IsFinalized || seasons[1].YearLabel != "2026" {
		t.Fatalf("unexpected seasons after rollover: %+v", seasons)
	}
}

func TestLedgerRoundTripsAmountsAndMeta(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newService(st)

	g, err := svc.CreateGame(ctx, "league")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	var clubs []game.Club
	for _, name := range []string{"Alpha", "Bravo"} {
		c, err := svc.AddClub(ctx, game.NewClubInput{GameID: g.ID, Name: name})
		if err != nil {
			t.Fatalf("add club: %v", err)
		}
		clubs = append(clubs, c)
	}
	season, err := svc.CreateSeason(ctx, g.ID, "2025")
	if err != nil {
		t.Fatalf("create season: %v", err)
	}
	turns, err := svc.Turns(ctx, season.ID)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}

	fixture := uuid.New()
	entry := ledger.Entry{
		ClubID:    clubs[0].ID,
		TurnID:    turns[0].ID,
		Kind:      ledger.ForFixture(ledger.CategoryTicketRevenue, fixture),
		Amount:    decimal.RequireFromString("1234567.89"),
		Meta:      map[string]any{"attendance": float64(15000)},
		CreatedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	err = st.InTx(ctx, func(tx game.Tx) error {
		inserted, err := tx.AppendLedger(ctx, entry)
		if err != nil || !inserted {
			t.Fatalf("first append: inserted=%v err=%v", inserted, err)
		}
		inserted, err = tx.AppendLedger(ctx, entry)
		if err != nil || inserted {
			t.Fatalf("second append: inserted=%v err=%v", inserted, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}

	entries, err := svc.Ledger(ctx, clubs[0].ID, turns[0].ID)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.Kind != entry.Kind {
		t.Fatalf("kind = %v, want %v", got.Kind, entry.Kind)
	}
	if !got.Amount.Equal(entry.Amount) {
		t.Fatalf("amount = %s, want %s", got.Amount, entry.Amount)
	}
	if got.Meta["attendance"] != float64(15000) {
		t.Fatalf("meta = %v", got.Meta)
	}
	if !got.CreatedAt.Equal(entry.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, entry.CreatedAt)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	boom := errors.New("boom")

	g := game.Game{ID: uuid.New(), Name: "gone", Status: game.GameActive, CreatedAt: time.Now().UTC()}
	err := st.InTx(ctx, func(tx game.Tx) error {
		if err := tx.CreateGame(ctx, g); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	err = st.InTx(ctx, func(tx game.Tx) error {
		_, err := tx.GetGame(ctx, g.ID)
		return err
	})
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
