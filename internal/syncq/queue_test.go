package syncq

import (
	"context"
	"errors"
	"testing"
)

func TestPushReplacesSameIdempotencyKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Push(Command{Method: "PUT", Path: "/a", IdempotencyKey: "k1", Body: map[string]any{"promo_expense": "1"}}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := Push(Command{Method: "POST", Path: "/b", IdempotencyKey: "k2"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := Push(Command{Method: "PUT", Path: "/a", IdempotencyKey: "k1", Body: map[string]any{"promo_expense": "2"}}); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 queued commands, got %d", len(got))
	}
	if got[0].Body["promo_expense"] != "2" {
		t.Fatalf("older command was not replaced: %+v", got[0])
	}
}

func TestFlushKeepsFailedTail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"a", "b", "c"} {
		if err := Push(Command{Method: "POST", Path: "/" + key, IdempotencyKey: key}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	offline := errors.New("offline")
	sent, err := Flush(context.Background(), func(_ context.Context, c Command) error {
		if c.IdempotencyKey == "b" {
			return offline
		}
		return nil
	})
	if !errors.Is(err, offline) || sent != 1 {
		t.Fatalf("got sent=%d err=%v", sent, err)
	}
	left, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(left) != 2 || left[0].IdempotencyKey != "b" || left[1].IdempotencyKey != "c" {
		t.Fatalf("unexpected queue after partial flush: %+v", left)
	}

	sent, err = Flush(context.Background(), func(context.Context, Command) error { return nil })
	if err != nil || sent != 2 {
		t.Fatalf("second flush: sent=%d err=%v", sent, err)
	}
	if left, _ := Load(); len(left) != 0 {
		t.Fatalf("queue not empty: %+v", left)
	}
}

func TestLoadMissingQueueIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	got, err := Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v %v", got, err)
	}
}
