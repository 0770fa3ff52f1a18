// Package syncq keeps club commands that could not reach the server in
// ~/.pitch/queue.json until they can be replayed.
package syncq

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type Command struct {
	Method         string         `json:"method"`
	Path           string         `json:"path"`
	Body           map[string]any `json:"body,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
	QueuedAt       time.Time      `json:"queued_at"`
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".pitch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Push appends cmd. A command whose idempotency key is already queued
// replaces the older one.
func Push(cmd Command) error {
	commands, err := Load()
	if err != nil {
		return err
	}
	if cmd.QueuedAt.IsZero() {
		cmd.QueuedAt = time.Now().UTC()
	}
	for i, c := range commands {
		if c.IdempotencyKey != "" && c.IdempotencyKey == cmd.IdempotencyKey {
			commands[i] = cmd
			return Save(commands)
		}
	}
	commands = append(commands, cmd)
	return Save(commands)
}

// Flush sends queued commands in order. It stops at the first error and
// keeps that command and everything after it queued.
func Flush(ctx context.Context, send func(context.Context, Command) error) (int, error) {
	commands, err := Load()
	if err != nil {
		return 0, err
	}
	sent := 0
	var sendErr error
	for _, cmd := range commands {
		if err := send(ctx, cmd); err != nil {
			sendErr = err
			break
		}
		sent++
	}
	if sent > 0 {
		if err := Save(commands[sent:]); err != nil {
			return sent, err
		}
	}
	return sent, sendErr
}
