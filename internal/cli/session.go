package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	RoleGM   = "gm"
	RoleClub = "club"
)

const sessionFile = "session.json"

// Session is the saved login of the pitch CLI. A club login is bound to one
// club; a game master login may carry a default game.
type Session struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	GameID string `json:"game_id,omitempty"`
	ClubID string `json:"club_id,omitempty"`
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return errors.New("session has no token")
	}
	switch s.Role {
	case RoleGM:
	case RoleClub:
		if strings.TrimSpace(s.ClubID) == "" {
			return errors.New("club session has no club id")
		}
	default:
		return fmt.Errorf("session role must be %s or %s, got %q", RoleGM, RoleClub, s.Role)
	}
	return nil
}

// BaseDir is ~/.pitch, created on first use.
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".pitch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func SaveSession(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	dir, err := BaseDir()
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sessionFile), body, 0o600)
}

// LoadSession rejects a saved file that SaveSession would not have written.
func LoadSession() (Session, error) {
	dir, err := BaseDir()
	if err != nil {
		return Session{}, err
	}
	body, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

func ClearSession() error {
	dir, err := BaseDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, sessionFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
