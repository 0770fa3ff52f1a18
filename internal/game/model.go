package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MonthsPerSeason = 12
	// MatchMonths are the months with scheduled fixtures.
	MatchMonths = 10

	AdditionalReinforcementMonth = 5
	DisclosureMonthDecember      = 5
	DisclosureMonthJuly          = 12
	PrizeStandingsMonth          = 10

	BankruptcyPenaltyPoints = -6
	PenaltyReasonBankruptcy = "bankruptcy"
)

var monthNames = [MonthsPerSeason]string{"Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"}

// MonthName maps month_index 1..12 onto the calendar, starting in August.
func MonthName(month int) string {
	if month < 1 || month > MonthsPerSeason {
		return ""
	}
	return monthNames[month-1]
}

var (
	ErrValidation   = errors.New("validation failed")
	ErrState        = errors.New("invalid state transition")
	ErrIntegrity    = errors.New("integrity violation")
	ErrNotFound     = errors.New("not found")
	ErrTxConflict   = errors.New("transaction conflict, retry")
	ErrUnauthorized = errors.New("unauthorized")
)

type TurnState string

const (
	TurnOpen       TurnState = "open"
	TurnCollecting TurnState = "collecting"
	TurnLocked     TurnState = "locked"
	TurnResolved   TurnState = "resolved"
	TurnAcked      TurnState = "acked"
)

var turnOrder = map[TurnState]int{
	TurnOpen:       0,
	TurnCollecting: 1,
	TurnLocked:     2,
	TurnResolved:   3,
	TurnAcked:      4,
}

// CanAdvance reports whether next directly follows s.
func (s TurnState) CanAdvance(next TurnState) bool {
	a, okA := turnOrder[s]
	b, okB := turnOrder[next]
	return okA && okB && b == a+1
}

type DecisionState string

const (
	DecisionDraft     DecisionState = "draft"
	DecisionCommitted DecisionState = "committed"
	DecisionLocked    DecisionState = "locked"
)

type GameStatus string

const (
	GameActive   GameStatus = "active"
	GameFinished GameStatus = "finished"
)

type SeasonStatus string

const (
	SeasonRunning  SeasonStatus = "running"
	SeasonFinished SeasonStatus = "finished"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchPlayed    MatchStatus = "played"
)

// CompletionError is returned by FinalizeSeason when the season still has
// missing or unplayed matches.
type CompletionError struct {
	Report CompletionReport
}

func (e *CompletionError) Error() string {
	r := e.Report
	return fmt.Sprintf("season incomplete: %d missing, %d unplayed of %d fixtures", r.MissingMatches, r.UnplayedMatches, r.TotalFixtures)
}

func (e *CompletionError) Unwrap() error {
	if e.Report.MissingMatches > 0 {
		return ErrIntegrity
	}
	return ErrState
}

func stateErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// NextYearLabel increments a numeric season label.
func NextYearLabel(label string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return "", fmt.Errorf("%w: year label %q is not numeric", ErrValidation, label)
	}
	return strconv.Itoa(n + 1), nil
}
