package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"pitchside/internal/game"
	"pitchside/internal/ledger"
	"pitchside/internal/standings"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type currentPayload struct {
	Season game.Season `json:"season"`
	Turn   game.Turn   `json:"turn"`
}

type standingsPayload struct {
	Rows []standings.Row `json:"rows"`
}

type ledgerPayload struct {
	Entries []ledger.Entry `json:"entries"`
}

type snapshotsPayload struct {
	Snapshots []ledger.Snapshot `json:"snapshots"`
}

type resultsPayload struct {
	Results []game.ClubResult `json:"results"`
}

type addClubPayload struct {
	Club  game.Club `json:"club"`
	Token string    `json:"token"`
}

type resolvePayload struct {
	Turn    game.Turn          `json:"turn"`
	Matches []game.FixtureView `json:"matches"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptRequired(label)
	}
	for {
		fmt.Printf("%s: ", label)
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(string(raw))
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		Render()
}

func renderCurrent(raw map[string]any) error {
	out, err := decodeInto[currentPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== SEASON %s ==\n", out.Season.YearLabel)
	fmt.Printf("Season:  %s (%s)\n", out.Season.ID, out.Season.Status)
	fmt.Printf("Turn:    %s\n", out.Turn.ID)
	fmt.Printf("Month:   %d %s\n", out.Turn.MonthIndex, out.Turn.MonthName)
	fmt.Printf("State:   %s\n\n", colorizeState(out.Turn.State))
	return nil
}

func renderStandings(raw map[string]any, title string) error {
	out, err := decodeInto[standingsPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s ==\n", strings.ToUpper(title))
	if len(out.Rows) == 0 {
		printInfo("No standings yet.")
		return nil
	}
	rows := make([][]string, 0, len(out.Rows))
	for _, r := range out.Rows {
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			truncate(r.ClubName, 20),
			strconv.Itoa(r.Played),
			strconv.Itoa(r.Won),
			strconv.Itoa(r.Drawn),
			strconv.Itoa(r.Lost),
			strconv.Itoa(r.GoalsFor),
			strconv.Itoa(r.GoalsAgainst),
			fmt.Sprintf("%+d", r.GoalDiff),
			strconv.Itoa(r.PenaltyPoints),
			strconv.Itoa(r.Points),
		})
	}
	fmt.Println(renderTable([]string{"#", "Club", "P", "W", "D", "L", "GF", "GA", "GD", "Pen", "Pts"}, rows))
	return nil
}

func renderLedger(raw map[string]any) error {
	out, err := decodeInto[ledgerPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== LEDGER ==")
	if len(out.Entries) == 0 {
		printInfo("No entries for this turn.")
		return nil
	}
	rows := make([][]string, 0, len(out.Entries)+1)
	total := decimal.Zero
	for _, e := range out.Entries {
		total = total.Add(e.Amount)
		rows = append(rows, []string{e.Kind.Category.String(), colorizeAmount(e.Amount)})
	}
	rows = append(rows, []string{"net", colorizeAmount(total)})
	fmt.Println(renderTable([]string{"Category", "Amount"}, rows))
	return nil
}

func renderSnapshots(raw map[string]any) error {
	out, err := decodeInto[snapshotsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== MONTHLY BALANCES ==")
	if len(out.Snapshots) == 0 {
		printInfo("No resolved months yet.")
		return nil
	}
	rows := make([][]string, 0, len(out.Snapshots))
	for _, s := range out.Snapshots {
		rows = append(rows, []string{
			strconv.Itoa(s.MonthIndex),
			s.Opening.StringFixed(2),
			colorizeAmount(s.Income),
			colorizeAmount(s.Expense),
			colorizeAmount(s.Closing),
		})
	}
	fmt.Println(renderTable([]string{"Month", "Opening", "Income", "Expense", "Closing"}, rows))
	return nil
}

func renderResults(raw map[string]any) error {
	out, err := decodeInto[resultsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== GAME RESULTS ==")
	if len(out.Results) == 0 {
		printInfo("No finished seasons yet.")
		return nil
	}
	rows := make([][]string, 0, len(out.Results))
	for _, r := range out.Results {
		rows = append(rows, []string{
			truncate(r.ClubName, 20),
			strconv.Itoa(r.SeasonsPlayed),
			strconv.Itoa(r.Championships),
			strconv.Itoa(r.RunnerUps),
			strconv.FormatFloat(r.AverageRank, 'f', 2, 64),
			fmt.Sprintf("%s (#%d)", r.FinalBalance.StringFixed(2), r.FinalBalanceRank),
			fmt.Sprintf("%s (#%d)", r.LastSeasonIncome.StringFixed(2), r.LastSeasonIncomeRank),
			fmt.Sprintf("%.0f (#%d)", r.AverageHomeAttendance, r.AttendanceRank),
		})
	}
	fmt.Println(renderTable([]string{"Club", "Seasons", "Titles", "2nd", "Avg rank", "Balance", "Income", "Attendance"}, rows))
	return nil
}

func renderResolve(raw map[string]any) error {
	out, err := decodeInto[resolvePayload](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Month %d resolved.", out.Turn.MonthIndex))
	if len(out.Matches) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(out.Matches))
	for _, m := range out.Matches {
		if m.IsBye || m.Match == nil {
			continue
		}
		rows = append(rows, []string{
			m.HomeClubID.String()[:8],
			fmt.Sprintf("%d - %d", m.Match.HomeGoals, m.Match.AwayGoals),
			m.AwayClubID.String()[:8],
			string(m.Weather),
			strconv.Itoa(m.TotalAttendance),
		})
	}
	fmt.Println(renderTable([]string{"Home", "Score", "Away", "Weather", "Crowd"}, rows))
	return nil
}

func renderJSON(raw map[string]any) error {
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func colorizeAmount(v decimal.Decimal) string {
	text := v.StringFixed(2)
	switch v.Sign() {
	case 1:
		return success.Sprint("+" + text)
	case -1:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizeState(s game.TurnState) string {
	switch s {
	case game.TurnCollecting:
		return success.Sprint(s)
	case game.TurnLocked, game.TurnResolved:
		return warn.Sprint(s)
	default:
		return neutral.Sprint(s)
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
