package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	cl "pitchside/internal/cli"
	"pitchside/internal/config"
	"pitchside/internal/syncq"
)

func main() {
	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "pitch",
		Short:        "Pitchside league client for game masters and clubs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newGameCmd(&apiBase),
		newClubCmd(&apiBase),
		newSeasonCmd(&apiBase),
		newCurrentCmd(&apiBase),
		newTurnCmd(&apiBase),
		newDecideCmd(&apiBase),
		newLedgerCmd(&apiBase),
		newBalancesCmd(&apiBase),
		newBankruptcyCmd(&apiBase),
		newResultsCmd(&apiBase),
		newQueueCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func requireSession(role string) (cl.Session, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return sess, fmt.Errorf("login required: %w", err)
	}
	if role != "" && sess.Role != role {
		return sess, fmt.Errorf("this command needs a %s login, current login is %s", role, sess.Role)
	}
	return sess, nil
}

// pick returns the flag value, or the saved session value when the flag is
// empty.
func pick(flag, saved, name string) (string, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, nil
	}
	if saved != "" {
		return saved, nil
	}
	return "", fmt.Errorf("--%s is required", name)
}

func currentTurnID(ctx context.Context, client *cl.Client, gameID string) (string, error) {
	raw, err := client.CurrentTurn(ctx, gameID)
	if err != nil {
		return "", err
	}
	out, err := decodeInto[currentPayload](raw)
	if err != nil {
		return "", err
	}
	return out.Turn.ID.String(), nil
}

func currentSeasonID(ctx context.Context, client *cl.Client, gameID string) (string, error) {
	raw, err := client.CurrentTurn(ctx, gameID)
	if err != nil {
		return "", err
	}
	out, err := decodeInto[currentPayload](raw)
	if err != nil {
		return "", err
	}
	return out.Season.ID.String(), nil
}

func newLoginCmd() *cobra.Command {
	var role, gameID, clubID string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a game master or club token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := promptSecret("Token")
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				Token:  token,
				Role:   strings.ToLower(strings.TrimSpace(role)),
				GameID: strings.TrimSpace(gameID),
				ClubID: strings.TrimSpace(clubID),
			}); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			printSuccess("Login saved.")
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", cl.RoleClub, "gm or club")
	cmd.Flags().StringVar(&gameID, "game", "", "game id")
	cmd.Flags().StringVar(&clubID, "club", "", "club id")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newGameCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Manage games",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a game and make it the session default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cl.RoleGM)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).CreateGame(ctx, sess.Token, args[0])
			if err != nil {
				return err
			}
			id, _ := raw["id"].(string)
			sess.GameID = id
			if err := cl.SaveSession(sess); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game created: %s", id))
			return nil
		},
	})
	return cmd
}

func newClubCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "club",
		Short: "Manage clubs",
	}
	var gameID, shortName string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a club and print its token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cl.RoleGM)
			if err != nil {
				return err
			}
			gid, err := pick(gameID, sess.GameID, "game")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).AddClub(ctx, sess.Token, gid, args[0], shortName)
			if err != nil {
				return err
			}
			out, err := decodeInto[addClubPayload](raw)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Club %s added: %s", out.Club.Name, out.Club.ID))
			accent.Printf("Token: %s\n", out.Token)
			printWarn("The token is shown once. Hand it to the club.")
			return nil
		},
	}
	add.Flags().StringVar(&gameID, "game", "", "game id (defaults to session)")
	add.Flags().StringVar(&shortName, "short", "", "short name")
	cmd.AddCommand(add)
	return cmd
}

func newSeasonCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Seasons, standings and finalization",
	}

	var gameID string
	create := &cobra.Command{
		Use:   "create <year-label>",
		Short: "Create the next season of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cl.RoleGM)
			if err != nil {
				return err
			}
			gid, err := pick(gameID, sess.GameID, "game")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).CreateSeason(ctx, sess.Token, gid, args[0])
			if err != nil {
				return err
			}
			id, _ := raw["id"].(string)
			printSuccess(fmt.Sprintf("Season %s created: %s", args[0], id))
			return nil
		},
	}
	create.Flags().StringVar(&gameID, "game", "", "game id (defaults to session)")

	// seasonArg resolves an explicit season id or the running season of the
	// session's game.
	seasonArg := func(ctx context.Context, client *cl.Client, args []string) (string, error) {
		if len(args) > 0 {
			return args[0], nil
		}
		sess, err := requireSession("")
		if err != nil {
			return "", err
		}
		if sess.GameID == "" {
			return "", errors.New("season id required")
		}
		return currentSeasonID(ctx, client, sess.GameID)
	}

	status := &cobra.Command{
		Use:   "status [season]",
		Short: "Show whether every match of the season is played",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			id, err := seasonArg(ctx, client, args)
			if err != nil {
				return err
			}
			raw, err := client.SeasonStatus(ctx, id)
			if err != nil {
				return err
			}
			return renderJSON(raw)
		},
	}

	var upTo int
	standingsCmd := &cobra.Command{
		Use:   "standings [season]",
		Short: "Show the league table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			id, err := seasonArg(ctx, client, args)
			if err != nil {
				return err
			}
			raw, err := client.Standings(ctx, id, upTo)
			if err != nil {
				return err
			}
			title := "standings"
			if upTo > 0 {
				title = fmt.Sprintf("standings after month %d", upTo)
			}
			return renderStandings(raw, title)
		},
	}
	standingsCmd.Flags().IntVar(&upTo, "up-to", 0, "only count matches up to this month")

	finalize := &cobra.Command{
		Use:   "finalize <season>",
		Short: "Freeze final standings and roll over to the next season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cl.RoleGM)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).FinalizeSeason(ctx, sess.Token, args[0])
			if err != nil {
				return err
			}
			printSuccess("Season finalized.")
			return renderStandings(map[string]any{"rows": raw["standings"]}, "final standings")
		},
	}

	disclosures := &cobra.Command{
		Use:   "disclosures [season]",
		Short: "Show published league disclosures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			id, err := seasonArg(ctx, client, args)
			if err != nil {
				return err
			}
			raw, err := client.Disclosures(ctx, id)
			if err != nil {
				return err
			}
			return renderJSON(raw)
		},
	}

	cmd.AddCommand(create, status, standingsCmd, finalize, disclosures)
	return cmd
}

func newCurrentCmd(apiBase *string) *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the current season and turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _ := cl.LoadSession()
			gid, err := pick(gameID, sess.GameID, "game")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).CurrentTurn(ctx, gid)
			if err != nil {
				return err
			}
			return renderCurrent(raw)
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game id (defaults to session)")
	return cmd
}

func newTurnCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Drive the monthly turn",
	}
	for _, action := range []string{"open", "lock", "resolve"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action + " [turn]",
			Short: strings.ToUpper(action[:1]) + action[1:] + " a turn (defaults to the current turn)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := requireSession(cl.RoleGM)
				if err != nil {
					return err
				}
				ctx, cancel := requestContext(cmd)
				defer cancel()
				client := newClient(apiBase)
				turnID, err := turnArg(ctx, client, sess, args)
				if err != nil {
					return err
				}
				raw, err := client.TurnAction(ctx, sess.Token, turnID, action)
				if err != nil {
					return err
				}
				if action == "resolve" {
					return renderResolve(raw)
				}
				state, _ := raw["state"].(string)
				printSuccess(fmt.Sprintf("Turn %s is now %s.", turnID, state))
				return nil
			},
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ack [turn]",
		Short: "Acknowledge a resolved turn for your club",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cl.RoleClub)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			turnID, err := turnArg(ctx, client, sess, args)
			if err != nil {
				return err
			}
			idem := "ack:" + turnID + ":" + sess.ClubID
			_, err = client.Ack(ctx, sess.Token, turnID, sess.ClubID, idem)
			if cl.IsOffline(err) {
				return queueOffline(http.MethodPost, cl.AckPath(turnID, sess.ClubID), nil, idem)
			}
			if err != nil {
				return err
			}
			printSuccess("Turn acknowledged.")
			return nil
		},
	})
	return cmd
}

func turnArg(ctx context.Context, client *cl.Client, sess cl.Session, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if sess.GameID == "" {
		return "", errors.New("turn id required")
	}
	return currentTurnID(ctx, client, sess.GameID)
}

func newDecideCmd(apiBase *string) *cobra.Command {
	var (
		turnID                                string
		sales, promo, hometown, nextHomePromo string
		reinforcement, additional, academy    string
		salesAllocation                       float64
		staff                                 map[string]int
	)
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Commit your club's decision for the current turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cl.RoleClub)
			if err != nil {
				return err
			}
			payload := map[string]any{}
			amounts := map[string]string{
				"sales_expense":            sales,
				"promo_expense":            promo,
				"hometown_expense":         hometown,
				"next_home_promo":          nextHomePromo,
				"reinforcement_budget":     reinforcement,
				"additional_reinforcement": additional,
				"academy_budget":           academy,
			}
			for field, v := range amounts {
				v = strings.TrimSpace(v)
				if v == "" {
					continue
				}
				d, err := decimal.NewFromString(v)
				if err != nil {
					return fmt.Errorf("%s: %w", field, err)
				}
				payload[field] = d.String()
			}
			if cmd.Flags().Changed("sales-allocation") {
				payload["sales_allocation_new"] = salesAllocation
			}
			if len(staff) > 0 {
				payload["staff_plan"] = staff
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			tid := strings.TrimSpace(turnID)
			if tid == "" {
				if tid, err = turnArg(ctx, client, sess, nil); err != nil {
					return err
				}
			}
			idem := uuid.NewString()
			_, err = client.CommitDecision(ctx, sess.Token, tid, sess.ClubID, payload, idem)
			if cl.IsOffline(err) {
				return queueOffline(http.MethodPut, cl.DecisionPath(tid, sess.ClubID), payload, "decide:"+tid+":"+sess.ClubID)
			}
			if err != nil {
				return err
			}
			printSuccess("Decision committed.")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&turnID, "turn", "", "turn id (defaults to the current turn)")
	f.StringVar(&sales, "sales", "", "sales expense")
	f.StringVar(&promo, "promo", "", "promotion expense")
	f.StringVar(&hometown, "hometown", "", "hometown activity expense")
	f.StringVar(&nextHomePromo, "next-home-promo", "", "promotion for next month's home match")
	f.StringVar(&reinforcement, "reinforcement", "", "reinforcement budget")
	f.StringVar(&additional, "additional-reinforcement", "", "mid-season reinforcement")
	f.StringVar(&academy, "academy", "", "academy budget")
	f.Float64Var(&salesAllocation, "sales-allocation", 0, "share of sales effort on new customers, 0 to 1")
	f.StringToIntVar(&staff, "staff", nil, "staff plan, e.g. sales=2,promo=1")
	return cmd
}

func queueOffline(method, path string, body map[string]any, idem string) error {
	if err := syncq.Push(syncq.Command{
		Method:         method,
		Path:           path,
		Body:           body,
		IdempotencyKey: idem,
	}); err != nil {
		return err
	}
	printWarn("Server unreachable. Command queued; run `pitch queue flush` later.")
	return nil
}

func newLedgerCmd(apiBase *string) *cobra.Command {
	var turnID, clubID string
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show a club's ledger entries for a turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession("")
			if err != nil {
				return err
			}
			cid, err := pick(clubID, sess.ClubID, "club")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			tid := strings.TrimSpace(turnID)
			if tid == "" {
				if tid, err = turnArg(ctx, client, sess, nil); err != nil {
					return err
				}
			}
			raw, err := client.Ledger(ctx, sess.Token, cid, tid)
			if err != nil {
				return err
			}
			return renderLedger(raw)
		},
	}
	cmd.Flags().StringVar(&turnID, "turn", "", "turn id (defaults to the current turn)")
	cmd.Flags().StringVar(&clubID, "club", "", "club id (defaults to session)")
	return cmd
}

func newBalancesCmd(apiBase *string) *cobra.Command {
	var seasonID, clubID string
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show a club's monthly balance snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession("")
			if err != nil {
				return err
			}
			cid, err := pick(clubID, sess.ClubID, "club")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			sid := strings.TrimSpace(seasonID)
			if sid == "" && sess.GameID != "" {
				if sid, err = currentSeasonID(ctx, client, sess.GameID); err != nil {
					return err
				}
			}
			raw, err := client.Snapshots(ctx, sess.Token, cid, sid)
			if err != nil {
				return err
			}
			return renderSnapshots(raw)
		},
	}
	cmd.Flags().StringVar(&seasonID, "season", "", "season id (defaults to the running season)")
	cmd.Flags().StringVar(&clubID, "club", "", "club id (defaults to session)")
	return cmd
}

func newBankruptcyCmd(apiBase *string) *cobra.Command {
	var seasonID, clubID string
	cmd := &cobra.Command{
		Use:   "bankruptcy",
		Short: "Show a club's bankruptcy status",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession("")
			if err != nil {
				return err
			}
			cid, err := pick(clubID, sess.ClubID, "club")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			sid := strings.TrimSpace(seasonID)
			if sid == "" && sess.GameID != "" {
				if sid, err = currentSeasonID(ctx, client, sess.GameID); err != nil {
					return err
				}
			}
			raw, err := client.Bankruptcy(ctx, sess.Token, cid, sid)
			if err != nil {
				return err
			}
			if bankrupt, _ := raw["is_bankrupt"].(bool); bankrupt {
				printError("Club is bankrupt.")
			} else {
				printSuccess("Club is solvent.")
			}
			return renderJSON(raw)
		},
	}
	cmd.Flags().StringVar(&seasonID, "season", "", "season id (defaults to the running season)")
	cmd.Flags().StringVar(&clubID, "club", "", "club id (defaults to session)")
	return cmd
}

func newResultsCmd(apiBase *string) *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show aggregate results over finished seasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _ := cl.LoadSession()
			gid, err := pick(gameID, sess.GameID, "game")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).GameResults(ctx, gid)
			if err != nil {
				return err
			}
			return renderResults(raw)
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game id (defaults to session)")
	return cmd
}

func newQueueCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and replay commands queued while offline",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Queue is empty.")
				return nil
			}
			rows := make([][]string, 0, len(queue))
			for _, q := range queue {
				rows = append(rows, []string{q.QueuedAt.Local().Format(time.DateTime), q.Method, q.Path})
			}
			fmt.Println(renderTable([]string{"Queued", "Method", "Path"}, rows))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Replay queued commands in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession("")
			if err != nil {
				return err
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			sent, err := syncq.Flush(ctx, func(ctx context.Context, q syncq.Command) error {
				_, err := client.Do(ctx, q.Method, q.Path, sess.Token, q.Body, q.IdempotencyKey)
				if err != nil && !cl.IsOffline(err) {
					// The server refused it; replaying will not help.
					printWarn(fmt.Sprintf("Dropped %s %s: %v", q.Method, q.Path, err))
					return nil
				}
				return err
			})
			if err != nil {
				printError(fmt.Sprintf("Flush stopped after %d: %v", sent, err))
				return nil
			}
			printSuccess(fmt.Sprintf("Flush complete: replayed=%d", sent))
			return nil
		},
	})
	return cmd
}
