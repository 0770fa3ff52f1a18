package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// IsOffline reports whether err means the request never reached the server,
// as opposed to the server rejecting it.
func IsOffline(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr) && !errors.Is(err, context.Canceled)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateGame(ctx context.Context, token, name string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", token, map[string]any{"name": name}, &out, "")
	return out, err
}

func (c *Client) AddClub(ctx context.Context, token, gameID, name, shortName string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/clubs", token, map[string]any{
		"name":       name,
		"short_name": shortName,
	}, &out, "")
	return out, err
}

func (c *Client) CreateSeason(ctx context.Context, token, gameID, yearLabel string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/seasons", token, map[string]any{
		"year_label": yearLabel,
	}, &out, "")
	return out, err
}

func (c *Client) CurrentTurn(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/current", "", nil, &out, "")
	return out, err
}

func (c *Client) GameResults(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/results", "", nil, &out, "")
	return out, err
}

func (c *Client) SeasonStatus(ctx context.Context, seasonID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/seasons/"+url.PathEscape(seasonID)+"/status", "", nil, &out, "")
	return out, err
}

func (c *Client) FinalizeSeason(ctx context.Context, token, seasonID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/seasons/"+url.PathEscape(seasonID)+"/finalize", token, nil, &out, "")
	return out, err
}

func (c *Client) Standings(ctx context.Context, seasonID string, upTo int) (map[string]any, error) {
	path := "/v1/seasons/" + url.PathEscape(seasonID) + "/standings"
	if upTo > 0 {
		path += fmt.Sprintf("?up_to=%d", upTo)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, "", nil, &out, "")
	return out, err
}

func (c *Client) Disclosures(ctx context.Context, seasonID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/seasons/"+url.PathEscape(seasonID)+"/disclosures", "", nil, &out, "")
	return out, err
}

// TurnAction posts open, lock or resolve for a turn.
func (c *Client) TurnAction(ctx context.Context, token, turnID, action string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/turns/"+url.PathEscape(turnID)+"/"+action, token, nil, &out, "")
	return out, err
}

func DecisionPath(turnID, clubID string) string {
	return "/v1/turns/" + url.PathEscape(turnID) + "/decisions/" + url.PathEscape(clubID)
}

func AckPath(turnID, clubID string) string {
	return "/v1/turns/" + url.PathEscape(turnID) + "/acks/" + url.PathEscape(clubID)
}

func (c *Client) CommitDecision(ctx context.Context, token, turnID, clubID string, payload map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPut, DecisionPath(turnID, clubID), token, payload, &out, idem)
	return out, err
}

func (c *Client) Ack(ctx context.Context, token, turnID, clubID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, AckPath(turnID, clubID), token, nil, &out, idem)
	return out, err
}

func (c *Client) Ledger(ctx context.Context, token, clubID, turnID string) (map[string]any, error) {
	var out map[string]any
	path := "/v1/clubs/" + url.PathEscape(clubID) + "/ledger?turn=" + url.QueryEscape(turnID)
	err := c.jsonRequest(ctx, http.MethodGet, path, token, nil, &out, "")
	return out, err
}

func (c *Client) Snapshots(ctx context.Context, token, clubID, seasonID string) (map[string]any, error) {
	var out map[string]any
	path := "/v1/clubs/" + url.PathEscape(clubID) + "/snapshots?season=" + url.QueryEscape(seasonID)
	err := c.jsonRequest(ctx, http.MethodGet, path, token, nil, &out, "")
	return out, err
}

func (c *Client) Bankruptcy(ctx context.Context, token, clubID, seasonID string) (map[string]any, error) {
	var out map[string]any
	path := "/v1/clubs/" + url.PathEscape(clubID) + "/bankruptcy?season=" + url.QueryEscape(seasonID)
	err := c.jsonRequest(ctx, http.MethodGet, path, token, nil, &out, "")
	return out, err
}

func (c *Client) Do(ctx context.Context, method, path, token string, body map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	var in any
	if body != nil {
		in = body
	}
	err := c.jsonRequest(ctx, method, path, token, in, &out, idem)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, token string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
