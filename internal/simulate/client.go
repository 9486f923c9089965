package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient is a thin JSON client for the service's HTTP API.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// session mirrors the service's session read shape.
type session struct {
	ID         string `json:"session_id"`
	Round      int    `json:"current_round"`
	HumanScore int    `json:"human_score"`
	AIScore    int    `json:"ai_score"`
	Turns      []turn `json:"turns"`
	Finished   bool   `json:"finished"`
	PlayerName string `json:"player_name"`
	Winner     string `json:"winner"`
}

type turn struct {
	Round         int    `json:"round"`
	Actor         string `json:"actor"`
	Role          string `json:"role"`
	ProposedShare *int   `json:"proposed_share"`
	Accepted      *bool  `json:"accepted"`
	Note          string `json:"note"`
}

// leaderboardPage mirrors the service's leaderboard read shape.
type leaderboardPage struct {
	Entries []struct {
		Rank       int    `json:"rank"`
		SessionID  string `json:"session_id"`
		PlayerName string `json:"player_name"`
		HumanScore int    `json:"human_score"`
		AIScore    int    `json:"ai_score"`
		Margin     int    `json:"margin"`
	} `json:"entries"`
	PageNumber   int `json:"page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

func (c *apiClient) startSession(ctx context.Context, playerName string) (session, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/sessions", map[string]string{"player_name": playerName}, &s)
	return s, err
}

func (c *apiClient) getSession(ctx context.Context, id string) (session, error) {
	var s session
	err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, &s)
	return s, err
}

func (c *apiClient) propose(ctx context.Context, id string, share int, msg string) (session, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/proposal", map[string]any{
		"human_points": share,
		"message":      msg,
	}, &s)
	return s, err
}

func (c *apiClient) decide(ctx context.Context, id string, accept bool, msg string) (session, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/decision", map[string]any{
		"accept":  accept,
		"message": msg,
	}, &s)
	return s, err
}

func (c *apiClient) opponentTurn(ctx context.Context, id string) (session, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/opponent", nil, &s)
	return s, err
}

func (c *apiClient) leaderboard(ctx context.Context, mode string, page int) (leaderboardPage, error) {
	var p leaderboardPage
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/leaderboard?mode=%s&page=%d", mode, page), nil, &p)
	return p, err
}

func (c *apiClient) health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, res.StatusCode, bytes.TrimSpace(detail))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
