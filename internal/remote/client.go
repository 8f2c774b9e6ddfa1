// Package remote is the best-effort client for the points-sync API.
// Local state is the source of truth; every call here is an optional
// mirror whose failure the hunt engine logs and ignores.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

// ErrAlreadyRecorded means the server had already credited the
// location. The client treats it the same as success.
var ErrAlreadyRecorded = errors.New("location already recorded remotely")

// Account is the server-side mirror of a player.
type Account struct {
	Username       string   `json:"username"`
	TotalPoints    int      `json:"totalPoints"`
	LocationsFound []string `json:"locationsFound"`
	CompletedAt    *string  `json:"completedAt"`
	CreatedAt      string   `json:"createdAt"`
}

// LeaderboardEntry is one row of the top-10 board.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	Username       string  `json:"username"`
	TotalPoints    int     `json:"totalPoints"`
	LocationsFound int     `json:"locationsFound"`
	CompletedAt    *string `json:"completedAt"`
}

// Client talks to the points-sync server.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ hunt.SyncReporter = (*Client)(nil)

// New builds a client for the server at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// CreateUser creates (or fetches) the account for username.
func (c *Client) CreateUser(ctx context.Context, username string) (*Account, error) {
	body, _ := json.Marshal(map[string]string{"username": username})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var acc Account
	if err := c.do(req, http.StatusCreated, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ReportLocationFound mirrors a local award to the server. A 400
// response means the server already had the location, which is not a
// failure of the local award; it is reported as ErrAlreadyRecorded so
// the caller can log it apart from real faults.
func (c *Client) ReportLocationFound(ctx context.Context, username string, rep hunt.LocationReport) error {
	body, _ := json.Marshal(rep)
	u := c.baseURL + "/api/user/" + url.PathEscape(username) + "/location-found"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reporting location: %w", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return ErrAlreadyRecorded
	default:
		return fmt.Errorf("reporting location: unexpected status %d", resp.StatusCode)
	}
}

// Leaderboard fetches the top-10 board.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/leaderboard", nil)
	if err != nil {
		return nil, err
	}
	var entries []LeaderboardEntry
	if err := c.do(req, http.StatusOK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(req *http.Request, want int, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer drain(resp)

	// POST /api/user/create answers 200 for an existing account and 201
	// for a fresh one; both carry the account body.
	if resp.StatusCode != want && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
