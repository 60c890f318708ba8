// Package httpstore implements remote.Store as a client of the api server.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/retroplay/internal/remote"
)

// Client talks to an api server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ remote.Store = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type statusError struct {
	Status  int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
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
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return remote.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		msg, code := readError(resp.Body)
		if code == "invalid_submission" {
			return fmt.Errorf("%w: %s", remote.ErrInvalidSubmission, msg)
		}
		return fmt.Errorf("%w: %s", remote.ErrInvalidUser, msg)
	case resp.StatusCode >= 300:
		msg, _ := readError(resp.Body)
		return &statusError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readError decodes the server's error message and code.
func readError(r io.Reader) (string, string) {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil {
		return "unexpected response", ""
	}
	return body.Error, body.Code
}

func userPath(prefix string, userID int64, rest ...string) string {
	parts := append([]string{prefix, strconv.FormatInt(userID, 10)}, rest...)
	for i := 2; i < len(parts); i++ {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// UpsertUser sends PUT /v1/users/{stableID}.
func (c *Client) UpsertUser(ctx context.Context, stableID, displayName string) (int64, error) {
	if err := remote.ValidateStableID(stableID); err != nil {
		return 0, err
	}
	var resp struct {
		UserID int64 `json:"user_id"`
	}
	body := map[string]string{"display_name": displayName}
	if err := c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(stableID), body, &resp); err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// EnsureProfile sends PUT /v1/profiles/{userID}.
func (c *Client) EnsureProfile(ctx context.Context, userID int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, userPath("/v1/profiles", userID), nil, nil)
}

// GetProfile sends GET /v1/profiles/{userID}.
func (c *Client) GetProfile(ctx context.Context, userID int64) (remote.Profile, error) {
	if err := remote.ValidateUserID(userID); err != nil {
		return remote.Profile{}, err
	}
	var p remote.Profile
	if err := c.do(ctx, http.MethodGet, userPath("/v1/profiles", userID), nil, &p); err != nil {
		return remote.Profile{}, err
	}
	p.UserID = userID
	return p, nil
}

// GetGameScore sends GET /v1/scores/{userID}/{gameKey} and maps 404 to nil.
func (c *Client) GetGameScore(ctx context.Context, userID int64, gameKey string) (*remote.GameScore, error) {
	if err := remote.ValidateUserID(userID); err != nil {
		return nil, err
	}
	var gs remote.GameScore
	err := c.do(ctx, http.MethodGet, userPath("/v1/scores", userID, gameKey), nil, &gs)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

// UpsertGameScore sends PUT /v1/scores/{userID}/{gameKey}.
func (c *Client) UpsertGameScore(ctx context.Context, userID int64, gameKey string, lastScore, bestScore int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	if err := remote.ValidateScores(lastScore, bestScore); err != nil {
		return err
	}
	body := map[string]int64{"last_score": lastScore, "best_score": bestScore}
	return c.do(ctx, http.MethodPut, userPath("/v1/scores", userID, gameKey), body, nil)
}

// IncrementProfileStats sends POST /v1/profiles/{userID}/increment. The
// server ignores a submissionID it has already applied, so retrying after a
// lost response is safe.
func (c *Client) IncrementProfileStats(ctx context.Context, userID int64, submissionID string, xpDelta, scoreDelta int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	if err := remote.ValidateIncrement(submissionID, xpDelta, scoreDelta); err != nil {
		return err
	}
	body := map[string]any{"submission_id": submissionID, "xp_delta": xpDelta, "score_delta": scoreDelta}
	return c.do(ctx, http.MethodPost, userPath("/v1/profiles", userID, "increment"), body, nil)
}

// ListTopProfilesByXP sends GET /v1/leaderboard/xp.
func (c *Client) ListTopProfilesByXP(ctx context.Context, limit int) ([]remote.Entry, error) {
	var entries []remote.Entry
	path := "/v1/leaderboard/xp?limit=" + strconv.Itoa(remote.NormalizeLimit(limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return normalize(entries), nil
}

// ListTopScoresForGame sends GET /v1/leaderboard/games/{gameKey}.
func (c *Client) ListTopScoresForGame(ctx context.Context, gameKey string, limit int) ([]remote.Entry, error) {
	var entries []remote.Entry
	path := "/v1/leaderboard/games/" + url.PathEscape(gameKey) + "?limit=" + strconv.Itoa(remote.NormalizeLimit(limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return normalize(entries), nil
}

// normalize defaults missing fields of server rows.
func normalize(entries []remote.Entry) []remote.Entry {
	if entries == nil {
		return []remote.Entry{}
	}
	for i := range entries {
		entries[i].Name = remote.DisplayName(entries[i].Name)
	}
	return entries
}
