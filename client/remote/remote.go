/*
Package remote implements the facade over the networked backend.

PURPOSE:
  Every client.Client operation becomes an HTTP call against the api
  server. Responses decode into the same record types the local backend
  returns, and HTTP statuses map back onto the shared error taxonomy,
  so callers cannot tell the backends apart.

ERROR MAPPING:
  400 -> ErrValidation ("user exists" body -> ErrUserExists)
  401 -> ErrUnauthorized ("invalid credentials" -> ErrInvalidCredentials)
  404 -> ErrNotFound (including unknown routes)
  5xx and transport failures -> ErrServer

SESSION:
  SignIn/SignUp capture the bearer token; it is sent as X-Auth-Token on
  every subsequent request.
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/loopline/habit-engine/client"
	"github.com/loopline/habit-engine/habit"
)

// Client is the HTTP facade implementation.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

var _ client.Client = (*Client)(nil)

// New creates a remote backend against the given base URL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func (c *Client) SignUp(ctx context.Context, creds client.Credentials) (client.Session, error) {
	var session client.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", creds, &session); err != nil {
		return client.Session{}, err
	}
	c.token = session.Token
	return session, nil
}

func (c *Client) SignIn(ctx context.Context, creds client.Credentials) (client.Session, error) {
	var session client.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", creds, &session); err != nil {
		return client.Session{}, err
	}
	c.token = session.Token
	return session, nil
}

// =============================================================================
// HABITS
// =============================================================================

func (c *Client) CreateHabit(ctx context.Context, req client.NewHabit) (habit.Habit, error) {
	var created habit.Habit
	err := c.do(ctx, http.MethodPost, "/api/habits", req, &created)
	return created, err
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	var habits []habit.Habit
	err := c.do(ctx, http.MethodGet, "/api/habits", nil, &habits)
	return habits, err
}

func (c *Client) DeleteHabit(ctx context.Context, habitID string) error {
	return c.do(ctx, http.MethodDelete, "/api/habits/"+habitID, nil, nil)
}

// =============================================================================
// LOGS
// =============================================================================

func (c *Client) UpsertLog(ctx context.Context, entry client.LogEntry) (habit.Log, error) {
	var stored habit.Log
	err := c.do(ctx, http.MethodPost, "/api/habits/log", entry, &stored)
	return stored, err
}

func (c *Client) ListLogsForDate(ctx context.Context, date habit.Date) ([]habit.Log, error) {
	var logs []habit.Log
	err := c.do(ctx, http.MethodGet, "/api/habits/logs/"+date.String(), nil, &logs)
	return logs, err
}

// =============================================================================
// ROUTINES
// =============================================================================

func (c *Client) CreateRoutine(ctx context.Context, req client.NewRoutine) (habit.Routine, error) {
	var created habit.Routine
	err := c.do(ctx, http.MethodPost, "/api/routines", req, &created)
	return created, err
}

func (c *Client) ListRoutines(ctx context.Context) ([]habit.HydratedRoutine, error) {
	var routines []habit.HydratedRoutine
	err := c.do(ctx, http.MethodGet, "/api/routines", nil, &routines)
	return routines, err
}

func (c *Client) DeleteRoutine(ctx context.Context, routineID string) error {
	return c.do(ctx, http.MethodDelete, "/api/routines/"+routineID, nil, nil)
}

// =============================================================================
// STATS
// =============================================================================

func (c *Client) Heatmap(ctx context.Context) (map[string]int, error) {
	var heatmap map[string]int
	err := c.do(ctx, http.MethodGet, "/api/stats/heatmap", nil, &heatmap)
	return heatmap, err
}

func (c *Client) Streaks(ctx context.Context) ([]habit.HabitStreak, error) {
	var streaks []habit.HabitStreak
	err := c.do(ctx, http.MethodGet, "/api/stats/streaks", nil, &streaks)
	return streaks, err
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do executes one request. A non-2xx response is decoded to the
// {"error": "..."} envelope and mapped onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", habit.ErrValidation, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", habit.ErrServer, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", habit.ErrServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", habit.ErrServer, err)
	}
	return nil
}

func classify(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	message := envelope.Error
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if message == "invalid credentials" {
			return habit.ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %s", habit.ErrUnauthorized, message)
	case http.StatusBadRequest:
		if message == "user exists" {
			return habit.ErrUserExists
		}
		return fmt.Errorf("%w: %s", habit.ErrValidation, message)
	case http.StatusNotFound:
		return habit.ErrNotFound
	default:
		return fmt.Errorf("%w: %s", habit.ErrServer, message)
	}
}
