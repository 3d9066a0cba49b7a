// Package sportsapi implements a client for the b365 live football data
// API: in-play events, per-event statistics, and finished-match history.
package sportsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	userAgent      = "BetBog-Monitor/1.0"
	defaultTimeout = 30 * time.Second

	endpointInplay = "/events/inplay"
	endpointEnded  = "/events/ended"
	endpointView   = "/event/view"
	endpointStats  = "/event/stats"
)

// APIError is a non-success response from the sports API.
type APIError struct {
	Endpoint string
	Detail   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sports API error on %s: %s", e.Endpoint, e.Detail)
}

// Client calls the sports API over HTTP. All requests carry the token as a
// query parameter, as the API requires.
type Client struct {
	baseURL    string
	token      string
	sportID    int
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a sports API client. timeout <= 0 falls back to 30s.
func New(baseURL, token string, sportID int, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		sportID:    sportID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "sportsapi"),
	}
}

// envelope is the common response wrapper. Results is left raw because its
// shape varies by endpoint (array of events or a stats object).
type envelope struct {
	Success     int             `json:"success"`
	Results     json.RawMessage `json:"results"`
	ErrorDetail string          `json:"error_detail"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("token", c.token)

	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "API request", "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WarnContext(ctx, "Error closing response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Endpoint: endpoint, Detail: "HTTP " + strconv.Itoa(resp.StatusCode)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}

	if env.Success != 1 {
		detail := env.ErrorDetail
		if detail == "" {
			detail = "unknown API error"
		}
		return &APIError{Endpoint: endpoint, Detail: detail}
	}

	if out != nil && len(env.Results) > 0 {
		if err := json.Unmarshal(env.Results, out); err != nil {
			return fmt.Errorf("failed to decode results from %s: %w", endpoint, err)
		}
	}
	return nil
}

// LiveMatches retrieves the raw in-play events for the configured sport.
func (c *Client) LiveMatches(ctx context.Context) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("sport_id", strconv.Itoa(c.sportID))

	var results []json.RawMessage
	if err := c.get(ctx, endpointInplay, params, &results); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "Fetched live matches", "count", len(results))
	return results, nil
}

// MatchDetails retrieves the detailed view of a single event. Returns
// nil, nil when the event is not found.
func (c *Client) MatchDetails(ctx context.Context, eventID string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("event_id", eventID)

	var results []json.RawMessage
	if err := c.get(ctx, endpointView, params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// MatchStats retrieves the statistics object for a single event. The keys
// are numeric stat identifiers; see NormalizeStats.
func (c *Client) MatchStats(ctx context.Context, eventID string) (map[string]json.RawMessage, error) {
	params := url.Values{}
	params.Set("event_id", eventID)

	var results map[string]json.RawMessage
	if err := c.get(ctx, endpointStats, params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FinishedMatches retrieves events that ended on the given day.
func (c *Client) FinishedMatches(ctx context.Context, day time.Time) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("sport_id", strconv.Itoa(c.sportID))
	params.Set("day", day.Format("20060102"))

	var results []json.RawMessage
	if err := c.get(ctx, endpointEnded, params, &results); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "Fetched finished matches", "day", day.Format("2006-01-02"), "count", len(results))
	return results, nil
}
