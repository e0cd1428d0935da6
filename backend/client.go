// Package backend talks to the external tournament service that owns match
// data, scoring and bracket progression.
//
// Both calls are POST requests with a JSON body and a JSON envelope
// {success, message, ...} in the response. Outbound requests go through a
// token bucket limiter.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/Dosada05/bracket-console/models"
)

const (
	fetchBracketPath     = "/fetch-matches-bracket"
	updateMatchScorePath = "/update-match-score"

	maxResponseBytes = 4 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	APIToken          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client is the HTTP client for the tournament backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// ScoreUpdate is the backend's answer to a score submission.
type ScoreUpdate struct {
	AutoProgressed bool
	Message        string
}

// FetchBracket loads and validates the bracket payload of a tournament.
// Record-level problems do not fail the call; they come back as diagnostics.
func (c *Client) FetchBracket(ctx context.Context, tournamentID int) (*models.BracketData, []models.Diagnostic, error) {
	body, err := c.post(ctx, fetchBracketPath, fetchBracketRequest{TournamentID: tournamentID})
	if err != nil {
		return nil, nil, err
	}

	var resp fetchBracketResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("%w: decode %s: %v", ErrMalformedPayload, fetchBracketPath, err)
	}
	return resp.validate()
}

// UpdateMatchScore submits a final score. The backend determines the winner
// and moves both participants forward.
func (c *Client) UpdateMatchScore(ctx context.Context, matchID models.MatchID, score1, score2 int) (*ScoreUpdate, error) {
	req := updateMatchScoreRequest{MatchID: matchID, Score1: score1, Score2: score2}
	body, err := c.post(ctx, updateMatchScorePath, req)
	if err != nil {
		return nil, err
	}

	var resp updateMatchScoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrMalformedPayload, updateMatchScorePath, err)
	}
	if resp.Success == nil {
		return nil, fmt.Errorf("%w: %s response has no success flag", ErrMalformedPayload, updateMatchScorePath)
	}
	if !*resp.Success {
		return nil, &RequestError{Path: updateMatchScorePath, Message: resp.Message}
	}

	update := &ScoreUpdate{Message: resp.Message}
	if resp.AutoProgressed != nil {
		update.AutoProgressed = *resp.AutoProgressed
	}
	return update, nil
}

// post performs a rate-limited JSON POST and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrUnavailable, err)
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrUnavailable, path, err)
	}

	c.logger.Debug("backend call",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUnavailable, path, resp.StatusCode, truncate(body, 200))
	}
	if resp.StatusCode != http.StatusOK {
		// 4xx bodies usually still carry the {success:false, message} envelope.
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			return nil, &RequestError{Path: path, Status: resp.StatusCode, Message: env.Message}
		}
		return nil, &RequestError{Path: path, Status: resp.StatusCode, Message: truncate(body, 200)}
	}
	return body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
