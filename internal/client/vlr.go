// Package client implements the data source adapter: an HTTP client
// for the vlr.gg community API that the ingestion jobs pull match,
// team and roster records from.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var idPattern = regexp.MustCompile(`/(?:team/)?(\d+)`)

// ExtractIDFromURL pulls the numeric source id out of a match or team
// page URL. Returns the empty string when the URL carries none.
func ExtractIDFromURL(url string) string {
	m := idPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Client is the vlr API client. All calls are rate limited and retried
// with exponential backoff on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates an adapter client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	return &Client{
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request with rate limiting and retry logic.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "valodds-ingestion/1.0")

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("API request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))
			log.Warn().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("attempt", attempt+1).
				Msg("Received retryable error, will retry")
			continue

		default:
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// ListUpcomingMatches fetches the source's current upcoming match list.
func (c *Client) ListUpcomingMatches(ctx context.Context) ([]UpcomingMatch, error) {
	body, err := c.get(ctx, "match?q=upcoming")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming matches: %w", err)
	}

	var res struct {
		Data struct {
			Segments []UpcomingMatch `json:"segments"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upcoming matches: %w", err)
	}

	return res.Data.Segments, nil
}

// GetMatchDetail fetches the full record for a single match. The
// returned record is upcoming-shaped or finished-shaped depending on
// its Status field.
func (c *Client) GetMatchDetail(ctx context.Context, externalID string) (*MatchDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("match/%s", externalID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", externalID, err)
	}

	var detail MatchDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", externalID, err)
	}
	if detail.ID == "" {
		detail.ID = externalID
	}

	return &detail, nil
}

// GetTeamDetail fetches the extended team record including the roster.
func (c *Client) GetTeamDetail(ctx context.Context, externalID string) (*TeamDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("team/%s", externalID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team %s: %w", externalID, err)
	}

	var detail TeamDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team %s: %w", externalID, err)
	}
	if detail.ID == "" {
		detail.ID = externalID
	}

	return &detail, nil
}

// GetTeamMatchHistory fetches a team's completed matches, newest first.
func (c *Client) GetTeamMatchHistory(ctx context.Context, externalTeamID string) ([]MatchDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("team/%s/matches?status=completed", externalTeamID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match history for team %s: %w", externalTeamID, err)
	}

	var res struct {
		Data []MatchDetail `json:"data"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match history for team %s: %w", externalTeamID, err)
	}

	return res.Data, nil
}
