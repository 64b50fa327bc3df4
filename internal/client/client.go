// Package client talks to the prediction API the way the front end does:
// POST the matchup, then poll until the worker has filled the cache.
package client

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

	"github.com/ufcml/predict-api/internal/models"
)

const (
	defaultPollInterval = time.Second
	defaultTimeout      = 60 * time.Second
)

var ErrTimeout = errors.New("prediction not ready before timeout")

// APIError is a non-retryable response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

type Config struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	// Timeout bounds one Predict call including all polls.
	Timeout time.Duration
}

type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	timeout      time.Duration
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
	}
}

// Predict requests a prediction and polls until it is complete. 202 and 503
// responses are retried; 503 and 429 honour Retry-After.
func (c *Client) Predict(ctx context.Context, fighter1, fighter2 string) (*models.PredictionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(models.PredictRequest{Fighter1: fighter1, Fighter2: fighter2})
	if err != nil {
		return nil, err
	}

	for {
		res, wait, err := c.predictOnce(ctx, body)
		if err != nil || res != nil {
			return res, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// predictOnce returns a result, or how long to wait before polling again.
func (c *Client) predictOnce(ctx context.Context, body []byte) (*models.PredictionResult, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ErrTimeout
		}
		return nil, 0, fmt.Errorf("post predict: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var res models.PredictionResult
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, 0, fmt.Errorf("decode prediction: %w", err)
		}
		return &res, 0, nil
	case http.StatusAccepted:
		io.Copy(io.Discard, resp.Body)
		return nil, c.pollInterval, nil
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, retryAfter(resp.Header.Get("Retry-After"), c.pollInterval), nil
	default:
		return nil, 0, apiError(resp)
	}
}

// History returns the recent fights of a fighter.
func (c *Client) History(ctx context.Context, name string) ([]models.FightHistoryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/fighter-history/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get fighter history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var entries []models.FightHistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode fighter history: %w", err)
	}
	return entries, nil
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}

func retryAfter(header string, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
