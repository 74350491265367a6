// pkg/ingest/api.go

package ingest

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

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/model"
)

// APIClient is a JSON REST client with retries. Transport errors, 429 and
// 5xx responses are retried with increasing delay; other statuses fail
// immediately.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewAPIClient creates a client from API configuration.
func NewAPIClient(cfg *config.APIConfig) (*APIClient, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("api base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid api base URL %s: %w", cfg.BaseURL, err)
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	return &APIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
		logger:     zap.L().Named("api-client"),
	}, nil
}

// Get performs a GET request and decodes the JSON response into out.
func (c *APIClient) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *APIClient) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	delay := c.retryDelay

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request",
				zap.String("method", method),
				zap.String("url", endpoint),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%s %s returned %d", method, endpoint, resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return fmt.Errorf("%s %s returned %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
		}

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			continue
		}
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return fmt.Errorf("%s %s failed after %d attempts: %w", method, endpoint, c.maxRetries+1, lastErr)
}

// APISource fetches a GET endpoint that returns a JSON array of objects
// (or an object with a "data" array) and adapts it to a table.
type APISource struct {
	name   string
	client *APIClient
	path   string
}

// NewAPISource creates an API source.
func NewAPISource(name string, client *APIClient, path string) (*APISource, error) {
	if client == nil {
		return nil, errors.New("api client is required")
	}
	if name == "" {
		name = strings.Trim(path, "/")
	}
	return &APISource{name: name, client: client, path: path}, nil
}

// Name identifies the source.
func (s *APISource) Name() string { return s.name }

// Fetch retrieves and decodes the endpoint into a table.
func (s *APISource) Fetch(ctx context.Context) (*model.Table, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, s.path, &raw); err != nil {
		return nil, fmt.Errorf("api source %s: %w", s.name, err)
	}

	records, err := decodeJSONRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("api source %s returned unexpected payload: %w", s.name, err)
	}
	return tableFromRecords(s.name, records), nil
}
