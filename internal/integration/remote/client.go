// Package remote implements the household backend boundary over its JSON REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/household-hub/companion/internal/domain/error"
)

const (
	// RequestIDHeader carries the correlation id of every backend call.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 4 << 20
)

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is an HTTP client for the household backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	token      string
}

// NewClient creates a new backend client. A timeout of zero leaves calls unbounded
// beyond the caller's context.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// WithToken returns a copy of the client that authenticates with the given bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// do performs a request and decodes the envelope's data into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domainerror.NewRemoteFailure("invalid request", 0, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domainerror.NewRemoteFailure("invalid request", 0, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domainerror.NewRemoteFailure(domainerror.ReasonTimeout, 0, err)
		}
		slog.Warn("Backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return domainerror.NewRemoteFailure("backend unreachable", 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domainerror.NewRemoteFailure(domainerror.ReasonTimeout, resp.StatusCode, err)
		}
		return domainerror.NewRemoteFailure("failed to read backend response", resp.StatusCode, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return domainerror.NewRemoteFailure(http.StatusText(resp.StatusCode), resp.StatusCode, err)
			}
			return domainerror.NewRemoteFailure("invalid response from backend", resp.StatusCode, err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		reason := env.Message
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		slog.Debug("Backend reported failure",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
			"reason", reason,
		)
		return domainerror.NewRemoteFailure(reason, resp.StatusCode, nil)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domainerror.NewRemoteFailure("invalid response from backend", resp.StatusCode, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// HealthCheck reports whether the backend answers its health endpoint.
func (c *Client) HealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		slog.Error("Backend health check failed", "error", err)
		return false
	}
	return true
}
