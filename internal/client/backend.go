// Package client is the REST boundary to the medtrack backend. All
// response-envelope normalization lives here; the services above it only
// ever see flat, typed data.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/caremind/medtrack-agent/internal/service"
	"github.com/caremind/medtrack-agent/pkg/model"
	"go.uber.org/zap"
)

// BackendClient calls the medtrack backend REST API
type BackendClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NewBackendClient creates a new BackendClient
func NewBackendClient(baseURL, authToken string, timeout time.Duration, logger *zap.Logger) (*BackendClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &BackendClient{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}, nil
}

// FetchIntakeRecords retrieves one profile's intake records for an
// inclusive window, retrying transient failures with backoff.
func (c *BackendClient) FetchIntakeRecords(ctx context.Context, profileID string, window model.TimeWindow) ([]model.IntakeRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v1/profiles/%s/intake-records", c.baseURL, url.PathEscape(profileID))

	query := url.Values{}
	query.Set("from", window.From.Format(time.RFC3339))
	query.Set("to", window.To.Format(time.RFC3339))

	var body []byte
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info("retrying intake record fetch",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, lastErr = c.get(ctx, endpoint+"?"+query.Encode())
		if lastErr == nil {
			break
		}
		c.logger.Warn("intake record fetch failed",
			zap.Error(lastErr),
			zap.String("profile_id", profileID),
			zap.Int("attempt", attempt+1),
		)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("intake record fetch failed after %d attempts: %w", c.maxRetries, lastErr)
	}

	list, err := unwrapList(body)
	if err != nil {
		return nil, fmt.Errorf("unexpected intake record response shape: %w", err)
	}

	var records []model.IntakeRecord
	if err := json.Unmarshal(list, &records); err != nil {
		return nil, fmt.Errorf("failed to decode intake records: %w", err)
	}

	c.logger.Info("intake records fetched",
		zap.String("profile_id", profileID),
		zap.Int("count", len(records)),
	)

	return records, nil
}

// RegisterDevice registers this device's push token and returns the
// server-assigned device id.
func (c *BackendClient) RegisterDevice(ctx context.Context, platform model.Platform, token string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"platform": string(platform),
		"token":    token,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode register payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/push-devices", payload)
	if err != nil {
		return "", fmt.Errorf("device registration failed: %w", err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(unwrapObject(body), &resp); err != nil {
		return "", fmt.Errorf("failed to decode registration response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("registration response carried no device id")
	}

	return resp.ID, nil
}

// ListDevices retrieves the server-side device registry
func (c *BackendClient) ListDevices(ctx context.Context) ([]service.ServerDevice, error) {
	body, err := c.get(ctx, c.baseURL+"/api/v1/push-devices")
	if err != nil {
		return nil, fmt.Errorf("device list fetch failed: %w", err)
	}

	list, err := unwrapList(body)
	if err != nil {
		return nil, fmt.Errorf("unexpected device list response shape: %w", err)
	}

	var devices []service.ServerDevice
	if err := json.Unmarshal(list, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode device list: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes one server-side device registration by id
func (c *BackendClient) DeleteDevice(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/api/v1/push-devices/" + url.PathEscape(id)
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("device delete failed: %w", err)
	}
	return nil
}

func (c *BackendClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *BackendClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// unwrapList normalizes the backend's list envelopes. Depending on the API
// version a collection arrives as a bare array, {"data":[...]}, or
// {"data":{"data":[...]}}; the result is always the innermost array.
func unwrapList(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("response is neither an array nor a data envelope: %w", err)
	}
	if len(bytes.TrimSpace(envelope.Data)) == 0 {
		return json.RawMessage("[]"), nil
	}
	return unwrapList(envelope.Data)
}

// unwrapObject peels a single {"data":{...}} envelope when present
func unwrapObject(body []byte) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return body
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
