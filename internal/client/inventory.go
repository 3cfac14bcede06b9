package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// InventoryClient is an HTTP client for the rack planner inventory API.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &InventoryClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is returned when the server answers with a non 2xx status.
type APIError struct {
	StatusCode int
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

type HealthResponse struct {
	Status string `json:"status"`
}

// List returns the raw records of a collection, e.g. "servers".
func (c *InventoryClient) List(ctx context.Context, resource string) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, c.resourceURL(resource), nil)
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return records, nil
}

// Get returns one record of a collection. Racks are keyed by id, everything else by name.
func (c *InventoryClient) Get(ctx context.Context, resource, key string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, c.resourceURL(resource, key), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *InventoryClient) Create(ctx context.Context, resource string, form any) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPost, c.resourceURL(resource), form)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *InventoryClient) Delete(ctx context.Context, resource, key string) error {
	_, err := c.do(ctx, http.MethodDelete, c.resourceURL(resource, key), nil)
	return err
}

func (c *InventoryClient) HealthCheck(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("service is not healthy: %s", health.Status)
	}
	return nil
}

func (c *InventoryClient) resourceURL(resource string, key ...string) string {
	u := fmt.Sprintf("%s/api/v1/%s", c.baseURL, resource)
	for _, k := range key {
		u += "/" + url.PathEscape(k)
	}
	return u
}

func (c *InventoryClient) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inventory service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// a body that is not an error reply still yields the status
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}
	return body, nil
}
