package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bidscore/internal/score/scorer"
	"bidscore/internal/server"
	"bidscore/internal/template"
)

// APIError is a non-success response of the bidscore API.
type APIError struct {
	StatusCode int
	Kind       string
	Field      string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (status %d): %s: %s", e.Kind, e.StatusCode, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
}

// Client calls a bidscore server over HTTP.
type Client struct {
	url    string       // base URL of the server
	client *http.Client // HTTP client configured with a timeout
}

// Calculate sends a calculation request and returns the stored report.
// Rejected calculations are returned as *APIError.
func (c *Client) Calculate(ctx context.Context, request scorer.Request) (*scorer.Report, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	report := &scorer.Report{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/calculations", body, http.StatusCreated, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Calculation returns a stored report by id.
func (c *Client) Calculation(ctx context.Context, id string) (*scorer.Report, error) {
	report := &scorer.Report{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/calculations/"+id, nil, http.StatusOK, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Calculations lists recent calculations, newest first.
func (c *Client) Calculations(ctx context.Context) ([]scorer.Summary, error) {
	var summaries []scorer.Summary
	if err := c.do(ctx, http.MethodGet, "/api/v1/calculations", nil, http.StatusOK, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Templates lists the server's preset rule sets.
func (c *Client) Templates(ctx context.Context) ([]template.Template, error) {
	var templates []template.Template
	if err := c.do(ctx, http.MethodGet, "/api/v1/templates", nil, http.StatusOK, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, expected int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != expected {
		return decodeError(resp, content)
	}

	return json.Unmarshal(content, out)
}

func decodeError(resp *http.Response, content []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body server.ErrorResponse
	if err := json.Unmarshal(content, &body); err != nil || body.Error == "" {
		apiErr.Kind = "http_error"
		apiErr.Detail = strings.TrimSpace(resp.Status)
		return apiErr
	}

	apiErr.Kind = body.Error
	apiErr.Field = body.Field
	apiErr.Detail = body.Detail
	return apiErr
}

// NewClient creates a client for the server at url (e.g., "http://localhost:8080")
// with the given request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
	}
}
