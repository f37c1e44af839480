package typeform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geoform/internal/form"
	"geoform/internal/metrics"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public Typeform Create API.
const DefaultBaseURL = "https://api.typeform.com"

var (
	ErrMissingToken   = errors.New("typeform: missing access token")
	ErrFormIDMismatch = errors.New("typeform: form id mismatch")
)

// Client reads and replaces form definitions.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client. A nil httpClient gets a 30s timeout default.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}, nil
}

// GetForm fetches the definition of form id.
func (c *Client) GetForm(ctx context.Context, id string) (*form.Definition, error) {
	d, err := c.do(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, fmt.Errorf("typeform: failed to get form %s: %w", id, err)
	}
	log.Debug().Str("form_id", id).Int("fields", len(d.Fields)).Int("logic", len(d.Logic)).Msg("typeform: fetched form")
	return d, nil
}

// UpdateForm replaces form id with d and returns the stored definition.
func (c *Client) UpdateForm(ctx context.Context, id string, d *form.Definition) (*form.Definition, error) {
	var body bytes.Buffer
	if err := form.Encode(&body, d); err != nil {
		return nil, err
	}
	stored, err := c.do(ctx, http.MethodPut, id, &body)
	if err != nil {
		return nil, fmt.Errorf("typeform: failed to update form %s: %w", id, err)
	}
	if stored.ID != id {
		return nil, fmt.Errorf("%w: sent %s, got %q", ErrFormIDMismatch, id, stored.ID)
	}
	return stored, nil
}

func (c *Client) do(ctx context.Context, method, id string, body io.Reader) (*form.Definition, error) {
	op := strings.ToLower(method)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/forms/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.FormRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FormRequestsTotal.WithLabelValues(op, "status").Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	d, err := form.Decode(resp.Body)
	if err != nil {
		metrics.FormRequestsTotal.WithLabelValues(op, "decode").Inc()
		return nil, err
	}
	metrics.FormRequestsTotal.WithLabelValues(op, "ok").Inc()
	return d, nil
}
