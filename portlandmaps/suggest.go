// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package portlandmaps talks to the PortlandMaps address suggestion service and
// builds links to its official detail pages.
package portlandmaps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdxmaps/pdxmaps/utils/httputils"
)

// Suggestion is one raw candidate returned by the suggestion service, in the
// order the service ranked it.
type Suggestion struct {
	Label  string `json:"label"`
	Value  string `json:"value,omitempty"`
	Type   string `json:"type"`
	City   string `json:"city,omitempty"`
	County string `json:"county,omitempty"`

	// Raw is the record exactly as the service sent it.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts value (or id) as either a JSON string or number.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var wire struct {
		Label  string          `json:"label"`
		Value  json.RawMessage `json:"value"`
		ID     json.RawMessage `json:"id"`
		Type   string          `json:"type"`
		City   string          `json:"city"`
		County string          `json:"county"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	value, err := identifier(wire.Value)
	if err != nil {
		return fmt.Errorf("suggestion value: %w", err)
	}

	if value == "" {
		if value, err = identifier(wire.ID); err != nil {
			return fmt.Errorf("suggestion id: %w", err)
		}
	}

	*s = Suggestion{
		Label:  wire.Label,
		Value:  value,
		Type:   wire.Type,
		City:   wire.City,
		County: wire.County,
		Raw:    append(json.RawMessage(nil), data...),
	}

	return nil
}

func identifier(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}

		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}

	return n.String(), nil
}

type suggestResponse struct {
	Status     string       `json:"status"`
	Candidates []Suggestion `json:"candidates"`
}

// TransportError reports a failed call to the suggestion service. Without
// suggestions there is nothing to resolve, so callers treat it as fatal.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: suggestion service returned status %d", e.Op, e.StatusCode)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client queries the suggestion endpoint.
type Client struct {
	baseURL    string
	city       string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a suggestion client. apiKey may be empty.
func NewClient(httpClient *http.Client, baseURL, city, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		city:       city,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Suggest returns the service's candidates for text, preserving their order.
// It makes exactly one attempt.
func (c *Client) Suggest(ctx context.Context, text string, limit int) ([]Suggestion, error) {
	reqURL, err := c.suggestURL(text, limit)
	if err != nil {
		return nil, &TransportError{Op: "suggest", Err: err}
	}

	var resp suggestResponse
	if err := httputils.GetJSON(ctx, c.httpClient, reqURL, &resp); err != nil {
		transportErr := &TransportError{Op: "suggest", Err: err}

		var statusErr *httputils.StatusError
		if errors.As(err, &statusErr) {
			transportErr.StatusCode = statusErr.StatusCode
		}

		return nil, transportErr
	}

	return resp.Candidates, nil
}

func (c *Client) suggestURL(text string, limit int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing suggest url: %w", err)
	}

	params := u.Query()
	params.Set("query", text)

	if c.city != "" {
		params.Set("city", c.city)
	}

	if limit > 0 {
		params.Set("count", strconv.Itoa(limit))
	}

	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	u.RawQuery = params.Encode()

	return u.String(), nil
}
