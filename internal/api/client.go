// Package api is the HTTP client for the question/answer authority.
//
// Every call takes a context and returns an explicit error from a small
// taxonomy: *NetError for transport failures, *StatusError for non-2xx
// responses, ErrBadCredentials for a rejected login. The bearer token is
// fetched from the session.TokenProvider on every single request, never
// captured at construction time.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/idilsaglam/qna/internal/session"
)

// ErrBadCredentials is returned when the token endpoint rejects a login.
var ErrBadCredentials = errors.New("invalid credentials")

// NetError is a transport-level failure: the server was never reached or the
// connection died mid-request.
type NetError struct {
	Err error
}

func (e *NetError) Error() string { return "network: " + e.Err.Error() }
func (e *NetError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Detail carries the server's "detail"
// field when the body had one, otherwise the raw body text.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server: %d", e.Status)
}

// Client talks to the authority at baseURL.
type Client struct {
	baseURL    string
	tokens     session.TokenProvider
	httpClient *http.Client
}

// New creates a Client. No client-side timeout is set: once issued, a call
// runs to completion on transport defaults.
func New(baseURL string, tokens session.TokenProvider) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
	}
}

// doJSON sends a JSON request and decodes a JSON response into out (when out
// is non-nil). The bearer header is attached whenever the provider has a
// token; when it has none the request still goes out and fails server-side,
// which keeps a single error path for every protected call.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Detail: detailOf(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// detailOf pulls the server's {"detail": ...} message out of an error body,
// falling back to the trimmed body itself.
func detailOf(data []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(data))
}
