// Package api implements the REST client for the marketplace backend:
// base-URL discovery, JSON encode/decode, bearer-token injection and a
// unified error taxonomy. Every manager in the application goes through
// this package; no other code issues HTTP requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const healthEndpoint = "/health"

// TokenStore supplies the bearer token for authenticated calls and is
// cleared when the server answers 401.
type TokenStore interface {
	Token() string
	Clear() error
}

// Notifier surfaces network-level failures to the user. Application-level
// errors are returned to the caller instead.
type Notifier interface {
	ConnectivityLost(message string)
}

// Client wraps an http.Client with the marketplace API conventions.
// All requests are single-attempt; retry policy belongs to the caller
// and none is implemented.
type Client struct {
	http       *http.Client
	baseURL    string
	tokens     TokenStore
	notify     Notifier
	log        *zap.Logger
	onAuthLost func()
}

// New returns a Client pinned to baseURL, normally the result of Discover.
func New(httpClient *http.Client, baseURL string, tokens TokenStore, notify Notifier, log *zap.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		tokens:  tokens,
		notify:  notify,
		log:     log,
	}
}

// BaseURL reports the pinned base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// OnAuthLost registers a hook invoked after a 401 has cleared the stored
// token, so the application can drop its current user and navigate home.
func (c *Client) OnAuthLost(fn func()) { c.onAuthLost = fn }

// Discover probes the health endpoint of each candidate base URL in order
// and returns the first one that answers 2xx. It fails with a
// ConnectivityError naming the last candidate when none respond.
func Discover(ctx context.Context, httpClient *http.Client, candidates []string, log *zap.Logger) (string, error) {
	var lastErr error
	var lastURL string
	for _, base := range candidates {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+healthEndpoint, nil)
		if err != nil {
			lastErr, lastURL = err, base
			continue
		}
		req.Header.Set("Accept", "application/json")
		resp, err := httpClient.Do(req)
		if err != nil {
			log.Debug("health probe failed", zap.String("base_url", base), zap.Error(err))
			lastErr, lastURL = err, base
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Info("api base url selected", zap.String("base_url", base))
			return base, nil
		}
		lastErr = fmt.Errorf("health check returned status %d", resp.StatusCode)
		lastURL = base
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate base URLs configured")
	}
	return "", &ConnectivityError{URL: lastURL, Err: lastErr}
}

// Call issues a single request against endpoint (path relative to the base
// URL, query string included) and decodes the JSON response into out when
// out is non-nil. Non-GET bodies are serialized as JSON. The bearer token
// is attached iff one is held.
//
// Failure modes, in order of detection: ConnectivityError (transport),
// ErrAuth (401, after clearing the session), RequestError (non-2xx),
// ParseError (malformed 2xx body). Side effects happen before the error
// propagates; the caller decides what, if anything, to show.
func (c *Client) Call(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil && method != http.MethodGet {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.connectivityLost(endpoint, err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, endpoint, out)
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) connectivityLost(endpoint string, err error) error {
	c.log.Error("network failure", zap.String("endpoint", endpoint), zap.Error(err))
	c.notify.ConnectivityLost("Cannot connect to server. Please check if the backend is running.")
	return &ConnectivityError{URL: c.baseURL + endpoint, Err: err}
}

func (c *Client) decodeResponse(resp *http.Response, endpoint string, out any) error {
	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn("unauthorized response, clearing session", zap.String("endpoint", endpoint))
		if err := c.tokens.Clear(); err != nil {
			c.log.Error("failed to clear stored token", zap.Error(err))
		}
		if c.onAuthLost != nil {
			c.onAuthLost()
		}
		return ErrAuth
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.connectivityLost(endpoint, err)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Message string `json:"message"`
		}
		message := fmt.Sprintf("Request failed with status %d", resp.StatusCode)
		if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
			message = payload.Message
		}
		c.log.Warn("request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return &RequestError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Error("malformed response body", zap.String("endpoint", endpoint), zap.Error(err))
		return &ParseError{Err: err}
	}
	return nil
}
