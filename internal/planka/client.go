// Package planka is the gateway to the Planka REST API.
//
// Everything above this package talks to Planka through the single
// [Requester] capability: send a method + path with an optional JSON body,
// get the raw JSON response back or an error. The concrete [Client] owns
// authentication, request pacing and error shaping so that the managers in
// internal/tasklists and internal/comments stay pure request/response logic.
//
// Design decisions:
//   - Static bearer token when configured, otherwise password login against
//     /api/access-tokens with the token cached for the process lifetime
//   - Concurrent logins collapse into one call (singleflight)
//   - A 401 clears the cached token and retries once (password mode only)
//   - Response bodies are read through a bounded reader
package planka

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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize bounds response body reads. Planka JSON payloads are
	// orders of magnitude smaller.
	MaxResponseSize int64 = 64 << 20

	requestIDHeader = "X-Request-Id"
)

// Requester is the only capability the managers need from the gateway.
// It returns the decoded-but-untyped JSON body, or an error describing why
// the call could not be completed. A nil RawMessage means an empty body.
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the Planka root, e.g. "https://planka.example.com".
	BaseURL string

	// Token is a pre-issued access token. When set, Email/Password are ignored.
	Token string

	// Email and Password are the agent account credentials used for login.
	Email    string
	Password string

	// Timeout bounds each HTTP round trip (default DefaultTimeout).
	Timeout time.Duration

	// RateLimit caps outbound requests per second. Zero disables pacing.
	RateLimit float64

	// UserAgent is sent on every request.
	UserAgent string
}

// Client is the HTTP implementation of Requester.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	cfg       Config
	log       logrus.FieldLogger
	limiter   *rate.Limiter
	logins    singleflight.Group
	mu        sync.Mutex
	token     string
	userAgent string
}

// NewClient validates cfg and returns a ready Client. No network call is
// made until the first Request.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("planka: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("planka: parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("planka: base URL must be http or https, got %q", cfg.BaseURL)
	}
	if cfg.Token == "" && (cfg.Email == "" || cfg.Password == "") {
		return nil, errors.New("planka: either a token or email and password are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "planka-mcp"
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		cfg:       cfg,
		log:       log,
		token:     cfg.Token,
		userAgent: userAgent,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c, nil
}

// Request sends one API call. path is relative to the base URL and must
// start with "/api/".
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, method, path, body, token)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && c.cfg.Token == "" {
		c.log.WithField("path", path).Info("access token rejected, logging in again")
		c.resetToken(token)
		if token, err = c.accessToken(ctx); err != nil {
			return nil, err
		}
		raw, err = c.do(ctx, method, path, body, token)
	}
	return raw, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Warn("planka request failed")
		return nil, &APIError{Method: method, Path: path, Message: transportMessage(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	entry = entry.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
		}
		entry.WithField("error", apiErr.Message).Warn("planka request rejected")
		return nil, apiErr
	}
	entry.Debug("planka request")

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s %s: response is not valid JSON", method, path)
	}
	return json.RawMessage(data), nil
}

// accessToken returns the cached token, logging in first if needed.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := c.logins.Do("login", func() (any, error) {
		return c.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, AccessTokensPath, map[string]string{
		"emailOrUsername": c.cfg.Email,
		"password":        c.cfg.Password,
	}, "")
	if err != nil {
		return "", fmt.Errorf("logging in to planka: %w", err)
	}

	var resp struct {
		Item string `json:"item"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decoding access token: %w", err)
	}
	if resp.Item == "" {
		return "", errors.New("logging in to planka: empty access token")
	}

	c.mu.Lock()
	c.token = resp.Item
	c.mu.Unlock()
	c.log.WithField("email", c.cfg.Email).Info("logged in to planka")
	return resp.Item, nil
}

// resetToken drops the cached token unless another caller already
// replaced it.
func (c *Client) resetToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
	}
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	return err.Error()
}
