package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Endpoint names of the CoCon API.
const (
	EndpointConnect      = "Connect"
	EndpointNotification = "Notification"
	EndpointSubscribe    = "Subscribe"
	EndpointUnsubscribe  = "Unsubscribe"
)

// Defaults for the CoCon HTTP surface.
const (
	// DefaultPort is the CoCon server port.
	DefaultPort = 8890

	// BasePath is the URL path prefix of every CoCon endpoint.
	BasePath = "/CoCon"

	// DefaultSessionTimeout bounds connect and command requests.
	DefaultSessionTimeout = 7 * time.Second

	// DefaultNotifyTimeout bounds one Notification long-poll request in
	// total. It must exceed the server-side poll hold time.
	DefaultNotifyTimeout = 35 * time.Second

	// maxErrorBody bounds how much of an error response body is retained.
	maxErrorBody = 64 * 1024
)

// Config configures a Client.
type Config struct {
	// Host is the CoCon server hostname or IP address.
	Host string

	// Port is the CoCon server port (default: 8890).
	Port int

	// BaseURL overrides Host/Port with a full base URL such as
	// "http://10.0.0.5:8890". Used by tests against httptest servers.
	BaseURL string

	// SessionTimeout bounds connect and command requests (default: 7s).
	SessionTimeout time.Duration

	// NotifyTimeout bounds one long-poll request in total (default: 35s).
	NotifyTimeout time.Duration

	// HTTPClient overrides the underlying HTTP client. The default client
	// carries no global timeout; requests are bounded per call.
	HTTPClient *http.Client
}

// Client issues CoCon HTTP requests. It is safe for concurrent use.
type Client struct {
	baseURL        string
	sessionTimeout time.Duration
	notifyTimeout  time.Duration
	httpc          *http.Client
}

// NewClient creates a Client for the given server.
func NewClient(cfg Config) *Client {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	}

	return &Client{
		baseURL:        strings.TrimSuffix(base, "/") + BasePath,
		sessionTimeout: cfg.SessionTimeout,
		notifyTimeout:  cfg.NotifyTimeout,
		httpc:          cfg.HTTPClient,
	}
}

// BaseURL returns the resolved base URL including the CoCon path prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// connectResponse is the body of a successful Connect handshake.
type connectResponse struct {
	Connect bool   `json:"Connect"`
	ID      string `json:"id"`
}

// Connect performs the connect handshake and returns the new session id.
// A non-200 response wraps ErrConnectionFailed; a 200 response without the
// success flag or the id wraps ErrMalformedResponse.
func (c *Client) Connect(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sessionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+EndpointConnect, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return "", fmt.Errorf("%w: '/%s' returned HTTP %d", ErrConnectionFailed, EndpointConnect, resp.StatusCode)
	}

	var body connectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !body.Connect {
		return "", fmt.Errorf("%w: '/%s' returned 200 but connect flag is false", ErrMalformedResponse, EndpointConnect)
	}
	if body.ID == "" {
		return "", fmt.Errorf("%w: '/%s' response missing connection id", ErrMalformedResponse, EndpointConnect)
	}

	return body.ID, nil
}

// Notify performs one Notification long-poll using the session id.
func (c *Client) Notify(ctx context.Context, sessionID string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.notifyTimeout)
	defer cancel()

	u := c.baseURL + "/" + EndpointNotification + "?id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("notify request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return Result{}, fmt.Errorf("notify payload: %w", err)
		}
		return Result{Status: StatusOK, Payload: payload, HTTPStatus: resp.StatusCode}, nil
	case http.StatusBadRequest:
		drain(resp.Body)
		return Result{Status: StatusInvalidSession, HTTPStatus: resp.StatusCode}, nil
	case http.StatusRequestTimeout:
		drain(resp.Body)
		return Result{Status: StatusTimeout, HTTPStatus: resp.StatusCode}, nil
	default:
		drain(resp.Body)
		return Result{Status: StatusUnexpected, HTTPStatus: resp.StatusCode}, nil
	}
}

// Send posts a command to an endpoint with the given query parameters.
// On 200 the body is decoded as JSON when the Content-Type says so,
// otherwise returned as a string. Any other status yields a *CommandError
// carrying the endpoint, status, and body.
func (c *Client) Send(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sessionTimeout)
	defer cancel()

	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("'/%s' request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &CommandError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var decoded any
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("'/%s' response: %w", endpoint, err)
		}
		return decoded, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("'/%s' response: %w", endpoint, err)
	}
	return string(body), nil
}

// CloseIdleConnections releases pooled connections held by the underlying
// HTTP client. Called by the client core on shutdown.
func (c *Client) CloseIdleConnections() {
	c.httpc.CloseIdleConnections()
}

// drain discards the remainder of a response body so the connection can be
// reused by the pool.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
}

// Compile-time interface satisfaction check.
var _ API = (*Client)(nil)
