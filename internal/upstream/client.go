// Package upstream wraps the platform REST API the portal fronts. The API is
// a black box: responses pass through as raw JSON and failures are reported
// in-band on the Result rather than as Go errors, so handlers can relay the
// upstream verdict to the browser unchanged.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pickspot/vendor-portal/pkg/config"
	"github.com/pickspot/vendor-portal/pkg/logger"
	"github.com/pickspot/vendor-portal/pkg/metrics"
)

// Credentials supplies the bearer token for authenticated calls and a refresh
// hook invoked once when the upstream answers 401.
type Credentials interface {
	Token() string
	Refresh(ctx context.Context) (string, error)
}

// Result is the outcome of one upstream call. Status 0 means the request
// never reached the upstream (network failure, timeout, bad request build).
type Result struct {
	Status  int
	OK      bool
	Data    json.RawMessage
	Message string
	// Cookies holds the raw Set-Cookie headers from the upstream response.
	Cookies []string
}

// IsNotFound reports whether the upstream answered 404.
func (r Result) IsNotFound() bool {
	return r.Status == http.StatusNotFound
}

// EmptyListOnNotFound converts a 404 into a successful empty-list result.
// Collection endpoints answer 404 instead of an empty array when a vendor has
// no records yet.
func (r Result) EmptyListOnNotFound() Result {
	if !r.IsNotFound() {
		return r
	}
	return Result{
		Status: http.StatusOK,
		OK:     true,
		Data:   json.RawMessage("[]"),
	}
}

// CallOption adjusts a single upstream call.
type CallOption func(*callOptions)

type callOptions struct {
	cookies []string
}

// WithCookie forwards a cookie pair on the upstream request.
func WithCookie(name, value string) CallOption {
	return func(o *callOptions) {
		if name == "" || value == "" {
			return
		}
		o.cookies = append(o.cookies, name+"="+value)
	}
}

// Client is the HTTP client for the upstream platform API.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
	metrics *metrics.SessionMetrics
}

// NewClient builds a client with the configured base URL and timeout.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger, m *metrics.SessionMetrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
		metrics: m,
	}
}

// Call performs a JSON request against the upstream. When creds is non-nil
// the access token rides in the Authorization header, and a 401 triggers one
// refresh-and-retry before the 401 is surfaced.
func (c *Client) Call(ctx context.Context, method, path string, body any, creds Credentials, opts ...CallOption) Result {
	options := callOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return networkFailure(fmt.Errorf("encoding request body: %w", err))
		}
		payload = encoded
	}

	tokenValue := ""
	if creds != nil {
		tokenValue = creds.Token()
	}

	result := c.do(ctx, method, path, payload, tokenValue, options)
	if result.Status == http.StatusUnauthorized && creds != nil {
		refreshed, err := creds.Refresh(ctx)
		if err != nil || refreshed == "" {
			return result
		}
		result = c.do(ctx, method, path, payload, refreshed, options)
	}
	return result
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, tokenValue string, options callOptions) Result {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return networkFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tokenValue != "" {
		req.Header.Set("Authorization", "Bearer "+tokenValue)
	}
	for _, cookie := range options.cookies {
		req.Header.Add("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "upstream.unreachable")
		}
		c.metrics.IncUpstreamCall("network_error")
		return networkFailure(err)
	}
	defer resp.Body.Close()

	c.metrics.IncUpstreamCall(statusClass(resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkFailure(fmt.Errorf("reading upstream response: %w", err))
	}

	result := Result{
		Status:  resp.StatusCode,
		OK:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Data:    json.RawMessage(data),
		Cookies: resp.Header.Values("Set-Cookie"),
	}
	if !result.OK {
		result.Message = extractMessage(data, resp.StatusCode)
	}
	return result
}

func networkFailure(err error) Result {
	msg := "Network error occurred. Please check your connection and try again."
	if err != nil {
		msg = err.Error()
	}
	return Result{Status: 0, OK: false, Message: msg}
}

// extractMessage pulls a human-readable failure message out of an upstream
// error body, trying the field names the upstream is known to use.
func extractMessage(body []byte, status int) string {
	var fields struct {
		Err     string `json:"err"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &fields); err == nil {
		switch {
		case fields.Err != "":
			return fields.Err
		case fields.Message != "":
			return fields.Message
		case fields.Error != "":
			return fields.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
