// Package client is a Go SDK for the portal API. It keeps the caller's
// session, attaches the bearer token to every call and tears the session
// down when the server answers 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseBytes = 2 * 1024 * 1024

// ErrSessionExpired is returned when an authenticated call gets a 401. The
// session and token store are already cleared when it is returned.
var ErrSessionExpired = errors.New("session expired")

type RequestError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Field      string
	RetryAfter time.Duration
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Code != "" && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d code=%s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode reports the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// ErrorCode reports the API error code carried by err, or "".
func ErrorCode(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Code
	}
	return ""
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	onExpired  func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		if store != nil {
			c.session = NewSession(store)
		}
	}
}

// WithSessionExpiredHook runs fn after a 401 cleared the session, typically
// to send the user back to the login screen.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// New builds a client for the API rooted at baseURL, e.g.
// "https://portal.example/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, &RequestError{Op: "create api client", Err: errors.New("api url is empty")}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate api url", Err: fmt.Errorf("invalid api url: %s", trimmed)}
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = NewSession(NewMemoryTokenStore())
	}
	if err := c.session.restore(); err != nil {
		return nil, &RequestError{Op: "restore session", Err: err}
	}
	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

// DoJSON sends requestBody as JSON and decodes a 2xx answer into
// responseBody. Either may be nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, requestBody, responseBody any) error {
	if c == nil || c.httpClient == nil {
		return &RequestError{Op: "do json request", Err: errors.New("api client is not initialized")}
	}

	var payload []byte
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return &RequestError{Op: "marshal request body", Err: err}
		}
		payload = raw
	}

	statusCode, responseBytes, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if responseBody == nil || len(responseBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBytes, responseBody); err != nil {
		return &RequestError{Op: "decode http response", StatusCode: statusCode, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if strings.TrimSpace(method) == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+ensureLeadingSlash(path), bodyReader)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.session.AccessToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Op: "execute http request", Err: err}
	}
	defer resp.Body.Close()

	responseBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		return resp.StatusCode, nil, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, responseBytes, nil
	}

	reqErr := decodeAPIError(resp, responseBytes)
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		c.expire()
		reqErr.Err = ErrSessionExpired
	}
	return resp.StatusCode, responseBytes, reqErr
}

func (c *Client) expire() {
	c.session.clear()
	if c.onExpired != nil {
		c.onExpired()
	}
}

func decodeAPIError(resp *http.Response, body []byte) *RequestError {
	reqErr := &RequestError{Op: "unexpected http status", StatusCode: resp.StatusCode}

	var apiErr struct {
		Code          string `json:"code"`
		Message       string `json:"message"`
		Field         string `json:"field"`
		RetryAfterSec int64  `json:"retryAfterSec"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		reqErr.Code = apiErr.Code
		reqErr.Message = apiErr.Message
		reqErr.Field = apiErr.Field
		reqErr.RetryAfter = time.Duration(apiErr.RetryAfterSec) * time.Second
	} else {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		reqErr.Err = errors.New(msg)
	}

	if reqErr.RetryAfter == 0 {
		if sec, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && sec > 0 {
			reqErr.RetryAfter = time.Duration(sec) * time.Second
		}
	}
	return reqErr
}

func ensureLeadingSlash(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/" + trimmed
}
