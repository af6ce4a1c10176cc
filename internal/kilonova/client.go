package kilonova

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/kn/internal/debuglog"
)

const (
	DefaultBaseURL   = "https://kilonova.ro"
	DefaultUserAgent = "kn/1.0 (https://github.com/pders01/kn)"
	defaultTimeout   = 30 * time.Second
	pingTimeout      = 10 * time.Second

	statusSuccess = "success"
	maxErrorBody  = 64 << 10
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrStatementNotFound = errors.New("statement not found")
	ErrLoginFailed       = errors.New("wrong credentials")
)

// APIError is a non-success envelope returned by the API.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %q", e.Status)
	}
	return fmt.Sprintf("api status %q: %s", e.Status, e.Message)
}

// Client talks to a kilonova instance.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProblemURL is the web page of a problem.
func (c *Client) ProblemURL(id uint64) string {
	return fmt.Sprintf("%s/problems/%d", c.baseURL, id)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// do sends req and maps error statuses. The caller closes the body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		debuglog.Debugf("%s %s failed: %v", req.Method, req.URL.Path, err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	debuglog.Debugf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", req.URL.Path, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", req.URL.Path, ErrNotFound)
	case resp.StatusCode >= 400:
		defer resp.Body.Close()
		if apiErr := readAPIError(resp.Body); apiErr != nil {
			return nil, fmt.Errorf("HTTP error: %d: %w", resp.StatusCode, apiErr)
		}
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}
	return resp, nil
}

// readAPIError decodes an error envelope from a failed response, if it has one.
func readAPIError(r io.Reader) *APIError {
	var env envelope
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&env); err != nil || env.Status == "" {
		return nil
	}
	var msg string
	_ = json.Unmarshal(env.Data, &msg)
	return &APIError{Status: env.Status, Message: msg}
}

// envelope is the wrapper around every API response.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// doAPI sends req and decodes the data field of a success envelope into out.
func (c *Client) doAPI(req *http.Request, out any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding %s: %w", req.URL.Path, err)
	}
	if env.Status != statusSuccess {
		var msg string
		_ = json.Unmarshal(env.Data, &msg)
		return &APIError{Status: env.Status, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s data: %w", req.URL.Path, err)
	}
	return nil
}

func authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", token)
}
