package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 2048
	requestIDHeader = "X-Request-ID"
)

// Config describes how the client reaches the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport replaces http.DefaultTransport; used by tests.
	Transport http.RoundTripper
}

// loggingRoundTripper tags every outgoing request with a request id and traces
// the outcome.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, requestID)
	}
	resp, err := l.inner.RoundTrip(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	events.HTTP.Request(req.Method, req.URL.String(), status, time.Since(start), requestID, err)
	return resp, err
}

// Client talks to the Fleet-Flow REST API. The session credential lives in
// the cookie jar and is never read by callers.
type Client struct {
	HTTPClient *http.Client
	BaseURL    *url.URL

	mu sync.Mutex
}

// New builds a client with a cookie jar and the logging transport.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: &loggingRoundTripper{inner: transport},
			Jar:       jar,
		},
		BaseURL: base,
	}, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// ClearSession drops every stored cookie, forgetting the backend session.
func (c *Client) ClearSession() {
	jar, err := newJar()
	if err != nil {
		return
	}
	c.mu.Lock()
	c.HTTPClient.Jar = jar
	c.mu.Unlock()
}

// NewRequest joins relPath onto the base URL. Query parameters must be passed
// through query; a relPath containing "?" is rejected.
func (c *Client) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("api: relPath must not contain a query string: %s", relPath)
	}
	target := *c.BaseURL
	if relPath != "" {
		target.Path = path.Join(target.Path, relPath)
		if strings.HasSuffix(relPath, "/") && !strings.HasSuffix(target.Path, "/") {
			target.Path += "/"
		}
	}
	target.RawQuery = ""
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do executes req and converts non-2xx responses into *Error. The caller owns
// the returned body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	httpClient := c.HTTPClient
	c.mu.Unlock()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: req.Method, Path: req.URL.Path, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message, fields := parseDetail(body)
	return nil, &Error{
		Kind:      kindForStatus(resp.StatusCode),
		Status:    resp.StatusCode,
		Method:    req.Method,
		Path:      req.URL.Path,
		Message:   message,
		Fields:    fields,
		RequestID: req.Header.Get(requestIDHeader),
	}
}

// doJSON sends in (if non-nil) as JSON and decodes the response into out (if
// non-nil).
func (c *Client) doJSON(ctx context.Context, method, relPath string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, relPath, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := c.NewRequest(ctx, method, relPath, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Method: method, Path: req.URL.Path, Message: "malformed response", Err: err}
	}
	return nil
}

// resourcePath builds "/<resource>/<parts...>/" with the trailing slash the
// backend routes expect.
func resourcePath(resource string, parts ...string) string {
	segments := append([]string{"/", strings.Trim(resource, "/")}, parts...)
	return path.Join(segments...) + "/"
}
