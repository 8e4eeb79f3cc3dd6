package emporia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Emporia HTTP API. Every call returns either a decoded
// payload or a *Problem; no raw transport errors cross this boundary.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "peddler/0.1"
	requestTimeout   = 10 * time.Second

	// clientType identifies us to the identity endpoints so the server keeps
	// the refresh credential in an HTTP-only cookie instead of the body.
	clientType = "Terminal"
)

// NewClient builds a Client for the given API origin. The cookie jar holds
// the refresh credential; the client never reads it directly.
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// do performs a JSON request against the API. A non-empty token is attached
// as a bearer header. dest may be nil for calls whose body is irrelevant.
// Every failure is returned as a *Problem.
func (c *Client) do(ctx context.Context, method string, rel *url.URL, token string, body any, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return transportProblem(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return transportProblem(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if strings.HasPrefix(rel.Path, identityBase) {
		req.Header.Set("X-Client-Type", clientType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportProblem(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseProblem(resp)
	}
	if dest == nil {
		return nil
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		// Void responses (register, logout) succeed with no payload.
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return transportProblem(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, rel *url.URL, token string, dest any) error {
	return c.do(ctx, http.MethodGet, rel, token, nil, dest)
}

func (c *Client) post(ctx context.Context, rel *url.URL, token string, body, dest any) error {
	return c.do(ctx, http.MethodPost, rel, token, body, dest)
}

// BaseURL returns the resolved API origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetTimeout overrides the per-request timeout. Call before issuing requests.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
