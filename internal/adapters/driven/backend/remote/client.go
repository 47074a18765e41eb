package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// maxResponseBody bounds how much of a vendor response is read.
const maxResponseBody = 4 << 20

// Client sends rate-limited requests to one vendor API and decodes JSON
// responses. It is safe for concurrent use.
type Client struct {
	name    string
	http    *http.Client
	limiter *RateLimiter
	now     func() time.Time
}

// NewClient creates a client. A nil limiter uses DefaultRateLimit.
func NewClient(name string, httpClient *http.Client, limiter *RateLimiter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit)
	}
	return &Client{
		name:    name,
		http:    httpClient,
		limiter: limiter,
		now:     time.Now,
	}
}

// Limiter returns the client's rate limiter.
func (c *Client) Limiter() *RateLimiter {
	return c.limiter
}

// Do waits for the rate limiter, sends req and decodes the JSON body into
// out (when non-nil). Statuses outside expect (default 200) return a
// *StatusError; a 429 also opens the limiter's back-off window.
func (c *Client) Do(req *http.Request, out any, expect ...int) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("wait for rate limit: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if len(expect) == 0 {
		expect = []int{http.StatusOK}
	}
	if !slices.Contains(expect, resp.StatusCode) {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimitError(c.retryAfter(resp.Header.Get("Retry-After")))
		}
		return &StatusError{
			Backend:    c.name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func (c *Client) retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return at.Sub(c.now())
	}
	return 0
}

// NewJSONRequest builds a request with a JSON encoded body.
func NewJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// NewFormRequest builds a POST request with a URL-encoded form body.
func NewFormRequest(ctx context.Context, endpoint string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// JoinURL appends path elements to a base URL, trimming duplicate slashes.
func JoinURL(base string, elems ...string) string {
	out := strings.TrimRight(base, "/")
	for _, e := range elems {
		out += "/" + strings.Trim(e, "/")
	}
	return out
}

// Percent converts a 0-1 probability into a 0-100 percentage. Values out
// of range are passed through so that score validation rejects them.
func Percent(probability float64) float64 {
	return probability * 100
}
