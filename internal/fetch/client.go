// Package fetch acquires raw point-of-interest records from the external
// sources: the OSM Overpass API, the Google Places API, and the Nominatim
// reverse geocoder.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the shared HTTP client.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RateLimiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns the per-host limiters for the public APIs the
// pipeline talks to. Overpass and Nominatim are shared community
// infrastructure with strict usage policies.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"overpass-api.de":             rate.NewLimiter(1, 1),
		"nominatim.openstreetmap.org": rate.NewLimiter(1, 1),
		"www.reddit.com":              rate.NewLimiter(1, 1),
		"maps.googleapis.com":         rate.NewLimiter(10, 10),
	}
}

// Client wraps net/http with a User-Agent, bounded retries, and per-host
// rate limiting.
type Client struct {
	hc       *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "poi-cli/1.0"
	}
	limiters := make(map[string]*rate.Limiter, len(opts.RateLimiters))
	for host, limiter := range opts.RateLimiters {
		limiters[host] = limiter
	}
	return &Client{
		hc:       &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		limiters: limiters,
	}
}

// wait blocks on the host's rate limiter, if one is configured.
func (c *Client) wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}
	if limiter, ok := c.limiters[u.Hostname()]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "fetch: rate limit wait")
		}
	}
	return nil
}

// do executes the request with retries on 429 and 5xx responses, using
// exponential backoff with jitter between attempts.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			backoff += time.Duration(rand.Int64N(int64(500 * time.Millisecond)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "fetch: cancelled during backoff")
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)
		req.Header.Set("User-Agent", c.opts.UserAgent)

		if err := c.wait(ctx, req.URL.String()); err != nil {
			return nil, err
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = eris.Wrapf(err, "fetch: %s %s", req.Method, req.URL.Host)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = eris.Wrap(err, "fetch: read body")
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = eris.Errorf("fetch: %s returned %d", req.URL.Host, resp.StatusCode)
			zap.L().Warn("retryable response",
				zap.String("host", req.URL.Host),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		default:
			return nil, eris.Errorf("fetch: %s returned %d", req.URL.Host, resp.StatusCode)
		}
	}

	return nil, lastErr
}

// GetJSON fetches rawURL with query params and decodes the JSON response
// into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	body, err := c.do(ctx, func() (*http.Request, error) {
		target := rawURL
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
		req, err := http.NewRequest(http.MethodGet, target, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: build request %s", rawURL)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	return eris.Wrap(json.Unmarshal(body, out), "fetch: decode json")
}

// PostFormJSON posts form-encoded data to rawURL and decodes the JSON
// response into out.
func (c *Client) PostFormJSON(ctx context.Context, rawURL string, form url.Values, out any) error {
	body, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, rawURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: build request %s", rawURL)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return err
	}
	return eris.Wrap(json.Unmarshal(body, out), "fetch: decode json")
}
