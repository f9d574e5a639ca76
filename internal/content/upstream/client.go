package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
)

const (
	// UserAgent is sent on every upstream request.
	UserAgent = "Pulseboard/1.0"

	maxBodyBytes  = 8 << 20
	maxErrorBytes = 2 << 10
)

// Doer is the transport used for upstream calls. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Request describes one GET against a provider.
type Request struct {
	// Provider names the upstream for logs, metrics and cache keys.
	Provider string
	Endpoint string
	Params   url.Values
	// MaxAge is the freshness window advertised upstream and used as cache TTL.
	MaxAge time.Duration
}

// URL returns the endpoint with its encoded query string.
func (r Request) URL() string {
	if len(r.Params) == 0 {
		return r.Endpoint
	}
	sep := "?"
	if strings.Contains(r.Endpoint, "?") {
		sep = "&"
	}
	return r.Endpoint + sep + r.Params.Encode()
}

// Client performs upstream GETs with retry, status mapping and optional caching.
type Client struct {
	doer   Doer
	policy RetryPolicy
	sleep  Sleeper
	cache  Cache
}

// Option configures a Client.
type Option func(*Client)

func WithRetryPolicy(p RetryPolicy) Option { return func(c *Client) { c.policy = p } }

func WithSleeper(s Sleeper) Option { return func(c *Client) { c.sleep = s } }

// WithCache enables response caching. A nil cache leaves caching off.
func WithCache(cache Cache) Option { return func(c *Client) { c.cache = cache } }

// NewClient builds a Client. A nil doer falls back to http.DefaultClient.
func NewClient(doer Doer, opts ...Option) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{
		doer:   doer,
		policy: DefaultRetryPolicy(),
		sleep:  SleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches r and decodes the JSON body into out.
//
// Errors: a *StatusError for non-2xx responses (matching ErrRateLimited on 429),
// an error wrapping ErrUnreachable when every transport attempt failed, or a
// decode error for malformed bodies.
func (c *Client) GetJSON(ctx context.Context, r Request, out interface{}) error {
	full := r.URL()

	var key string
	if c.cache != nil && r.MaxAge > 0 {
		key = CacheKey(r.Provider, full)
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.UpstreamCache.WithLabelValues("error").Inc()
			logger.Warnf("upstream cache read failed (provider=%s): %v", r.Provider, err)
		case ok:
			if err := json.Unmarshal(body, out); err == nil {
				metrics.UpstreamCache.WithLabelValues("hit").Inc()
				return nil
			}
			metrics.UpstreamCache.WithLabelValues("error").Inc()
			logger.Warnf("discarding undecodable cache entry (provider=%s)", r.Provider)
		default:
			metrics.UpstreamCache.WithLabelValues("miss").Inc()
		}
	}

	body, err := c.fetch(ctx, r, full)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.UpstreamRequests.WithLabelValues(r.Provider, "decode_error").Inc()
		return fmt.Errorf("decode %s response: %w", r.Provider, err)
	}
	metrics.UpstreamRequests.WithLabelValues(r.Provider, "ok").Inc()

	if key != "" {
		if err := c.cache.Set(ctx, key, body, r.MaxAge); err != nil {
			logger.Warnf("upstream cache write failed (provider=%s): %v", r.Provider, err)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, r Request, full string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.Provider, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if r.MaxAge > 0 {
		req.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(r.MaxAge.Seconds())))
	}

	var resp *http.Response
	err = Retry(ctx, c.policy, c.sleep, func(attempt int) error {
		if attempt > 1 {
			metrics.UpstreamRetries.WithLabelValues(r.Provider).Inc()
		}
		res, doErr := c.doer.Do(req.Clone(ctx))
		if doErr != nil {
			logger.Warnf("attempt %d/%d: %s %s failed: %v", attempt, c.policy.normalized().Attempts, r.Provider, r.Endpoint, doErr)
			return doErr
		}
		resp = res
		return nil
	})
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(r.Provider, "unreachable").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		se := &StatusError{Provider: r.Provider, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		outcome := "http_error"
		if resp.StatusCode == http.StatusTooManyRequests {
			outcome = "rate_limited"
		}
		metrics.UpstreamRequests.WithLabelValues(r.Provider, outcome).Inc()
		logger.Errorf("%s %s returned status %d", r.Provider, r.Endpoint, resp.StatusCode)
		return nil, se
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(r.Provider, "unreachable").Inc()
		return nil, fmt.Errorf("%w: read %s response: %w", ErrUnreachable, r.Provider, err)
	}
	return body, nil
}
