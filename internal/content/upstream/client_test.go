package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	OK bool `json:"ok"`
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClient_RetriesTransportFailuresThenSucceeds(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls <= 2 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})
	before := testutil.ToFloat64(metrics.UpstreamRetries.WithLabelValues("test-retry"))

	c := NewClient(doer, WithSleeper(sleeper.Sleep))
	var out payload
	err := c.GetJSON(context.Background(), Request{Provider: "test-retry", Endpoint: "http://upstream.invalid/x"}, &out)

	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{500 * time.Millisecond, 1000 * time.Millisecond}, sleeper.delays)
	require.Equal(t, before+2, testutil.ToFloat64(metrics.UpstreamRetries.WithLabelValues("test-retry")))
}

func TestClient_ExhaustedRetriesSurfaceUnreachable(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("i/o timeout")
	})

	c := NewClient(doer, WithSleeper(sleeper.Sleep))
	var out payload
	err := c.GetJSON(context.Background(), Request{Provider: "test", Endpoint: "http://upstream.invalid/x"}, &out)

	require.ErrorIs(t, err, ErrUnreachable)
	require.Equal(t, 3, calls)
	require.Len(t, sleeper.delays, 2)
}

func TestClient_RateLimitIsNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusTooManyRequests, `{"message":"slow down"}`), nil
	})

	c := NewClient(doer, WithSleeper(sleeper.Sleep))
	var out payload
	err := c.GetJSON(context.Background(), Request{Provider: "test", Endpoint: "http://upstream.invalid/x"}, &out)

	require.ErrorIs(t, err, ErrRateLimited)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	require.Equal(t, 1, calls)
	require.Empty(t, sleeper.delays)
}

func TestClient_OtherStatusCarriesCode(t *testing.T) {
	calls := 0
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusServiceUnavailable, `oops`), nil
	})

	c := NewClient(doer, WithSleeper((&recordingSleeper{}).Sleep))
	err := c.GetJSON(context.Background(), Request{Provider: "test", Endpoint: "http://upstream.invalid/x"}, &payload{})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	require.False(t, errors.Is(err, ErrRateLimited))
	require.Equal(t, 1, calls)
}

func TestClient_MalformedBodyIsDecodeError(t *testing.T) {
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{not json`), nil
	})
	c := NewClient(doer)
	err := c.GetJSON(context.Background(), Request{Provider: "test", Endpoint: "http://upstream.invalid/x"}, &payload{})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnreachable))
	require.Contains(t, err.Error(), "decode test response")
}

func TestClient_SendsFixedHeadersAndFreshnessHint(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	params := url.Values{"q": []string{"go lang"}}
	err := c.GetJSON(context.Background(), Request{Provider: "test", Endpoint: srv.URL + "/search", Params: params, MaxAge: 300 * time.Second}, &payload{})
	require.NoError(t, err)

	require.NotNil(t, got)
	require.Equal(t, "application/json", got.Header.Get("Accept"))
	require.Equal(t, UserAgent, got.Header.Get("User-Agent"))
	require.Equal(t, "max-age=300", got.Header.Get("Cache-Control"))
	require.Equal(t, "/search", got.URL.Path)
	require.Equal(t, "go lang", got.URL.Query().Get("q"))
}

func TestClient_CacheServesWithinTTL(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	calls := 0
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})
	c := NewClient(doer, WithCache(NewRedisCache(client, "test:")))
	r := Request{Provider: "test", Endpoint: "http://upstream.invalid/x", Params: url.Values{"apiKey": []string{"k1"}}, MaxAge: 5 * time.Second}

	var first, second payload
	require.NoError(t, c.GetJSON(context.Background(), r, &first))
	require.NoError(t, c.GetJSON(context.Background(), r, &second))
	require.True(t, second.OK)
	require.Equal(t, 1, calls)

	// past TTL the network is used again
	m.FastForward(6 * time.Second)
	var third payload
	require.NoError(t, c.GetJSON(context.Background(), r, &third))
	require.Equal(t, 2, calls)
}

func TestClient_ErrorResponsesAreNotCached(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	calls := 0
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonResponse(http.StatusInternalServerError, `{}`), nil
		}
		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})
	c := NewClient(doer, WithCache(NewRedisCache(client, "")))
	r := Request{Provider: "test", Endpoint: "http://upstream.invalid/y", MaxAge: time.Minute}

	require.Error(t, c.GetJSON(context.Background(), r, &payload{}))
	var out payload
	require.NoError(t, c.GetJSON(context.Background(), r, &out))
	require.True(t, out.OK)
	require.Equal(t, 2, calls)
}

func TestRequestURL(t *testing.T) {
	r := Request{Endpoint: "https://api.example.com/v1/items", Params: url.Values{"page": []string{"2"}, "q": []string{"a b"}}}
	require.Equal(t, "https://api.example.com/v1/items?page=2&q=a+b", r.URL())
	require.Equal(t, "https://api.example.com/v1/items", Request{Endpoint: "https://api.example.com/v1/items"}.URL())
}
