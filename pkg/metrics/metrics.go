package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pulseboard", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pulseboard", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	// UpstreamRequests counts finished upstream calls.
	// outcome: ok | rate_limited | http_error | unreachable | decode_error
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pulseboard", Name: "upstream_requests_total", Help: "Upstream content API calls by provider and outcome."},
		[]string{"provider", "outcome"},
	)
	UpstreamRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pulseboard", Name: "upstream_retries_total", Help: "Transport-level retries issued against upstream providers."},
		[]string{"provider"},
	)
	UpstreamCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pulseboard", Name: "upstream_cache_total", Help: "Upstream response cache lookups by result (hit, miss, error)."},
		[]string{"result"},
	)
	PlaceholderServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pulseboard", Name: "placeholder_served_total", Help: "Responses served from placeholder content because no credential is configured."},
		[]string{"kind"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(UpstreamRequests)
	reg.MustRegister(UpstreamRetries)
	reg.MustRegister(UpstreamCache)
	reg.MustRegister(PlaceholderServed)
}
