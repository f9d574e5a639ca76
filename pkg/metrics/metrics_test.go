package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	PlaceholderServed.WithLabelValues("news").Inc()
	UpstreamRequests.WithLabelValues("tmdb", "ok").Inc()

	n, err := testutil.GatherAndCount(reg,
		"pulseboard_placeholder_served_total",
		"pulseboard_upstream_requests_total",
	)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// a second registration on the same registry is a programming error
	require.Panics(t, func() { RegisterCollectors(reg) })
}
