package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve("127.0.0.1:0")
	defer srv.Close()

	AnalysesTotal.WithLabelValues("spread", "rolling", "ok").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "meanrev_analyses_total" {
			found = true
			break
		}
	}
	assert.True(t, found, "meanrev_analyses_total metric not found")
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(QuoteRequests.WithLabelValues("200"))
	QuoteRequests.WithLabelValues("200").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(QuoteRequests.WithLabelValues("200")))

	before = testutil.ToFloat64(PairsScreened.WithLabelValues("cointegrated"))
	PairsScreened.WithLabelValues("cointegrated").Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(PairsScreened.WithLabelValues("cointegrated")))
}
