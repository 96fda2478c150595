// Package metrics expone los contadores Prometheus del motor en /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "meanrev_analyses_total", Help: "Pair and ticker analyses run"},
		[]string{"mode", "baseline", "outcome"},
	)
	AnalysisSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meanrev_analysis_seconds",
			Help:    "Wall time of one analysis, data loading included",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"mode"},
	)
	PairsScreened = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "meanrev_pairs_screened_total", Help: "Pairs evaluated by the screener"},
		[]string{"verdict"},
	)
	QuoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "meanrev_quote_requests_total", Help: "HTTP requests to the quotes source"},
		[]string{"status"},
	)
	PriceCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "meanrev_price_cache_total", Help: "Price history lookups against the local cache"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(AnalysesTotal, AnalysisSeconds, PairsScreened, QuoteRequests, PriceCache)
}

// Serve arranca el endpoint /metrics en segundo plano.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
