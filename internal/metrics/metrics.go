// Package metrics exposes Prometheus collectors for the RPC surface and the
// balance engine.
package metrics

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

// Sources recorded by BalanceComputations.
const (
	SourceComputed = "computed"
	SourceCache    = "cache"
)

// Metrics holds the collectors. Create one per registry.
type Metrics struct {
	RequestsTotal         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	BalanceComputations   *prometheus.CounterVec
	SettlementSuggestions prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "owwn",
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "owwn",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		BalanceComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "owwn",
			Name:      "balance_computations_total",
			Help:      "Balance reports served, by source.",
		}, []string{"source"}),
		SettlementSuggestions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "owwn",
			Name:      "settlement_suggestions",
			Help:      "Number of transfers suggested per computed report.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.BalanceComputations, m.SettlementSuggestions)
	return m
}

// ObserveReport records one served balance report.
func (m *Metrics) ObserveReport(source string, suggestions int) {
	if m == nil {
		return
	}
	m.BalanceComputations.WithLabelValues(source).Inc()
	if source == SourceComputed {
		m.SettlementSuggestions.Observe(float64(suggestions))
	}
}

// Interceptor counts and times every unary RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.RequestsTotal.WithLabelValues(procedure, code).Inc()
			m.RequestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
