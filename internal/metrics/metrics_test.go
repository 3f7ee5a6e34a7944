package metrics

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type ping struct{}

func TestInterceptor(t *testing.T) {
	m := New(prometheus.NewRegistry())

	ok := m.Interceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	})
	fail := m.Interceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	})

	_, _ = ok(context.Background(), connect.NewRequest(&ping{}))
	_, _ = ok(context.Background(), connect.NewRequest(&ping{}))
	_, _ = fail(context.Background(), connect.NewRequest(&ping{}))

	// Requests built outside a handler carry an empty procedure.
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("", "invalid_argument")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestObserveReport(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveReport(SourceComputed, 3)
	m.ObserveReport(SourceCache, 3)
	m.ObserveReport(SourceCache, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BalanceComputations.WithLabelValues(SourceComputed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BalanceComputations.WithLabelValues(SourceCache)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SettlementSuggestions))

	var nilMetrics *Metrics
	nilMetrics.ObserveReport(SourceComputed, 1)
}
