package production

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comalice/psl"
	"github.com/comalice/psl/internal/core"
)

const metricsNamespace = "psl"

// Metrics records node activity as Prometheus metrics. It implements
// psl.Observer and core.OutputPublisher so one value can be handed to both
// core.WithObserver and a publisher fan-out.
type Metrics struct {
	InvocationsTotal *prometheus.CounterVec
	ResultsTotal     *prometheus.CounterVec
	FallbacksTotal   prometheus.Counter
	DroppedTotal     *prometheus.CounterVec
	OutputsTotal     *prometheus.CounterVec
}

// NewMetrics registers the psl metrics with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler, or a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InvocationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invocations_total",
			Help:      "Completed operation invocations by operation",
		}, []string{"op"}),
		ResultsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "results_total",
			Help:      "Values emitted by invocations by operation",
		}, []string{"op"}),
		FallbacksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fallbacks_total",
			Help:      "Nodes created with a selector that did not resolve",
		}),
		DroppedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_total",
			Help:      "Events rejected without output by operation and reason",
		}, []string{"op", "reason"}),
		OutputsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "outputs_total",
			Help:      "Values published by node",
		}, []string{"node"}),
	}
}

// Invoked implements psl.Observer.
func (m *Metrics) Invoked(op string, results int) {
	m.InvocationsTotal.WithLabelValues(op).Inc()
	m.ResultsTotal.WithLabelValues(op).Add(float64(results))
}

// Fallback implements psl.Observer. The selector is user input, so it is
// left to the node's log record rather than used as a label.
func (m *Metrics) Fallback(string) {
	m.FallbacksTotal.Inc()
}

// Dropped implements psl.Observer.
func (m *Metrics) Dropped(op string, reason error) {
	m.DroppedTotal.WithLabelValues(op, DropReason(reason)).Inc()
}

// Publish implements core.OutputPublisher.
func (m *Metrics) Publish(_ context.Context, out core.Output) error {
	m.OutputsTotal.WithLabelValues(out.NodeID).Inc()
	return nil
}

// Close implements core.OutputPublisher.
func (m *Metrics) Close() error { return nil }

// DropReason maps a drop error to a low-cardinality label value.
func DropReason(err error) string {
	switch {
	case errors.Is(err, psl.ErrArityMismatch):
		return "arity_mismatch"
	case errors.Is(err, psl.ErrCountOutOfRange):
		return "count_out_of_range"
	case errors.Is(err, psl.ErrExprCompile):
		return "expr_compile"
	case errors.Is(err, psl.ErrExprEval):
		return "expr_eval"
	case errors.Is(err, psl.ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, psl.ErrBusy):
		return "busy"
	default:
		return "other"
	}
}
