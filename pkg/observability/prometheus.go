package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements [HistoryHooks] and [CookHooks] on top of
// Prometheus collectors. All metrics are namespaced with "cookgraph_".
//
// Metrics exposed:
//   - commands_total (counter): command transitions, labels: event, kind
//   - commands_evicted_total (counter): commands dropped from bounded history
//   - commands_rejected_total (counter): Add calls refused while locked
//   - node_cook_seconds (histogram): single node cook duration, labels: kind, status
//   - chain_seconds (histogram): full chain duration, labels: status
//   - chains_skipped_total (counter): cook requests skipped, labels: reason (busy/cycle)
//   - chain_nodes (gauge): size of the most recent evaluation order
type PrometheusHooks struct {
	commands      *prometheus.CounterVec
	evicted       prometheus.Counter
	rejected      prometheus.Counter
	nodeLatency   *prometheus.HistogramVec
	chainLatency  *prometheus.HistogramVec
	chainsSkipped *prometheus.CounterVec
	chainNodes    prometheus.Gauge
}

// NewPrometheusHooks creates and registers all collectors with registry.
// A nil registry uses prometheus.DefaultRegisterer.
func NewPrometheusHooks(registry prometheus.Registerer) *PrometheusHooks {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	buckets := []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

	return &PrometheusHooks{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookgraph",
			Name:      "commands_total",
			Help:      "Command lifecycle transitions",
		}, []string{"event", "kind"}),
		evicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cookgraph",
			Name:      "commands_evicted_total",
			Help:      "Commands dropped from the bounded history",
		}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cookgraph",
			Name:      "commands_rejected_total",
			Help:      "Commands refused because the lock was engaged",
		}),
		nodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cookgraph",
			Name:      "node_cook_seconds",
			Help:      "Duration of a single node cook",
			Buckets:   buckets,
		}, []string{"kind", "status"}),
		chainLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cookgraph",
			Name:      "chain_seconds",
			Help:      "Duration of a full cook chain",
			Buckets:   buckets,
		}, []string{"status"}),
		chainsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookgraph",
			Name:      "chains_skipped_total",
			Help:      "Cook requests that did not start a chain",
		}, []string{"reason"}),
		chainNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cookgraph",
			Name:      "chain_nodes",
			Help:      "Number of nodes in the most recent evaluation order",
		}),
	}
}

func (p *PrometheusHooks) OnDone(kind string) { p.commands.WithLabelValues("done", kind).Inc() }
func (p *PrometheusHooks) OnUndo(kind string) { p.commands.WithLabelValues("undo", kind).Inc() }
func (p *PrometheusHooks) OnRedo(kind string) { p.commands.WithLabelValues("redo", kind).Inc() }
func (p *PrometheusHooks) OnEvict(count int)  { p.evicted.Add(float64(count)) }
func (p *PrometheusHooks) OnRejected()        { p.rejected.Inc() }

func (p *PrometheusHooks) OnChainStart(_ context.Context, _ string, nodes int) {
	p.chainNodes.Set(float64(nodes))
}

func (p *PrometheusHooks) OnNodeCooked(_ context.Context, _, kind string, d time.Duration, err error) {
	p.nodeLatency.WithLabelValues(kind, status(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnChainComplete(_ context.Context, _ string, _ bool, d time.Duration, err error) {
	p.chainLatency.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnBusy(context.Context, string) {
	p.chainsSkipped.WithLabelValues("busy").Inc()
}

func (p *PrometheusHooks) OnCycle(context.Context, string) {
	p.chainsSkipped.WithLabelValues("cycle").Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	_ HistoryHooks = (*PrometheusHooks)(nil)
	_ CookHooks    = (*PrometheusHooks)(nil)
)
