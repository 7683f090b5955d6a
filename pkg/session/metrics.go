package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the session's internal Prometheus counters (§6:
// "the session object exposes ... metrics counters"). The session owns a
// private registry rather than registering against prometheus.DefaultRegisterer
// so multiple sessions in one process never collide; serving the registry
// over HTTP is left to the out-of-scope external collaborator (§1).
type Metrics struct {
	ingestTotal    *prometheus.CounterVec
	queryTotal     *prometheus.CounterVec
	nodeGauge      prometheus.Gauge
	edgeGauge      prometheus.Gauge
	registry       *prometheus.Registry
}

func newMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kremis_ingest_total",
			Help: "Total number of ingestion calls by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	queryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kremis_query_total",
			Help: "Total number of query calls by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	nodeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kremis_node_count",
		Help: "Current node count of the session's graph.",
	})
	edgeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kremis_edge_count",
		Help: "Current edge count of the session's graph.",
	})

	registry.MustRegister(ingestTotal, queryTotal, nodeGauge, edgeGauge)

	return &Metrics{
		ingestTotal: ingestTotal,
		queryTotal:  queryTotal,
		nodeGauge:   nodeGauge,
		edgeGauge:   edgeGauge,
		registry:    registry,
	}
}

func (m *Metrics) recordIngest(kind string, err error) {
	m.ingestTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) recordQuery(kind string, err error) {
	m.queryTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) setSizes(nodes, edges int) {
	m.nodeGauge.Set(float64(nodes))
	m.edgeGauge.Set(float64(edges))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Registry returns the session's private Prometheus registry, for a
// collaborator that wants to serve it over its own /metrics endpoint. The
// core never does this itself (§1: no HTTP surface).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
