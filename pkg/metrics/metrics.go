// Package metrics exposes optional prometheus collectors for table
// operations. KFS never runs its own HTTP server; an embedding
// application registers Set on its own prometheus.Registerer (or
// registry) if it wants a /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set holds the counters and the gauge a Table updates as it serves
// operations.
type Set struct {
	OpsTotal          *prometheus.CounterVec
	BytesTotal        *prometheus.CounterVec
	AdmissionRejected prometheus.Counter
	ShardFreeBytes    *prometheus.GaugeVec
}

// NewSet constructs an unregistered Set.
func NewSet(namespace string) *Set {
	return &Set{
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Number of table operations, by kind and outcome.",
		}, []string{"op", "outcome"}),
		BytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Bytes moved through streaming adapters, by direction.",
		}, []string{"direction"}),
		AdmissionRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_rejected_total",
			Help:      "Write streams rejected for lack of shard space.",
		}),
		ShardFreeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shard_free_bytes",
			Help:      "Approximate free bytes remaining in each shard, updated on stat calls.",
		}, []string{"shard"}),
	}
}

// Register attaches every collector in the set to r.
func (s *Set) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{s.OpsTotal, s.BytesTotal, s.AdmissionRejected, s.ShardFreeBytes} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Noop is a Set that is never registered, used as the default when a
// caller opens a table without a metrics option.
func Noop() *Set { return NewSet("") }
