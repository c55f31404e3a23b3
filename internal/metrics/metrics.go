// Package metrics counts what the target collects, ships and loses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logtarget"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	collected  prometheus.Counter
	flushes    prometheus.Counter
	exported   prometheus.Counter
	failures   *prometheus.CounterVec
	emergency  *prometheus.CounterVec
	bufferSize prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_collected_total",
			Help:      "Records accepted into the buffer after filtering.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Flush attempts.",
		}),
		exported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_exported_total",
			Help:      "Documents acknowledged by the backend.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Export failures by kind (item or transport).",
		}, []string{"kind"}),
		emergency: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emergency_records_total",
			Help:      "Emergency sink writes by result.",
		}, []string{"result"}),
		bufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_documents",
			Help:      "Documents currently buffered.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.collected, m.flushes, m.exported, m.failures, m.emergency, m.bufferSize,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Collected(n int) {
	if m != nil {
		m.collected.Add(float64(n))
	}
}

func (m *Metrics) Flushed() {
	if m != nil {
		m.flushes.Inc()
	}
}

func (m *Metrics) Exported(n int) {
	if m != nil {
		m.exported.Add(float64(n))
	}
}

func (m *Metrics) ItemFailures(n int) {
	if m != nil {
		m.failures.WithLabelValues("item").Add(float64(n))
	}
}

func (m *Metrics) TransportFailure() {
	if m != nil {
		m.failures.WithLabelValues("transport").Inc()
	}
}

func (m *Metrics) EmergencyWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.emergency.WithLabelValues(result).Inc()
}

func (m *Metrics) BufferSize(n int) {
	if m != nil {
		m.bufferSize.Set(float64(n))
	}
}
