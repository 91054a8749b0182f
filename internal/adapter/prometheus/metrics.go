package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	lastScanTimestamp prometheus.Gauge
	targetsTotal      prometheus.Gauge
	servicesActive    prometheus.Gauge
	modelsTotal       prometheus.Gauge
	serviceUp         *prometheus.GaugeVec
	serviceModels     *prometheus.GaugeVec
	probeDuration     prometheus.Histogram
	probeFailures     *prometheus.CounterVec
}

const (
	prefix = "free_ollama_"
)

func newMetrics(reg *prometheus.Registry) (*metrics, error) {
	m := &metrics{
		lastScanTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "last_scan_timestamp_seconds",
			Help: "Unix time the last scan finished",
		}),
		targetsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "targets_total",
			Help: "Number of targets probed by the last scan",
		}),
		servicesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "services_active",
			Help: "Number of active services found by the last scan",
		}),
		modelsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "models_total",
			Help: "Number of models reported by active services in the last scan",
		}),
		serviceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "service_up",
			Help: "Set to 1 for every endpoint found active by the last scan",
		}, []string{"endpoint"}),
		serviceModels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "service_models",
			Help: "Number of models reported by a specific endpoint",
		}, []string{"endpoint"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "probe_duration_seconds",
			Help:    "Duration of tags probes",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		probeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "probe_failures_total",
			Help: "Number of probes that did not find an active service, by reason",
		}, []string{"kind"}),
	}

	err := register(reg,
		m.lastScanTimestamp,
		m.targetsTotal,
		m.servicesActive,
		m.modelsTotal,
		m.serviceUp,
		m.serviceModels,
		m.probeDuration,
		m.probeFailures,
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func register(r *prometheus.Registry, cs ...prometheus.Collector) error {
	for i, c := range cs {
		if err := r.Register(c); err != nil {
			for _, c := range cs[:i] {
				r.Unregister(c)
			}

			return err
		}
	}

	return nil
}
