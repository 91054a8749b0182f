package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter owns a private registry holding the scan metrics and the Go
// runtime collectors.
type Exporter struct {
	reg     *prometheus.Registry
	metrics *metrics
}

func NewExporter() (*Exporter, error) {
	reg := prometheus.NewRegistry()

	err := register(reg,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err != nil {
		return nil, err
	}

	metrics, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		reg:     reg,
		metrics: metrics,
	}, nil
}

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{Registry: e.reg})
}
