package prometheus

import (
	"context"
	"log/slog"
	"slices"

	"github.com/waiwai24/free-ollama/internal/domain"
)

// failureResponse labels inactive services that answered HTTP but did not look
// like Ollama.
const failureResponse = "response"

type ScanReportPublisher struct {
	logger   *slog.Logger
	exporter *Exporter
}

func NewScanReportPublisher(logger *slog.Logger, exporter *Exporter) *ScanReportPublisher {
	return &ScanReportPublisher{
		logger:   logger,
		exporter: exporter,
	}
}

// Publish replaces the per-endpoint series with the report's active services,
// so endpoints that went away disappear after the next scan. Inactive targets
// only feed probe_failures_total.
func (p *ScanReportPublisher) Publish(ctx context.Context, report domain.ScanReport) error {
	p.logger.DebugContext(ctx, "Publishing scan metrics",
		slog.Group("publish",
			slog.Int("targets", report.TotalTargets),
			slog.Int("active", report.ActiveServices),
		))

	m := p.exporter.metrics

	m.lastScanTimestamp.Set(float64(report.FinishedAt.Unix()))
	m.targetsTotal.Set(float64(report.TotalTargets))
	m.servicesActive.Set(float64(report.ActiveServices))
	m.modelsTotal.Set(float64(report.TotalModels))

	m.serviceUp.Reset()
	m.serviceModels.Reset()

	for _, s := range report.Services {
		if s.ResponseTimeMS != nil {
			m.probeDuration.Observe(float64(*s.ResponseTimeMS) / 1000)
		}

		if !s.IsActive {
			m.probeFailures.WithLabelValues(failureKind(s)).Inc()
			continue
		}

		m.serviceUp.WithLabelValues(s.Target.BaseURL()).Set(1.0)
		m.serviceModels.WithLabelValues(s.Target.BaseURL()).Set(float64(len(s.Models)))
	}

	return nil
}

func failureKind(s domain.ServiceRecord) string {
	if len(s.Notes) > 0 && slices.Contains(domain.ErrorKinds, domain.ErrorKind(s.Notes[0])) {
		return s.Notes[0]
	}

	return failureResponse
}
