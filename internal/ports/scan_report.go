package ports

import (
	"context"

	"github.com/waiwai24/free-ollama/internal/domain"
)

type ScanReportPublisher interface {
	Publish(ctx context.Context, report domain.ScanReport) error
}

// ScanReportStore keeps the most recent report published to it.
type ScanReportStore interface {
	ScanReportPublisher
	Latest(ctx context.Context) (domain.ScanReport, bool, error)
}
