package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/common/tracing"
	"github.com/waiwai24/free-ollama/internal/domain"
	"github.com/waiwai24/free-ollama/internal/ports"
)

type servicesScanner interface {
	Execute(ctx context.Context, cmd ScanServicesCommand) ([]domain.ServiceRecord, error)
}

// DiscoverServicesUseCase runs one full discovery cycle: read assets, adapt
// them into targets, scan and hand the report to every publisher.
type DiscoverServicesUseCase struct {
	logger     *slog.Logger
	source     ports.AssetSource
	scanner    servicesScanner
	publishers []ports.ScanReportPublisher
	now        func() time.Time
}

func NewDiscoverServicesUseCase(
	logger *slog.Logger,
	source ports.AssetSource,
	scanner servicesScanner,
	publishers ...ports.ScanReportPublisher,
) *DiscoverServicesUseCase {
	return &DiscoverServicesUseCase{
		logger:     logger,
		source:     source,
		scanner:    scanner,
		publishers: publishers,
		now:        time.Now,
	}
}

// Execute returns the report even when some publishers fail; the returned
// error then joins every publisher failure.
func (u *DiscoverServicesUseCase) Execute(ctx context.Context) (domain.ScanReport, error) {
	ctx = tracing.WithScanID(ctx)

	rows, err := u.source.Assets(ctx)
	if err != nil {
		return domain.ScanReport{}, fmt.Errorf("failed to read assets: %w", err)
	}

	targets, rowErrs := domain.AdaptRows(rows)
	for _, rowErr := range rowErrs {
		u.logger.WarnContext(ctx, "Skipping invalid asset row",
			slog.Int("line", rowErr.Line),
			slog.String("link", rowErr.Link),
			logging.Error(rowErr.Err),
		)
	}

	u.logger.InfoContext(ctx, "Starting scan",
		slog.Int("rows", len(rows)),
		slog.Int("targets", len(targets)),
		slog.Int("skipped", len(rowErrs)),
	)

	startedAt := u.now()

	records, err := u.scanner.Execute(ctx, ScanServicesCommand{Targets: targets})
	if err != nil {
		return domain.ScanReport{}, fmt.Errorf("failed to scan services: %w", err)
	}

	report := domain.NewScanReport(tracing.GetScanID(ctx), startedAt, u.now(), records)

	u.logger.InfoContext(ctx, "Scan completed",
		slog.Int("targets", report.TotalTargets),
		slog.Int("active", report.ActiveServices),
		slog.Int("models", report.TotalModels),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)

	var errs []error

	for _, publisher := range u.publishers {
		if err := publisher.Publish(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("failed to publish scan report: %w", errors.Join(errs...))
	}

	return report, nil
}
