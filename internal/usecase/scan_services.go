package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/waiwai24/free-ollama/internal/classify"
	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/domain"
	"github.com/waiwai24/free-ollama/internal/ports"
)

type ScanServicesUseCase struct {
	logger      *slog.Logger
	prober      ports.ServiceProber
	progress    ports.ProgressReporter
	timeout     time.Duration
	concurrency int
	now         func() time.Time
}

func NewScanServicesUseCase(
	logger *slog.Logger,
	prober ports.ServiceProber,
	progress ports.ProgressReporter,
	timeout time.Duration,
	concurrency int,
) *ScanServicesUseCase {
	return &ScanServicesUseCase{
		logger:      logger,
		prober:      prober,
		progress:    progress,
		timeout:     timeout,
		concurrency: concurrency,
		now:         time.Now,
	}
}

type ScanServicesCommand struct {
	Targets []domain.Target
}

// Execute probes every target with at most concurrency probes in flight and
// returns one record per target, in completion order. It fails only before
// the first probe is issued.
func (u *ScanServicesUseCase) Execute(ctx context.Context, cmd ScanServicesCommand) ([]domain.ServiceRecord, error) {
	if err := u.validate(cmd); err != nil {
		return nil, err
	}

	var (
		total   = len(cmd.Targets)
		done    atomic.Int64
		records = make(chan domain.ServiceRecord, total)
	)

	g := new(errgroup.Group)
	g.SetLimit(u.concurrency)

	for _, target := range cmd.Targets {
		g.Go(func() error {
			record := u.scanTarget(ctx, target)
			records <- record

			u.report(ctx, ports.ProgressEvent{
				Done:   int(done.Add(1)),
				Total:  total,
				Record: record,
			})

			return nil
		})
	}

	_ = g.Wait()
	close(records)

	result := make([]domain.ServiceRecord, 0, total)
	for record := range records {
		result = append(result, record)
	}

	return result, nil
}

func (u *ScanServicesUseCase) validate(cmd ScanServicesCommand) error {
	var errs []error

	if u.timeout <= 0 {
		errs = append(errs, fmt.Errorf("probe timeout must be greater than zero"))
	}

	if u.concurrency <= 0 {
		errs = append(errs, fmt.Errorf("probe concurrency must be greater than zero"))
	}

	for _, target := range cmd.Targets {
		if err := target.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("invalid target %s: %w", target.SourceLabel, err))
		}
	}

	return errors.Join(errs...)
}

// report keeps a failing progress reporter from taking down the batch.
func (u *ScanServicesUseCase) report(ctx context.Context, event ports.ProgressEvent) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.ErrorContext(ctx, "Recovered from panic while reporting progress",
				logging.Target(event.Record.Target), slog.Any("panic", r))
		}
	}()

	u.progress.Report(ctx, event)
}

// scanTarget always yields a record. A panic while probing or classifying
// degrades the target to an "other" transport failure.
func (u *ScanServicesUseCase) scanTarget(ctx context.Context, target domain.Target) (record domain.ServiceRecord) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			u.logger.ErrorContext(ctx, "Recovered from panic while scanning target",
				logging.Target(target), slog.Any("panic", r))

			record = classify.Classify(target, domain.FailureOutcome(domain.ErrorOther, time.Since(start)), u.now())
		}
	}()

	outcome := u.prober.Probe(ctx, target, u.timeout)
	record = classify.Classify(target, outcome, u.now())

	u.logger.DebugContext(ctx, "Scanned target",
		logging.Target(target),
		slog.Bool("active", record.IsActive),
		slog.Int("models", len(record.Models)),
		slog.Any("notes", record.Notes),
		slog.Duration("elapsed", outcome.Elapsed),
	)

	return record
}
