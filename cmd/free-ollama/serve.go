package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waiwai24/free-ollama/internal/adapter/httpsrv"
	"github.com/waiwai24/free-ollama/internal/adapter/prometheus"
	"github.com/waiwai24/free-ollama/internal/adapter/store"
	"github.com/waiwai24/free-ollama/internal/adapter/worker"
	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/domain"
	"github.com/waiwai24/free-ollama/internal/ports"
)

type HTTP struct {
	Addr        string `name:"addr" env:"HTTP_ADDR" default:"0.0.0.0:8080" help:"HTTP address to bind the API and Prometheus metrics."`
	MetricsPath string `name:"metrics.path" env:"METRICS_PATH" default:"/metrics" help:"Path to serve Prometheus metrics."`
}

type Redis struct {
	Addr string `name:"addr" env:"REDIS_ADDR" help:"Redis address keeping the latest report. In-memory when empty."`
	Key  string `name:"key" env:"REDIS_KEY" default:"${redis_key}" help:"Redis key of the latest report."`
}

type ServeCmd struct {
	Discovery `embed:""`

	Interval time.Duration `name:"interval" env:"SCAN_INTERVAL" default:"10m" help:"The interval between full scans (e.g., 30s, 10m, 1h)."`
	HTTP     HTTP          `embed:"" prefix:"http."`
	Redis    Redis         `embed:"" prefix:"store.redis."`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := g.logger()
	if err != nil {
		return err
	}

	exporter, err := prometheus.NewExporter()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create prometheus exporter", logging.Error(err))
		return err
	}

	reportStore, closeStore, err := c.newStore(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create report store", logging.Error(err))
		return err
	}

	defer closeStore()

	dc, err := newDiscovery(ctx, logger, &c.Discovery,
		prometheus.NewScanReportPublisher(logger, exporter),
		reportStore,
	)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up scanner", logging.Error(err))
		return err
	}

	defer func() {
		logger.InfoContext(ctx, "Closing scanner")
		dc.Close()
	}()

	httpsrv := httpsrv.NewServer(c.HTTP.Addr, httpsrv.ServerOptions{
		Logger:         logger,
		MetricsHandler: exporter.Handler(),
		MetricsPath:    c.HTTP.MetricsPath,
		Store:          reportStore,
	})

	worker := worker.NewWorker(logger, c.Interval, newTask(logger, dc.uc))

	defer func() {
		logger.InfoContext(ctx, "Stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Probe.Timeout+5*time.Second)
		defer cancel()

		logger.InfoContext(ctx, "Stopping Worker...")
		serr := worker.Shutdown(shutdownCtx)
		if serr != nil {
			logger.ErrorContext(ctx, "Failed to stop Worker", logging.Error(serr))
		}

		logger.InfoContext(ctx, "Stopping HTTP Server...")
		serr = httpsrv.Shutdown(shutdownCtx)
		if serr != nil {
			logger.ErrorContext(ctx, "Failed to stop HTTP Server", logging.Error(serr))
		}

		logger.InfoContext(ctx, "Stopped")
	}()

	errCh := make(chan error, 2)

	go func() {
		logger.InfoContext(ctx, "Start HTTP Server", slog.String("address", httpsrv.ListenAddr()))

		err := httpsrv.Start()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to start HTTP Server", logging.Error(err))
			errCh <- err
		}
	}()

	go func() {
		logger.InfoContext(ctx, "Start Worker", slog.Duration("interval", c.Interval))

		err := worker.Start()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to start Worker", logging.Error(err))
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (c *ServeCmd) newStore(ctx context.Context) (ports.ScanReportStore, func(), error) {
	if c.Redis.Addr == "" {
		return store.NewMemoryStore(), func() {}, nil
	}

	client, err := store.DialRedis(ctx, c.Redis.Addr)
	if err != nil {
		return nil, nil, err
	}

	return store.NewRedisStore(client, c.Redis.Key), func() { _ = client.Close() }, nil
}

func (c *ServeCmd) Validate() error {
	errs := c.Discovery.validate()

	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("--interval: must be greater than zero"))
	}

	if c.Interval <= c.Probe.Timeout {
		errs = append(errs, fmt.Errorf("--interval: must be greater than --probe.timeout"))
	}

	if !isTCPAddr(c.HTTP.Addr) {
		errs = append(errs, fmt.Errorf("--http.addr: must be a valid tcp listening address (e.g. 0.0.0.0:8080)"))
	}

	if c.Redis.Addr != "" && !isHostPort(c.Redis.Addr) {
		errs = append(errs, fmt.Errorf("--store.redis.addr: must be a host:port address (e.g. localhost:6379)"))
	}

	return errors.Join(errs...)
}

type taskUC interface {
	Execute(ctx context.Context) (domain.ScanReport, error)
}

type task struct {
	logger *slog.Logger
	uc     taskUC
}

func newTask(logger *slog.Logger, uc taskUC) *task {
	return &task{
		logger: logger,
		uc:     uc,
	}
}

func (t *task) Execute(ctx context.Context) error {
	now := time.Now()

	t.logger.InfoContext(ctx, "Run discovery scan")

	report, err := t.uc.Execute(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to execute discovery scan", logging.Error(err), slog.Duration("duration", time.Since(now)))
	} else {
		t.logger.InfoContext(ctx, "Finished discovery scan",
			slog.Int("active", report.ActiveServices),
			slog.Int("targets", report.TotalTargets),
			slog.Duration("duration", time.Since(now)),
		)
	}

	return nil
}
