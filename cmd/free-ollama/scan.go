package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/waiwai24/free-ollama/internal/adapter/report"
	"github.com/waiwai24/free-ollama/internal/common/logging"
)

type ScanCmd struct {
	Discovery `embed:""`
}

func (c *ScanCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := g.logger()
	if err != nil {
		return err
	}

	dc, err := newDiscovery(ctx, logger, &c.Discovery)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up scan", logging.Error(err))
		return err
	}

	scanReport, err := dc.uc.Execute(ctx)

	dc.Close()

	if err != nil && scanReport.ScanID == "" {
		logger.ErrorContext(ctx, "Scan failed", logging.Error(err))
		return err
	}

	if perr := report.PrintSummary(os.Stdout, scanReport); perr != nil {
		err = errors.Join(err, fmt.Errorf("failed to print summary: %w", perr))
	}

	if err != nil {
		logger.ErrorContext(ctx, "Scan finished with errors", logging.Error(err))
		return err
	}

	return nil
}

func (c *ScanCmd) Validate() error {
	return errors.Join(c.Discovery.validate()...)
}
