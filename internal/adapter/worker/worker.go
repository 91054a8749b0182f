package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/common/tracing"
)

type Task interface {
	Execute(ctx context.Context) error
}

// Worker runs a task immediately and then on every tick. Runs never overlap:
// a tick that fires during a long run is coalesced.
type Worker struct {
	logger *slog.Logger

	interval time.Duration
	task     Task

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu    sync.Mutex
	ctlMu sync.Mutex
}

func NewWorker(logger *slog.Logger, interval time.Duration, task Task) *Worker {
	return &Worker{
		logger:   logger,
		interval: interval,
		task:     task,
	}
}

func (w *Worker) Start() error {
	locked := w.mu.TryLock()
	if !locked {
		return fmt.Errorf("worker is already running")
	}

	defer w.mu.Unlock()

	w.ctlMu.Lock()
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.stopped = make(chan struct{})
	ctx, stopped := w.ctx, w.stopped
	w.ctlMu.Unlock()

	defer close(stopped)
	defer w.cancel()

	ticker := newTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := w.run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "Failed to execute task", logging.Error(err))
			}
		}
	}
}

// Shutdown cancels the current run and waits for it to return, or for ctx to
// expire.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.ctlMu.Lock()
	cancel, stopped := w.cancel, w.stopped
	w.ctlMu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) error {
	return w.task.Execute(tracing.WithScanID(ctx))
}

func newTicker(repeat time.Duration) *time.Ticker {
	ticker := time.NewTicker(repeat)
	oc := ticker.C
	nc := make(chan time.Time, 1)
	go func() {
		nc <- time.Now()
		for tm := range oc {
			select {
			case nc <- tm:
			default:
			}
		}
	}()
	ticker.C = nc
	return ticker
}
