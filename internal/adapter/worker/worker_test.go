package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waiwai24/free-ollama/internal/common/tracing"
)

type recordingTask struct {
	mu      sync.Mutex
	scanIDs []string
	calls   chan struct{}
	block   bool
}

func (t *recordingTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.scanIDs = append(t.scanIDs, tracing.GetScanID(ctx))
	t.mu.Unlock()

	select {
	case t.calls <- struct{}{}:
	default:
	}

	if t.block {
		<-ctx.Done()
		return ctx.Err()
	}

	return nil
}

func TestWorker_RunsImmediatelyAndOnInterval(t *testing.T) {
	task := &recordingTask{calls: make(chan struct{}, 8)}
	w := NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), 10*time.Millisecond, task)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start() }()

	for range 2 {
		select {
		case <-task.calls:
		case <-time.After(time.Second):
			t.Fatal("task was not executed")
		}
	}

	require.ErrorContains(t, w.Start(), "already running")
	require.NoError(t, w.Shutdown(t.Context()))
	require.NoError(t, <-errCh)

	task.mu.Lock()
	defer task.mu.Unlock()

	require.GreaterOrEqual(t, len(task.scanIDs), 2)
	require.NotEmpty(t, task.scanIDs[0])
	require.NotEqual(t, task.scanIDs[0], task.scanIDs[1])
}

func TestWorker_ShutdownCancelsRunningTask(t *testing.T) {
	task := &recordingTask{calls: make(chan struct{}, 1), block: true}
	w := NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, task)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start() }()

	select {
	case <-task.calls:
	case <-time.After(time.Second):
		t.Fatal("task was not executed")
	}

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	require.NoError(t, w.Shutdown(ctx))
	require.NoError(t, <-errCh)
}

func TestWorker_ShutdownBeforeStart(t *testing.T) {
	w := NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, &recordingTask{})

	require.NoError(t, w.Shutdown(t.Context()))
}
