package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/common/tracing"
	"github.com/waiwai24/free-ollama/internal/ports"
)

type Mode string

const (
	ModeAuto Mode = "auto"
	ModeTTY  Mode = "tty"
	ModeLog  Mode = "log"
	ModeNone Mode = "none"
)

const logSteps = 10

// ResolveMode turns ModeAuto into ModeTTY when f is a terminal and ModeLog
// otherwise.
func ResolveMode(mode Mode, f *os.File) Mode {
	if mode != ModeAuto {
		return mode
	}

	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ModeTTY
	}

	return ModeLog
}

// Reporter renders scan progress from a single goroutine. Workers only hand
// events over a channel. Report must not be called after Close.
type Reporter struct {
	logger *slog.Logger
	out    io.Writer
	mode   Mode

	events    chan message
	done      chan struct{}
	closeOnce sync.Once

	// owned by the render goroutine, reset when a new scan starts
	scanID   string
	seen     int
	active   int
	lastStep int
}

type message struct {
	scanID string
	event  ports.ProgressEvent
}

func New(logger *slog.Logger, out io.Writer, mode Mode) *Reporter {
	r := &Reporter{
		logger: logger,
		out:    out,
		mode:   mode,
		events: make(chan message, 256),
		done:   make(chan struct{}),
	}

	go r.render()

	return r
}

func (r *Reporter) Report(ctx context.Context, event ports.ProgressEvent) {
	if r.mode == ModeNone {
		return
	}

	select {
	case r.events <- message{scanID: tracing.GetScanID(ctx), event: event}:
	case <-ctx.Done():
	}
}

// Close flushes pending events and stops the render goroutine.
func (r *Reporter) Close() error {
	r.closeOnce.Do(func() {
		close(r.events)
		<-r.done
	})

	return nil
}

func (r *Reporter) render() {
	defer close(r.done)

	for msg := range r.events {
		event := msg.event

		if msg.scanID != r.scanID {
			r.scanID = msg.scanID
			r.seen, r.active, r.lastStep = 0, 0, 0
		}

		r.seen = max(r.seen, event.Done)
		if event.Record.IsActive {
			r.active++
		}

		switch r.mode {
		case ModeTTY:
			r.renderLine(event)
		case ModeLog:
			r.renderLog(event)
		case ModeAuto, ModeNone:
		}
	}
}

func (r *Reporter) renderLine(event ports.ProgressEvent) {
	if event.Record.IsActive {
		_, _ = fmt.Fprintf(r.out, "\r\x1b[K+ %s (%d models)\n", event.Record.Target.Endpoint(), len(event.Record.Models))
	}

	_, _ = fmt.Fprintf(r.out, "\r\x1b[K[%d/%d] %5.1f%% active: %d", r.seen, event.Total, percent(r.seen, event.Total), r.active)

	if r.seen >= event.Total {
		_, _ = fmt.Fprintln(r.out)
	}
}

func (r *Reporter) renderLog(event ports.ProgressEvent) {
	if event.Record.IsActive {
		r.logger.Info("Found active service",
			logging.Target(event.Record.Target),
			slog.Int("models", len(event.Record.Models)),
		)
	}

	if event.Total <= 0 {
		return
	}

	step := r.seen * logSteps / event.Total
	if step <= r.lastStep {
		return
	}

	r.lastStep = step

	r.logger.Info("Scan progress",
		slog.Int("done", r.seen),
		slog.Int("total", event.Total),
		slog.Int("active", r.active),
	)
}

func percent(done, total int) float64 {
	if total <= 0 {
		return 100
	}

	return float64(done) * 100 / float64(total)
}
