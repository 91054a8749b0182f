package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/waiwai24/free-ollama/internal/domain"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New builds the process logger. Records are enriched with the scan id found
// in the context and carry the program attributes.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(NewEnhancedHandler(handler)).With(NewProgramAttr())
}

// Version reports the main module version from the build info.
func Version() string {
	if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo.Main.Version != "" {
		return buildInfo.Main.Version
	}

	return "(devel)"
}

func NewProgramAttr() slog.Attr {
	hostname, _ := os.Hostname()

	return slog.Group("program",
		slog.Int("pid", os.Getpid()),
		slog.String("machine", hostname),
		slog.String("version", Version()),
	)
}

func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

func Target(t domain.Target) slog.Attr {
	return slog.Group("target",
		slog.String("endpoint", t.Endpoint()),
		slog.String("scheme", string(t.Scheme)),
		slog.String("source", t.SourceLabel),
	)
}

func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.Level(-1), fmt.Errorf("invalid log level: %s", levelStr)
	}
}
