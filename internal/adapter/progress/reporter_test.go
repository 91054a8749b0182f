package progress

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waiwai24/free-ollama/internal/common/tracing"
	"github.com/waiwai24/free-ollama/internal/domain"
	"github.com/waiwai24/free-ollama/internal/ports"
)

func TestReporter_LogMode(t *testing.T) {
	var logs bytes.Buffer

	r := New(slog.New(slog.NewTextHandler(&logs, nil)), &bytes.Buffer{}, ModeLog)

	for i := 1; i <= 20; i++ {
		r.Report(t.Context(), ports.ProgressEvent{Done: i, Total: 20, Record: record(i == 7)})
	}

	require.NoError(t, r.Close())

	out := logs.String()
	require.Equal(t, logSteps, strings.Count(out, "Scan progress"))
	require.Equal(t, 1, strings.Count(out, "Found active service"))
	require.Contains(t, out, "done=20 total=20 active=1")
}

func TestReporter_ResetsBetweenScans(t *testing.T) {
	var logs bytes.Buffer

	r := New(slog.New(slog.NewTextHandler(&logs, nil)), &bytes.Buffer{}, ModeLog)

	for range 2 {
		ctx := tracing.WithScanID(t.Context())

		for i := 1; i <= 2; i++ {
			r.Report(ctx, ports.ProgressEvent{Done: i, Total: 2, Record: record(true)})
		}
	}

	require.NoError(t, r.Close())

	out := logs.String()
	require.Equal(t, 4, strings.Count(out, "Scan progress"))
	require.Equal(t, 2, strings.Count(out, "done=2 total=2 active=2"))
}

func TestReporter_TTYMode(t *testing.T) {
	var out bytes.Buffer

	r := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), &out, ModeTTY)

	r.Report(t.Context(), ports.ProgressEvent{Done: 2, Total: 3, Record: record(false)})
	r.Report(t.Context(), ports.ProgressEvent{Done: 1, Total: 3, Record: record(true)})
	r.Report(t.Context(), ports.ProgressEvent{Done: 3, Total: 3, Record: record(false)})

	require.NoError(t, r.Close())

	rendered := out.String()
	require.Contains(t, rendered, "+ 10.0.0.1:11434 (1 models)")
	require.Contains(t, rendered, "[2/3]")
	require.NotContains(t, rendered, "[1/3]")
	require.Contains(t, rendered, "[3/3] 100.0% active: 1")
	require.True(t, strings.HasSuffix(rendered, "\n"))
}

func TestReporter_NoneMode(t *testing.T) {
	var out, logs bytes.Buffer

	r := New(slog.New(slog.NewTextHandler(&logs, nil)), &out, ModeNone)
	r.Report(t.Context(), ports.ProgressEvent{Done: 1, Total: 1, Record: record(true)})

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	require.Empty(t, out.String())
	require.Empty(t, logs.String())
}

func TestResolveMode(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, ModeLog, ResolveMode(ModeAuto, f))
	require.Equal(t, ModeTTY, ResolveMode(ModeTTY, f))
	require.Equal(t, ModeNone, ResolveMode(ModeNone, f))
}

func record(active bool) domain.ServiceRecord {
	r := domain.ServiceRecord{
		Target: domain.Target{Host: "10.0.0.1", Port: 11434, Scheme: domain.SchemeHTTP, SourceLabel: "line-1"},
		Models: []domain.ModelSummary{},
	}

	if active {
		r.IsActive = true
		r.Models = []domain.ModelSummary{{Name: "llama3"}}
	}

	return r
}
