package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waiwai24/free-ollama/internal/common/tracing"
	"github.com/waiwai24/free-ollama/internal/domain"
)

func TestNew_AddsScanIDAndProgram(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, slog.LevelInfo, FormatJSON)
	ctx := tracing.WithScanID(context.Background())

	logger.InfoContext(ctx, "Scan started", Target(domain.Target{
		Host:        "10.0.0.1",
		Port:        11434,
		Scheme:      domain.SchemeHTTP,
		SourceLabel: "line-1",
	}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	require.Equal(t, "Scan started", line["msg"])
	require.Equal(t, tracing.GetScanID(ctx), line["scan_id"])
	require.Contains(t, line, "program")

	target, ok := line["target"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "10.0.0.1:11434", target["endpoint"])
	require.Equal(t, "line-1", target["source"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, slog.LevelWarn, FormatText)
	logger.Info("hidden")
	require.Zero(t, buf.Len())

	logger.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("fatal")
	require.ErrorContains(t, err, "invalid log level")
}
