package report

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/waiwai24/free-ollama/internal/domain"
)

var (
	startedAt  = time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	finishedAt = startedAt.Add(2500 * time.Millisecond)
)

func TestFileWriter_JSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	w, err := NewFileWriter(discardLogger(), dir, FormatJSON)
	require.NoError(t, err)

	path, err := w.Write(t.Context(), sampleReport())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "scan_20250601_123045.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domain.ScanReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "scan-1", decoded.ScanID)
	require.Equal(t, 2, decoded.TotalTargets)
	require.Equal(t, []string{"llama3", "qwen2"}, decoded.UniqueModelNames)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileWriter_YAML(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFileWriter(discardLogger(), dir, FormatYAML)
	require.NoError(t, err)

	require.NoError(t, w.Publish(t.Context(), sampleReport()))

	data, err := os.ReadFile(filepath.Join(dir, "scan_20250601_123045.yaml"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, "scan-1", decoded["scan_id"])
	require.Equal(t, 1, decoded["active_services"])
}

func TestNewFileWriter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewFileWriter(discardLogger(), t.TempDir(), "xml")
	require.ErrorContains(t, err, `unsupported format "xml"`)
}

func TestSQLiteWriter(t *testing.T) {
	ctx := t.Context()

	w, err := OpenSQLite(ctx, discardLogger(), filepath.Join(t.TempDir(), "db", "scans.db"))
	require.NoError(t, err)
	defer w.Close()

	report := sampleReport()
	require.NoError(t, w.Publish(ctx, report))

	var scans, services, models, active int
	require.NoError(t, w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scans").Scan(&scans))
	require.NoError(t, w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM services").Scan(&services))
	require.NoError(t, w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM models").Scan(&models))
	require.NoError(t, w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM services WHERE is_active = 1").Scan(&active))

	require.Equal(t, 1, scans)
	require.Equal(t, 2, services)
	require.Equal(t, 2, models)
	require.Equal(t, 1, active)

	var notes string
	require.NoError(t, w.db.QueryRowContext(ctx, "SELECT notes FROM services WHERE is_active = 0").Scan(&notes))
	require.Equal(t, "connection", notes)

	// the same scan id is rejected and nothing is left behind
	require.Error(t, w.Publish(ctx, report))
	require.NoError(t, w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM services").Scan(&services))
	require.Equal(t, 2, services)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, PrintSummary(&out, sampleReport()))

	printed := out.String()
	require.Contains(t, printed, "Scan scan-1 finished in 2.5s: 1/2 active services, 2 models (2 unique)")
	require.Contains(t, printed, "Average response time: 42.0 ms")
	require.Contains(t, printed, "10.0.0.1:11434")
	require.Contains(t, printed, "llama3, qwen2")
	require.NotContains(t, printed, "10.0.0.2:11434")
}

func TestPrintSummary_NoActiveServices(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, PrintSummary(&out, domain.NewScanReport("empty", startedAt, startedAt, nil)))
	require.NotContains(t, out.String(), "ENDPOINT")
	require.Contains(t, out.String(), "0/0 active services")
}

func sampleReport() domain.ScanReport {
	ms := int64(42)
	refusedMS := int64(1)
	format := "gguf"
	size := int64(4000000000)

	records := []domain.ServiceRecord{
		{
			Target:         domain.Target{Host: "10.0.0.2", Port: 11434, Scheme: domain.SchemeHTTP, SourceLabel: "line-2", Country: "US"},
			Models:         []domain.ModelSummary{},
			ScannedAt:      startedAt,
			ResponseTimeMS: &refusedMS,
			Notes:          []string{"connection"},
		},
		{
			Target:         domain.Target{Host: "10.0.0.1", Port: 11434, Scheme: domain.SchemeHTTP, SourceLabel: "line-1", Country: "CN"},
			IsActive:       true,
			VersionSignal:  &format,
			Models:         []domain.ModelSummary{{Name: "llama3", SizeBytes: &size, Format: &format, ModifiedAt: &startedAt}, {Name: "qwen2"}},
			ScannedAt:      startedAt,
			ResponseTimeMS: &ms,
			Confidence:     1,
			Notes:          []string{"found 2 models, format: gguf"},
		},
	}

	return domain.NewScanReport("scan-1", startedAt, finishedAt, records)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
