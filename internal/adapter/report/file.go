package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/waiwai24/free-ollama/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const fileTimeLayout = "20060102_150405"

// FileWriter stores each report as its own file named after the scan start.
type FileWriter struct {
	logger *slog.Logger
	dir    string
	format Format
}

func NewFileWriter(logger *slog.Logger, dir string, format Format) (*FileWriter, error) {
	switch format {
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("report: unsupported format %q", format)
	}

	return &FileWriter{logger: logger, dir: dir, format: format}, nil
}

func (w *FileWriter) Publish(ctx context.Context, report domain.ScanReport) error {
	path, err := w.Write(ctx, report)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Scan report written", slog.String("path", path))

	return nil
}

// Write encodes the report into a temporary file and renames it into place, so
// readers never observe a partial report.
func (w *FileWriter) Write(_ context.Context, report domain.ScanReport) (string, error) {
	data, err := w.encode(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode scan report: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.dir, FileName(report, w.format))

	tmp, err := os.CreateTemp(w.dir, ".scan-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move report file into place: %w", err)
	}

	return path, nil
}

func (w *FileWriter) encode(report domain.ScanReport) ([]byte, error) {
	if w.format == FormatYAML {
		return yaml.Marshal(report)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

func FileName(report domain.ScanReport, format Format) string {
	return fmt.Sprintf("scan_%s.%s", report.StartedAt.Format(fileTimeLayout), format)
}
