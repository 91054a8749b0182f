package report

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/waiwai24/free-ollama/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    scan_id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    total_targets INTEGER NOT NULL,
    active_services INTEGER NOT NULL,
    total_models INTEGER NOT NULL,
    average_response_time_ms REAL
);

CREATE TABLE IF NOT EXISTS services (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scan_id TEXT NOT NULL REFERENCES scans(scan_id) ON DELETE CASCADE,
    source TEXT NOT NULL,
    country TEXT,
    scheme TEXT NOT NULL,
    host TEXT NOT NULL,
    port INTEGER NOT NULL,
    is_active INTEGER NOT NULL,
    version_signal TEXT,
    response_time_ms INTEGER,
    confidence REAL NOT NULL,
    notes TEXT,
    scanned_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS services_scan_id ON services(scan_id);

CREATE TABLE IF NOT EXISTS models (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    service_id INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    size_bytes INTEGER,
    digest TEXT,
    modified_at TEXT,
    format TEXT,
    family TEXT,
    parameter_size TEXT,
    quantization TEXT
);

CREATE INDEX IF NOT EXISTS models_name ON models(name);
`

// SQLiteWriter appends every report to a SQLite database.
type SQLiteWriter struct {
	logger *slog.Logger
	db     *sql.DB
}

func OpenSQLite(ctx context.Context, logger *slog.Logger, path string) (*SQLiteWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", "PRAGMA journal_mode = WAL", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to prepare sqlite database: %w", err)
		}
	}

	return &SQLiteWriter{logger: logger, db: db}, nil
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// Publish stores the report in a single transaction.
func (w *SQLiteWriter) Publish(ctx context.Context, report domain.ScanReport) (err error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (scan_id, started_at, finished_at, total_targets, active_services, total_models, average_response_time_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ScanID,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
		report.TotalTargets,
		report.ActiveServices,
		report.TotalModels,
		nullable(report.AverageResponseTimeMS),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	for _, s := range report.Services {
		if err = insertService(ctx, tx, report.ScanID, s); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan report: %w", err)
	}

	w.logger.DebugContext(ctx, "Scan report stored in sqlite", slog.Int("services", len(report.Services)))

	return nil
}

func insertService(ctx context.Context, tx *sql.Tx, scanID string, s domain.ServiceRecord) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO services (scan_id, source, country, scheme, host, port, is_active, version_signal, response_time_ms, confidence, notes, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID,
		s.Target.SourceLabel,
		s.Target.Country,
		string(s.Target.Scheme),
		s.Target.Host,
		s.Target.Port,
		s.IsActive,
		nullable(s.VersionSignal),
		nullable(s.ResponseTimeMS),
		s.Confidence,
		strings.Join(s.Notes, "; "),
		formatTime(s.ScannedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert service %s: %w", s.Target.Endpoint(), err)
	}

	serviceID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read service id: %w", err)
	}

	for _, m := range s.Models {
		var modifiedAt *string
		if m.ModifiedAt != nil {
			v := formatTime(*m.ModifiedAt)
			modifiedAt = &v
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO models (service_id, name, size_bytes, digest, modified_at, format, family, parameter_size, quantization)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			serviceID,
			m.Name,
			nullable(m.SizeBytes),
			nullable(m.Digest),
			nullable(modifiedAt),
			nullable(m.Format),
			nullable(m.Family),
			nullable(m.ParameterSize),
			nullable(m.Quantization),
		)
		if err != nil {
			return fmt.Errorf("failed to insert model %s: %w", m.Name, err)
		}
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}

	return *v
}
