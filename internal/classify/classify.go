// Package classify turns a raw probe outcome into a service record.
//
// Classification is pure: the same target, outcome and timestamp always
// produce the same record. The timestamp is used as the scan time and as the
// fallback for model modification times that cannot be parsed.
package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/waiwai24/free-ollama/internal/domain"
)

const (
	ConfidenceActive   = 1.0
	ConfidenceInactive = 0.0
)

const (
	NoteInvalidBody = "invalid response body"
	NoteNoModels    = "no models reported"
)

func Classify(target domain.Target, outcome domain.ProbeOutcome, at time.Time) domain.ServiceRecord {
	if outcome.IsTransportFailure() {
		return inactive(target, at, outcome.Elapsed, ConfidenceInactive, string(outcome.Failure))
	}

	if outcome.StatusCode != http.StatusOK {
		return inactive(target, at, outcome.Elapsed, ConfidenceInactive, fmt.Sprintf("unexpected status %d", outcome.StatusCode))
	}

	entries, ok := decodeModelEntries(outcome.Body)
	if !ok {
		return inactive(target, at, outcome.Elapsed, ConfidenceInactive, NoteInvalidBody)
	}

	if len(entries) == 0 {
		return inactive(target, at, outcome.Elapsed, ConfidenceInactive, NoteNoModels)
	}

	models := make([]domain.ModelSummary, 0, len(entries))

	var version *string

	for i, entry := range entries {
		model := decodeModel(entry, at)

		if i == 0 && model.Format != nil {
			version = model.Format
		}

		models = append(models, model)
	}

	format := "unknown"
	if version != nil {
		format = *version
	}

	return domain.ServiceRecord{
		Target:         target,
		IsActive:       true,
		VersionSignal:  version,
		Models:         models,
		ScannedAt:      at,
		ResponseTimeMS: millis(outcome.Elapsed),
		Confidence:     ConfidenceActive,
		Notes:          []string{fmt.Sprintf("found %d models, format: %s", len(entries), format)},
	}
}

func inactive(target domain.Target, at time.Time, elapsed time.Duration, confidence float64, notes ...string) domain.ServiceRecord {
	return domain.ServiceRecord{
		Target:         target,
		IsActive:       false,
		Models:         []domain.ModelSummary{},
		ScannedAt:      at,
		ResponseTimeMS: millis(elapsed),
		Confidence:     confidence,
		Notes:          notes,
	}
}

func millis(d time.Duration) *int64 {
	ms := d.Milliseconds()
	return &ms
}

// decodeModelEntries accepts only an object whose "models" key, matched
// exactly, holds an array of objects. A null or missing "models" is a shape
// error, not an empty inventory.
func decodeModelEntries(body []byte) ([]fields, bool) {
	var resp fields
	if err := json.Unmarshal(body, &resp); err != nil || resp == nil {
		return nil, false
	}

	raw := bytes.TrimSpace(resp["models"])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	entries := make([]fields, 0, len(items))

	for _, item := range items {
		var entry fields
		if err := json.Unmarshal(item, &entry); err != nil || entry == nil {
			return nil, false
		}

		entries = append(entries, entry)
	}

	return entries, true
}
