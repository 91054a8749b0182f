package classify

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/waiwai24/free-ollama/internal/domain"
)

type fields map[string]json.RawMessage

// decodeModel reads one /api/tags entry field by field. A missing or
// wrong-typed field is left absent instead of rejecting the whole entry.
func decodeModel(entry fields, at time.Time) domain.ModelSummary {
	model := domain.ModelSummary{
		SizeBytes:  entry.getInt64("size"),
		Digest:     entry.getString("digest"),
		ModifiedAt: entry.getTime("modified_at", at),
	}

	if name := entry.getString("name"); name != nil {
		model.Name = *name
	} else if name := entry.getString("model"); name != nil {
		model.Name = *name
	}

	var details fields
	if raw, ok := entry["details"]; ok {
		_ = json.Unmarshal(raw, &details)
	}

	model.Format = details.getString("format")
	model.Family = details.getString("family")
	model.Families = details.getStrings("families")
	model.ParameterSize = details.getString("parameter_size")
	model.Quantization = details.getString("quantization_level")

	return model
}

func (f fields) getString(key string) *string {
	raw, ok := f[key]
	if !ok {
		return nil
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil || v == "" {
		return nil
	}

	return &v
}

func (f fields) getInt64(key string) *int64 {
	raw, ok := f[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}

	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	return &v
}

func (f fields) getStrings(key string) []string {
	raw, ok := f[key]
	if !ok {
		return nil
	}

	var v []string
	if err := json.Unmarshal(raw, &v); err != nil || len(v) == 0 {
		return nil
	}

	return v
}

// getTime falls back to the scan time when the field is present but cannot be
// parsed as RFC 3339.
func (f fields) getTime(key string, fallback time.Time) *time.Time {
	raw, ok := f[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}

	value := f.getString(key)
	if value == nil {
		return &fallback
	}

	parsed, err := time.Parse(time.RFC3339Nano, *value)
	if err != nil {
		return &fallback
	}

	parsed = parsed.UTC()

	return &parsed
}
