package domain

import "time"

type ModelSummary struct {
	Name          string     `json:"name" yaml:"name"`
	SizeBytes     *int64     `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Digest        *string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	ModifiedAt    *time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
	Format        *string    `json:"format,omitempty" yaml:"format,omitempty"`
	Family        *string    `json:"family,omitempty" yaml:"family,omitempty"`
	Families      []string   `json:"families,omitempty" yaml:"families,omitempty"`
	ParameterSize *string    `json:"parameter_size,omitempty" yaml:"parameter_size,omitempty"`
	Quantization  *string    `json:"quantization,omitempty" yaml:"quantization,omitempty"`
}

// ServiceRecord is the classification result for one target.
//
// An active record always has a response time and a positive confidence. An
// inactive record never carries models or a version signal.
type ServiceRecord struct {
	Target         Target         `json:"target" yaml:"target"`
	IsActive       bool           `json:"is_active" yaml:"is_active"`
	VersionSignal  *string        `json:"version_signal,omitempty" yaml:"version_signal,omitempty"`
	Models         []ModelSummary `json:"models" yaml:"models"`
	ScannedAt      time.Time      `json:"scanned_at" yaml:"scanned_at"`
	ResponseTimeMS *int64         `json:"response_time_ms,omitempty" yaml:"response_time_ms,omitempty"`
	Confidence     float64        `json:"confidence" yaml:"confidence"`
	Notes          []string       `json:"notes" yaml:"notes"`
}

func (r ServiceRecord) ModelNames() []string {
	names := make([]string, 0, len(r.Models))
	for _, m := range r.Models {
		names = append(names, m.Name)
	}

	return names
}
