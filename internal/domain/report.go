package domain

import (
	"slices"
	"strings"
	"time"
)

// ScanReport aggregates the records of one scan run.
type ScanReport struct {
	ScanID                string          `json:"scan_id" yaml:"scan_id"`
	StartedAt             time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt            time.Time       `json:"finished_at" yaml:"finished_at"`
	TotalTargets          int             `json:"total_targets" yaml:"total_targets"`
	ActiveServices        int             `json:"active_services" yaml:"active_services"`
	TotalModels           int             `json:"total_models" yaml:"total_models"`
	UniqueModelNames      []string        `json:"unique_model_names" yaml:"unique_model_names"`
	AverageResponseTimeMS *float64        `json:"average_response_time_ms,omitempty" yaml:"average_response_time_ms,omitempty"`
	FastestService        *Target         `json:"fastest_service,omitempty" yaml:"fastest_service,omitempty"`
	SlowestService        *Target         `json:"slowest_service,omitempty" yaml:"slowest_service,omitempty"`
	Services              []ServiceRecord `json:"services" yaml:"services"`
}

// NewScanReport builds a report from records in any order. Services are
// sorted active first, then by endpoint, so reports of the same scan are
// stable. Response time statistics only consider active services.
func NewScanReport(scanID string, startedAt, finishedAt time.Time, records []ServiceRecord) ScanReport {
	services := slices.Clone(records)
	if services == nil {
		services = []ServiceRecord{}
	}

	slices.SortStableFunc(services, func(a, b ServiceRecord) int {
		if a.IsActive != b.IsActive {
			if a.IsActive {
				return -1
			}

			return 1
		}

		if c := strings.Compare(a.Target.Endpoint(), b.Target.Endpoint()); c != 0 {
			return c
		}

		return strings.Compare(a.Target.SourceLabel, b.Target.SourceLabel)
	})

	report := ScanReport{
		ScanID:           scanID,
		StartedAt:        startedAt,
		FinishedAt:       finishedAt,
		TotalTargets:     len(services),
		UniqueModelNames: []string{},
		Services:         services,
	}

	var (
		seen             = make(map[string]struct{})
		sum              int64
		timed            int
		fastest, slowest *ServiceRecord
	)

	for i := range services {
		s := &services[i]
		if !s.IsActive {
			continue
		}

		report.ActiveServices++
		report.TotalModels += len(s.Models)

		for _, m := range s.Models {
			if _, ok := seen[m.Name]; ok || m.Name == "" {
				continue
			}

			seen[m.Name] = struct{}{}
			report.UniqueModelNames = append(report.UniqueModelNames, m.Name)
		}

		if s.ResponseTimeMS == nil {
			continue
		}

		sum += *s.ResponseTimeMS
		timed++

		if fastest == nil || *s.ResponseTimeMS < *fastest.ResponseTimeMS {
			fastest = s
		}

		if slowest == nil || *s.ResponseTimeMS > *slowest.ResponseTimeMS {
			slowest = s
		}
	}

	slices.Sort(report.UniqueModelNames)

	if timed > 0 {
		avg := float64(sum) / float64(timed)
		report.AverageResponseTimeMS = &avg

		fastestTarget, slowestTarget := fastest.Target, slowest.Target
		report.FastestService = &fastestTarget
		report.SlowestService = &slowestTarget
	}

	return report
}

func (r ScanReport) ActiveRecords() []ServiceRecord {
	active := make([]ServiceRecord, 0, r.ActiveServices)
	for _, s := range r.Services {
		if s.IsActive {
			active = append(active, s)
		}
	}

	return active
}
