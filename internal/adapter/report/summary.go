package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/waiwai24/free-ollama/internal/domain"
)

// PrintSummary writes a human readable overview of the active services.
func PrintSummary(w io.Writer, report domain.ScanReport) error {
	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)

	if _, err := fmt.Fprintf(w, "Scan %s finished in %s: %d/%d active services, %d models (%d unique)\n",
		report.ScanID, elapsed, report.ActiveServices, report.TotalTargets, report.TotalModels, len(report.UniqueModelNames)); err != nil {
		return err
	}

	if report.AverageResponseTimeMS != nil {
		if _, err := fmt.Fprintf(w, "Average response time: %.1f ms\n", *report.AverageResponseTimeMS); err != nil {
			return err
		}
	}

	if report.ActiveServices == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "\nENDPOINT\tSCHEME\tCOUNTRY\tRESPONSE\tFORMAT\tMODELS")

	for _, s := range report.ActiveRecords() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Target.Endpoint(),
			s.Target.Scheme,
			orDash(s.Target.Country),
			responseTime(s.ResponseTimeMS),
			orDash(deref(s.VersionSignal)),
			strings.Join(s.ModelNames(), ", "),
		)
	}

	return tw.Flush()
}

func responseTime(ms *int64) string {
	if ms == nil {
		return "-"
	}

	return strconv.FormatInt(*ms, 10) + "ms"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
