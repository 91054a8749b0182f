package ports

import (
	"context"
	"time"

	"github.com/waiwai24/free-ollama/internal/domain"
)

// ServiceProber issues a single probe against a target. Failures are reported
// inside the outcome, never as an error.
type ServiceProber interface {
	Probe(ctx context.Context, target domain.Target, timeout time.Duration) domain.ProbeOutcome
}
