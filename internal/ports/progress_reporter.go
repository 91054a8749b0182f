package ports

import (
	"context"

	"github.com/waiwai24/free-ollama/internal/domain"
)

type ProgressEvent struct {
	Done   int
	Total  int
	Record domain.ServiceRecord
}

// ProgressReporter receives one event per classified target. It is called
// concurrently from scan workers.
type ProgressReporter interface {
	Report(ctx context.Context, event ProgressEvent)
}
