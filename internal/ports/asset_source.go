package ports

import (
	"context"

	"github.com/waiwai24/free-ollama/internal/domain"
)

type AssetSource interface {
	Assets(ctx context.Context) ([]domain.AssetRow, error)
}
