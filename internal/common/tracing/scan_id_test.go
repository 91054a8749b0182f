package tracing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWithScanID_AssignsVersion7ID(t *testing.T) {
	ctx := WithScanID(context.Background())

	id, err := uuid.Parse(GetScanID(ctx))
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())
}

func TestWithScanID_KeepsExistingID(t *testing.T) {
	ctx := WithScanID(context.Background())

	require.Equal(t, GetScanID(ctx), GetScanID(WithScanID(ctx)))
}

func TestGetScanID_EmptyWithoutID(t *testing.T) {
	require.Empty(t, GetScanID(context.Background()))
}
