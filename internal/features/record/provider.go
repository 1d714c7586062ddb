package record

import (
	"context"

	"go-admin/pkg/pagination"
)

// Provider executes compiled filters against one storage backend. Count and
// Find receive the same filter for a given request.
type Provider[F any] interface {
	Count(ctx context.Context, filter F) (int64, error)
	Find(ctx context.Context, plan pagination.Plan[F]) ([]Record, error)
}
