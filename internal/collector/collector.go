package collector

import (
	"context"

	"github.com/devrewind/github-rewind/internal/domain"
)

// Collector builds one yearly activity snapshot per call. Implementations
// are cheap to construct and carry the caller's credential; create one per
// request and discard it.
type Collector interface {
	// BuildSnapshot aggregates the subject's activity for the given year
	// into a single immutable snapshot.
	BuildSnapshot(ctx context.Context, username string, year int) (*domain.YearlySnapshot, error)
}
