package storage

import (
	"context"

	"github.com/devrewind/github-rewind/internal/domain"
)

// Storage is the abstract interface for the optional report history. Only
// finished reports land here; the aggregation engine itself persists
// nothing.
type Storage interface {
	SaveReport(ctx context.Context, report *domain.Report) error
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	ListReports(ctx context.Context, username string, limit int) ([]*domain.Report, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
