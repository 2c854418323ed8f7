package postgres

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/devrewind/github-rewind/internal/domain"
	apperrors "github.com/devrewind/github-rewind/internal/errors"
	"github.com/devrewind/github-rewind/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(databaseURL string) (storage.Storage, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		year INTEGER NOT NULL,
		snapshot JSONB NOT NULL,
		slides JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_reports_username ON reports(username);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport stores one finished report
func (s *postgresStorage) SaveReport(ctx context.Context, report *domain.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, username, year, snapshot, slides, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, report.ID, report.Username, report.Year, string(report.Snapshot), nullableJSON(report.Slides), report.CreatedAt)
	return err
}

// GetReport retrieves one report by ID
func (s *postgresStorage) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, year, snapshot, slides, created_at
		FROM reports WHERE id = $1
	`, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("report")
	}
	return report, err
}

// ListReports lists recent reports, optionally filtered by username
func (s *postgresStorage) ListReports(ctx context.Context, username string, limit int) ([]*domain.Report, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if username != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, username, year, snapshot, slides, created_at
			FROM reports WHERE username = $1
			ORDER BY created_at DESC LIMIT $2
		`, username, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, username, year, snapshot, slides, created_at
			FROM reports
			ORDER BY created_at DESC LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var report domain.Report
	var snapshot string
	var slides sql.NullString
	if err := row.Scan(&report.ID, &report.Username, &report.Year, &snapshot, &slides, &report.CreatedAt); err != nil {
		return nil, err
	}
	report.Snapshot = []byte(snapshot)
	if slides.Valid {
		report.Slides = []byte(slides.String)
	}
	return &report, nil
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
