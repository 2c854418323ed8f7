package sqlite

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devrewind/github-rewind/internal/domain"
	apperrors "github.com/devrewind/github-rewind/internal/errors"
	"github.com/devrewind/github-rewind/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		year INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		slides TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_username ON reports(username);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport stores one finished report
func (s *sqliteStorage) SaveReport(ctx context.Context, report *domain.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, username, year, snapshot, slides, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.ID, report.Username, report.Year, string(report.Snapshot), nullableJSON(report.Slides), report.CreatedAt)
	return err
}

// GetReport retrieves one report by ID
func (s *sqliteStorage) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, year, snapshot, slides, created_at
		FROM reports WHERE id = ?
	`, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("report")
	}
	return report, err
}

// ListReports lists recent reports, optionally filtered by username
func (s *sqliteStorage) ListReports(ctx context.Context, username string, limit int) ([]*domain.Report, error) {
	query := `
		SELECT id, username, year, snapshot, slides, created_at
		FROM reports
	`
	args := []interface{}{}
	if username != "" {
		query += ` WHERE username = ?`
		args = append(args, username)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *sqliteStorage) Close() error {
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
