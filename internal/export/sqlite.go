package export

import (
	"context"
	"fmt"

	"moneyanalysis/internal/storage"
)

// SQLite rewrites a database file on every export.
type SQLite struct {
	path string
	repo *storage.SQLiteRepository
}

func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Export(ctx context.Context, b Batch) error {
	if err := s.Close(); err != nil {
		return err
	}
	repo, err := storage.RecreateSQLiteRepository(s.path)
	if err != nil {
		return fmt.Errorf("open export database: %w", err)
	}
	s.repo = repo
	return repo.SaveRun(ctx, b.RunID, b.GeneratedAt, b.Months, b.Dataset, b.Reports)
}

// Repository exposes the database written by the last export.
func (s *SQLite) Repository() *storage.SQLiteRepository { return s.repo }

func (s *SQLite) Close() error {
	if s.repo == nil {
		return nil
	}
	err := s.repo.Close()
	s.repo = nil
	return err
}
