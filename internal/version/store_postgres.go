package version

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"heirloom/pkg/platform/sentinel"
)

// PostgresStore persists the version counter in a single-row table. The
// guarded UPDATE in the upsert keeps the counter monotonic even under
// concurrent writers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context) (uint32, bool, error) {
	var version uint32
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM schema_version WHERE singleton = TRUE`,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load version: %w", err)
	}
	return version, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, version uint32) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO schema_version (singleton, version)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET version = EXCLUDED.version
		WHERE schema_version.version <= EXCLUDED.version
	`, version)
	if err != nil {
		return fmt.Errorf("store version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store version: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}
