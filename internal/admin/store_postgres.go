package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// PostgresStore persists the admin registration in a single-row table.
// The table carries CHECK (singleton) and a primary key on the singleton
// column, so the insert can only ever succeed once.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SetIfUnset(ctx context.Context, record Record) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_authority (singleton, user_id, initialized_at)
		VALUES (TRUE, $1, $2)
		ON CONFLICT (singleton) DO NOTHING
	`, uuid.UUID(record.UserID), record.InitializedAt)
	if err != nil {
		return fmt.Errorf("insert admin registration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert admin registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context) (Record, error) {
	var (
		record Record
		userID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, initialized_at FROM admin_authority WHERE singleton = TRUE
	`).Scan(&userID, &record.InitializedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load admin registration: %w", err)
	}
	record.UserID = id.UserID(userID)
	return record, nil
}
