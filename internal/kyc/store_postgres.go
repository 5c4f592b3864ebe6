package kyc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// PostgresStore persists verification statuses in the kyc_statuses table.
// Mutate serializes transitions per user with SELECT FOR UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Mutate(ctx context.Context, userID id.UserID, validate func(*Status) error, mutate func(*Status)) (*Status, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin kyc mutation: %w", err)
	}
	defer tx.Rollback()

	status, err := scanStatus(tx.QueryRowContext(ctx, selectStatus+` WHERE user_id = $1 FOR UPDATE`, uuid.UUID(userID)))
	if errors.Is(err, sql.ErrNoRows) {
		status = &Status{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	if err := validate(status); err != nil {
		return nil, err
	}
	mutate(status)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kyc_statuses (
			user_id, submitted, submitted_at, approved, approved_at, rejected, rejected_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			submitted = EXCLUDED.submitted,
			submitted_at = EXCLUDED.submitted_at,
			approved = EXCLUDED.approved,
			approved_at = EXCLUDED.approved_at,
			rejected = EXCLUDED.rejected,
			rejected_at = EXCLUDED.rejected_at
	`,
		uuid.UUID(status.UserID),
		status.Submitted, nullTime(status.SubmittedAt),
		status.Approved, nullTime(status.ApprovedAt),
		status.Rejected, nullTime(status.RejectedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert kyc status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit kyc mutation: %w", err)
	}
	return status, nil
}

func (s *PostgresStore) Find(ctx context.Context, userID id.UserID) (*Status, error) {
	status, err := scanStatus(s.db.QueryRowContext(ctx, selectStatus+` WHERE user_id = $1`, uuid.UUID(userID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return status, err
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Status, error) {
	rows, err := s.db.QueryContext(ctx, selectStatus+` ORDER BY submitted_at`)
	if err != nil {
		return nil, fmt.Errorf("query kyc statuses: %w", err)
	}
	defer rows.Close()

	var statuses []Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kyc statuses: %w", err)
	}
	return statuses, nil
}

const selectStatus = `
	SELECT user_id, submitted, submitted_at, approved, approved_at, rejected, rejected_at
	FROM kyc_statuses
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*Status, error) {
	var (
		status      Status
		userID      uuid.UUID
		submittedAt sql.NullTime
		approvedAt  sql.NullTime
		rejectedAt  sql.NullTime
	)
	err := row.Scan(
		&userID,
		&status.Submitted, &submittedAt,
		&status.Approved, &approvedAt,
		&status.Rejected, &rejectedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan kyc status: %w", err)
	}
	status.UserID = id.UserID(userID)
	status.SubmittedAt = submittedAt.Time
	status.ApprovedAt = approvedAt.Time
	status.RejectedAt = rejectedAt.Time
	return &status, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
