package claim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "heirloom/pkg/domain"
	"heirloom/pkg/fingerprint"
	"heirloom/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code raised when the claim-key
// primary key rejects a duplicate insert.
const uniqueViolation = "23505"

// PostgresStore persists claim records. The claim key is the primary key,
// so the database itself enforces at-most-once claiming; a lost race
// surfaces as a unique violation, never as silent double settlement.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertIfAbsent(ctx context.Context, record Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claim_records (key, plan_id, beneficiary_index, claimed_at)
		VALUES ($1, $2, $3, $4)
	`, record.Key.Bytes(), uint64(record.PlanID), record.BeneficiaryIndex, record.ClaimedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert claim record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, key fingerprint.Digest) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM claim_records WHERE key = $1)`, key.Bytes(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check claim record: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListByPlan(ctx context.Context, planID id.PlanID) ([]Record, error) {
	return s.queryRecords(ctx, selectRecord+` WHERE plan_id = $1 ORDER BY claimed_at`, uint64(planID))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Record, error) {
	return s.queryRecords(ctx, selectRecord+` ORDER BY claimed_at`)
}

const selectRecord = `
	SELECT key, plan_id, beneficiary_index, claimed_at
	FROM claim_records
`

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query claim records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record Record
			key    []byte
			planID uint64
		)
		if err := rows.Scan(&key, &planID, &record.BeneficiaryIndex, &record.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scan claim record: %w", err)
		}
		record.Key, err = fingerprint.FromBytes(key)
		if err != nil {
			return nil, err
		}
		record.PlanID = id.PlanID(planID)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim records: %w", err)
	}
	return records, nil
}
