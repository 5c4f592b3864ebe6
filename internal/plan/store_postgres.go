package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// PostgresStore persists plans in the plans table. Beneficiary lists are
// small and bounded, so they live in a JSONB column instead of a join
// table; every mutation rewrites the whole list under SELECT FOR UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *Plan) error {
	beneficiaries, err := json.Marshal(p.Beneficiaries)
	if err != nil {
		return fmt.Errorf("marshal beneficiaries: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO plans (
			owner_id, title, description, total_amount, asset,
			distribution_method, beneficiaries, total_allocation_bp, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		uuid.UUID(p.OwnerID),
		p.Title,
		p.Description,
		p.TotalAmount,
		string(p.Asset),
		string(p.DistributionMethod),
		beneficiaries,
		p.TotalAllocationBp,
		string(p.Status),
		p.CreatedAt,
	).Scan((*uint64)(&p.ID))
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, planID id.PlanID) (*Plan, error) {
	return scanPlan(s.db.QueryRowContext(ctx, selectPlan+` WHERE id = $1`, uint64(planID)))
}

func (s *PostgresStore) Execute(ctx context.Context, planID id.PlanID, validate func(*Plan) error, mutate func(*Plan)) (*Plan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin plan mutation: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPlan(tx.QueryRowContext(ctx, selectPlan+` WHERE id = $1 FOR UPDATE`, uint64(planID)))
	if err != nil {
		return nil, err
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	mutate(p)

	beneficiaries, err := json.Marshal(p.Beneficiaries)
	if err != nil {
		return nil, fmt.Errorf("marshal beneficiaries: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE plans
		SET beneficiaries = $2, total_allocation_bp = $3, status = $4
		WHERE id = $1
	`, uint64(p.ID), beneficiaries, p.TotalAllocationBp, string(p.Status))
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit plan mutation: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]Plan, error) {
	return s.queryPlans(ctx, selectPlan+` WHERE owner_id = $1 ORDER BY id`, uuid.UUID(ownerID))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Plan, error) {
	return s.queryPlans(ctx, selectPlan+` ORDER BY id`)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Plan, error) {
	return s.queryPlans(ctx, selectPlan+` WHERE status = $1 ORDER BY id`, string(status))
}

func (s *PostgresStore) ListByOwnerAndStatus(ctx context.Context, ownerID id.UserID, status Status) ([]Plan, error) {
	return s.queryPlans(ctx, selectPlan+` WHERE owner_id = $1 AND status = $2 ORDER BY id`, uuid.UUID(ownerID), string(status))
}

func (s *PostgresStore) queryPlans(ctx context.Context, query string, args ...any) ([]Plan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

const selectPlan = `
	SELECT id, owner_id, title, description, total_amount, asset,
	       distribution_method, beneficiaries, total_allocation_bp, status, created_at
	FROM plans
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*Plan, error) {
	var (
		p             Plan
		planID        uint64
		ownerID       uuid.UUID
		asset         string
		method        string
		beneficiaries []byte
		status        string
	)
	err := row.Scan(
		&planID,
		&ownerID,
		&p.Title,
		&p.Description,
		&p.TotalAmount,
		&asset,
		&method,
		&beneficiaries,
		&p.TotalAllocationBp,
		&status,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	if err := json.Unmarshal(beneficiaries, &p.Beneficiaries); err != nil {
		return nil, fmt.Errorf("unmarshal beneficiaries: %w", err)
	}
	p.ID = id.PlanID(planID)
	p.OwnerID = id.UserID(ownerID)
	p.Asset = id.AssetType(asset)
	p.DistributionMethod = id.DistributionMethod(method)
	p.Status = Status(status)
	return &p, nil
}
