// Package postgres owns the relational schema. Ensure is applied at startup
// and by integration tests; statements are idempotent so repeated boots are
// safe.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id                  BIGSERIAL PRIMARY KEY,
	owner_id            UUID NOT NULL,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	total_amount        BIGINT NOT NULL,
	asset               TEXT NOT NULL,
	distribution_method TEXT NOT NULL,
	beneficiaries       JSONB NOT NULL,
	total_allocation_bp INTEGER NOT NULL,
	status              TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plans_owner ON plans (owner_id);
CREATE INDEX IF NOT EXISTS idx_plans_status ON plans (status);

CREATE TABLE IF NOT EXISTS claim_records (
	key               BYTEA PRIMARY KEY,
	plan_id           BIGINT NOT NULL,
	beneficiary_index INTEGER NOT NULL,
	claimed_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claim_records_plan ON claim_records (plan_id);

CREATE TABLE IF NOT EXISTS kyc_statuses (
	user_id      UUID PRIMARY KEY,
	submitted    BOOLEAN NOT NULL DEFAULT FALSE,
	submitted_at TIMESTAMPTZ,
	approved     BOOLEAN NOT NULL DEFAULT FALSE,
	approved_at  TIMESTAMPTZ,
	rejected     BOOLEAN NOT NULL DEFAULT FALSE,
	rejected_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS admin_authority (
	singleton      BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	user_id        UUID NOT NULL,
	initialized_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	version   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_entries (
	id          UUID PRIMARY KEY,
	actor_id    UUID NOT NULL,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL DEFAULT '',
	entity_id   TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL,
	published   BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_audit_unpublished ON audit_entries (recorded_at) WHERE NOT published;
`

// Ensure creates any missing tables and indexes.
func Ensure(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
