package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "heirloom/pkg/domain"
	txcontext "heirloom/pkg/platform/tx"
)

// PostgresStore implements Store using the transactional outbox pattern.
// Entries are written once with published = FALSE; the outbox worker drains
// them to Kafka and flips the flag, so a broker outage never loses an entry.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_entries (
			id, actor_id, action, entity_type, entity_id,
			detail, client_ip, user_agent, recorded_at, published
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID,
		uuid.UUID(entry.ActorID),
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		entry.Detail,
		entry.ClientIP,
		entry.UserAgent,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Entry, error) {
	query := selectColumns + ` ORDER BY recorded_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	query := selectColumns + ` ORDER BY recorded_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FetchUnpublished returns the oldest unpublished entries. SKIP LOCKED
// keeps workers sharing a transaction off the same rows; outside one the
// locks end with the statement, so delivery is at-least-once and stream
// consumers dedupe on the entry id.
func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]Entry, error) {
	query := selectColumns + `
		WHERE published = FALSE
		ORDER BY recorded_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE audit_entries SET published = TRUE WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("mark audit entries published: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, actor_id, action, entity_type, entity_id,
	       detail, client_ip, user_agent, recorded_at
	FROM audit_entries
`

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var (
			entry   Entry
			actorID uuid.UUID
			action  string
		)
		err := rows.Scan(
			&entry.ID,
			&actorID,
			&action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Detail,
			&entry.ClientIP,
			&entry.UserAgent,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ActorID = id.UserID(actorID)
		entry.Action = Action(action)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
