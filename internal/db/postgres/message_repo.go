package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Fediview/internal/core/messages"
)

type postgresMessageRepo struct {
	db *sql.DB
}

// NewMessageRepository creates a new PostgreSQL message cache
func NewMessageRepository(db *sql.DB) messages.CacheStore {
	return &postgresMessageRepo{db: db}
}

// Upsert inserts or refreshes one cached message. Streaming edits overwrite
// the paged copy, which is the intended last-write-wins behavior.
func (r *postgresMessageRepo) Upsert(ctx context.Context, rec messages.CachedMessage) error {
	query := `
		INSERT INTO message_cache (account_id, local_id, sender_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id, local_id)
		DO UPDATE SET text = EXCLUDED.text, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query,
		rec.AccountID, rec.LocalID, rec.SenderID, rec.Text, rec.CreatedAt, rec.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert message %s: %w", rec.LocalID, err)
	}
	return nil
}

// ListRecent returns the newest cached messages for an account.
func (r *postgresMessageRepo) ListRecent(ctx context.Context, accountID int64, limit int) ([]messages.CachedMessage, error) {
	query := `
		SELECT account_id, local_id, sender_id, text, created_at, updated_at
		FROM message_cache
		WHERE account_id = $1
		ORDER BY created_at DESC, local_id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query message cache: %w", err)
	}
	defer rows.Close()

	var out []messages.CachedMessage
	for rows.Next() {
		var rec messages.CachedMessage
		if err := rows.Scan(&rec.AccountID, &rec.LocalID, &rec.SenderID, &rec.Text, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached message: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message cache: %w", err)
	}
	return out, nil
}
