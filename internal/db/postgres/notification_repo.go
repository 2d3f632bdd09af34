package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Fediview/internal/core/notifications"
)

type postgresNotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepository creates a new PostgreSQL notification cache
func NewNotificationRepository(db *sql.DB) notifications.CacheStore {
	return &postgresNotificationRepo{db: db}
}

// Upsert inserts or refreshes one cached notification. Last write wins on
// the payload; arrival order is the caller's concern.
func (r *postgresNotificationRepo) Upsert(ctx context.Context, rec notifications.CachedNotification) error {
	query := `
		INSERT INTO notification_cache (account_id, local_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, local_id)
		DO UPDATE SET type = EXCLUDED.type, payload = EXCLUDED.payload`

	if _, err := r.db.ExecContext(ctx, query,
		rec.AccountID, rec.LocalID, rec.Type, rec.Payload, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert notification %s: %w", rec.LocalID, err)
	}
	return nil
}

// ListByAccount returns the newest cached notifications for an account.
func (r *postgresNotificationRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]notifications.CachedNotification, error) {
	query := `
		SELECT account_id, local_id, type, payload, created_at
		FROM notification_cache
		WHERE account_id = $1
		ORDER BY created_at DESC, local_id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification cache: %w", err)
	}
	defer rows.Close()

	var out []notifications.CachedNotification
	for rows.Next() {
		var rec notifications.CachedNotification
		if err := rows.Scan(&rec.AccountID, &rec.LocalID, &rec.Type, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached notification: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification cache: %w", err)
	}
	return out, nil
}
