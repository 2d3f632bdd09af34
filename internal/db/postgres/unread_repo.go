package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Fediview/internal/core/notifications"
)

type postgresUnreadRepo struct {
	db *sql.DB
}

// NewUnreadRepository creates a new PostgreSQL unread notification marker store
func NewUnreadRepository(db *sql.DB) notifications.UnreadStore {
	return &postgresUnreadRepo{db: db}
}

// Add records an unread marker. Idempotent: re-adding the same
// notification is a no-op.
func (r *postgresUnreadRepo) Add(ctx context.Context, accountID int64, notificationID string) error {
	query := `
		INSERT INTO unread_notifications (account_id, notification_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, notification_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, accountID, notificationID); err != nil {
		return fmt.Errorf("failed to add unread marker: %w", err)
	}
	return nil
}

// Count returns the number of unread markers for an account.
func (r *postgresUnreadRepo) Count(ctx context.Context, accountID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM unread_notifications WHERE account_id = $1`
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread markers: %w", err)
	}
	return count, nil
}

// Clear removes all unread markers for an account.
func (r *postgresUnreadRepo) Clear(ctx context.Context, accountID int64) error {
	query := `DELETE FROM unread_notifications WHERE account_id = $1`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to clear unread markers: %w", err)
	}
	return nil
}
