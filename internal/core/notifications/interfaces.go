package notifications

import (
	"context"
	"time"
)

// CachedNotification is the durable cache row for one notification. Payload
// keeps the raw wire item so a richer view can be rebuilt without refetch.
type CachedNotification struct {
	AccountID int64
	LocalID   string
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// CacheStore is the durable notification cache. Persistence collaborator;
// the engine only upserts and reads.
type CacheStore interface {
	Upsert(ctx context.Context, rec CachedNotification) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]CachedNotification, error)
}

// UnreadStore tracks unread notification markers per account. Markers are
// added by streaming events and cleared when the account's notification
// view is opened.
type UnreadStore interface {
	Add(ctx context.Context, accountID int64, notificationID string) error
	Count(ctx context.Context, accountID int64) (int, error)
	Clear(ctx context.Context, accountID int64) error
}
