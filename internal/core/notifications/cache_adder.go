package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"Fediview/internal/client/mastodon"
	"Fediview/internal/client/misskey"
	"Fediview/internal/convert"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
)

// CacheAdder normalizes one raw notification into the entity store and the
// durable cache. Both the paginated loader and the streaming sub-handler go
// through it, which is what keeps the two arrival paths convergent on the
// same records.
type CacheAdder struct {
	entities *entities.Store
	cache    CacheStore
}

func NewCacheAdder(es *entities.Store, cache CacheStore) *CacheAdder {
	return &CacheAdder{entities: es, cache: cache}
}

// AddMisskey ingests a Misskey notification.
func (a *CacheAdder) AddMisskey(ctx context.Context, account accounts.Account, dto misskey.NotificationDTO) (entities.Notification, error) {
	puts := make([]entities.Entity, 0, 3)
	if dto.User != nil {
		puts = append(puts, convert.UserFromMisskey(account, *dto.User, false))
	}
	if dto.Note != nil {
		puts = append(puts, convert.NoteFromMisskey(account, *dto.Note))
	}
	n := convert.NotificationFromMisskey(account, dto)
	puts = append(puts, n)
	a.entities.PutAll(puts)

	payload, err := json.Marshal(dto)
	if err != nil {
		return n, fmt.Errorf("encoding notification payload: %w", err)
	}
	if err := a.cache.Upsert(ctx, CachedNotification{
		AccountID: account.ID,
		LocalID:   dto.ID,
		Type:      dto.Type,
		Payload:   payload,
		CreatedAt: n.CreatedAt,
	}); err != nil {
		return n, fmt.Errorf("caching notification %s: %w", dto.ID, err)
	}
	return n, nil
}

// AddMastodon ingests a Mastodon notification.
func (a *CacheAdder) AddMastodon(ctx context.Context, account accounts.Account, dto mastodon.NotificationDTO) (entities.Notification, error) {
	puts := make([]entities.Entity, 0, 3)
	if dto.Account != nil {
		puts = append(puts, convert.UserFromMastodon(account, *dto.Account))
	}
	if dto.Status != nil {
		puts = append(puts, convert.NoteFromMastodon(account, *dto.Status))
	}
	n := convert.NotificationFromMastodon(account, dto)
	puts = append(puts, n)
	a.entities.PutAll(puts)

	payload, err := json.Marshal(dto)
	if err != nil {
		return n, fmt.Errorf("encoding notification payload: %w", err)
	}
	if err := a.cache.Upsert(ctx, CachedNotification{
		AccountID: account.ID,
		LocalID:   dto.ID,
		Type:      dto.Type,
		Payload:   payload,
		CreatedAt: n.CreatedAt,
	}); err != nil {
		return n, fmt.Errorf("caching notification %s: %w", dto.ID, err)
	}
	return n, nil
}
