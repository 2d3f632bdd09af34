// Package messages holds the chat message cache port and paging model.
// Only the Misskey family exposes a chat collection; the strategy table
// rejects other backends before a request is attempted.
package messages

import (
	"context"
	"time"

	"Fediview/internal/client"
	"Fediview/internal/client/misskey"
	"Fediview/internal/convert"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
	"Fediview/internal/core/paging"
)

// CachedMessage is the durable cache row for one chat message.
type CachedMessage struct {
	AccountID int64
	LocalID   string
	SenderID  string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CacheStore is the durable message cache. Persistence collaborator.
type CacheStore interface {
	Upsert(ctx context.Context, rec CachedMessage) error
	ListRecent(ctx context.Context, accountID int64, limit int) ([]CachedMessage, error)
}

// Item is one message list entry.
type Item struct {
	ID   string
	Acct int64
	Next *string
}

func (i Item) ItemID() entities.ID { return entities.ID{AccountID: i.Acct, Local: i.ID} }
func (i Item) NextCursor() *string { return i.Next }

// Deps are the collaborators a message paging store needs.
type Deps struct {
	Registry accounts.Registry
	Entities *entities.Store
	Cache    CacheStore
	Misskey  client.MisskeyProvider
}

// NewPagingStore builds the paginated message list for one account.
func NewPagingStore(d Deps, accountID int64) *paging.Store[misskey.MessageDTO, Item] {
	resolve := func(ctx context.Context) (paging.PreviousLoader[misskey.MessageDTO], error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if _, err := paging.Capability(account.Backend, paging.PageMessages); err != nil {
			return nil, err
		}
		api := d.Misskey.Get(account)
		return paging.LoaderFunc[misskey.MessageDTO](func(ctx context.Context, cursor *paging.IDHolder) ([]misskey.MessageDTO, error) {
			res, err := api.Messages(ctx, cursor.Next())
			if err != nil {
				return nil, err
			}
			if len(res) == 0 {
				return nil, nil
			}
			next := res[len(res)-1].ID
			cursor.Set(&next)
			return res, nil
		}), nil
	}

	conv := paging.ConverterFunc[misskey.MessageDTO, Item](func(ctx context.Context, raw []misskey.MessageDTO) ([]Item, error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(raw))
		for _, dto := range raw {
			m, err := Ingest(ctx, d.Entities, d.Cache, account, dto)
			if err != nil {
				return nil, err
			}
			items = append(items, Item{ID: m.ID.Local, Acct: account.ID})
		}
		return items, nil
	})

	return paging.NewStore("messages", resolve, conv)
}

// Ingest normalizes one raw message into the entity store and the durable
// cache. Shared by the paginated loader and the streaming sub-handler.
func Ingest(ctx context.Context, es *entities.Store, cache CacheStore, account accounts.Account, dto misskey.MessageDTO) (entities.Message, error) {
	puts := make([]entities.Entity, 0, 2)
	if dto.User != nil {
		puts = append(puts, convert.UserFromMisskey(account, *dto.User, false))
	}
	m := convert.MessageFromMisskey(account, dto)
	puts = append(puts, m)
	es.PutAll(puts)

	return m, cache.Upsert(ctx, CachedMessage{
		AccountID: account.ID,
		LocalID:   dto.ID,
		SenderID:  dto.UserID,
		Text:      dto.Text,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	})
}
