// Package notifications holds the notification paging model, the durable
// cache ports and the unread marker flow shared with streaming.
package notifications

import (
	"context"

	"Fediview/internal/client"
	"Fediview/internal/client/mastodon"
	"Fediview/internal/client/misskey"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
	"Fediview/internal/core/paging"
)

// Item is one notification list entry.
type Item struct {
	ID   string // backend-local notification id
	Acct int64
	Next *string
}

func (i Item) ItemID() entities.ID { return entities.ID{AccountID: i.Acct, Local: i.ID} }
func (i Item) NextCursor() *string { return i.Next }

// RawNotification is the closed union of notification wire shapes.
type RawNotification struct {
	Misskey  *misskey.NotificationDTO
	Mastodon *mastodon.NotificationDTO
	Next     *string
}

// Deps are the collaborators a notification paging store needs.
type Deps struct {
	Registry accounts.Registry
	Adder    *CacheAdder
	Misskey  client.MisskeyProvider
	Mastodon client.MastodonProvider
}

// NewPagingStore builds the paginated notification list for one account.
// Accounts on a tier without a notification endpoint fail each load with a
// capability error rather than being probed.
func NewPagingStore(d Deps, accountID int64) *paging.Store[RawNotification, Item] {
	resolve := func(ctx context.Context) (paging.PreviousLoader[RawNotification], error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		mode, err := paging.Capability(account.Backend, paging.PageNotifications)
		if err != nil {
			return nil, err
		}
		if mode == paging.CursorLinkHeader {
			return &mstLoader{api: d.Mastodon.Get(account)}, nil
		}
		return &misskeyLoader{api: d.Misskey.Get(account)}, nil
	}

	conv := paging.ConverterFunc[RawNotification, Item](func(ctx context.Context, raw []RawNotification) ([]Item, error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(raw))
		for _, r := range raw {
			switch {
			case r.Misskey != nil:
				n, err := d.Adder.AddMisskey(ctx, account, *r.Misskey)
				if err != nil {
					return nil, err
				}
				items = append(items, Item{ID: n.ID.Local, Acct: account.ID, Next: r.Next})
			case r.Mastodon != nil:
				n, err := d.Adder.AddMastodon(ctx, account, *r.Mastodon)
				if err != nil {
					return nil, err
				}
				items = append(items, Item{ID: n.ID.Local, Acct: account.ID, Next: r.Next})
			}
		}
		return items, nil
	})

	return paging.NewStore("notifications", resolve, conv)
}

type misskeyLoader struct {
	api *misskey.Client
}

func (l *misskeyLoader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawNotification, error) {
	res, err := l.api.Notifications(ctx, cursor.Next())
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	next := res[len(res)-1].ID
	cursor.Set(&next)
	out := make([]RawNotification, len(res))
	for i := range res {
		dto := res[i]
		out[i] = RawNotification{Misskey: &dto, Next: &next}
	}
	return out, nil
}

// mstLoader pages Mastodon notifications by the max_id from the Link
// header.
type mstLoader struct {
	api *mastodon.Client
}

func (l *mstLoader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawNotification, error) {
	page, err := l.api.Notifications(ctx, cursor.Next())
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	cursor.Set(page.Next)
	out := make([]RawNotification, len(page.Items))
	for i := range page.Items {
		dto := page.Items[i]
		out[i] = RawNotification{Mastodon: &dto, Next: page.Next}
	}
	return out, nil
}
