// Package timeline holds the note timeline paging models (home, local,
// global), one paging store per timeline kind per account.
package timeline

import (
	"context"

	"Fediview/internal/client"
	"Fediview/internal/client/mastodon"
	"Fediview/internal/client/misskey"
	"Fediview/internal/convert"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
	"Fediview/internal/core/paging"
)

// Item is one timeline entry.
type Item struct {
	NoteID entities.ID
	Next   *string
}

func (i Item) ItemID() entities.ID { return i.NoteID }
func (i Item) NextCursor() *string { return i.Next }

// RawNote is the closed union of timeline wire shapes. Exactly one payload
// field is set.
type RawNote struct {
	Misskey  *misskey.NoteDTO
	Mastodon *mastodon.StatusDTO
	Next     *string
}

// Deps are the collaborators a timeline store needs.
type Deps struct {
	Registry accounts.Registry
	Entities *entities.Store
	Misskey  client.MisskeyProvider
	Mastodon client.MastodonProvider
}

// NewPagingStore builds the paginated timeline of the given kind for one
// account. kind must be one of the timeline page kinds.
func NewPagingStore(d Deps, accountID int64, kind paging.PageKind) *paging.Store[RawNote, Item] {
	resolve := func(ctx context.Context) (paging.PreviousLoader[RawNote], error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		mode, err := paging.Capability(account.Backend, kind)
		if err != nil {
			return nil, err
		}
		if mode == paging.CursorLinkHeader {
			return &mastodonTimelineLoader{api: d.Mastodon.Get(account), kind: kind}, nil
		}
		return &misskeyTimelineLoader{api: d.Misskey.Get(account), kind: kind}, nil
	}

	conv := paging.ConverterFunc[RawNote, Item](func(ctx context.Context, raw []RawNote) ([]Item, error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		puts := make([]entities.Entity, 0, len(raw)*2)
		items := make([]Item, 0, len(raw))
		for _, r := range raw {
			switch {
			case r.Misskey != nil:
				// Embedded author rides along with the note.
				puts = append(puts, convert.UserFromMisskey(account, r.Misskey.User, false))
				n := convert.NoteFromMisskey(account, *r.Misskey)
				puts = append(puts, n)
				items = append(items, Item{NoteID: n.ID, Next: r.Next})
			case r.Mastodon != nil:
				puts = append(puts, convert.UserFromMastodon(account, r.Mastodon.Account))
				n := convert.NoteFromMastodon(account, *r.Mastodon)
				puts = append(puts, n)
				items = append(items, Item{NoteID: n.ID, Next: r.Next})
			}
		}
		d.Entities.PutAll(puts)
		return items, nil
	})

	return paging.NewStore(kind.String(), resolve, conv)
}

type misskeyTimelineLoader struct {
	api  *misskey.Client
	kind paging.PageKind
}

func (l *misskeyTimelineLoader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawNote, error) {
	res, err := l.api.Timeline(ctx, l.kind, cursor.Next())
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	next := res[len(res)-1].ID
	cursor.Set(&next)
	out := make([]RawNote, len(res))
	for i := range res {
		dto := res[i]
		out[i] = RawNote{Misskey: &dto, Next: &next}
	}
	return out, nil
}

type mastodonTimelineLoader struct {
	api  *mastodon.Client
	kind paging.PageKind
}

func (l *mastodonTimelineLoader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawNote, error) {
	var page *mastodon.Page[mastodon.StatusDTO]
	var err error
	switch l.kind {
	case paging.PageHomeTimeline:
		page, err = l.api.HomeTimeline(ctx, cursor.Next())
	case paging.PageLocalTimeline:
		page, err = l.api.PublicTimeline(ctx, true, cursor.Next())
	default:
		page, err = l.api.PublicTimeline(ctx, false, cursor.Next())
	}
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	cursor.Set(page.Next)
	out := make([]RawNote, len(page.Items))
	for i := range page.Items {
		dto := page.Items[i]
		out[i] = RawNote{Mastodon: &dto, Next: page.Next}
	}
	return out, nil
}
