// Package users holds the follow/follower paging model: one paginated list
// of users per (account, user, direction), normalized into the entity store
// and exposed through the generic paging state machine.
package users

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

// Direction selects which side of the follow edge is listed.
type Direction int

const (
	Followers Direction = iota
	Following
)

func (d Direction) pageKind() paging.PageKind {
	if d == Followers {
		return paging.PageFollowers
	}
	return paging.PageFollowing
}

func (d Direction) String() string {
	if d == Followers {
		return "followers"
	}
	return "following"
}

// Item is one list entry: the normalized user reference plus the cursor
// that was valid after the page it arrived on.
type Item struct {
	UserID entities.ID
	Next   *string
}

func (i Item) ItemID() entities.ID { return i.UserID }
func (i Item) NextCursor() *string { return i.Next }

// RawFollow is the closed union of follow-listing wire shapes across
// backends. Exactly one of the payload fields is set.
type RawFollow struct {
	Misskey    *misskey.FollowDTO  // v11 and later
	MisskeyV10 *misskey.UserDTO    // v10 positional envelope entries
	Mastodon   *mastodon.AccountDTO
	Next       *string // cursor valid after this item's page
}

// Deps are the collaborators a follow paging store needs.
type Deps struct {
	Registry accounts.Registry
	Entities *entities.Store
	Misskey  client.MisskeyProvider
	Mastodon client.MastodonProvider
}

// NewPagingStore builds the paginated follower/following list for userID on
// the given account. The loader configuration is re-resolved from the
// registry on every load, so a backend tier change takes effect without
// rebuilding the store.
func NewPagingStore(d Deps, accountID int64, userID string, dir Direction) *paging.Store[RawFollow, Item] {
	resolve := func(ctx context.Context) (paging.PreviousLoader[RawFollow], error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		mode, err := paging.Capability(account.Backend, dir.pageKind())
		if err != nil {
			return nil, err
		}
		switch mode {
		case paging.CursorUntilID:
			return &defaultLoader{api: d.Misskey.Get(account), userID: userID, dir: dir}, nil
		case paging.CursorPositional:
			return &v10Loader{api: d.Misskey.Get(account), userID: userID, dir: dir}, nil
		default:
			return &mastodonLoader{api: d.Mastodon.Get(account), userID: userID, dir: dir}, nil
		}
	}

	conv := paging.ConverterFunc[RawFollow, Item](func(ctx context.Context, raw []RawFollow) ([]Item, error) {
		account, err := d.Registry.Get(ctx, accountID)
		if err != nil {
			return nil, err
		}
		users := make([]entities.Entity, 0, len(raw))
		items := make([]Item, 0, len(raw))
		for _, r := range raw {
			var u entities.User
			switch {
			case r.Misskey != nil:
				dto := r.Misskey.User()
				if dto == nil {
					continue
				}
				u = convert.UserFromMisskey(account, *dto, true)
			case r.MisskeyV10 != nil:
				u = convert.UserFromMisskey(account, *r.MisskeyV10, true)
			case r.Mastodon != nil:
				u = convert.UserFromMastodon(account, *r.Mastodon)
			default:
				continue
			}
			users = append(users, u)
			items = append(items, Item{UserID: u.ID, Next: r.Next})
		}
		d.Entities.PutAll(users)
		return items, nil
	})

	return paging.NewStore("users-"+dir.String(), resolve, conv)
}

// defaultLoader pages with untilId derived from the trailing follow edge id
// (v11 and later).
type defaultLoader struct {
	api    *misskey.Client
	userID string
	dir    Direction
}

func (l *defaultLoader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawFollow, error) {
	var res []misskey.FollowDTO
	var err error
	if l.dir == Followers {
		res, err = l.api.Followers(ctx, l.userID, cursor.Next())
	} else {
		res, err = l.api.Following(ctx, l.userID, cursor.Next())
	}
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		// Terminal: leave the cursor alone so the next call is another
		// cheap empty fetch, and a backend that grows past the boundary
		// still resumes.
		return nil, nil
	}
	next := res[len(res)-1].ID
	cursor.Set(&next)
	out := make([]RawFollow, len(res))
	for i := range res {
		dto := res[i]
		out[i] = RawFollow{Misskey: &dto, Next: &next}
	}
	return out, nil
}

// v10Loader pages with the explicit positional token from the response
// envelope.
type v10Loader struct {
	api    *misskey.Client
	userID string
	dir    Direction
}

func (l *v10Loader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawFollow, error) {
	var page *misskey.V10FollowPage
	var err error
	if l.dir == Followers {
		page, err = l.api.FollowersV10(ctx, l.userID, cursor.Next())
	} else {
		page, err = l.api.FollowingV10(ctx, l.userID, cursor.Next())
	}
	if err != nil {
		return nil, err
	}
	cursor.Set(page.Next)
	out := make([]RawFollow, len(page.Users))
	for i := range page.Users {
		dto := page.Users[i]
		out[i] = RawFollow{MisskeyV10: &dto, Next: page.Next}
	}
	return out, nil
}

// mastodonLoader pages with max_id decoded from the Link header.
type mastodonLoader struct {
	api    *mastodon.Client
	userID string
	dir    Direction
}

func (l *mastodonLoader) LoadPrevious(ctx context.Context, cursor *paging.IDHolder) ([]RawFollow, error) {
	var page *mastodon.Page[mastodon.AccountDTO]
	var err error
	if l.dir == Followers {
		page, err = l.api.Followers(ctx, l.userID, cursor.Next())
	} else {
		page, err = l.api.Following(ctx, l.userID, cursor.Next())
	}
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	cursor.Set(page.Next)
	out := make([]RawFollow, len(page.Items))
	for i := range page.Items {
		dto := page.Items[i]
		out[i] = RawFollow{Mastodon: &dto, Next: page.Next}
	}
	return out, nil
}
