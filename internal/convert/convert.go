// Package convert maps raw wire DTOs into normalized entities. Functions
// here are pure: one raw item and one account in, one entity out. The
// paging and streaming layers call these and own the upserts; nothing in
// this package touches a store.
package convert

import (
	"strings"
	"time"

	"Fediview/internal/client/mastodon"
	"Fediview/internal/client/misskey"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
)

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

// UserFromMisskey normalizes a Misskey user.
func UserFromMisskey(a accounts.Account, dto misskey.UserDTO, detail bool) entities.User {
	return entities.User{
		ID:          entities.ID{AccountID: a.ID, Local: dto.ID},
		Username:    dto.Username,
		DisplayName: dto.Name,
		Host:        dto.Host,
		AvatarURL:   dto.AvatarURL,
		IsDetail:    detail,
		UpdatedAt:   time.Now().UTC(),
	}
}

// NoteFromMisskey normalizes a Misskey note.
func NoteFromMisskey(a accounts.Account, dto misskey.NoteDTO) entities.Note {
	return entities.Note{
		ID:        entities.ID{AccountID: a.ID, Local: dto.ID},
		UserID:    entities.ID{AccountID: a.ID, Local: dto.UserID},
		Text:      dto.Text,
		CreatedAt: parseTime(dto.CreatedAt),
		UpdatedAt: time.Now().UTC(),
	}
}

// NotificationFromMisskey normalizes a Misskey notification.
func NotificationFromMisskey(a accounts.Account, dto misskey.NotificationDTO) entities.Notification {
	n := entities.Notification{
		ID:        entities.ID{AccountID: a.ID, Local: dto.ID},
		Type:      dto.Type,
		IsRead:    dto.IsRead,
		CreatedAt: parseTime(dto.CreatedAt),
		UpdatedAt: time.Now().UTC(),
	}
	if dto.UserID != "" {
		id := entities.ID{AccountID: a.ID, Local: dto.UserID}
		n.UserID = &id
	}
	if dto.Note != nil {
		id := entities.ID{AccountID: a.ID, Local: dto.Note.ID}
		n.NoteID = &id
	}
	return n
}

// MessageFromMisskey normalizes a Misskey chat message.
func MessageFromMisskey(a accounts.Account, dto misskey.MessageDTO) entities.Message {
	return entities.Message{
		ID:        entities.ID{AccountID: a.ID, Local: dto.ID},
		SenderID:  entities.ID{AccountID: a.ID, Local: dto.UserID},
		Text:      dto.Text,
		CreatedAt: parseTime(dto.CreatedAt),
		UpdatedAt: time.Now().UTC(),
	}
}

// UserFromMastodon normalizes a Mastodon account.
func UserFromMastodon(a accounts.Account, dto mastodon.AccountDTO) entities.User {
	host := ""
	if i := strings.LastIndexByte(dto.Acct, '@'); i >= 0 {
		host = dto.Acct[i+1:]
	}
	return entities.User{
		ID:          entities.ID{AccountID: a.ID, Local: dto.ID},
		Username:    dto.Username,
		DisplayName: dto.DisplayName,
		Host:        host,
		AvatarURL:   dto.Avatar,
		IsDetail:    true,
		UpdatedAt:   time.Now().UTC(),
	}
}

// NoteFromMastodon normalizes a Mastodon status.
func NoteFromMastodon(a accounts.Account, dto mastodon.StatusDTO) entities.Note {
	return entities.Note{
		ID:        entities.ID{AccountID: a.ID, Local: dto.ID},
		UserID:    entities.ID{AccountID: a.ID, Local: dto.Account.ID},
		Text:      dto.Content,
		CreatedAt: parseTime(dto.CreatedAt),
		UpdatedAt: time.Now().UTC(),
	}
}

// NotificationFromMastodon normalizes a Mastodon notification.
func NotificationFromMastodon(a accounts.Account, dto mastodon.NotificationDTO) entities.Notification {
	n := entities.Notification{
		ID:        entities.ID{AccountID: a.ID, Local: dto.ID},
		Type:      dto.Type,
		CreatedAt: parseTime(dto.CreatedAt),
		UpdatedAt: time.Now().UTC(),
	}
	if dto.Account != nil {
		id := entities.ID{AccountID: a.ID, Local: dto.Account.ID}
		n.UserID = &id
	}
	if dto.Status != nil {
		id := entities.ID{AccountID: a.ID, Local: dto.Status.ID}
		n.NoteID = &id
	}
	return n
}
