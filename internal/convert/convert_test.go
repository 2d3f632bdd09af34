package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fediview/internal/client/mastodon"
	"Fediview/internal/client/misskey"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
)

var acct = accounts.Account{ID: 1, Backend: accounts.BackendMisskeyV12}

func TestUserFromMastodon_HostFromAcct(t *testing.T) {
	tests := []struct {
		name     string
		acctAttr string
		wantHost string
	}{
		{"federated", "alice@remote.example", "remote.example"},
		{"local", "alice", ""},
		{"nested at sign", "weird@name@remote.example", "remote.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := UserFromMastodon(acct, mastodon.AccountDTO{ID: "u1", Username: "alice", Acct: tt.acctAttr})
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, entities.ID{AccountID: 1, Local: "u1"}, u.ID)
		})
	}
}

func TestNotificationFromMisskey_References(t *testing.T) {
	dto := misskey.NotificationDTO{
		ID: "n1", Type: "reaction", UserID: "u2",
		Note:      &misskey.NoteDTO{ID: "note9", UserID: "u2"},
		CreatedAt: "2026-08-01T09:30:00Z",
	}

	n := NotificationFromMisskey(acct, dto)

	assert.Equal(t, entities.ID{AccountID: 1, Local: "n1"}, n.ID)
	require.NotNil(t, n.UserID)
	assert.Equal(t, "u2", n.UserID.Local)
	require.NotNil(t, n.NoteID)
	assert.Equal(t, "note9", n.NoteID.Local)
	assert.Equal(t, time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC), n.CreatedAt.UTC())
}

func TestNotificationFromMisskey_NoReferences(t *testing.T) {
	n := NotificationFromMisskey(acct, misskey.NotificationDTO{ID: "n1", Type: "app"})
	assert.Nil(t, n.UserID)
	assert.Nil(t, n.NoteID)
}

func TestNoteFromMisskey_BadTimestampFallsBack(t *testing.T) {
	before := time.Now().UTC()
	n := NoteFromMisskey(acct, misskey.NoteDTO{ID: "note1", UserID: "u1", CreatedAt: "garbage"})
	assert.False(t, n.CreatedAt.Before(before), "unparseable timestamps degrade to now, never zero")
}
