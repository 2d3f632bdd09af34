package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fediview/internal/core/accounts"
	"Fediview/internal/core/emoji"
	"Fediview/internal/core/messages"
	"Fediview/internal/core/notifications"
	"Fediview/internal/core/paging"
)

type fakeList struct {
	summary paging.Summary
	loadErr error
	cleared bool
}

func (f *fakeList) Summary() paging.Summary            { return f.summary }
func (f *fakeList) LoadPrevious(context.Context) error { return f.loadErr }
func (f *fakeList) Clear(context.Context) error        { f.cleared = true; return nil }

type fakeUnread struct {
	count   int
	cleared bool
}

func (f *fakeUnread) Add(context.Context, int64, string) error  { return nil }
func (f *fakeUnread) Count(context.Context, int64) (int, error) { return f.count, nil }
func (f *fakeUnread) Clear(context.Context, int64) error        { f.cleared = true; return nil }

type fakeNotifCache struct{ rows []notifications.CachedNotification }

func (f *fakeNotifCache) Upsert(context.Context, notifications.CachedNotification) error { return nil }
func (f *fakeNotifCache) ListByAccount(context.Context, int64, int) ([]notifications.CachedNotification, error) {
	return f.rows, nil
}

type fakeMsgCache struct{ rows []messages.CachedMessage }

func (f *fakeMsgCache) Upsert(context.Context, messages.CachedMessage) error { return nil }
func (f *fakeMsgCache) ListRecent(context.Context, int64, int) ([]messages.CachedMessage, error) {
	return f.rows, nil
}

type fakeEmojiRepo struct{ set []emoji.WithAliases }

func (f *fakeEmojiRepo) AddAll(context.Context, string, []emoji.WithAliases) error     { return nil }
func (f *fakeEmojiRepo) DeleteAll(context.Context, string, []string) error             { return nil }
func (f *fakeEmojiRepo) ReplaceAll(context.Context, string, []emoji.WithAliases) error { return nil }
func (f *fakeEmojiRepo) FindByHost(context.Context, string) ([]emoji.WithAliases, error) {
	return f.set, nil
}

func newRouter(d Deps) *chi.Mux {
	if d.Registry == nil {
		d.Registry = accounts.NewStaticRegistry(accounts.Account{
			ID: 1, Backend: accounts.BackendMisskeyV12, Host: "https://misskey.example",
		})
	}
	if d.Foreground == nil {
		d.Foreground = func() int64 { return 1 }
	}
	r := chi.NewRouter()
	h := NewHandler(d)
	r.Get("/v1/lists", h.HandleListIndex)
	r.Get("/v1/lists/{name}", h.HandleListState)
	r.Post("/v1/lists/{name}/load", h.HandleListLoad)
	r.Post("/v1/lists/{name}/clear", h.HandleListClear)
	r.Get("/v1/notifications/unread-count", h.HandleUnreadCount)
	r.Post("/v1/notifications/read-all", h.HandleUnreadClear)
	r.Get("/v1/notifications/cached", h.HandleNotificationCache)
	r.Get("/v1/messages/recent", h.HandleRecentMessages)
	r.Get("/v1/emojis", h.HandleEmojis)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHandleListIndex(t *testing.T) {
	r := newRouter(Deps{Lists: map[string]paging.Pageable{
		"timeline-home": &fakeList{},
		"followers":     &fakeList{},
	}})

	rec := do(r, http.MethodGet, "/v1/lists")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Lists []string `json:"lists"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"followers", "timeline-home"}, body.Lists)
}

func TestHandleListState_UnknownList(t *testing.T) {
	r := newRouter(Deps{Lists: map[string]paging.Pageable{}})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/lists/nope").Code)
}

func TestHandleListLoad_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"authorization", &paging.AuthorizationError{Host: "h", Err: errors.New("401")}, http.StatusUnauthorized},
		{"capability", &paging.CapabilityError{Backend: "misskey-v10", Operation: "notifications"}, http.StatusUnprocessableEntity},
		{"transport", &paging.TransportError{Op: "/api/x", Err: errors.New("boom")}, http.StatusBadGateway},
		{"unknown", errors.New("weird"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := &fakeList{loadErr: tt.err, summary: paging.Summary{Phase: "fixed"}}
			r := newRouter(Deps{Lists: map[string]paging.Pageable{"timeline-home": list}})

			rec := do(r, http.MethodPost, "/v1/lists/timeline-home/load")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleListClear(t *testing.T) {
	list := &fakeList{summary: paging.Summary{Phase: "fixed"}}
	r := newRouter(Deps{Lists: map[string]paging.Pageable{"messages": list}})

	rec := do(r, http.MethodPost, "/v1/lists/messages/clear")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, list.cleared)
}

func TestHandleUnreadCountAndClear(t *testing.T) {
	unread := &fakeUnread{count: 4}
	r := newRouter(Deps{Unread: unread})

	rec := do(r, http.MethodGet, "/v1/notifications/unread-count")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Count)

	rec = do(r, http.MethodPost, "/v1/notifications/read-all")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, unread.cleared)
}

func TestHandleNotificationCache(t *testing.T) {
	cache := &fakeNotifCache{rows: []notifications.CachedNotification{{
		AccountID: 1, LocalID: "n1", Type: "follow",
		Payload:   []byte(`{"id":"n1","type":"follow"}`),
		CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}}}
	r := newRouter(Deps{NotifCache: cache})

	rec := do(r, http.MethodGet, "/v1/notifications/cached")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Notifications []struct {
			ID      string          `json:"id"`
			Payload json.RawMessage `json:"payload"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "n1", body.Notifications[0].ID)
	assert.JSONEq(t, `{"id":"n1","type":"follow"}`, string(body.Notifications[0].Payload))
}

func TestHandleRecentMessages(t *testing.T) {
	cache := &fakeMsgCache{rows: []messages.CachedMessage{{
		AccountID: 1, LocalID: "m1", SenderID: "u2", Text: "hi",
		CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}}}
	r := newRouter(Deps{MsgCache: cache})

	rec := do(r, http.MethodGet, "/v1/messages/recent")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Messages []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "hi", body.Messages[0].Text)
}

func TestHandleEmojis(t *testing.T) {
	repo := &fakeEmojiRepo{set: []emoji.WithAliases{{
		Emoji:   emoji.Emoji{Name: "blob", URL: "https://x/e.png"},
		Aliases: []string{"b"},
	}}}
	r := newRouter(Deps{Emojis: repo})

	rec := do(r, http.MethodGet, "/v1/emojis")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Host   string `json:"host"`
		Emojis []struct {
			Name string `json:"name"`
		} `json:"emojis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "misskey.example", body.Host)
	require.Len(t, body.Emojis, 1)
	assert.Equal(t, "blob", body.Emojis[0].Name)
}
