package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fediview/internal/client"
	"Fediview/internal/client/misskey"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
	"Fediview/internal/core/paging"
)

type fakeCache struct {
	mu      sync.Mutex
	upserts map[string]CachedNotification // keyed by local id
}

func newFakeCache() *fakeCache {
	return &fakeCache{upserts: make(map[string]CachedNotification)}
}

func (f *fakeCache) Upsert(_ context.Context, n CachedNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[n.LocalID] = n
	return nil
}

func (f *fakeCache) ListByAccount(_ context.Context, accountID int64, limit int) ([]CachedNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []CachedNotification
	for _, n := range f.upserts {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out, nil
}

func misskeyNotification(id string) misskey.NotificationDTO {
	return misskey.NotificationDTO{
		ID: id, Type: "follow", UserID: "u2",
		CreatedAt: "2026-08-01T09:00:00Z",
	}
}

func TestNotificationPaging_MisskeyLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/i/notifications", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"n2","type":"mention","userId":"u1","user":{"id":"u1","username":"alice"},"createdAt":"2026-08-01T10:00:00Z"},
			{"id":"n1","type":"follow","userId":"u2","user":{"id":"u2","username":"bob"},"createdAt":"2026-08-01T09:00:00Z"}
		]`))
	}))
	defer srv.Close()

	account := accounts.Account{
		ID: 1, Backend: accounts.BackendMisskeyV12,
		Host: srv.URL, Token: "tok", UserID: "me",
	}
	es := entities.NewStore()
	cache := newFakeCache()
	providers := client.NewProvider()
	d := Deps{
		Registry: accounts.NewStaticRegistry(account),
		Adder:    NewCacheAdder(es, cache),
		Misskey:  providers.Misskey(),
		Mastodon: providers.Mastodon(),
	}

	s := NewPagingStore(d, 1)
	require.NoError(t, s.LoadPrevious(context.Background()))

	st := s.State()
	require.Len(t, st.Content.Items, 2)
	assert.Equal(t, "n1", *s.Summary().Cursor, "cursor comes from the trailing notification")

	// Both arrival paths converge on the same normalized records.
	_, ok := es.Find(entities.ID{AccountID: 1, Local: "n2"})
	assert.True(t, ok)
	_, ok = es.Find(entities.ID{AccountID: 1, Local: "u1"})
	assert.True(t, ok, "embedded users are upserted too")
	assert.Len(t, cache.upserts, 2)
}

func TestNotificationPaging_DuplicateFromStreamingIsSuppressed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"n1","type":"follow","userId":"u2","createdAt":"2026-08-01T09:00:00Z"}]`))
	}))
	defer srv.Close()

	account := accounts.Account{
		ID: 1, Backend: accounts.BackendMisskeyV12,
		Host: srv.URL, Token: "tok", UserID: "me",
	}
	es := entities.NewStore()
	cache := newFakeCache()
	adder := NewCacheAdder(es, cache)
	providers := client.NewProvider()
	d := Deps{
		Registry: accounts.NewStaticRegistry(account),
		Adder:    adder,
		Misskey:  providers.Misskey(),
		Mastodon: providers.Mastodon(),
	}
	s := NewPagingStore(d, 1)
	ctx := context.Background()

	// The same notification arrives over streaming while the page fetch is
	// on its way.
	_, err := adder.AddMisskey(ctx, account, misskeyNotification("n1"))
	require.NoError(t, err)

	require.NoError(t, s.LoadPrevious(ctx))

	assert.Len(t, s.State().Content.Items, 1)
	assert.Len(t, cache.upserts, 1, "the cache upsert is idempotent on (account, id)")
}

func TestNotificationPaging_V10HasNoEndpoint(t *testing.T) {
	account := accounts.Account{
		ID: 1, Backend: accounts.BackendMisskeyV10,
		Host: "https://misskey.example", Token: "tok", UserID: "me",
	}
	providers := client.NewProvider()
	d := Deps{
		Registry: accounts.NewStaticRegistry(account),
		Adder:    NewCacheAdder(entities.NewStore(), newFakeCache()),
		Misskey:  providers.Misskey(),
		Mastodon: providers.Mastodon(),
	}

	s := NewPagingStore(d, 1)
	err := s.LoadPrevious(context.Background())

	var capErr *paging.CapabilityError
	require.ErrorAs(t, err, &capErr, "the tier is never probed, the strategy table refuses upfront")
	assert.Equal(t, paging.PhaseError, s.State().Phase)
}
