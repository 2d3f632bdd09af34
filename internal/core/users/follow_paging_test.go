package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fediview/internal/client"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/entities"
	"Fediview/internal/core/paging"
)

func TestFollowPaging_TierChangeBetweenLoads(t *testing.T) {
	// The same instance first answers in the v11+ array shape, then in the
	// v10 positional envelope, standing in for a backend tier change between
	// two loads on one long-lived list.
	var v10Mode atomic.Bool
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/followers", r.URL.Path)
		var body map[string]any
		require.NoError(t, decodeJSON(r, &body))
		lastBody.Store(body)

		w.Header().Set("Content-Type", "application/json")
		if v10Mode.Load() {
			w.Write([]byte(`{"users":[{"id":"u3","username":"carol"}],"next":"pos-9"}`))
			return
		}
		w.Write([]byte(`[
			{"id":"f1","follower":{"id":"u1","username":"alice"}},
			{"id":"f2","follower":{"id":"u2","username":"bob"}}
		]`))
	}))
	defer srv.Close()

	account := accounts.Account{
		ID: 1, Backend: accounts.BackendMisskeyV12,
		Host: srv.URL, Token: "tok", UserID: "me",
	}
	registry := accounts.NewStaticRegistry(account)
	es := entities.NewStore()
	providers := client.NewProvider()
	deps := Deps{Registry: registry, Entities: es, Misskey: providers.Misskey(), Mastodon: providers.Mastodon()}

	s := NewPagingStore(deps, 1, "me", Followers)
	ctx := context.Background()

	require.NoError(t, s.LoadPrevious(ctx))
	st := s.State()
	require.Len(t, st.Content.Items, 2)
	assert.Equal(t, entities.ID{AccountID: 1, Local: "u1"}, st.Content.Items[0].UserID)
	assert.Equal(t, "f2", *s.Summary().Cursor, "cursor comes from the trailing follow edge")

	_, ok := es.Find(entities.ID{AccountID: 1, Local: "u2"})
	assert.True(t, ok, "loaded users are upserted into the entity store")

	// Tier change: same store, next load must pick the positional strategy.
	account.Backend = accounts.BackendMisskeyV10
	registry.Put(account)
	v10Mode.Store(true)

	require.NoError(t, s.LoadPrevious(ctx))
	st = s.State()
	require.Len(t, st.Content.Items, 3)
	assert.Equal(t, "pos-9", *s.Summary().Cursor, "cursor comes from the v10 envelope")

	body := lastBody.Load().(map[string]any)
	assert.Equal(t, "f2", body["cursor"], "the positional request resumes from the held cursor")
	_, hasUntil := body["untilId"]
	assert.False(t, hasUntil)
}

func TestFollowPaging_EmptyPageIsTerminalNotExhausting(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	account := accounts.Account{
		ID: 1, Backend: accounts.BackendMisskeyV12,
		Host: srv.URL, Token: "tok", UserID: "me",
	}
	deps := Deps{
		Registry: accounts.NewStaticRegistry(account),
		Entities: entities.NewStore(),
		Misskey:  client.NewProvider().Misskey(),
		Mastodon: client.NewProvider().Mastodon(),
	}

	s := NewPagingStore(deps, 1, "me", Following)
	ctx := context.Background()

	require.NoError(t, s.LoadPrevious(ctx))
	st := s.State()
	assert.Equal(t, paging.PhaseFixed, st.Phase)
	assert.False(t, st.Content.Exists)
	assert.False(t, s.Summary().Done)

	// The cursor was never advanced, so a retrigger fetches again.
	require.NoError(t, s.LoadPrevious(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
