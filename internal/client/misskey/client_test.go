package misskey

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fediview/internal/core/accounts"
	"Fediview/internal/core/paging"
)

func testAccount(host string) accounts.Account {
	return accounts.Account{
		ID:      1,
		Backend: accounts.BackendMisskeyV12,
		Host:    host,
		Token:   "secret-token",
		UserID:  "u1",
	}
}

func TestClient_FollowersSendsTokenAndUntilID(t *testing.T) {
	var got pageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/users/followers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"f1","followee":{"id":"u2","username":"alice"}}]`))
	}))
	defer srv.Close()

	c := NewClient(testAccount(srv.URL))
	untilID := "f0"
	res, err := c.Followers(context.Background(), "u1", &untilID)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", got.I)
	assert.Equal(t, "u1", got.UserID)
	require.NotNil(t, got.UntilID)
	assert.Equal(t, "f0", *got.UntilID)
	assert.Nil(t, got.Cursor)

	require.Len(t, res, 1)
	assert.Equal(t, "f1", res[0].ID)
	require.NotNil(t, res[0].Followee)
	assert.Equal(t, "alice", res[0].Followee.Username)
}

func TestClient_FollowersV10Envelope(t *testing.T) {
	var got pageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[{"id":"u2","username":"alice"},{"id":"u3","username":"bob"}],"next":"pos-2"}`))
	}))
	defer srv.Close()

	c := NewClient(testAccount(srv.URL))
	cursor := "pos-1"
	page, err := c.FollowersV10(context.Background(), "u1", &cursor)
	require.NoError(t, err)

	require.NotNil(t, got.Cursor)
	assert.Equal(t, "pos-1", *got.Cursor)
	assert.Nil(t, got.UntilID)

	require.Len(t, page.Users, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "pos-2", *page.Next)
}

func TestClient_V10TerminalPageHasNilNext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[{"id":"u9","username":"zed"}]}`))
	}))
	defer srv.Close()

	c := NewClient(testAccount(srv.URL))
	page, err := c.FollowersV10(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Nil(t, page.Next)
}

func TestClient_TimelinePaths(t *testing.T) {
	tests := []struct {
		kind paging.PageKind
		path string
	}{
		{paging.PageHomeTimeline, "/api/notes/timeline"},
		{paging.PageLocalTimeline, "/api/notes/local-timeline"},
		{paging.PageGlobalTimeline, "/api/notes/global-timeline"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			c := NewClient(testAccount(srv.URL))
			_, err := c.Timeline(context.Background(), tt.kind, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.path, gotPath)
		})
	}

	_, err := NewClient(testAccount("https://misskey.example")).Timeline(context.Background(), paging.PageFollowers, nil)
	assert.Error(t, err)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"error":"permission denied"}`,
			check: func(t *testing.T, err error) {
				var authErr *paging.AuthorizationError
				require.ErrorAs(t, err, &authErr)
				assert.False(t, paging.IsRetryable(err))
			},
		},
		{
			name:   "client error",
			status: http.StatusBadRequest,
			body:   `{"error":"invalid param"}`,
			check: func(t *testing.T, err error) {
				var terr *paging.TransportError
				require.ErrorAs(t, err, &terr)
				assert.True(t, paging.IsRetryable(err))
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"not":"an array"}`,
			check: func(t *testing.T, err error) {
				var merr *paging.MalformedResponseError
				require.ErrorAs(t, err, &merr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(testAccount(srv.URL))
			_, err := c.Notifications(context.Background(), nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
