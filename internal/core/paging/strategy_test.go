package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fediview/internal/core/accounts"
)

func TestCapability(t *testing.T) {
	tests := []struct {
		name    string
		backend accounts.Backend
		kind    PageKind
		want    CursorMode
		wantErr bool
	}{
		{"v10 home timeline", accounts.BackendMisskeyV10, PageHomeTimeline, CursorUntilID, false},
		{"v10 followers", accounts.BackendMisskeyV10, PageFollowers, CursorPositional, false},
		{"v10 following", accounts.BackendMisskeyV10, PageFollowing, CursorPositional, false},
		{"v10 notifications unsupported", accounts.BackendMisskeyV10, PageNotifications, 0, true},
		{"v10 messages", accounts.BackendMisskeyV10, PageMessages, CursorUntilID, false},
		{"v11 followers", accounts.BackendMisskeyV11, PageFollowers, CursorUntilID, false},
		{"v11 notifications", accounts.BackendMisskeyV11, PageNotifications, CursorUntilID, false},
		{"v12 global timeline", accounts.BackendMisskeyV12, PageGlobalTimeline, CursorUntilID, false},
		{"mastodon home timeline", accounts.BackendMastodon, PageHomeTimeline, CursorLinkHeader, false},
		{"mastodon followers", accounts.BackendMastodon, PageFollowers, CursorLinkHeader, false},
		{"mastodon messages unsupported", accounts.BackendMastodon, PageMessages, 0, true},
		{"unknown backend", accounts.BackendUnknown, PageHomeTimeline, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := Capability(tt.backend, tt.kind)
			if tt.wantErr {
				var capErr *CapabilityError
				require.ErrorAs(t, err, &capErr)
				assert.False(t, IsRetryable(err), "capability errors are fatal, not retryable")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}
