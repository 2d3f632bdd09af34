// Package misskey is a thin client for the Misskey JSON API family. Every
// endpoint is a POST with the token in the body; pagination is by untilId
// on v11 and later, and by positional cursor for v10 follow listings.
// The client returns raw DTOs only — entity mapping lives elsewhere.
package misskey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"Fediview/internal/core/accounts"
	"Fediview/internal/core/paging"
)

const defaultPageLimit = 20

// Client talks to one Misskey instance on behalf of one account.
type Client struct {
	account accounts.Account
	http    *retryablehttp.Client
}

// NewClient builds a client for the given account. The retry policy only
// covers connection-level failures; HTTP error statuses are mapped to the
// engine's failure taxonomy and surfaced immediately.
func NewClient(account accounts.Account) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	return &Client{account: account, http: rc}
}

// Followers fetches one page of followers for userID (v11+ shape).
func (c *Client) Followers(ctx context.Context, userID string, untilID *string) ([]FollowDTO, error) {
	var out []FollowDTO
	err := c.post(ctx, "/api/users/followers", pageRequest{
		I: c.account.Token, UserID: userID, UntilID: untilID, Limit: defaultPageLimit,
	}, &out)
	return out, err
}

// Following fetches one page of followees for userID (v11+ shape).
func (c *Client) Following(ctx context.Context, userID string, untilID *string) ([]FollowDTO, error) {
	var out []FollowDTO
	err := c.post(ctx, "/api/users/following", pageRequest{
		I: c.account.Token, UserID: userID, UntilID: untilID, Limit: defaultPageLimit,
	}, &out)
	return out, err
}

// FollowersV10 fetches one page of followers using the v10 positional
// cursor envelope.
func (c *Client) FollowersV10(ctx context.Context, userID string, cursor *string) (*V10FollowPage, error) {
	var out V10FollowPage
	err := c.post(ctx, "/api/users/followers", pageRequest{
		I: c.account.Token, UserID: userID, Cursor: cursor, Limit: defaultPageLimit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FollowingV10 fetches one page of followees using the v10 envelope.
func (c *Client) FollowingV10(ctx context.Context, userID string, cursor *string) (*V10FollowPage, error) {
	var out V10FollowPage
	err := c.post(ctx, "/api/users/following", pageRequest{
		I: c.account.Token, UserID: userID, Cursor: cursor, Limit: defaultPageLimit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Notifications fetches one page of notifications (v11+ only; the strategy
// table never routes a v10 account here).
func (c *Client) Notifications(ctx context.Context, untilID *string) ([]NotificationDTO, error) {
	var out []NotificationDTO
	err := c.post(ctx, "/api/i/notifications", pageRequest{
		I: c.account.Token, UntilID: untilID, Limit: defaultPageLimit,
	}, &out)
	return out, err
}

// Timeline fetches one page of the given timeline.
func (c *Client) Timeline(ctx context.Context, kind paging.PageKind, untilID *string) ([]NoteDTO, error) {
	var path string
	switch kind {
	case paging.PageHomeTimeline:
		path = "/api/notes/timeline"
	case paging.PageLocalTimeline:
		path = "/api/notes/local-timeline"
	case paging.PageGlobalTimeline:
		path = "/api/notes/global-timeline"
	default:
		return nil, fmt.Errorf("not a timeline kind: %s", kind)
	}
	var out []NoteDTO
	err := c.post(ctx, path, pageRequest{
		I: c.account.Token, UntilID: untilID, Limit: defaultPageLimit,
	}, &out)
	return out, err
}

// Messages fetches one page of chat messages.
func (c *Client) Messages(ctx context.Context, untilID *string) ([]MessageDTO, error) {
	var out []MessageDTO
	err := c.post(ctx, "/api/messaging/messages", pageRequest{
		I: c.account.Token, UntilID: untilID, Limit: defaultPageLimit,
	}, &out)
	return out, err
}

// Emojis fetches the instance's full custom emoji set.
func (c *Client) Emojis(ctx context.Context) ([]EmojiDTO, error) {
	var out struct {
		Emojis []EmojiDTO `json:"emojis"`
	}
	err := c.post(ctx, "/api/meta", map[string]any{"detail": false}, &out)
	return out.Emojis, err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.account.Host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &paging.TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &paging.AuthorizationError{Host: c.account.NormalizedHost(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return &paging.TransportError{Op: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &paging.TransportError{Op: path, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &paging.MalformedResponseError{Op: path, Err: err}
	}
	return nil
}
