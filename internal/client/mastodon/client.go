// Package mastodon is a thin client for the Mastodon REST API. Pagination
// is keyset by max_id; the server reports the next page through the Link
// response header rather than the body, so every paged call returns the
// decoded token alongside the items.
package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"Fediview/internal/core/accounts"
	"Fediview/internal/core/paging"
)

const defaultPageLimit = 20

// AccountDTO is a raw account from this API family.
type AccountDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// StatusDTO is a raw status (post).
type StatusDTO struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Account   AccountDTO `json:"account"`
	CreatedAt string     `json:"created_at"`
}

// NotificationDTO is a raw notification.
type NotificationDTO struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Account   *AccountDTO `json:"account,omitempty"`
	Status    *StatusDTO  `json:"status,omitempty"`
	CreatedAt string      `json:"created_at"`
}

// Page carries one fetched page plus the next older cursor decoded from the
// Link header, nil when the listing is exhausted.
type Page[T any] struct {
	Items []T
	Next  *string
}

// Client talks to one Mastodon instance on behalf of one account.
type Client struct {
	account accounts.Account
	http    *retryablehttp.Client
}

func NewClient(account accounts.Account) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	return &Client{account: account, http: rc}
}

// Notifications fetches one page of notifications older than maxID.
func (c *Client) Notifications(ctx context.Context, maxID *string) (*Page[NotificationDTO], error) {
	return get[NotificationDTO](c, ctx, "/api/v1/notifications", maxID)
}

// HomeTimeline fetches one page of the home timeline older than maxID.
func (c *Client) HomeTimeline(ctx context.Context, maxID *string) (*Page[StatusDTO], error) {
	return get[StatusDTO](c, ctx, "/api/v1/timelines/home", maxID)
}

// PublicTimeline fetches the public (federated or local) timeline.
func (c *Client) PublicTimeline(ctx context.Context, local bool, maxID *string) (*Page[StatusDTO], error) {
	path := "/api/v1/timelines/public"
	if local {
		path += "?local=true"
	}
	return get[StatusDTO](c, ctx, path, maxID)
}

// Followers fetches one page of the given account's followers.
func (c *Client) Followers(ctx context.Context, accountID string, maxID *string) (*Page[AccountDTO], error) {
	return get[AccountDTO](c, ctx, "/api/v1/accounts/"+accountID+"/followers", maxID)
}

// Following fetches one page of the accounts the given account follows.
func (c *Client) Following(ctx context.Context, accountID string, maxID *string) (*Page[AccountDTO], error) {
	return get[AccountDTO](c, ctx, "/api/v1/accounts/"+accountID+"/following", maxID)
}

func get[T any](c *Client, ctx context.Context, path string, maxID *string) (*Page[T], error) {
	u, err := url.Parse(c.account.Host + path)
	if err != nil {
		return nil, fmt.Errorf("building url for %s: %w", path, err)
	}
	q := u.Query()
	q.Set("limit", fmt.Sprintf("%d", defaultPageLimit))
	if maxID != nil {
		q.Set("max_id", *maxID)
	}
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.account.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &paging.TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &paging.AuthorizationError{Host: c.account.NormalizedHost(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &paging.TransportError{Op: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &paging.TransportError{Op: path, Err: err}
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &paging.MalformedResponseError{Op: path, Err: err}
	}

	return &Page[T]{
		Items: items,
		Next:  DecodeNextMaxID(resp.Header.Get("Link")),
	}, nil
}
