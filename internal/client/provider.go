// Package client provides per-account API client construction. Clients are
// cached by host+token so loaders and the streaming layer can re-resolve on
// every call without reconnecting transports each time.
package client

import (
	"sync"

	"Fediview/internal/client/mastodon"
	"Fediview/internal/client/misskey"
	"Fediview/internal/core/accounts"
)

// MisskeyProvider hands out Misskey clients per account.
type MisskeyProvider interface {
	Get(a accounts.Account) *misskey.Client
}

// MastodonProvider hands out Mastodon clients per account.
type MastodonProvider interface {
	Get(a accounts.Account) *mastodon.Client
}

type cacheKey struct {
	host  string
	token string
}

// Provider is the default caching implementation of both provider
// interfaces.
type Provider struct {
	mu       sync.Mutex
	misskey  map[cacheKey]*misskey.Client
	mastodon map[cacheKey]*mastodon.Client
}

func NewProvider() *Provider {
	return &Provider{
		misskey:  make(map[cacheKey]*misskey.Client),
		mastodon: make(map[cacheKey]*mastodon.Client),
	}
}

// Misskey returns a MisskeyProvider view of p.
func (p *Provider) Misskey() MisskeyProvider { return misskeyView{p} }

// Mastodon returns a MastodonProvider view of p.
func (p *Provider) Mastodon() MastodonProvider { return mastodonView{p} }

type misskeyView struct{ p *Provider }

func (v misskeyView) Get(a accounts.Account) *misskey.Client {
	v.p.mu.Lock()
	defer v.p.mu.Unlock()
	key := cacheKey{a.Host, a.Token}
	c, ok := v.p.misskey[key]
	if !ok {
		c = misskey.NewClient(a)
		v.p.misskey[key] = c
	}
	return c
}

type mastodonView struct{ p *Provider }

func (v mastodonView) Get(a accounts.Account) *mastodon.Client {
	v.p.mu.Lock()
	defer v.p.mu.Unlock()
	key := cacheKey{a.Host, a.Token}
	c, ok := v.p.mastodon[key]
	if !ok {
		c = mastodon.NewClient(a)
		v.p.mastodon[key] = c
	}
	return c
}
