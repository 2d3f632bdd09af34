package accounts

import (
	"context"
	"strings"
)

// Backend identifies the remote API family and, for Misskey, the
// minor-version capability tier the instance speaks. The set is closed:
// capability checks switch over it exhaustively instead of probing
// endpoints at runtime.
type Backend int

const (
	BackendUnknown Backend = iota
	BackendMisskeyV10
	BackendMisskeyV11
	BackendMisskeyV12 // v12 and later
	BackendMastodon
)

func (b Backend) String() string {
	switch b {
	case BackendMisskeyV10:
		return "misskey-v10"
	case BackendMisskeyV11:
		return "misskey-v11"
	case BackendMisskeyV12:
		return "misskey-v12"
	case BackendMastodon:
		return "mastodon"
	default:
		return "unknown"
	}
}

// IsMisskey reports whether the backend belongs to the Misskey family.
func (b Backend) IsMisskey() bool {
	switch b {
	case BackendMisskeyV10, BackendMisskeyV11, BackendMisskeyV12:
		return true
	default:
		return false
	}
}

// Account is a resolved reference to one remote account. It is owned by the
// external account registry; the engine treats it as an immutable value for
// the duration of a single operation and never stores it long-term, so a
// backend upgrade picked up by the registry takes effect on the next call.
type Account struct {
	ID      int64   // registry-local identifier
	Backend Backend // detected family + version tier
	Host    string  // normalized base URL, no trailing slash
	Token   string  // opaque bearer/i token, owned by the registry
	UserID  string  // this account's user id on the remote instance
}

// NormalizedHost returns the host with any scheme and trailing slash removed,
// suitable as a key for host-scoped caches (custom emojis).
func (a Account) NormalizedHost() string {
	h := a.Host
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	return strings.TrimSuffix(h, "/")
}

// Registry supplies accounts by id. It is an external collaborator; the
// engine only reads from it and re-resolves on every operation.
type Registry interface {
	Get(ctx context.Context, id int64) (Account, error)
}
