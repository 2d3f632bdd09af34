package paging

import "Fediview/internal/core/accounts"

// PageKind names the paginated collections the engine knows how to load.
type PageKind int

const (
	PageHomeTimeline PageKind = iota
	PageLocalTimeline
	PageGlobalTimeline
	PageFollowers
	PageFollowing
	PageNotifications
	PageMessages
)

func (k PageKind) String() string {
	switch k {
	case PageHomeTimeline:
		return "home-timeline"
	case PageLocalTimeline:
		return "local-timeline"
	case PageGlobalTimeline:
		return "global-timeline"
	case PageFollowers:
		return "followers"
	case PageFollowing:
		return "following"
	case PageNotifications:
		return "notifications"
	case PageMessages:
		return "messages"
	default:
		return "invalid"
	}
}

// CursorMode is how a backend expresses "the next older page".
type CursorMode int

const (
	// CursorUntilID: request carries untilId derived from the last item of
	// the previous page. Misskey v11 and later.
	CursorUntilID CursorMode = iota
	// CursorPositional: the response envelope carries an explicit positional
	// next token. Misskey v10 follow/follower listings.
	CursorPositional
	// CursorLinkHeader: max_id decoded from the RFC 5988 Link response
	// header. Mastodon.
	CursorLinkHeader
)

// Capability is the strategy table: a pure function of backend and page
// kind. It is consulted on every load so a tier change after a backend
// upgrade is honored; callers must not cache the result for a view's
// lifetime.
func Capability(b accounts.Backend, k PageKind) (CursorMode, error) {
	switch b {
	case accounts.BackendMisskeyV10:
		switch k {
		case PageFollowers, PageFollowing:
			return CursorPositional, nil
		case PageNotifications:
			// v10 has no notification listing endpoint at all; surfaced as a
			// capability error instead of attempted.
			return 0, &CapabilityError{Backend: b.String(), Operation: k.String()}
		default:
			return CursorUntilID, nil
		}
	case accounts.BackendMisskeyV11, accounts.BackendMisskeyV12:
		return CursorUntilID, nil
	case accounts.BackendMastodon:
		switch k {
		case PageMessages:
			// No chat message collection on this family.
			return 0, &CapabilityError{Backend: b.String(), Operation: k.String()}
		default:
			return CursorLinkHeader, nil
		}
	default:
		return 0, &CapabilityError{Backend: b.String(), Operation: k.String()}
	}
}
