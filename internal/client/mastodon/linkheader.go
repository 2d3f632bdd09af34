package mastodon

import (
	"net/url"
	"strings"
)

// DecodeNextMaxID extracts the max_id of the rel="next" entry from an RFC
// 5988 Link header, which is how this API family communicates the cursor
// for the next older page. Returns nil when the header has no next page,
// which is the terminal-cursor signal.
func DecodeNextMaxID(header string) *string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		isNext := false
		for _, param := range section[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				isNext = true
				break
			}
		}
		if !isNext {
			continue
		}
		raw := strings.TrimSpace(section[0])
		raw = strings.TrimPrefix(raw, "<")
		raw = strings.TrimSuffix(raw, ">")
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if maxID := u.Query().Get("max_id"); maxID != "" {
			return &maxID
		}
	}
	return nil
}
