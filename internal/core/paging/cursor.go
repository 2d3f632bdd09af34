package paging

import "sync"

// IDHolder carries the opaque pagination cursor for one list. The nil
// sentinel means "replay from the newest page". Loaders advance it after a
// successful fetch by calling Set with the token derived from the page's
// trailing (oldest) item; deriving from the tail is what keeps a subsequent
// load strictly past already-seen items.
//
// A holder that has been advanced and then set back to nil is exhausted:
// the backend signaled there are no further pages.
type IDHolder struct {
	mu       sync.Mutex
	next     *string
	advanced bool
}

func NewIDHolder() *IDHolder { return &IDHolder{} }

// Next returns the current cursor, nil at the start sentinel.
func (h *IDHolder) Next() *string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.next
}

// Set advances the cursor. Passing nil records that the backend reported a
// terminal page.
func (h *IDHolder) Set(next *string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = next
	h.advanced = true
}

// Reset returns the holder to the start sentinel. Only Clear on the owning
// store calls this.
func (h *IDHolder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = nil
	h.advanced = false
}

// Exhausted reports whether the cursor was advanced to a terminal position.
func (h *IDHolder) Exhausted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.advanced && h.next == nil
}
