// Package engine exposes the sync engine's observable state over the local
// HTTP API: list snapshots, load/clear triggers and the unread counter.
// Rendering is someone else's problem; these handlers only serialize state.
package engine

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"Fediview/internal/core/accounts"
	"Fediview/internal/core/emoji"
	"Fediview/internal/core/messages"
	"Fediview/internal/core/notifications"
	"Fediview/internal/core/paging"
)

const (
	defaultCacheLimit = 50
	timeLayout        = time.RFC3339
)

// Handler serves the paginated lists and durable caches for the foreground
// account.
type Handler struct {
	lists      map[string]paging.Pageable
	unread     notifications.UnreadStore
	notifCache notifications.CacheStore
	msgCache   messages.CacheStore
	emojis     emoji.Repository
	registry   accounts.Registry
	foreground func() int64
}

// Deps are the collaborators the engine handlers read from.
type Deps struct {
	Lists      map[string]paging.Pageable
	Unread     notifications.UnreadStore
	NotifCache notifications.CacheStore
	MsgCache   messages.CacheStore
	Emojis     emoji.Repository
	Registry   accounts.Registry
	Foreground func() int64
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		lists:      d.Lists,
		unread:     d.Unread,
		notifCache: d.NotifCache,
		msgCache:   d.MsgCache,
		emojis:     d.Emojis,
		registry:   d.Registry,
		foreground: d.Foreground,
	}
}

// HandleListIndex returns the registered list names.
func (h *Handler) HandleListIndex(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.lists))
	for name := range h.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	respondJSON(w, http.StatusOK, map[string]any{"lists": names})
}

// HandleListState returns the current snapshot for one list.
func (h *Handler) HandleListState(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lists[chi.URLParam(r, "name")]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "unknown list"})
		return
	}
	respondJSON(w, http.StatusOK, list.Summary())
}

// HandleListLoad triggers one loadPrevious and returns the resulting
// snapshot. The paging store serializes concurrent triggers itself.
func (h *Handler) HandleListLoad(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lists[chi.URLParam(r, "name")]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "unknown list"})
		return
	}
	if err := list.LoadPrevious(r.Context()); err != nil {
		respondJSON(w, statusForError(err), list.Summary())
		return
	}
	respondJSON(w, http.StatusOK, list.Summary())
}

// HandleListClear resets one list to its initial empty state.
func (h *Handler) HandleListClear(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lists[chi.URLParam(r, "name")]
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "unknown list"})
		return
	}
	if err := list.Clear(r.Context()); err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, list.Summary())
}

// HandleUnreadCount returns the unread notification count for the
// foreground account.
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.unread.Count(r.Context(), h.foreground())
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"count": count})
}

// HandleUnreadClear drops all unread markers for the foreground account.
// Called when the notification view is opened.
func (h *Handler) HandleUnreadClear(w http.ResponseWriter, r *http.Request) {
	if err := h.unread.Clear(r.Context(), h.foreground()); err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"count": 0})
}

// HandleNotificationCache returns the most recent cached notifications with
// their raw wire payloads, so a view can render without a refetch.
func (h *Handler) HandleNotificationCache(w http.ResponseWriter, r *http.Request) {
	rows, err := h.notifCache.ListByAccount(r.Context(), h.foreground(), queryLimit(r))
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	typeFilter := r.URL.Query().Get("type")
	type row struct {
		ID        string          `json:"id"`
		Type      string          `json:"type"`
		Payload   json.RawMessage `json:"payload"`
		CreatedAt string          `json:"createdAt"`
	}
	out := make([]row, 0, len(rows))
	for _, n := range rows {
		if typeFilter != "" && n.Type != typeFilter {
			continue
		}
		out = append(out, row{
			ID: n.LocalID, Type: n.Type,
			Payload:   json.RawMessage(n.Payload),
			CreatedAt: n.CreatedAt.UTC().Format(timeLayout),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

// HandleRecentMessages returns the most recent cached chat messages.
func (h *Handler) HandleRecentMessages(w http.ResponseWriter, r *http.Request) {
	rows, err := h.msgCache.ListRecent(r.Context(), h.foreground(), queryLimit(r))
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	type row struct {
		ID        string `json:"id"`
		SenderID  string `json:"senderId"`
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
	}
	out := make([]row, 0, len(rows))
	for _, m := range rows {
		out = append(out, row{
			ID: m.LocalID, SenderID: m.SenderID, Text: m.Text,
			CreatedAt: m.CreatedAt.UTC().Format(timeLayout),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// HandleEmojis returns the cached custom emoji set of the foreground
// account's instance.
func (h *Handler) HandleEmojis(w http.ResponseWriter, r *http.Request) {
	account, err := h.registry.Get(r.Context(), h.foreground())
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return
	}
	set, err := h.emojis.FindByHost(r.Context(), account.NormalizedHost())
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	type row struct {
		Name    string   `json:"name"`
		URL     string   `json:"url"`
		Aliases []string `json:"aliases,omitempty"`
	}
	out := make([]row, 0, len(set))
	for _, e := range set {
		out = append(out, row{Name: e.Emoji.Name, URL: e.Emoji.URL, Aliases: e.Aliases})
	}
	respondJSON(w, http.StatusOK, map[string]any{"host": account.NormalizedHost(), "emojis": out})
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultCacheLimit
}

// statusForError maps the engine failure taxonomy onto HTTP statuses.
func statusForError(err error) int {
	var authErr *paging.AuthorizationError
	var capErr *paging.CapabilityError
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &capErr):
		return http.StatusUnprocessableEntity
	case paging.IsRetryable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
