package routes

import (
	"github.com/go-chi/chi/v5"

	"Fediview/internal/api/handlers/engine"
)

// RegisterEngineRoutes mounts the sync engine state endpoints.
func RegisterEngineRoutes(r chi.Router, d engine.Deps) {
	h := engine.NewHandler(d)

	r.Get("/v1/lists", h.HandleListIndex)
	r.Get("/v1/lists/{name}", h.HandleListState)
	r.Post("/v1/lists/{name}/load", h.HandleListLoad)
	r.Post("/v1/lists/{name}/clear", h.HandleListClear)

	r.Get("/v1/notifications/unread-count", h.HandleUnreadCount)
	r.Post("/v1/notifications/read-all", h.HandleUnreadClear)
	r.Get("/v1/notifications/cached", h.HandleNotificationCache)

	r.Get("/v1/messages/recent", h.HandleRecentMessages)
	r.Get("/v1/emojis", h.HandleEmojis)
}
