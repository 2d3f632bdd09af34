package streaming

import (
	"context"
	"encoding/json"
	"log"

	"Fediview/internal/client/misskey"
	"Fediview/internal/convert"
	"Fediview/internal/core/accounts"
	"Fediview/internal/core/emoji"
	"Fediview/internal/core/entities"
	"Fediview/internal/core/messages"
	"Fediview/internal/core/notifications"
)

// UserEventHandler upserts user updates into the entity store. The write is
// in-memory and cheap, so it runs inline with routing.
type UserEventHandler struct {
	entities *entities.Store
}

func NewUserEventHandler(es *entities.Store) *UserEventHandler {
	return &UserEventHandler{entities: es}
}

func (h *UserEventHandler) HandleEvent(_ context.Context, account accounts.Account, ev Event) bool {
	if ev.Kind != EventUserUpdated {
		return false
	}
	var dto misskey.UserDTO
	if err := json.Unmarshal(ev.Body, &dto); err != nil {
		log.Printf("streaming: bad user payload for account %d: %v", account.ID, err)
		return true
	}
	h.entities.Put(convert.UserFromMisskey(account, dto, true))
	return true
}

// NotificationEventHandler records an unread marker and feeds the cache
// adder, the same normalization path paginated loads use.
type NotificationEventHandler struct {
	unread notifications.UnreadStore
	adder  *notifications.CacheAdder
	sup    *Supervisor
}

func NewNotificationEventHandler(unread notifications.UnreadStore, adder *notifications.CacheAdder, sup *Supervisor) *NotificationEventHandler {
	return &NotificationEventHandler{unread: unread, adder: adder, sup: sup}
}

func (h *NotificationEventHandler) HandleEvent(_ context.Context, account accounts.Account, ev Event) bool {
	if ev.Kind != EventNotificationCreated {
		return false
	}
	var dto misskey.NotificationDTO
	if err := json.Unmarshal(ev.Body, &dto); err != nil {
		log.Printf("streaming: bad notification payload for account %d: %v", account.ID, err)
		return true
	}
	h.sup.Go("notification-ingest", func(ctx context.Context) error {
		if _, err := h.adder.AddMisskey(ctx, account, dto); err != nil {
			return err
		}
		return h.unread.Add(ctx, account.ID, dto.ID)
	})
	return true
}

// MessageEventHandler upserts created/updated chat messages.
type MessageEventHandler struct {
	entities *entities.Store
	cache    messages.CacheStore
	sup      *Supervisor
}

func NewMessageEventHandler(es *entities.Store, cache messages.CacheStore, sup *Supervisor) *MessageEventHandler {
	return &MessageEventHandler{entities: es, cache: cache, sup: sup}
}

func (h *MessageEventHandler) HandleEvent(_ context.Context, account accounts.Account, ev Event) bool {
	if ev.Kind != EventMessageCreated && ev.Kind != EventMessageUpdated {
		return false
	}
	var dto misskey.MessageDTO
	if err := json.Unmarshal(ev.Body, &dto); err != nil {
		log.Printf("streaming: bad message payload for account %d: %v", account.ID, err)
		return true
	}
	h.sup.Go("message-ingest", func(ctx context.Context) error {
		_, err := messages.Ingest(ctx, h.entities, h.cache, account, dto)
		return err
	})
	return true
}

type emojiListPayload struct {
	Emojis []misskey.EmojiDTO `json:"emojis"`
}

// EmojiEventHandler applies emoji events: added triggers a full metadata
// resync, updated/deleted apply incrementally.
type EmojiEventHandler struct {
	svc *emoji.Service
	sup *Supervisor
}

func NewEmojiEventHandler(svc *emoji.Service, sup *Supervisor) *EmojiEventHandler {
	return &EmojiEventHandler{svc: svc, sup: sup}
}

func (h *EmojiEventHandler) HandleEvent(_ context.Context, account accounts.Account, ev Event) bool {
	switch ev.Kind {
	case EventEmojiAdded:
		h.sup.Go("emoji-resync", func(ctx context.Context) error {
			return h.svc.Resync(ctx, account)
		})
		return true
	case EventEmojiUpdated:
		var payload emojiListPayload
		if err := json.Unmarshal(ev.Body, &payload); err != nil {
			log.Printf("streaming: bad emoji payload for account %d: %v", account.ID, err)
			return true
		}
		h.sup.Go("emoji-add", func(ctx context.Context) error {
			return h.svc.Add(ctx, account, toWithAliases(payload.Emojis))
		})
		return true
	case EventEmojiDeleted:
		var payload emojiListPayload
		if err := json.Unmarshal(ev.Body, &payload); err != nil {
			log.Printf("streaming: bad emoji payload for account %d: %v", account.ID, err)
			return true
		}
		names := make([]string, len(payload.Emojis))
		for i, e := range payload.Emojis {
			names[i] = e.Name
		}
		h.sup.Go("emoji-delete", func(ctx context.Context) error {
			return h.svc.Delete(ctx, account, names)
		})
		return true
	default:
		return false
	}
}

func toWithAliases(dtos []misskey.EmojiDTO) []emoji.WithAliases {
	out := make([]emoji.WithAliases, len(dtos))
	for i, dto := range dtos {
		out[i] = emoji.WithAliases{
			Emoji:   emoji.Emoji{Name: dto.Name, URL: dto.URL},
			Aliases: dto.Aliases,
		}
	}
	return out
}
