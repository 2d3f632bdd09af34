package streaming

import (
	"encoding/json"
	"fmt"
)

// EventKind classifies one inbound frame.
type EventKind int

const (
	// EventUserUpdated: the account's own user record changed (main channel
	// "meUpdated").
	EventUserUpdated EventKind = iota
	// EventNotificationCreated: a new notification arrived (main channel
	// "notification").
	EventNotificationCreated
	// EventMessageCreated: a new chat message (main channel
	// "messagingMessage").
	EventMessageCreated
	// EventMessageUpdated: an edited chat message.
	EventMessageUpdated
	// EventEmojiAdded: the instance gained a custom emoji; carries too
	// little detail to apply incrementally, so it triggers a full resync.
	EventEmojiAdded
	// EventEmojiUpdated, EventEmojiDeleted: incremental emoji changes with
	// full payloads.
	EventEmojiUpdated
	EventEmojiDeleted
	// EventMainOther: any other main-channel envelope; routed so a handler
	// may claim it, otherwise counted as unclaimed.
	EventMainOther
)

func (k EventKind) String() string {
	switch k {
	case EventUserUpdated:
		return "user-updated"
	case EventNotificationCreated:
		return "notification-created"
	case EventMessageCreated:
		return "message-created"
	case EventMessageUpdated:
		return "message-updated"
	case EventEmojiAdded:
		return "emoji-added"
	case EventEmojiUpdated:
		return "emoji-updated"
	case EventEmojiDeleted:
		return "emoji-deleted"
	case EventMainOther:
		return "main-other"
	default:
		return "invalid"
	}
}

// Event is one classified frame. Body is the kind-specific payload, still
// raw; sub-handlers own decoding.
type Event struct {
	Kind EventKind
	Body json.RawMessage
}

type wireFrame struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

type channelFrame struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

// Classify parses one frame into an event. The bool result is false for
// frame types the engine does not consume (channel handshakes, pings);
// those are silently skipped, which is distinct from a malformed frame.
func Classify(frame []byte) (Event, bool, error) {
	var wf wireFrame
	if err := json.Unmarshal(frame, &wf); err != nil {
		return Event{}, false, fmt.Errorf("parsing frame: %w", err)
	}

	switch wf.Type {
	case "channel":
		var cf channelFrame
		if err := json.Unmarshal(wf.Body, &cf); err != nil {
			return Event{}, false, fmt.Errorf("parsing channel envelope: %w", err)
		}
		switch cf.Type {
		case "notification":
			return Event{Kind: EventNotificationCreated, Body: cf.Body}, true, nil
		case "meUpdated":
			return Event{Kind: EventUserUpdated, Body: cf.Body}, true, nil
		case "messagingMessage":
			return Event{Kind: EventMessageCreated, Body: cf.Body}, true, nil
		case "messagingMessageUpdated":
			return Event{Kind: EventMessageUpdated, Body: cf.Body}, true, nil
		default:
			return Event{Kind: EventMainOther, Body: cf.Body}, true, nil
		}
	case "emojiAdded":
		return Event{Kind: EventEmojiAdded, Body: wf.Body}, true, nil
	case "emojiUpdated":
		return Event{Kind: EventEmojiUpdated, Body: wf.Body}, true, nil
	case "emojiDeleted":
		return Event{Kind: EventEmojiDeleted, Body: wf.Body}, true, nil
	default:
		return Event{}, false, nil
	}
}
