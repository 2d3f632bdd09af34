package entities

import "time"

// ID is the composite key identifying one logical domain object across
// loaders and streaming events. Two entities with equal ID are the same
// record even when they were fetched through different code paths; the
// store dedups on it.
type ID struct {
	AccountID int64
	Local     string // backend-local id, opaque
}

// Kind discriminates the entity family.
type Kind string

const (
	KindUser         Kind = "user"
	KindNote         Kind = "note"
	KindNotification Kind = "notification"
	KindMessage      Kind = "message"
)

// Entity is the closed family of normalized domain records held by the
// Store. Concrete types are User, Note, Notification and Message; nothing
// else implements it.
type Entity interface {
	EntityID() ID
	EntityKind() Kind
	LastUpdated() time.Time
}

// User is a normalized remote user, from either backend family.
type User struct {
	ID          ID
	Username    string
	DisplayName string
	Host        string // remote host for federated users, empty for local
	AvatarURL   string
	IsDetail    bool // whether follower counts etc. were populated
	UpdatedAt   time.Time
}

func (u User) EntityID() ID           { return u.ID }
func (u User) EntityKind() Kind       { return KindUser }
func (u User) LastUpdated() time.Time { return u.UpdatedAt }

// Note is a normalized post/status.
type Note struct {
	ID        ID
	UserID    ID
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n Note) EntityID() ID           { return n.ID }
func (n Note) EntityKind() Kind       { return KindNote }
func (n Note) LastUpdated() time.Time { return n.UpdatedAt }

// Notification is a normalized notification. UserID and NoteID reference
// the related entities when the backend supplied them.
type Notification struct {
	ID        ID
	Type      string // follow, mention, reaction, ... backend vocabulary kept as-is
	UserID    *ID
	NoteID    *ID
	IsRead    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n Notification) EntityID() ID           { return n.ID }
func (n Notification) EntityKind() Kind       { return KindNotification }
func (n Notification) LastUpdated() time.Time { return n.UpdatedAt }

// Message is a normalized chat message.
type Message struct {
	ID        ID
	SenderID  ID
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Message) EntityID() ID           { return m.ID }
func (m Message) EntityKind() Kind       { return KindMessage }
func (m Message) LastUpdated() time.Time { return m.UpdatedAt }
