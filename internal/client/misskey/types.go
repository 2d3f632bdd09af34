package misskey

// Raw wire DTOs for the Misskey API family. The engine never consumes these
// directly; the conversion layer maps them into normalized entities.

// UserDTO is a user as returned by user-listing and embedding endpoints.
type UserDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	AvatarURL string `json:"avatarUrl"`
}

// NoteDTO is a note (post) as returned by timeline endpoints.
type NoteDTO struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	UserID    string  `json:"userId"`
	User      UserDTO `json:"user"`
	CreatedAt string  `json:"createdAt"`
}

// NotificationDTO is one entry from i/notifications (v11+).
type NotificationDTO struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	UserID    string   `json:"userId"`
	User      *UserDTO `json:"user,omitempty"`
	Note      *NoteDTO `json:"note,omitempty"`
	IsRead    bool     `json:"isRead"`
	CreatedAt string   `json:"createdAt"`
}

// MessageDTO is one chat message from messaging/messages.
type MessageDTO struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	UserID    string   `json:"userId"`
	User      *UserDTO `json:"user,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

// FollowDTO is one entry from users/followers or users/following on v11 and
// later. Exactly one of Followee/Follower is populated depending on
// direction.
type FollowDTO struct {
	ID         string   `json:"id"`
	FolloweeID string   `json:"followeeId"`
	FollowerID string   `json:"followerId"`
	Followee   *UserDTO `json:"followee,omitempty"`
	Follower   *UserDTO `json:"follower,omitempty"`
}

// User returns whichever side of the follow edge is populated.
func (f FollowDTO) User() *UserDTO {
	if f.Followee != nil {
		return f.Followee
	}
	return f.Follower
}

// V10FollowPage is the v10 follow/follower envelope: the page plus an
// explicit positional next token, null at the end.
type V10FollowPage struct {
	Users []UserDTO `json:"users"`
	Next  *string   `json:"next"`
}

// EmojiDTO is one custom emoji from the instance metadata.
type EmojiDTO struct {
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Aliases []string `json:"aliases"`
}

// pageRequest is the common body shape of cursor-paged POST endpoints.
type pageRequest struct {
	I       string  `json:"i"`
	UserID  string  `json:"userId,omitempty"`
	UntilID *string `json:"untilId,omitempty"`
	Cursor  *string `json:"cursor,omitempty"` // v10 positional form
	Limit   int     `json:"limit,omitempty"`
}
