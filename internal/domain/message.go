package domain

import "time"

// Message is a directed chat message between two users. The ID is
// assigned by the message store on append and is zero until then.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// NewMessage builds an unread message stamped with the current UTC time.
func NewMessage(sender, receiver, content string) Message {
	return Message{
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Read:      false,
	}
}

// UserSummary is one row of the online-user list pushed to clients.
// UnreadCount is relative to the viewer the list was computed for.
type UserSummary struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsOnline    bool   `json:"is_online"`
	UnreadCount int    `json:"unread_count"`
}
