package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names an outbound event pushed over a connection.
type EventType string

const (
	// EventOnlineUsers carries the viewer's recomputed online-user list.
	EventOnlineUsers EventType = "online_users"

	// EventUserOnline announces a user's first connect to everyone else.
	EventUserOnline EventType = "user_online"

	// EventMessageList carries one history page, oldest first.
	EventMessageList EventType = "message_list"

	// EventNewMessage delivers a freshly persisted message to its receiver.
	EventNewMessage EventType = "new_message"

	// EventTyping tells the recipient that sender is typing.
	EventTyping EventType = "typing"

	// EventError reports a failed operation back to the connection
	// that issued it.
	EventError EventType = "error"
)

// OpType names an inbound operation invoked by a connection.
type OpType string

const (
	OpSendMessage  OpType = "send_message"
	OpLoadMessages OpType = "load_messages"
	OpTyping       OpType = "typing"
)

// Event is the outbound wire envelope.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent marshals payload into a stamped envelope. Marshal errors are
// impossible for the payload types used here, so they are swallowed the
// same way encoding errors are throughout the delivery layer.
func NewEvent(t EventType, payload interface{}) []byte {
	raw, _ := json.Marshal(payload)
	ev := Event{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	data, _ := json.Marshal(ev)
	return data
}

// Op is the inbound wire envelope.
type Op struct {
	Type    OpType          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SendMessagePayload is the payload of a send_message operation.
type SendMessagePayload struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

// LoadMessagesPayload is the payload of a load_messages operation.
// Page is 1-based; 0 is treated as 1.
type LoadMessagesPayload struct {
	Peer string `json:"peer"`
	Page int    `json:"page"`
}

// TypingPayload is the payload of a typing operation and of the typing
// event relayed to the recipient.
type TypingPayload struct {
	Recipient string `json:"recipient,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// ErrorPayload reports which operation failed and why.
type ErrorPayload struct {
	Op     string `json:"op"`
	Reason string `json:"reason"`
}
