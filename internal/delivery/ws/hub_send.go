package ws

import (
	"context"
	"errors"
	"strings"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

var errEmptyMessage = errors.New("empty receiver or content")

// SendMessage persists a directed message and, when the receiver is
// online, delivers it live. Persistence failures propagate to the
// caller; a message is never announced before it is durable. An
// offline or unknown receiver is not an error, the message waits in
// history.
func (h *Hub) SendMessage(ctx context.Context, c *Client, receiver, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if receiver == "" || content == "" {
		return domain.Message{}, errEmptyMessage
	}

	msg, err := h.messages.Append(ctx, domain.NewMessage(c.Username, receiver, content))
	if err != nil {
		h.log.Error("message append failed", "sender", c.Username, "receiver", receiver, "err", err)
		return domain.Message{}, err
	}

	if conn, ok := h.registry.Lookup(receiver); ok {
		conn.Enqueue(domain.NewEvent(domain.EventNewMessage, msg))
	}
	return msg, nil
}

// NotifyTyping relays a typing notice to the recipient's live
// connection. Best effort: offline recipients are silently dropped,
// nothing is queued or persisted.
func (h *Hub) NotifyTyping(c *Client, recipient string) {
	conn, ok := h.registry.Lookup(recipient)
	if !ok {
		return
	}
	conn.Enqueue(domain.NewEvent(domain.EventTyping, domain.TypingPayload{Sender: c.Username}))
}
