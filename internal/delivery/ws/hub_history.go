package ws

import (
	"context"
	"sort"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

// LoadMessages replays one page of the viewer's conversation with peer
// to the viewer's own connection. Page 1 is the most recent pageSize
// messages; the delivered page is re-ordered oldest first so clients
// prepend it above what they already have. Reading is the read-marking
// side effect: every unread message addressed to the viewer in the
// page is flipped to read before delivery.
func (h *Hub) LoadMessages(ctx context.Context, c *Client, peer string, page int) error {
	if page < 1 {
		page = 1
	}

	msgs, err := h.messages.Conversation(ctx, c.Username, peer)
	if err != nil {
		h.log.Error("conversation query failed", "viewer", c.Username, "peer", peer, "err", err)
		return err
	}

	// Newest first for paging. ID breaks timestamp ties, append order.
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return msgs[i].ID > msgs[j].ID
	})

	start := (page - 1) * h.pageSize
	if start > len(msgs) {
		start = len(msgs)
	}
	end := start + h.pageSize
	if end > len(msgs) {
		end = len(msgs)
	}
	pageMsgs := msgs[start:end]

	// Oldest first for delivery.
	sort.Slice(pageMsgs, func(i, j int) bool {
		if !pageMsgs[i].CreatedAt.Equal(pageMsgs[j].CreatedAt) {
			return pageMsgs[i].CreatedAt.Before(pageMsgs[j].CreatedAt)
		}
		return pageMsgs[i].ID < pageMsgs[j].ID
	})

	for i := range pageMsgs {
		if pageMsgs[i].Receiver != c.Username || pageMsgs[i].Read {
			continue
		}
		// Disconnect mid-replay stops marking; whatever was already
		// flipped stays flipped, each SetRead is durable on its own.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.messages.SetRead(ctx, pageMsgs[i].ID); err != nil {
			h.log.Error("read marking failed", "message", pageMsgs[i].ID, "err", err)
			continue
		}
		pageMsgs[i].Read = true
	}

	c.Enqueue(domain.NewEvent(domain.EventMessageList, pageMsgs))
	return nil
}
