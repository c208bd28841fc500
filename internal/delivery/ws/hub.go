// Package ws is the relay engine: it owns the connection lifecycle,
// directed delivery, history replay and online-list fan-out. All state
// it shares between connections lives in the presence registry; the
// hub itself holds only injected collaborators.
package ws

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
	"github.com/mmuslimabdulj/pairchat/internal/presence"
	"github.com/mmuslimabdulj/pairchat/internal/store"
)

// Hub relays events between connected clients. Its methods are safe to
// call concurrently from any number of connection goroutines.
type Hub struct {
	registry  *presence.Registry
	messages  store.MessageStore
	directory store.UserDirectory
	log       *slog.Logger
	pageSize  int
}

// NewHub wires the relay to its collaborators.
func NewHub(registry *presence.Registry, messages store.MessageStore, directory store.UserDirectory, log *slog.Logger) *Hub {
	return &Hub{
		registry:  registry,
		messages:  messages,
		directory: directory,
		log:       log,
		pageSize:  domain.HistoryPageSize,
	}
}

// Connect runs the connected-state entry actions for c: snapshot the
// user's display info, register presence, announce a first connect,
// push the recomputed online list to everyone, and replay history for
// the peer hint when one was given. An error means the connection must
// be rejected; no state was mutated.
func (h *Hub) Connect(ctx context.Context, c *Client, peerHint string) error {
	user, err := h.directory.Get(ctx, c.Username)
	if err != nil {
		return err
	}

	first := h.registry.Register(c.Username, c, user)

	if first {
		notice := domain.NewEvent(domain.EventUserOnline, domain.UserSummary{
			Username:  user.Username,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
			IsOnline:  true,
		})
		for _, peer := range h.registry.Snapshot() {
			if peer.User.Username == c.Username {
				continue
			}
			h.deliver(peer, notice)
		}
		h.log.Info("user online", "user", c.Username)
	} else {
		h.log.Debug("user reconnected", "user", c.Username)
	}

	h.broadcastOnlineUsers(ctx)

	if peerHint != "" {
		if err := h.LoadMessages(ctx, c, peerHint, 1); err != nil {
			// The connection itself is fine; history can be re-requested.
			h.log.Error("peer-hint history replay failed", "user", c.Username, "peer", peerHint, "err", err)
		}
	}
	return nil
}

// Disconnect runs the disconnected-state exit actions for c. Every
// disconnect reason gets the same unconditional cleanup. A no-op for
// connections that never completed registration, and for transports
// already replaced by a reconnect.
func (h *Hub) Disconnect(c *Client) {
	h.registry.Deregister(c.Username, c)
	h.log.Info("user offline", "user", c.Username)

	// The closing connection's context is gone; cleanup broadcasts are
	// bounded by the remaining recipients' buffers, not by a caller.
	h.broadcastOnlineUsers(context.Background())
}

// OnlineList aggregates every directory user into the viewer's online
// list: presence from the registry, unread counts relative to viewer,
// online users first.
func (h *Hub) OnlineList(ctx context.Context, viewer string) ([]domain.UserSummary, error) {
	users, err := h.directory.List(ctx)
	if err != nil {
		return nil, err
	}
	online := h.registry.OnlineSet()

	summaries := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		_, isOnline := online[u.Username]
		unread := 0
		if u.Username != viewer {
			unread, err = h.messages.CountUnread(ctx, viewer, u.Username)
			if err != nil {
				return nil, err
			}
		}
		summaries = append(summaries, domain.UserSummary{
			Username:    u.Username,
			FullName:    u.FullName,
			AvatarURL:   u.AvatarURL,
			IsOnline:    isOnline,
			UnreadCount: unread,
		})
	}

	// Online first; directory order (username ascending) otherwise.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].IsOnline && !summaries[j].IsOnline
	})
	return summaries, nil
}

// broadcastOnlineUsers recomputes and pushes the online list to every
// live connection. Unread counts are viewer-relative, so each viewer
// gets its own list. Recomputed on every connect and disconnect rather
// than cached.
func (h *Hub) broadcastOnlineUsers(ctx context.Context) {
	for _, peer := range h.registry.Snapshot() {
		list, err := h.OnlineList(ctx, peer.User.Username)
		if err != nil {
			// Isolated per recipient, never aborts the loop.
			h.log.Error("online list aggregation failed", "viewer", peer.User.Username, "err", err)
			continue
		}
		h.deliver(peer, domain.NewEvent(domain.EventOnlineUsers, list))
	}
}

// deliver enqueues without blocking. A full buffer means the client
// has stalled; it is cut loose so nobody else waits on it.
func (h *Hub) deliver(peer presence.Peer, event []byte) {
	if peer.Conn.Enqueue(event) {
		return
	}
	h.log.Warn("dropping stalled connection", "user", peer.User.Username)
	if closer, ok := peer.Conn.(interface{ Close() }); ok {
		closer.Close()
	}
}
