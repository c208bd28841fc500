package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mmuslimabdulj/pairchat/internal/delivery/ws"
	"github.com/mmuslimabdulj/pairchat/internal/identity"
)

// Handler exposes the relay over HTTP: the websocket upgrade endpoint
// and a REST view of the viewer's online list.
type Handler struct {
	hub      *ws.Hub
	resolver identity.Resolver
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHandler builds the HTTP surface. allowedOrigins guards the
// upgrade; an empty Origin header (same-origin clients) always passes.
func NewHandler(hub *ws.Hub, resolver identity.Resolver, allowedOrigins []string, log *slog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket authenticates the request, upgrades it, and hands
// the connection to the relay. An unresolvable identity rejects the
// attempt before the upgrade; nothing is registered or broadcast.
// The optional peer query parameter triggers an immediate history
// replay for that conversation.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	username, err := h.resolver.Resolve(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	peerHint := r.URL.Query().Get("peer")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, username)
	if err := h.hub.Connect(client.Context(), client, peerHint); err != nil {
		h.log.Warn("connect rejected", "user", username, "err", err)
		client.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandleUsers returns the viewer's online-user list, the same
// aggregation the socket broadcasts.
func (h *Handler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	username, err := h.resolver.Resolve(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.hub.OnlineList(r.Context(), username)
	if err != nil {
		h.log.Error("online list failed", "viewer", username, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
