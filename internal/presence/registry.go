// Package presence tracks which users currently hold a live connection.
//
// The registry is the only shared mutable structure in the relay: every
// connection goroutine registers, deregisters and looks up entries
// concurrently, so all read-modify-write happens under one mutex.
package presence

import (
	"sync"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

// Conn is a live connection handle. Enqueue must never block; it
// reports false when the message was dropped (buffer full or closed).
type Conn interface {
	Enqueue(msg []byte) bool
}

type entry struct {
	user domain.User // display snapshot, taken at first connect
	conn Conn
}

// Registry maps usernames to their live connection. One entry per
// username; a reconnect replaces the handle in place.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry. Lifetime is process lifetime;
// construct it once in main and inject it into the relay.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register inserts or updates the entry for username and reports
// whether this was a first connect. The check and the insert are one
// critical section, so two near-simultaneous connects cannot both see
// themselves as first. On reconnect only the handle is replaced; the
// display snapshot from the first connect stays.
func (r *Registry) Register(username string, conn Conn, user domain.User) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[username]; ok {
		e.conn = conn
		return false
	}
	r.entries[username] = &entry{user: user, conn: conn}
	return true
}

// Deregister removes the entry for username if conn is still the
// registered handle. A no-op when the user is absent (a client may
// disconnect before registering) or when the entry already belongs to
// a newer connection, so a late disconnect of a replaced transport
// cannot evict a live reconnect.
func (r *Registry) Deregister(username string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[username]; ok && e.conn == conn {
		delete(r.entries, username)
	}
}

// Lookup returns the live connection for username, used for directed
// delivery. The second result is false when the user is offline.
func (r *Registry) Lookup(username string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[username]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// OnlineSet returns a point-in-time set of online usernames.
func (r *Registry) OnlineSet() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{}, len(r.entries))
	for name := range r.entries {
		set[name] = struct{}{}
	}
	return set
}

// Peer is a snapshot of one registry entry.
type Peer struct {
	User domain.User
	Conn Conn
}

// Snapshot returns all entries at a consistent point in time, for
// fan-out to every live connection.
func (r *Registry) Snapshot() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]Peer, 0, len(r.entries))
	for _, e := range r.entries {
		peers = append(peers, Peer{User: e.user, Conn: e.conn})
	}
	return peers
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
