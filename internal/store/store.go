// Package store defines the durable-storage contracts consumed by the
// relay. The relay only depends on these interfaces; the sqlite
// subpackage provides the shipped implementation.
package store

import (
	"context"
	"errors"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

// ErrNotFound is returned by directory lookups for unknown usernames.
var ErrNotFound = errors.New("not found")

// MessageStore is the durable message log. Implementations must commit
// a write before returning, so the relay can notify only after the
// message (or read flag) is durable.
type MessageStore interface {
	// Append persists m and returns it with its store-assigned ID.
	Append(ctx context.Context, m domain.Message) (domain.Message, error)

	// Conversation returns all messages exchanged between a and b, in
	// either direction. Order is unspecified; the relay sorts.
	Conversation(ctx context.Context, a, b string) ([]domain.Message, error)

	// SetRead marks one message read. Read flags are monotonic, an
	// already-read message stays read.
	SetRead(ctx context.Context, id int64) error

	// CountUnread counts unread messages sent by sender to receiver.
	CountUnread(ctx context.Context, receiver, sender string) (int, error)
}

// UserDirectory lists registered users with their display metadata.
type UserDirectory interface {
	// List returns every registered user.
	List(ctx context.Context) ([]domain.User, error)

	// Get returns one user, or ErrNotFound.
	Get(ctx context.Context, username string) (domain.User, error)
}
