package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
	"github.com/mmuslimabdulj/pairchat/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pairchat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AppendAssignsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Append(ctx, domain.NewMessage("alice", "bob", "hi"))
	require.NoError(t, err)
	second, err := s.Append(ctx, domain.NewMessage("bob", "alice", "hey"))
	require.NoError(t, err)

	assert.Greater(t, first.ID, int64(0))
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.Read)
}

func TestStore_ConversationBothDirections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, domain.NewMessage("alice", "bob", "one"))
	require.NoError(t, err)
	_, err = s.Append(ctx, domain.NewMessage("bob", "alice", "two"))
	require.NoError(t, err)
	_, err = s.Append(ctx, domain.NewMessage("alice", "carol", "other chat"))
	require.NoError(t, err)

	msgs, err := s.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// Same pair regardless of argument order.
	flipped, err := s.Conversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Len(t, flipped, 2)

	for _, m := range msgs {
		assert.NotEqual(t, "carol", m.Receiver)
	}
}

func TestStore_ConversationRoundTripsTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sent := domain.NewMessage("alice", "bob", "hi")
	stored, err := s.Append(ctx, sent)
	require.NoError(t, err)

	msgs, err := s.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, stored.ID, msgs[0].ID)
	assert.True(t, msgs[0].CreatedAt.Equal(sent.CreatedAt),
		"expected %v, got %v", sent.CreatedAt, msgs[0].CreatedAt)
	assert.Equal(t, time.UTC, msgs[0].CreatedAt.Location())
}

func TestStore_SetReadIsMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.Append(ctx, domain.NewMessage("alice", "bob", "hi"))
	require.NoError(t, err)

	require.NoError(t, s.SetRead(ctx, m.ID))
	// Second flip is a no-op, not an error.
	require.NoError(t, s.SetRead(ctx, m.ID))

	msgs, err := s.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestStore_CountUnread(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m1, err := s.Append(ctx, domain.NewMessage("bob", "alice", "one"))
	require.NoError(t, err)
	_, err = s.Append(ctx, domain.NewMessage("bob", "alice", "two"))
	require.NoError(t, err)
	// Opposite direction must not count.
	_, err = s.Append(ctx, domain.NewMessage("alice", "bob", "reply"))
	require.NoError(t, err)

	count, err := s.CountUnread(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.SetRead(ctx, m1.ID))

	count, err = s.CountUnread(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.CountUnread(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_Directory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddUser(ctx, domain.User{Username: "bob", FullName: "Bob B"}))
	require.NoError(t, s.AddUser(ctx, domain.User{Username: "alice", FullName: "Alice A", AvatarURL: "/a.png"}))

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	u, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice A", u.FullName)
	assert.Equal(t, "/a.png", u.AvatarURL)

	_, err = s.Get(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_AddUserUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddUser(ctx, domain.User{Username: "alice", FullName: "Alice"}))
	require.NoError(t, s.AddUser(ctx, domain.User{Username: "alice", FullName: "Alice Adams"}))

	u, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Adams", u.FullName)
}
