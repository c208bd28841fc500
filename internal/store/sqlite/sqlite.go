// Package sqlite backs the store contracts with a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
	"github.com/mmuslimabdulj/pairchat/internal/store"
)

// Store implements store.MessageStore and store.UserDirectory over one
// SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and bootstraps
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "sqlite.Open")
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender TEXT NOT NULL,
			receiver TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender, receiver, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver, sender, read)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return errors.Wrap(err, "sqlite.init")
		}
	}
	return nil
}

// Append persists m and returns it with the assigned row id. The write
// is committed before return, so callers may notify immediately after.
func (s *Store) Append(ctx context.Context, m domain.Message) (domain.Message, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (sender, receiver, content, created_at, read) VALUES (?, ?, ?, ?, ?)",
		m.Sender, m.Receiver, m.Content, m.CreatedAt.UTC().Format(time.RFC3339Nano), boolToInt(m.Read),
	)
	if err != nil {
		return domain.Message{}, errors.Wrap(err, "sqlite.Append")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Message{}, errors.Wrap(err, "sqlite.Append.LastInsertId")
	}
	m.ID = id
	return m, nil
}

// Conversation returns every message between a and b in either
// direction, unordered.
func (s *Store) Conversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, receiver, content, created_at, read FROM messages
		 WHERE (sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)`,
		a, b, b, a,
	)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite.Conversation")
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var createdAt string
		var read int
		if err := rows.Scan(&m.ID, &m.Sender, &m.Receiver, &m.Content, &createdAt, &read); err != nil {
			return nil, errors.Wrap(err, "sqlite.Conversation.Scan")
		}
		m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, errors.Wrap(err, "sqlite.Conversation.ParseTime")
		}
		m.Read = read != 0
		msgs = append(msgs, m)
	}
	return msgs, errors.Wrap(rows.Err(), "sqlite.Conversation.Rows")
}

// SetRead flips one message's read flag to true. Idempotent.
func (s *Store) SetRead(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE messages SET read = 1 WHERE id = ?", id)
	return errors.Wrap(err, "sqlite.SetRead")
}

// CountUnread counts unread messages from sender to receiver.
func (s *Store) CountUnread(ctx context.Context, receiver, sender string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE receiver = ? AND sender = ? AND read = 0",
		receiver, sender,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "sqlite.CountUnread")
	}
	return count, nil
}

// List returns all registered users ordered by username.
func (s *Store) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, full_name, avatar_url FROM users ORDER BY username")
	if err != nil {
		return nil, errors.Wrap(err, "sqlite.List")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.FullName, &u.AvatarURL); err != nil {
			return nil, errors.Wrap(err, "sqlite.List.Scan")
		}
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "sqlite.List.Rows")
}

// Get returns one user, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		"SELECT username, full_name, avatar_url FROM users WHERE username = ?",
		username,
	).Scan(&u.Username, &u.FullName, &u.AvatarURL)
	if err == sql.ErrNoRows {
		return domain.User{}, store.ErrNotFound
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "sqlite.Get")
	}
	return u, nil
}

// AddUser inserts or updates a directory entry. Used by deployment
// seeding and tests; registration flows live outside this subsystem.
func (s *Store) AddUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, full_name, avatar_url) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET full_name = excluded.full_name, avatar_url = excluded.avatar_url`,
		u.Username, u.FullName, u.AvatarURL,
	)
	return errors.Wrap(err, "sqlite.AddUser")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
