// Package sqlite provides a SQLite backed core.SessionStore. Each message is
// one row; prompts, usage and provenance records are stored as JSON columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver.

	"github.com/hupe1980/agentloom/core"
)

const (
	createMessages = "CREATE TABLE IF NOT EXISTS messages (" +
		"id TEXT PRIMARY KEY, " +
		"chat_id TEXT NOT NULL, " +
		"question TEXT NOT NULL, " +
		"answer_json BLOB NOT NULL, " +
		"usage_json BLOB NOT NULL, " +
		"agents_json BLOB NOT NULL, " +
		"operations_json BLOB NOT NULL, " +
		"queries_json BLOB NOT NULL, " +
		"created_at INTEGER NOT NULL" +
		")"

	createChatIndex = "CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id, created_at)"

	insertMessage = "INSERT OR REPLACE INTO messages (" +
		"id, chat_id, question, answer_json, usage_json, agents_json, operations_json, queries_json, created_at" +
		") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"

	selectColumns = "SELECT id, chat_id, question, answer_json, usage_json, agents_json, operations_json, queries_json, created_at FROM messages "

	selectByID   = selectColumns + "WHERE id = ? LIMIT 1"
	selectByChat = selectColumns + "WHERE chat_id = ? ORDER BY created_at ASC, rowid ASC"
)

// Store is a SQLite implementation of core.SessionStore.
type Store struct {
	db     *sql.DB
	ownsDB bool
}

// Open opens (or creates) the database file at path and prepares the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	s.ownsDB = true

	return s, nil
}

// New creates a store on an initialized SQLite *sql.DB, creating tables if
// needed.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if _, err := db.Exec(createMessages); err != nil {
		return nil, fmt.Errorf("create messages table: %w", err)
	}
	if _, err := db.Exec(createChatIndex); err != nil {
		return nil, fmt.Errorf("create chat index: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database when it was opened by Open.
func (s *Store) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// Save inserts or replaces msg.
func (s *Store) Save(ctx context.Context, msg *core.Message) error {
	cols, err := encode(msg)
	if err != nil {
		return err
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, insertMessage,
		msg.ID, msg.ChatID, msg.Question,
		cols.answer, cols.usage, cols.agents, cols.operations, cols.queries,
		createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}

	return nil
}

// Get returns the message with id.
func (s *Store) Get(ctx context.Context, id string) (*core.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx, selectByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrMessageNotFound, id)
		}
		return nil, fmt.Errorf("select message %s: %w", id, err)
	}
	return msg, nil
}

// ListByChat returns a chat's messages, oldest first.
func (s *Store) ListByChat(ctx context.Context, chatID string) ([]*core.Message, error) {
	rows, err := s.db.QueryContext(ctx, selectByChat, chatID)
	if err != nil {
		return nil, fmt.Errorf("select chat %s: %w", chatID, err)
	}
	defer rows.Close()

	var out []*core.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat %s: %w", chatID, err)
		}
		out = append(out, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat %s: %w", chatID, err)
	}

	return out, nil
}

type columns struct {
	answer, usage, agents, operations, queries []byte
}

func encode(msg *core.Message) (columns, error) {
	var (
		c   columns
		err error
	)

	fields := []struct {
		name string
		dst  *[]byte
		v    any
	}{
		{"answer", &c.answer, msg.Answer},
		{"usage", &c.usage, msg.Usage},
		{"agents", &c.agents, nonNil(msg.ActiveAgents)},
		{"operations", &c.operations, nonNil(msg.Operations)},
		{"queries", &c.queries, nonNil(msg.Queries)},
	}

	for _, f := range fields {
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return columns{}, fmt.Errorf("encode %s of message %s: %w", f.name, msg.ID, err)
		}
	}

	return c, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*core.Message, error) {
	var (
		msg       core.Message
		c         columns
		createdAt int64
	)

	if err := row.Scan(&msg.ID, &msg.ChatID, &msg.Question,
		&c.answer, &c.usage, &c.agents, &c.operations, &c.queries, &createdAt); err != nil {
		return nil, err
	}

	fields := []struct {
		name string
		src  []byte
		dst  any
	}{
		{"answer", c.answer, &msg.Answer},
		{"usage", c.usage, &msg.Usage},
		{"agents", c.agents, &msg.ActiveAgents},
		{"operations", c.operations, &msg.Operations},
		{"queries", c.queries, &msg.Queries},
	}

	for _, f := range fields {
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s of message %s: %w", f.name, msg.ID, err)
		}
	}

	msg.CreatedAt = time.Unix(0, createdAt)

	return &msg, nil
}
