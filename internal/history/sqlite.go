package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/asistente-agro/internal/conversation"
	"github.com/comigor/asistente-agro/internal/logger"
)

// SQLiteStore persists messages in a SQLite database.
// The database is opened lazily and created on first use.
// If opening the DB or creating the table fails, the store falls back to in-memory storage.
type SQLiteStore struct {
	path string

	once    sync.Once
	db      *sql.DB
	initErr error

	fallback *MemoryStore
}

func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = "history.db"
	}
	return &SQLiteStore{path: path, fallback: NewMemoryStore()}
}

// init opens the SQLite database and creates the messages table if it doesn't exist.
func (s *SQLiteStore) init() {
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		s.initErr = err
		logger.L.Warn("sqlite open failed; using in-memory history", "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS messages_session ON messages (session_id, id);`); err != nil {
		s.initErr = err
		_ = db.Close()
		logger.L.Warn("sqlite table creation failed; using in-memory history", "error", err)
		return
	}
	s.db = db
	logger.L.Info("sqlite history DB initialized", "path", s.path)
}

func (s *SQLiteStore) ready() bool {
	s.once.Do(s.init)
	return s.initErr == nil && s.db != nil
}

// List returns all messages of a session in chronological order.
func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	if !s.ready() {
		return s.fallback.List(ctx, sessionID)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY id ASC;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []conversation.Message
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Role, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		out = append(out, r.Message())
	}
	return out, rows.Err()
}

// Append stores msgs in one transaction so a turn is never half written.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, msgs ...conversation.Message) error {
	if !s.ready() {
		return s.fallback.Append(ctx, sessionID, msgs...)
	}
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	now := time.Now().UTC()
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO messages (session_id, role, content, created_at) VALUES (?,?,?,?);`, sessionID, string(m.Role), m.Content, now); err != nil {
			_ = tx.Rollback()
			logger.L.Error("failed to store message in sqlite", "error", err)
			return fmt.Errorf("storing message: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	if !s.ready() {
		return s.fallback.Clear(ctx, sessionID)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?;`, sessionID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Close releases the database handle, if one was opened.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
