// Package history keeps each session's conversation between requests.
// Conversations are scoped to a session ID and are never shared.
package history

import (
	"context"
	"sync"

	"github.com/comigor/asistente-agro/internal/conversation"
)

// Store persists the ordered turns of every session.
type Store interface {
	List(ctx context.Context, sessionID string) ([]conversation.Message, error)
	Append(ctx context.Context, sessionID string, msgs ...conversation.Message) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]conversation.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]conversation.Message)}
}

// List returns a copy of the session's messages in insertion order.
func (m *MemoryStore) List(_ context.Context, sessionID string) ([]conversation.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return conversation.Clone(m.sessions[sessionID]), nil
}

func (m *MemoryStore) Append(_ context.Context, sessionID string, msgs ...conversation.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msgs...)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
