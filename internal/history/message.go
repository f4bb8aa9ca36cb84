package history

import (
	"time"

	"github.com/comigor/asistente-agro/internal/conversation"
)

// Record is a conversational message as persisted in the SQLite store.
type Record struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Message converts the record back to a conversation turn.
func (r Record) Message() conversation.Message {
	return conversation.Message{Role: conversation.Role(r.Role), Content: r.Content}
}
