// Package conversation holds the role-tagged turns exchanged with the assistant.
package conversation

// Role tags who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn. Messages are never edited once appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// User builds a user turn.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant turn.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// System builds a system instruction.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// Append returns a new slice with msgs added after history; history itself is
// left untouched so earlier states stay valid.
func Append(history []Message, msgs ...Message) []Message {
	out := make([]Message, 0, len(history)+len(msgs))
	out = append(out, history...)
	return append(out, msgs...)
}

// Clone copies history.
func Clone(history []Message) []Message {
	if len(history) == 0 {
		return nil
	}
	return Append(history)
}
