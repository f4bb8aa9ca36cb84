package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/asistente-agro/internal/conversation"
	"github.com/comigor/asistente-agro/internal/logger"
)

// Temperature is used for every completion; there is no per-request override.
const Temperature float32 = 0.7

// ErrNoChoices is returned when the endpoint answers without any completion choice.
var ErrNoChoices = errors.New("chat completion returned no choices")

// Completer sends the whole conversation, prefixed by the system instruction,
// to the chat-completion endpoint.
type Completer struct {
	client       Client
	model        string
	systemPrompt string
}

// NewCompleter creates a Completer using SystemPrompt.
func NewCompleter(client Client, model string) *Completer {
	return &Completer{client: client, model: model, systemPrompt: SystemPrompt}
}

// Complete returns the content of the first choice. The history is sent in
// full on every call; it is never truncated or summarized.
func (c *Completer) Complete(ctx context.Context, history []conversation.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range conversation.Append([]conversation.Message{conversation.System(c.systemPrompt)}, history...) {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	logger.L.Debug("chat completion request", "model", c.model, "messages", len(messages))
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: Temperature,
	})
	if err != nil {
		logger.L.Error("chat completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		logger.L.Error("chat completion returned no choices", "model", c.model)
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
