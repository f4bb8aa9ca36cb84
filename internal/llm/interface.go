package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Client is the chat-completion subset of openai.Client used by Completer; it
// is easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Remote covers every call the assistant makes against the OpenAI-compatible
// endpoint. One client serves completions, transcriptions and speech.
type Remote interface {
	Client
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

var _ Remote = (*openai.Client)(nil)
