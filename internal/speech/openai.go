package speech

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// SpeechClient is the subset of openai.Client used for synthesis.
type SpeechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAITTS synthesizes through an OpenAI-compatible /audio/speech endpoint.
type OpenAITTS struct {
	client SpeechClient
	model  string
	voice  string
}

func NewOpenAITTS(client SpeechClient, model, voice string) *OpenAITTS {
	return &OpenAITTS{client: client, model: model, voice: voice}
}

// Synthesize implements Synthesizer.
func (o *OpenAITTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(o.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading speech: %w", err)
	}
	return audio, nil
}
