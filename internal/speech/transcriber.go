package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/asistente-agro/internal/logger"
)

// RecordingName is the file name the recording is uploaded under.
const RecordingName = "audio.wav"

// ErrEmptyRecording is returned for a recording without any bytes.
var ErrEmptyRecording = errors.New("empty recording")

// TranscriptionClient is the subset of openai.Client used for speech-to-text.
type TranscriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Transcriber turns a microphone recording into text with a single call to an
// OpenAI-compatible transcription endpoint.
type Transcriber struct {
	client TranscriptionClient
	model  string
}

func NewTranscriber(client TranscriptionClient, model string) *Transcriber {
	return &Transcriber{client: client, model: model}
}

// Transcribe sends audio as RecordingName and returns the transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyRecording
	}
	logger.L.Debug("transcribing recording", "model", t.model, "bytes", len(audio))
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: RecordingName,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		logger.L.Error("transcription failed", "model", t.model, "error", err)
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}
