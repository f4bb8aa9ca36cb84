package agent

import "github.com/comigor/asistente-agro/internal/conversation"

// Event is an input to Reduce: something the user did or a remote call result.
type Event interface{ isEvent() }

type (
	// TextSubmitted is a typed message.
	TextSubmitted struct{ Text string }
	// AudioRecorded is a finished microphone recording.
	AudioRecorded struct{ Audio []byte }
	// TranscriptionSucceeded carries the transcript of the last recording.
	TranscriptionSucceeded struct{ Text string }
	// TranscriptionFailed carries the transcription error.
	TranscriptionFailed struct{ Err error }
	// CompletionSucceeded carries the assistant reply.
	CompletionSucceeded struct{ Text string }
	// CompletionFailed carries the chat-completion error.
	CompletionFailed struct{ Err error }
	// ClearRequested empties the conversation.
	ClearRequested struct{}
)

func (TextSubmitted) isEvent()          {}
func (AudioRecorded) isEvent()          {}
func (TranscriptionSucceeded) isEvent() {}
func (TranscriptionFailed) isEvent()    {}
func (CompletionSucceeded) isEvent()    {}
func (CompletionFailed) isEvent()       {}
func (ClearRequested) isEvent()         {}

// Effect is work Reduce asks the caller to perform.
type Effect interface{ isEffect() }

type (
	// Transcribe asks for the recording to be turned into text.
	Transcribe struct{ Audio []byte }
	// Complete asks for a reply to the given conversation (system instruction excluded).
	Complete struct{ Messages []conversation.Message }
	// Synthesize asks for the reply to be spoken.
	Synthesize struct{ Text string }
	// Notify asks for a banner to be shown.
	Notify struct{ Notice Notice }
)

func (Transcribe) isEffect() {}
func (Complete) isEffect()   {}
func (Synthesize) isEffect() {}
func (Notify) isEffect()     {}

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient banner shown for one interaction only.
type Notice struct {
	Level Level
	Text  string
}
