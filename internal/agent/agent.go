package agent

import (
	"context"

	"github.com/comigor/asistente-agro/internal/conversation"
	"github.com/comigor/asistente-agro/internal/logger"
)

// Completer produces the assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, history []conversation.Message) (string, error)
}

// Transcriber turns a recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer turns a reply into audio. A nil audio slice with a nil error
// means there is nothing to play.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Agent runs one user interaction at a time: it feeds events through Reduce and
// executes the resulting effects against the remote adapters. Every remote
// call is made once; nothing is retried.
type Agent struct {
	completer   Completer
	transcriber Transcriber
	synthesizer Synthesizer
}

// New creates an agent. synthesizer may be nil to disable spoken replies.
func New(completer Completer, transcriber Transcriber, synthesizer Synthesizer) *Agent {
	return &Agent{completer: completer, transcriber: transcriber, synthesizer: synthesizer}
}

// Result is what one interaction produced.
type Result struct {
	State   State
	Notices []Notice
	// Audio is the spoken version of the reply produced in this interaction.
	Audio []byte
}

// Handle applies ev to s and runs effects until the session is at rest again.
// An error means ev was not valid for s; the returned state is then s itself.
func (a *Agent) Handle(ctx context.Context, s State, ev Event) (Result, error) {
	res := Result{State: s}
	pending := []Event{ev}

	for len(pending) > 0 {
		ev := pending[0]
		pending = pending[1:]

		next, effects, err := Reduce(res.State, ev)
		if err != nil {
			logger.L.Warn("event rejected", "event", eventName(ev), "phase", res.State.Phase, "error", err)
			return Result{State: s}, err
		}
		logger.L.Debug("FSM: transition", "event", eventName(ev), "from", res.State.Phase, "to", next.Phase)
		res.State = next

		for _, eff := range effects {
			switch eff := eff.(type) {
			case Notify:
				res.Notices = append(res.Notices, eff.Notice)
			case Transcribe:
				text, err := a.transcriber.Transcribe(ctx, eff.Audio)
				if err != nil {
					pending = append(pending, TranscriptionFailed{Err: err})
					continue
				}
				pending = append(pending, TranscriptionSucceeded{Text: text})
			case Complete:
				reply, err := a.completer.Complete(ctx, eff.Messages)
				if err != nil {
					logger.L.Error("completion failed", "error", err, "turns", len(eff.Messages))
					pending = append(pending, CompletionFailed{Err: err})
					continue
				}
				pending = append(pending, CompletionSucceeded{Text: reply})
			case Synthesize:
				res.Audio = a.speak(ctx, eff.Text, &res.Notices)
			}
		}
	}
	return res, nil
}

func (a *Agent) speak(ctx context.Context, text string, notices *[]Notice) []byte {
	if a.synthesizer == nil {
		return nil
	}
	audio, err := a.synthesizer.Synthesize(ctx, text)
	if err != nil {
		*notices = append(*notices, synthesisWarning(err))
		return nil
	}
	return audio
}

func eventName(ev Event) string {
	switch ev.(type) {
	case TextSubmitted:
		return "TextSubmitted"
	case AudioRecorded:
		return "AudioRecorded"
	case TranscriptionSucceeded:
		return "TranscriptionSucceeded"
	case TranscriptionFailed:
		return "TranscriptionFailed"
	case CompletionSucceeded:
		return "CompletionSucceeded"
	case CompletionFailed:
		return "CompletionFailed"
	case ClearRequested:
		return "ClearRequested"
	default:
		return "unknown"
	}
}
