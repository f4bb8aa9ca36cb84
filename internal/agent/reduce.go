package agent

import (
	"fmt"
	"strings"

	"github.com/comigor/asistente-agro/internal/conversation"
)

// Reduce is the transition function of a session: it applies ev to s and
// returns the next state plus the effects the caller must run. It performs no
// I/O. Results of effects come back in as further events.
func Reduce(s State, ev Event) (State, []Effect, error) {
	switch ev := ev.(type) {
	case TextSubmitted:
		if strings.TrimSpace(ev.Text) == "" {
			return s, nil, nil
		}
		phase, err := transition(s.Phase, TriggerSubmit, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		msgs := conversation.Append(s.Messages, conversation.User(ev.Text))
		return State{Phase: phase, Messages: msgs}, []Effect{Complete{Messages: msgs}}, nil

	case AudioRecorded:
		if len(ev.Audio) == 0 {
			return s, nil, nil
		}
		phase, err := transition(s.Phase, TriggerRecord, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		return State{Phase: phase, Messages: s.Messages}, []Effect{Transcribe{Audio: ev.Audio}}, nil

	case TranscriptionSucceeded:
		notice := Notify{Notice: transcribedNotice(ev.Text)}
		if strings.TrimSpace(ev.Text) == "" {
			// Nothing was said; the voice turn is dropped.
			phase, err := transition(s.Phase, TriggerTranscriptionFailed, len(s.Messages))
			if err != nil {
				return s, nil, err
			}
			return State{Phase: phase, Messages: s.Messages}, []Effect{notice}, nil
		}
		phase, err := transition(s.Phase, TriggerTranscribed, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		msgs := conversation.Append(s.Messages, conversation.User(ev.Text))
		return State{Phase: phase, Messages: msgs}, []Effect{notice, Complete{Messages: msgs}}, nil

	case TranscriptionFailed:
		phase, err := transition(s.Phase, TriggerTranscriptionFailed, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		return State{Phase: phase, Messages: s.Messages}, []Effect{Notify{Notice: transcriptionErrorNotice(ev.Err)}}, nil

	case CompletionSucceeded:
		phase, err := transition(s.Phase, TriggerReplied, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		msgs := conversation.Append(s.Messages, conversation.Assistant(ev.Text))
		return State{Phase: phase, Messages: msgs}, []Effect{Synthesize{Text: ev.Text}}, nil

	case CompletionFailed:
		phase, err := transition(s.Phase, TriggerReplied, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		// The formatted error is kept as the assistant turn, so the model sees
		// it as context on the next request.
		text := FormatCompletionError(ev.Err)
		msgs := conversation.Append(s.Messages, conversation.Assistant(text))
		return State{Phase: phase, Messages: msgs}, []Effect{Notify{Notice: Notice{Level: LevelError, Text: text}}}, nil

	case ClearRequested:
		phase, err := transition(s.Phase, TriggerClear, len(s.Messages))
		if err != nil {
			return s, nil, err
		}
		if phase == PhaseEmpty {
			return State{Phase: PhaseEmpty}, nil, nil
		}
		return State{Phase: phase, Messages: s.Messages}, nil, nil

	default:
		return s, nil, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
	}
}
