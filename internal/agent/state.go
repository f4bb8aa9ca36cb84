package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/qmuntal/stateless" // FSM library

	"github.com/comigor/asistente-agro/internal/conversation"
)

// Phase is where a session's conversation stands.
type Phase string

const (
	PhaseEmpty         Phase = "Empty"
	PhaseTranscribing  Phase = "Transcribing"
	PhaseAwaitingReply Phase = "AwaitingReply"
	PhaseIdle          Phase = "Idle"
)

// Trigger moves the phase machine.
type Trigger string

const (
	TriggerSubmit              Trigger = "Submit"
	TriggerRecord              Trigger = "Record"
	TriggerTranscribed         Trigger = "Transcribed"
	TriggerTranscriptionFailed Trigger = "TranscriptionFailed"
	TriggerReplied             Trigger = "Replied"
	TriggerClear               Trigger = "Clear"
)

// ErrInvalidTransition is returned when an event does not apply to the current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// State is the whole per-session conversation state. It is passed into and
// returned from every handler; nothing about a session lives in globals.
type State struct {
	Phase    Phase
	Messages []conversation.Message
}

// Restore rebuilds the resting state of a session from its stored turns.
func Restore(messages []conversation.Message) State {
	if len(messages) == 0 {
		return State{Phase: PhaseEmpty}
	}
	return State{Phase: PhaseIdle, Messages: conversation.Clone(messages)}
}

func hasHistory(_ context.Context, args ...any) bool {
	if len(args) == 0 {
		return false
	}
	n, _ := args[0].(int)
	return n > 0
}

func noHistory(ctx context.Context, args ...any) bool {
	return !hasHistory(ctx, args...)
}

// newMachine configures the transition table over an externally stored phase.
//
//	Empty, Idle    --Submit-->              AwaitingReply
//	Empty, Idle    --Record-->              Transcribing
//	Transcribing   --Transcribed-->         AwaitingReply
//	Transcribing   --TranscriptionFailed--> Empty | Idle (by history length)
//	AwaitingReply  --Replied-->             Idle
//	Idle           --Clear-->               Empty  (ignored while Empty)
func newMachine(phase *Phase) *stateless.StateMachine {
	fsm := stateless.NewStateMachineWithExternalStorage(
		func(_ context.Context) (stateless.State, error) { return *phase, nil },
		func(_ context.Context, s stateless.State) error {
			*phase = s.(Phase)
			return nil
		},
		stateless.FiringImmediate,
	)

	fsm.Configure(PhaseEmpty).
		Permit(TriggerSubmit, PhaseAwaitingReply).
		Permit(TriggerRecord, PhaseTranscribing).
		Ignore(TriggerClear)

	fsm.Configure(PhaseIdle).
		Permit(TriggerSubmit, PhaseAwaitingReply).
		Permit(TriggerRecord, PhaseTranscribing).
		Permit(TriggerClear, PhaseEmpty)

	fsm.Configure(PhaseTranscribing).
		Permit(TriggerTranscribed, PhaseAwaitingReply).
		Permit(TriggerTranscriptionFailed, PhaseEmpty, noHistory).
		Permit(TriggerTranscriptionFailed, PhaseIdle, hasHistory)

	fsm.Configure(PhaseAwaitingReply).
		Permit(TriggerReplied, PhaseIdle)

	return fsm
}

// transition fires trigger against phase and returns the resulting phase.
// historyLen feeds the guards that pick where a failed transcription returns to.
func transition(phase Phase, trigger Trigger, historyLen int) (Phase, error) {
	if phase == "" {
		phase = PhaseEmpty
	}
	fsm := newMachine(&phase)
	if err := fsm.Fire(trigger, historyLen); err != nil {
		return phase, fmt.Errorf("%w: %s in %s: %v", ErrInvalidTransition, trigger, phase, err)
	}
	return phase, nil
}
