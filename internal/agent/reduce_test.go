package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/asistente-agro/internal/conversation"
)

func TestReduce_TextSubmittedRequestsCompletion(t *testing.T) {
	s, effects, err := Reduce(Restore(nil), TextSubmitted{Text: "hola"})
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingReply, s.Phase)
	require.Equal(t, []Effect{Complete{Messages: []conversation.Message{conversation.User("hola")}}}, effects)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	history := make([]conversation.Message, 1, 8)
	history[0] = conversation.User("a")
	in := State{Phase: PhaseIdle, Messages: history}

	_, _, err := Reduce(in, TextSubmitted{Text: "b"})
	require.NoError(t, err)
	require.Len(t, in.Messages, 1)
	require.Equal(t, conversation.Message{}, history[:2][1], "backing array untouched")
}

func TestReduce_InvalidTransitions(t *testing.T) {
	cases := []struct {
		name  string
		state State
		event Event
	}{
		{"reply without question", Restore(nil), CompletionSucceeded{Text: "x"}},
		{"transcript without recording", Restore(nil), TranscriptionSucceeded{Text: "x"}},
		{"submit while awaiting", State{Phase: PhaseAwaitingReply}, TextSubmitted{Text: "x"}},
		{"clear while awaiting", State{Phase: PhaseAwaitingReply}, ClearRequested{}},
		{"record while transcribing", State{Phase: PhaseTranscribing}, AudioRecorded{Audio: []byte{1}}},
		{"unknown event", Restore(nil), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, effects, err := Reduce(tc.state, tc.event)
			require.ErrorIs(t, err, ErrInvalidTransition)
			require.Nil(t, effects)
			require.Equal(t, tc.state, s)
		})
	}
}

func TestReduce_ClearWhenEmptyIsIgnored(t *testing.T) {
	s, effects, err := Reduce(Restore(nil), ClearRequested{})
	require.NoError(t, err)
	require.Nil(t, effects)
	require.Equal(t, PhaseEmpty, s.Phase)
}

func TestReduce_IgnoresBlankInput(t *testing.T) {
	in := Restore([]conversation.Message{conversation.User("a"), conversation.Assistant("b")})
	for _, ev := range []Event{TextSubmitted{Text: " \n"}, AudioRecorded{}} {
		s, effects, err := Reduce(in, ev)
		require.NoError(t, err)
		require.Nil(t, effects)
		require.Equal(t, in, s)
	}
}

func TestReduce_TranscriptionFailedReturnsToRestingPhase(t *testing.T) {
	s, _, err := Reduce(State{Phase: PhaseTranscribing}, TranscriptionFailed{Err: errors.New("x")})
	require.NoError(t, err)
	require.Equal(t, PhaseEmpty, s.Phase)

	withHistory := State{Phase: PhaseTranscribing, Messages: []conversation.Message{conversation.User("a"), conversation.Assistant("b")}}
	s, _, err = Reduce(withHistory, TranscriptionFailed{Err: errors.New("x")})
	require.NoError(t, err)
	require.Equal(t, PhaseIdle, s.Phase)
	require.Equal(t, withHistory.Messages, s.Messages)
}

func TestRestore(t *testing.T) {
	require.Equal(t, State{Phase: PhaseEmpty}, Restore(nil))
	s := Restore([]conversation.Message{conversation.User("a")})
	require.Equal(t, PhaseIdle, s.Phase)
}

func TestSafeText(t *testing.T) {
	require.Equal(t, "", SafeText(nil))
	require.Equal(t, "bad � byte", SafeText(errors.New("bad \xff byte")))
	require.Equal(t, "canción", SafeText(errors.New("canción")))
}
