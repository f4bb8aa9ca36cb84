package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/asistente-agro/internal/conversation"
)

type mockCompleter struct {
	calls   [][]conversation.Message
	replies []string
	err     error
}

func (m *mockCompleter) Complete(ctx context.Context, history []conversation.Message) (string, error) {
	m.calls = append(m.calls, conversation.Clone(history))
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		panic("mockCompleter: no more replies configured")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

type mockTranscriber struct {
	calls int
	text  string
	err   error
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	m.calls++
	return m.text, m.err
}

type mockSynthesizer struct {
	texts []string
	err   error
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return []byte("mp3:" + text), nil
}

// TestHandle_TextTurn follows a typed question through completion and synthesis.
func TestHandle_TextTurn(t *testing.T) {
	question := "¿Cómo accedo a un crédito Finagro?"
	answer := "Debes acudir a un intermediario financiero vigilado."
	llm := &mockCompleter{replies: []string{answer}}
	tts := &mockSynthesizer{}
	a := New(llm, &mockTranscriber{}, tts)

	res, err := a.Handle(context.Background(), Restore(nil), TextSubmitted{Text: question})
	require.NoError(t, err)

	require.Len(t, llm.calls, 1)
	require.Equal(t, []conversation.Message{conversation.User(question)}, llm.calls[0])

	require.Equal(t, PhaseIdle, res.State.Phase)
	require.Equal(t, []conversation.Message{
		conversation.User(question),
		conversation.Assistant(answer),
	}, res.State.Messages)

	require.Equal(t, []string{answer}, tts.texts)
	require.Equal(t, []byte("mp3:"+answer), res.Audio)
	require.Empty(t, res.Notices)
}

// TestHandle_CompletionError stores the formatted error as the assistant turn.
func TestHandle_CompletionError(t *testing.T) {
	boom := errors.New("429 rate_limit_exceeded")
	tts := &mockSynthesizer{}
	a := New(&mockCompleter{err: boom}, &mockTranscriber{}, tts)

	res, err := a.Handle(context.Background(), Restore(nil), TextSubmitted{Text: "hola"})
	require.NoError(t, err)

	require.Len(t, res.State.Messages, 2)
	reply := res.State.Messages[1]
	require.Equal(t, conversation.RoleAssistant, reply.Role)
	require.Equal(t, FormatCompletionError(boom), reply.Content)
	require.Contains(t, reply.Content, "429 rate_limit_exceeded")
	require.NotEqual(t, boom.Error(), reply.Content)

	require.Equal(t, []Notice{{Level: LevelError, Text: reply.Content}}, res.Notices)
	require.Empty(t, tts.texts, "no speech for failed completions")
	require.Equal(t, PhaseIdle, res.State.Phase)
}

func TestHandle_ErrorBecomesContext(t *testing.T) {
	llm := &mockCompleter{err: errors.New("timeout")}
	a := New(llm, &mockTranscriber{}, nil)

	res, err := a.Handle(context.Background(), Restore(nil), TextSubmitted{Text: "uno"})
	require.NoError(t, err)

	llm.err = nil
	llm.replies = []string{"ok"}
	res, err = a.Handle(context.Background(), res.State, TextSubmitted{Text: "dos"})
	require.NoError(t, err)

	require.Len(t, llm.calls, 2)
	require.Len(t, llm.calls[1], 3)
	require.Equal(t, FormatCompletionError(errors.New("timeout")), llm.calls[1][1].Content)
}

func TestHandle_VoiceTurn(t *testing.T) {
	llm := &mockCompleter{replies: []string{"Claro."}}
	stt := &mockTranscriber{text: "¿Qué es el ICA?"}
	a := New(llm, stt, &mockSynthesizer{})

	res, err := a.Handle(context.Background(), Restore(nil), AudioRecorded{Audio: []byte("wav")})
	require.NoError(t, err)

	require.Equal(t, 1, stt.calls)
	require.Equal(t, []conversation.Message{
		conversation.User("¿Qué es el ICA?"),
		conversation.Assistant("Claro."),
	}, res.State.Messages)
	require.Equal(t, []Notice{{Level: LevelInfo, Text: `Texto transcrito: "¿Qué es el ICA?"`}}, res.Notices)
}

func TestHandle_TranscriptionFailure(t *testing.T) {
	llm := &mockCompleter{}
	stt := &mockTranscriber{err: errors.New("invalid file format")}
	a := New(llm, stt, &mockSynthesizer{})

	before := Restore([]conversation.Message{conversation.User("hola"), conversation.Assistant("¡Hola!")})
	res, err := a.Handle(context.Background(), before, AudioRecorded{Audio: []byte("wav")})
	require.NoError(t, err)

	require.Equal(t, 1, stt.calls)
	require.Empty(t, llm.calls)
	require.Equal(t, before.Messages, res.State.Messages)
	require.Equal(t, PhaseIdle, res.State.Phase)
	require.Equal(t, []Notice{{Level: LevelError, Text: "Error durante la transcripción: invalid file format"}}, res.Notices)

	res, err = a.Handle(context.Background(), Restore(nil), AudioRecorded{Audio: []byte("wav")})
	require.NoError(t, err)
	require.Equal(t, PhaseEmpty, res.State.Phase)
	require.Empty(t, res.State.Messages)
}

func TestHandle_EmptyTranscriptDropsTurn(t *testing.T) {
	llm := &mockCompleter{}
	a := New(llm, &mockTranscriber{text: "  "}, nil)

	res, err := a.Handle(context.Background(), Restore(nil), AudioRecorded{Audio: []byte("wav")})
	require.NoError(t, err)
	require.Empty(t, llm.calls)
	require.Empty(t, res.State.Messages)
	require.Equal(t, PhaseEmpty, res.State.Phase)
}

func TestHandle_SynthesisFailureKeepsReply(t *testing.T) {
	a := New(&mockCompleter{replies: []string{"Respuesta"}}, &mockTranscriber{}, &mockSynthesizer{err: errors.New("503")})

	res, err := a.Handle(context.Background(), Restore(nil), TextSubmitted{Text: "hola"})
	require.NoError(t, err)
	require.Nil(t, res.Audio)
	require.Equal(t, conversation.Assistant("Respuesta"), res.State.Messages[1])
	require.Equal(t, []Notice{{Level: LevelWarning, Text: "No se pudo generar el audio: 503"}}, res.Notices)
}

// TestHandle_TurnsAndClear checks 2N messages after N turns, failed
// transcriptions adding none, and clear emptying the conversation.
func TestHandle_TurnsAndClear(t *testing.T) {
	llm := &mockCompleter{replies: []string{"r1", "r2", "r3"}}
	stt := &mockTranscriber{err: errors.New("bad audio")}
	a := New(llm, stt, nil)

	s := Restore(nil)
	for i, ev := range []Event{
		TextSubmitted{Text: "p1"},
		AudioRecorded{Audio: []byte("x")},
		TextSubmitted{Text: "p2"},
		TextSubmitted{Text: "   "},
		TextSubmitted{Text: "p3"},
	} {
		res, err := a.Handle(context.Background(), s, ev)
		require.NoError(t, err, "event %d", i)
		s = res.State
	}
	require.Len(t, s.Messages, 6)
	for i, m := range s.Messages {
		if i%2 == 0 {
			require.Equal(t, conversation.RoleUser, m.Role)
		} else {
			require.Equal(t, conversation.RoleAssistant, m.Role)
		}
	}

	res, err := a.Handle(context.Background(), s, ClearRequested{})
	require.NoError(t, err)
	require.Equal(t, PhaseEmpty, res.State.Phase)
	require.Empty(t, res.State.Messages)
}

func TestHandle_RejectedEventKeepsState(t *testing.T) {
	a := New(&mockCompleter{}, &mockTranscriber{}, nil)
	s := State{Phase: PhaseAwaitingReply, Messages: []conversation.Message{conversation.User("hola")}}

	res, err := a.Handle(context.Background(), s, TextSubmitted{Text: "otra"})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, s, res.State)
}
