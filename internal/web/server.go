// Package web is the chat page: it renders the conversation of the caller's
// session and turns form posts into agent events.
package web

import (
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comigor/asistente-agro/internal/agent"
	"github.com/comigor/asistente-agro/internal/conversation"
	"github.com/comigor/asistente-agro/internal/history"
	"github.com/comigor/asistente-agro/internal/logger"
	"github.com/comigor/asistente-agro/internal/markdown"
)

//go:embed templates/*.tmpl
var templates embed.FS

const (
	pageTemplate = "page.html.tmpl"
	maxRecording = 25 << 20
)

// Server serves the chat UI.
type Server struct {
	agent  *agent.Agent
	store  history.Store
	locks  *sessionLocks
	engine *gin.Engine

	maxRecording int64
}

// New wires the routes of the chat UI.
func New(a *agent.Agent, store history.Store) *Server {
	s := &Server{
		agent:  a,
		store:  store,
		locks:  newSessionLocks(),
		engine: newEngine(),

		maxRecording: maxRecording,
	}
	s.engine.GET("/health", s.health)

	chat := s.engine.Group("/", session())
	chat.GET("/", s.index)
	chat.POST("/turn", s.turn)
	chat.POST("/clear", s.clear)
	return s
}

// NewFatal serves message, and nothing else, on every route. It is used when
// the process cannot run the assistant at all (missing API key).
func NewFatal(message string) *Server {
	s := &Server{engine: newEngine()}
	s.engine.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusServiceUnavailable, pageTemplate, pageData{
			Title: title,
			Fatal: message,
		})
	})
	return s
}

func newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(requestLogger(), gin.Recovery())
	engine.MaxMultipartMemory = maxRecording
	engine.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.tmpl")))
	return engine
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	msgs, err := s.store.List(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, agent.Result{State: agent.Restore(msgs)})
}

// turn handles one user input. A recording, when present, wins over typed text.
func (s *Server) turn(c *gin.Context) {
	id := sessionID(c)
	unlock := s.locks.lock(id)
	defer unlock()

	ev, err := readTurn(c, s.maxRecording)
	if errors.Is(err, errRecordingTooLarge) {
		c.String(http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	// A turn runs to completion once started; a dropped connection must not
	// turn into a stored error reply.
	ctx := context.WithoutCancel(c.Request.Context())
	before, err := s.store.List(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.agent.Handle(ctx, agent.Restore(before), ev)
	if errors.Is(err, agent.ErrInvalidTransition) {
		res.Notices = append(res.Notices, agent.Notice{Level: agent.LevelError, Text: agent.SafeText(err)})
		s.render(c, http.StatusConflict, res)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.persist(ctx, id, before, res.State.Messages); err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, res)
}

func (s *Server) clear(c *gin.Context) {
	id := sessionID(c)
	unlock := s.locks.lock(id)
	defer unlock()

	ctx := context.WithoutCancel(c.Request.Context())
	before, err := s.store.List(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.agent.Handle(ctx, agent.Restore(before), agent.ClearRequested{})
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(ctx, id, before, res.State.Messages); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// persist writes the difference between two snapshots of the conversation:
// either new turns appended at the end, or a clear.
func (s *Server) persist(ctx context.Context, id string, before, after []conversation.Message) error {
	if len(after) < len(before) {
		return s.store.Clear(ctx, id)
	}
	return s.store.Append(ctx, id, after[len(before):]...)
}

var errRecordingTooLarge = errors.New("recording too large")

func readTurn(c *gin.Context, limit int64) (agent.Event, error) {
	fh, err := c.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return agent.TextSubmitted{Text: c.PostForm("prompt")}, nil
		}
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	if fh.Size > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", errRecordingTooLarge, fh.Size, limit)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	if len(audio) == 0 {
		return agent.TextSubmitted{Text: c.PostForm("prompt")}, nil
	}
	return agent.AudioRecorded{Audio: audio}, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	logger.L.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "internal error")
}

func (s *Server) render(c *gin.Context, status int, res agent.Result) {
	data := pageData{
		Title:     title,
		Caption:   caption,
		ShowClear: len(res.State.Messages) > 0,
	}
	for _, n := range res.Notices {
		data.Notices = append(data.Notices, noticeView{Level: string(n.Level), HTML: markdown.ToHTML(n.Text)})
	}
	for _, m := range res.State.Messages {
		data.Messages = append(data.Messages, messageView{Role: string(m.Role), HTML: markdown.ToHTML(m.Content)})
	}
	if len(res.Audio) > 0 {
		data.Audio = template.URL("data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(res.Audio))
	}
	c.HTML(status, pageTemplate, data)
}

const (
	title   = "🌱 Asistente de Agro"
	caption = "Habla o escribe tu consulta."
)

type pageData struct {
	Title     string
	Caption   string
	Fatal     string
	Messages  []messageView
	Notices   []noticeView
	Audio     template.URL
	ShowClear bool
}

type messageView struct {
	Role string
	HTML template.HTML
}

type noticeView struct {
	Level string
	HTML  template.HTML
}
