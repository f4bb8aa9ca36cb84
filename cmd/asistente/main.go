package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comigor/asistente-agro/internal/agent"
	"github.com/comigor/asistente-agro/internal/config"
	"github.com/comigor/asistente-agro/internal/history"
	"github.com/comigor/asistente-agro/internal/llm"
	"github.com/comigor/asistente-agro/internal/logger"
	"github.com/comigor/asistente-agro/internal/speech"
	"github.com/comigor/asistente-agro/internal/web"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	// Load configuration
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingAPIKey) {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetFormat(cfg.Log.Format)
	logger.SetLevel(cfg.Log.Level)

	var handler http.Handler
	if errors.Is(err, config.ErrMissingAPIKey) {
		logger.L.Error("api key not configured, serving error page only", "env", config.APIKeyEnv)
		handler = web.NewFatal(config.MissingAPIKeyMessage)
	} else {
		store := newStore(cfg.History)
		if c, ok := store.(interface{ Close() error }); ok {
			defer c.Close()
		}

		client := llm.NewClient(cfg.LLM)
		assistant := agent.New(
			llm.NewCompleter(client, cfg.LLM.Model),
			speech.NewTranscriber(client, cfg.LLM.TranscriptionModel),
			newSynthesizer(cfg.Speech, client),
		)
		handler = web.New(assistant, store)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("starting server", "address", srv.Addr, "model", cfg.LLM.Model, "speech", cfg.Speech.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.L.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("shutdown failed", "error", err)
	}
}

func newStore(cfg config.HistoryConfig) history.Store {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return history.NewSQLiteStore(cfg.Path)
	case "", "memory":
		return history.NewMemoryStore()
	default:
		logger.L.Warn("unknown history driver, using memory", "driver", cfg.Driver)
		return history.NewMemoryStore()
	}
}

// newSynthesizer returns nil when speech output is disabled.
func newSynthesizer(cfg config.SpeechConfig, client llm.Remote) agent.Synthesizer {
	switch strings.ToLower(cfg.Backend) {
	case "none", "off":
		return nil
	case "openai":
		return speech.NewCache(speech.NewOpenAITTS(client, cfg.Model, cfg.Voice))
	case "", "google":
		return speech.NewCache(speech.NewGoogleTTS(cfg.Language, cfg.TLD, cfg.Slow))
	default:
		logger.L.Warn("unknown speech backend, using google", "backend", cfg.Backend)
		return speech.NewCache(speech.NewGoogleTTS(cfg.Language, cfg.TLD, cfg.Slow))
	}
}
