// Package speech adapts the remote speech-to-text and text-to-speech services.
package speech

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/comigor/asistente-agro/internal/logger"
	"github.com/comigor/asistente-agro/internal/markdown"
)

// Synthesizer converts text into compressed (MP3) audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Cache sanitizes reply text before handing it to a backend and memoizes the
// audio for the lifetime of the process. Entries are keyed by the exact text
// received (before sanitizing) and are never evicted. The cache is shared by
// every session; concurrent requests for the same text share one remote call.
type Cache struct {
	backend Synthesizer

	mu      sync.RWMutex
	entries map[string][]byte
	group   singleflight.Group
}

// NewCache wraps backend.
func NewCache(backend Synthesizer) *Cache {
	return &Cache{backend: backend, entries: make(map[string][]byte)}
}

// Synthesize returns nil audio and no error for empty text or text that has
// nothing left to say once sanitized. Failed calls are not cached.
func (c *Cache) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}

	c.mu.RLock()
	audio, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return audio, nil
	}

	v, err, shared := c.group.Do(text, func() (any, error) {
		c.mu.RLock()
		audio, ok := c.entries[text]
		c.mu.RUnlock()
		if ok {
			return audio, nil
		}

		spoken := markdown.Sanitize(text)
		if spoken == "" {
			return []byte(nil), nil
		}
		logger.L.Debug("synthesizing speech", "chars", len(spoken))
		audio, err := c.backend.Synthesize(ctx, spoken)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[text] = audio
		c.mu.Unlock()
		return audio, nil
	})
	if err != nil {
		logger.L.Warn("speech synthesis failed", "error", err, "shared", shared)
		return nil, err
	}
	return v.([]byte), nil
}

// Len reports how many texts are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
