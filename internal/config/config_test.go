package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
llm:
  base_url: https://api.example.com/v1
  api_key: file-key
  model: llama-test
server:
  host: 127.0.0.1
  port: "9000"
speech:
  backend: openai
history:
  driver: sqlite
  path: /tmp/asistente.db
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

// TestLoad_File verifies that Load unmarshals a yaml configuration file.
func TestLoad_File(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.LLM.APIKey)
	require.Equal(t, "llama-test", cfg.LLM.Model)
	require.Equal(t, "whisper-large-v3", cfg.LLM.TranscriptionModel)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	require.Equal(t, "openai", cfg.Speech.Backend)
	require.Equal(t, "es", cfg.Speech.Language)
	require.Equal(t, "sqlite", cfg.History.Driver)
	require.Equal(t, "/tmp/asistente.db", cfg.History.Path)
}

func TestLoad_EnvKeyOverridesFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv(APIKeyEnv, "env-key")
	t.Setenv("ASISTENTE_LLM_MODEL", "env-model")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.LLM.APIKey)
	require.Equal(t, "env-model", cfg.LLM.Model)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "{}\n"))
	t.Setenv(APIKeyEnv, "k")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	require.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", cfg.LLM.Model)
	require.Equal(t, "google", cfg.Speech.Backend)
	require.Equal(t, "memory", cfg.History.Driver)
	require.Equal(t, "0.0.0.0:8501", cfg.Server.Addr())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "server:\n  port: \"7000\"\n"))
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load()
	require.True(t, errors.Is(err, ErrMissingAPIKey))
	require.NotNil(t, cfg, "config is still returned so the error page can be served")
	require.Equal(t, "7000", cfg.Server.Port)
}

func TestLoad_BlankAPIKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "llm:\n  api_key: \"   \"\n"))
	t.Setenv(APIKeyEnv, "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv(APIKeyEnv, "k")

	_, err := Load()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMissingAPIKey)
}
