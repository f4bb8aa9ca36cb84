package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// APIKeyEnv is the environment variable holding the remote API secret.
const APIKeyEnv = "GROQ_API_KEY"

// ErrMissingAPIKey is returned by Load when no remote API key is configured.
var ErrMissingAPIKey = errors.New("missing " + APIKeyEnv)

// MissingAPIKeyMessage is shown to the user instead of the chat when the key is absent.
const MissingAPIKeyMessage = "Clave API de Groq no encontrada. Por favor, revisa tu archivo .env."

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// LLMConfig holds the chat-completion and transcription configuration
type LLMConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key"`
	Model              string `mapstructure:"model"`
	TranscriptionModel string `mapstructure:"transcription_model"`
}

// SpeechConfig holds the speech synthesis configuration
type SpeechConfig struct {
	Backend  string `mapstructure:"backend"`
	Language string `mapstructure:"language"`
	Slow     bool   `mapstructure:"slow"`
	TLD      string `mapstructure:"tld"`
	Model    string `mapstructure:"model"`
	Voice    string `mapstructure:"voice"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// HistoryConfig selects where session conversations are kept
type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("llm.transcription_model", "whisper-large-v3")
	v.SetDefault("speech.backend", "google")
	v.SetDefault("speech.language", "es")
	v.SetDefault("speech.slow", false)
	v.SetDefault("speech.tld", "com")
	v.SetDefault("speech.model", "playai-tts")
	v.SetDefault("speech.voice", "Celeste-PlayAI")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8501")
	v.SetDefault("history.driver", "memory")
	v.SetDefault("history.path", "history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads .env, the optional config.yaml (or the file named by CONFIG_PATH)
// and the environment. When the API key is missing the parsed config is still
// returned alongside ErrMissingAPIKey so the caller can serve the error page.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	explicit := os.Getenv("CONFIG_PATH")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	v.SetEnvPrefix("ASISTENTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", APIKeyEnv); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return &cfg, ErrMissingAPIKey
	}
	return &cfg, nil
}
