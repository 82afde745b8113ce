// Package config loads meetnotes configuration and sets up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies a summarization backend.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
	ProviderNone       Provider = "none"
)

// Config holds all configuration values.
type Config struct {
	// Summarization
	AIProvider Provider `yaml:"ai_provider"`
	AIModel    string   `yaml:"ai_model"`

	// Credentials come from the environment only and are never
	// written back to the config file.
	OpenAIAPIKey     string `yaml:"-"`
	AnthropicAPIKey  string `yaml:"-"`
	OpenRouterAPIKey string `yaml:"-"`

	// Ollama
	OllamaHost string `yaml:"ollama_host"`

	// Transcription
	WhisperModel string `yaml:"whisper_model"`
	WhisperBin   string `yaml:"whisper_bin"`

	// Recording
	RecordingMode string `yaml:"recording_mode"`
	KeepTempFiles bool   `yaml:"keep_temp_files"`

	// Directories
	NotesDir      string `yaml:"notes_dir"`
	RecordingsDir string `yaml:"recordings_dir"`

	// Status surface for the desktop bar
	StatusFile string `yaml:"status_file"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	LogLevelName string `yaml:"log_level"`
}

// ConfigPath returns the config file location, honoring XDG_CONFIG_HOME.
func ConfigPath() string {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "meetnotes", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "meetnotes-config.yaml")
	}
	return filepath.Join(home, ".config", "meetnotes", "config.yaml")
}

// Load reads the YAML config file if present, then applies environment
// overrides. A missing config file yields defaults, not an error.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: defaults only.
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Environment overrides
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.LogFile = getEnv("MEETNOTES_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("MEETNOTES_LOG_LEVEL", cfg.LogLevelName)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	return cfg, cfg.Validate()
}

func defaults() Config {
	dataDir := dataHome()
	return Config{
		AIProvider:    ProviderAnthropic,
		AIModel:       "claude-3-5-haiku-20241022",
		OllamaHost:    "http://localhost:11434",
		WhisperModel:  "base",
		WhisperBin:    "whisper",
		RecordingMode: "combined",
		NotesDir:      filepath.Join(dataDir, "notes"),
		RecordingsDir: filepath.Join(dataDir, "recordings"),
		StatusFile:    filepath.Join(dataDir, ".status"),
		LogFile:       filepath.Join(dataDir, "meetnotes.log"),
		LogLevelName:  "INFO",
		LogLevel:      slog.LevelInfo,
	}
}

func dataHome() string {
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, "meetnotes")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "meetnotes")
}

// Validate checks provider, model size and mode values.
func (c *Config) Validate() error {
	switch c.AIProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter, ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("invalid ai_provider %q (want openai, anthropic, openrouter, ollama or none)", c.AIProvider)
	}

	switch c.WhisperModel {
	case "tiny", "base", "small", "medium", "large":
	default:
		return fmt.Errorf("invalid whisper_model %q (want tiny, base, small, medium or large)", c.WhisperModel)
	}

	switch c.RecordingMode {
	case "mic", "system", "combined":
	default:
		return fmt.Errorf("invalid recording_mode %q (want mic, system or combined)", c.RecordingMode)
	}

	return nil
}

// APIKey returns the credential for the configured provider, if any.
func (c *Config) APIKey() string {
	switch c.AIProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// RedactedKey masks a credential for display, keeping the last four
// characters.
func RedactedKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
