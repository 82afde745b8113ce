package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() on missing file: %v", err)
	}

	if cfg.AIProvider != ProviderAnthropic {
		t.Errorf("default provider = %q, want anthropic", cfg.AIProvider)
	}
	if cfg.WhisperModel != "base" {
		t.Errorf("default whisper model = %q, want base", cfg.WhisperModel)
	}
	if cfg.RecordingMode != "combined" {
		t.Errorf("default recording mode = %q, want combined", cfg.RecordingMode)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `ai_provider: ollama
ai_model: llama3.2:3b
whisper_model: small
recording_mode: mic
keep_temp_files: true
notes_dir: /tmp/meetnotes-test/notes
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(): %v", err)
	}

	if cfg.AIProvider != ProviderOllama {
		t.Errorf("provider = %q, want ollama", cfg.AIProvider)
	}
	if cfg.AIModel != "llama3.2:3b" {
		t.Errorf("model = %q, want llama3.2:3b", cfg.AIModel)
	}
	if cfg.WhisperModel != "small" {
		t.Errorf("whisper model = %q, want small", cfg.WhisperModel)
	}
	if !cfg.KeepTempFiles {
		t.Error("keep_temp_files not applied")
	}
	if cfg.NotesDir != "/tmp/meetnotes-test/notes" {
		t.Errorf("notes_dir = %q", cfg.NotesDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad provider", func(c *Config) { c.AIProvider = "gemini" }, true},
		{"bad whisper model", func(c *Config) { c.WhisperModel = "huge" }, true},
		{"bad recording mode", func(c *Config) { c.RecordingMode = "stereo" }, true},
		{"none provider valid", func(c *Config) { c.AIProvider = ProviderNone }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRedactedKey(t *testing.T) {
	if got := RedactedKey(""); got != "(not set)" {
		t.Errorf("RedactedKey(\"\") = %q", got)
	}
	if got := RedactedKey("sk-abcdef1234"); got != "****1234" {
		t.Errorf("RedactedKey() = %q, want ****1234", got)
	}
	if got := RedactedKey("abc"); got != "****" {
		t.Errorf("RedactedKey(short) = %q, want ****", got)
	}
}
