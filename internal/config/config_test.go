package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Prakash793/ReTrans/internal/chunk"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.TextModel != DefaultTextModel {
		t.Errorf("TextModel = %q, want %q", cfg.TextModel, DefaultTextModel)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.Tone != chunk.ToneProfessional {
		t.Errorf("Tone = %q, want professional", cfg.Tone)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, "BatchSize"},
		{"oversized batch", func(c *Config) { c.BatchSize = 500 }, "BatchSize"},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, "TimeoutSeconds"},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "MaxRetries"},
		{"empty target language", func(c *Config) { c.TargetLanguage = "" }, "TargetLanguage"},
		{"unknown tone", func(c *Config) { c.Tone = chunk.Tone("casual") }, "Tone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestManagerLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if err := m.Load(); err != nil {
		t.Fatalf("Load should tolerate a missing file, got %v", err)
	}
	if m.Config().BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want default %d", m.Config().BatchSize, DefaultBatchSize)
	}
}

func TestManagerLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte(`{"api_key":"sk-test","batch_size":10}`), 0600); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Config()
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", cfg.APIKey)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.BatchSize)
	}
	// Omitted fields fall back to defaults.
	if cfg.TextModel != DefaultTextModel {
		t.Errorf("TextModel = %q, want default", cfg.TextModel)
	}
	if cfg.Tone != chunk.ToneProfessional {
		t.Errorf("Tone = %q, want professional", cfg.Tone)
	}
}

func TestManagerLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Load(); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestManagerSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := Default()
	cfg.APIKey = "sk-roundtrip"
	cfg.TargetLanguage = "de"
	cfg.Tone = chunk.ToneLegal
	if err := m.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m2, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m2.Config()
	if got.APIKey != "sk-roundtrip" || got.TargetLanguage != "de" || got.Tone != chunk.ToneLegal {
		t.Errorf("round-tripped config = %+v", got)
	}
}

func TestManagerSetConfigRejectsInvalid(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "cfg.json"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	bad := Default()
	bad.BatchSize = -1
	if err := m.SetConfig(bad); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestAPIKeyEnvFallback(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "cfg.json"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	t.Setenv(EnvAPIKey, "sk-from-env")
	if got := m.APIKey(); got != "sk-from-env" {
		t.Errorf("APIKey() = %q, want env fallback", got)
	}

	cfg := Default()
	cfg.APIKey = "sk-from-file"
	if err := m.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if got := m.APIKey(); got != "sk-from-file" {
		t.Errorf("APIKey() = %q, config value should win", got)
	}
}
