// Package config provides configuration management for the document
// translation pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/logger"
)

const (
	// DefaultConfigFileName is the default configuration file name.
	DefaultConfigFileName = "retrans-config.json"
	// EnvAPIKey is the environment variable holding the API key.
	EnvAPIKey = "OPENAI_API_KEY"
	// EnvBaseURL is the environment variable holding the API base URL.
	EnvBaseURL = "OPENAI_BASE_URL"
	// DefaultBaseURL is the default chat-completions API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTextModel is the default model for batch text translation.
	DefaultTextModel = "gpt-4o-mini"
	// DefaultVisionModel is the default multimodal model for the vision path.
	DefaultVisionModel = "gpt-4o"
	// DefaultBatchSize is the default number of chunks per translation batch.
	DefaultBatchSize = 20
	// DefaultTimeoutSeconds is the default HTTP timeout for model calls.
	DefaultTimeoutSeconds = 180
	// DefaultMaxRetries is the default retry budget per model call.
	DefaultMaxRetries = 3
	// DefaultTargetLanguage is the fallback target language code.
	DefaultTargetLanguage = "en"
)

// Config holds the settings for a translation session.
type Config struct {
	APIKey         string     `json:"api_key"`
	BaseURL        string     `json:"base_url"`
	TextModel      string     `json:"text_model"`
	VisionModel    string     `json:"vision_model"`
	BatchSize      int        `json:"batch_size"`
	TimeoutSeconds int        `json:"timeout_seconds"`
	MaxRetries     int        `json:"max_retries"`
	TargetLanguage string     `json:"target_language"`
	Tone           chunk.Tone `json:"tone"`
	Grounding      bool       `json:"grounding"`
}

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		TextModel:      DefaultTextModel,
		VisionModel:    DefaultVisionModel,
		BatchSize:      DefaultBatchSize,
		TimeoutSeconds: DefaultTimeoutSeconds,
		MaxRetries:     DefaultMaxRetries,
		TargetLanguage: DefaultTargetLanguage,
		Tone:           chunk.ToneProfessional,
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks field values and returns the first violation found.
func (c *Config) Validate() error {
	if c == nil {
		return &ValidationError{Field: "config", Message: "configuration cannot be nil"}
	}
	if c.BatchSize <= 0 {
		return &ValidationError{Field: "BatchSize", Value: c.BatchSize, Message: "must be greater than 0"}
	}
	if c.BatchSize > 200 {
		return &ValidationError{Field: "BatchSize", Value: c.BatchSize, Message: "must not exceed 200"}
	}
	if c.TimeoutSeconds <= 0 {
		return &ValidationError{Field: "TimeoutSeconds", Value: c.TimeoutSeconds, Message: "must be greater than 0"}
	}
	if c.MaxRetries < 1 {
		return &ValidationError{Field: "MaxRetries", Value: c.MaxRetries, Message: "must be at least 1"}
	}
	if c.TargetLanguage == "" {
		return &ValidationError{Field: "TargetLanguage", Value: c.TargetLanguage, Message: "must not be empty"}
	}
	if c.Tone != "" && !c.Tone.IsValid() {
		return &ValidationError{Field: "Tone", Value: c.Tone, Message: "must be one of the supported tones"}
	}
	return nil
}

// Manager loads and persists configuration from a JSON file.
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a Manager for the given config file path. If configPath
// is empty, the default path under the user's config directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, ".config", "retrans", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     Default(),
	}, nil
}

// Load reads the configuration file. A missing file means defaults; an
// unreadable or invalid file is an error.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = Default()
			return nil
		}
		return fmt.Errorf("read config file '%s': %w", m.configPath, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file '%s': %w", m.configPath, err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config in '%s': %w", m.configPath, err)
	}

	logger.Info("configuration loaded",
		logger.String("path", m.configPath),
		logger.String("textModel", cfg.TextModel),
		logger.String("visionModel", cfg.VisionModel),
		logger.Int("batchSize", cfg.BatchSize))

	m.config = cfg
	return nil
}

// applyDefaults fills zero-valued fields so hand-edited partial config files
// keep working.
func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = DefaultTargetLanguage
	}
	if cfg.Tone == "" {
		cfg.Tone = chunk.ToneProfessional
	}
}

// Save writes the current configuration to the config file.
func (m *Manager) Save() error {
	if err := m.config.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory '%s': %w", dir, err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("write config file '%s': %w", m.configPath, err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// APIKey returns the configured API key, falling back to the environment.
func (m *Manager) APIKey() string {
	if m.config != nil && m.config.APIKey != "" {
		return m.config.APIKey
	}
	return os.Getenv(EnvAPIKey)
}

// BaseURL returns the configured base URL, falling back to the environment
// and then the default.
func (m *Manager) BaseURL() string {
	if m.config != nil && m.config.BaseURL != "" {
		return m.config.BaseURL
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		return v
	}
	return DefaultBaseURL
}

// SetAPIKey sets the API key and persists the configuration.
func (m *Manager) SetAPIKey(key string) error {
	if m.config == nil {
		m.config = Default()
	}
	m.config.APIKey = key
	return m.Save()
}

// Config returns the current configuration.
func (m *Manager) Config() *Config {
	if m.config == nil {
		return Default()
	}
	return m.config
}

// SetConfig replaces the configuration after validating it.
func (m *Manager) SetConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// ConfigPath returns the path of the backing config file.
func (m *Manager) ConfigPath() string {
	return m.configPath
}
