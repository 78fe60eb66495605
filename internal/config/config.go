// Package config handles configuration loading and persistence for chatbot.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "CHATBOT_"

// Formatting policies accepted by format_policy
const (
	PolicyPlain    = "plain"
	PolicyMarkdown = "markdown"
)

// MarkdownConfig configures terminal markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" env:"MARKDOWN_STYLE"`                         // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" env:"MARKDOWN_EMOJI"`                  // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" env:"MARKDOWN_PRESERVE_NEWLINES"` // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap" env:"MARKDOWN_TABLE_WRAP"`               // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" env:"MARKDOWN_INLINE_TABLE_LINKS"`
}

// Config represents the user configuration
type Config struct {
	// BaseURL is the chatbot backend, e.g. http://localhost:8000
	BaseURL string `json:"base_url" env:"BASE_URL"`
	// Endpoints is the fixed set of chat routes the user can pick from.
	Endpoints       []string `json:"endpoints" env:"ENDPOINTS"`
	DefaultEndpoint string   `json:"default_endpoint" env:"DEFAULT_ENDPOINT"`
	// FormatPolicy selects how message content is formatted: "plain" or "markdown".
	FormatPolicy string `json:"format_policy" env:"FORMAT_POLICY"`
	// RequestTimeoutSeconds bounds a single chat request. Zero disables the timeout.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS"`
	// CopyFeedbackMillis is how long the "Copied" indicator stays visible.
	CopyFeedbackMillis int            `json:"copy_feedback_ms" env:"COPY_FEEDBACK_MS"`
	Verbose            bool           `json:"verbose" env:"VERBOSE"`
	CopyToClipboard    bool           `json:"copy_to_clipboard" env:"COPY_TO_CLIPBOARD"`
	TUITheme           string         `json:"tui_theme,omitempty" env:"TUI_THEME"`
	DownloadDir        string         `json:"download_dir,omitempty" env:"DOWNLOAD_DIR"`
	LogFile            string         `json:"log_file,omitempty" env:"LOG_FILE"`
	LogLevel           string         `json:"log_level,omitempty" env:"LOG_LEVEL"`
	Markdown           MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		BaseURL:               "http://localhost:8000",
		Endpoints:             []string{"/chat-tools", "/chat"},
		DefaultEndpoint:       "/chat-tools",
		FormatPolicy:          PolicyMarkdown,
		RequestTimeoutSeconds: 120,
		CopyFeedbackMillis:    1000,
		Verbose:               false,
		CopyToClipboard:       false,
		TUITheme:              "tokyonight",
		DownloadDir:           filepath.Join(homeDir, ".chatbot", "reports"),
		LogFile:               filepath.Join(homeDir, ".chatbot", "chatbot.log"),
		LogLevel:              "info",
		Markdown:              DefaultMarkdownConfig(),
	}
}

// RequestTimeout returns the configured chat request timeout
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CopyFeedback returns how long the copy indicator is shown
func (c Config) CopyFeedback() time.Duration {
	if c.CopyFeedbackMillis <= 0 {
		return time.Second
	}
	return time.Duration(c.CopyFeedbackMillis) * time.Millisecond
}

// Validate checks the configuration for values the client cannot work with
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	if len(c.Endpoints) == 0 {
		return errors.New("at least one endpoint must be configured")
	}
	found := false
	for _, e := range c.Endpoints {
		if !strings.HasPrefix(e, "/") {
			return fmt.Errorf("endpoint %q must start with /", e)
		}
		if e == c.DefaultEndpoint {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("default_endpoint %q is not in endpoints", c.DefaultEndpoint)
	}
	switch c.FormatPolicy {
	case PolicyPlain, PolicyMarkdown:
	default:
		return fmt.Errorf("format_policy must be %q or %q, got %q", PolicyPlain, PolicyMarkdown, c.FormatPolicy)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatbot"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetDownloadDir returns the download directory from config, creating it if necessary
func GetDownloadDir(cfg Config) (string, error) {
	dir := cfg.DownloadDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "reports")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	return dir, nil
}

// LoadDotEnv loads a .env file into the process environment.
// Variables already set are left untouched and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with CHATBOT_* environment variables
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// LoadConfig loads the configuration from disk, then applies environment overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SettableKeys lists the keys accepted by SetValue
func SettableKeys() []string {
	return []string{
		"base_url",
		"endpoints",
		"default_endpoint",
		"format_policy",
		"request_timeout_seconds",
		"copy_feedback_ms",
		"verbose",
		"copy_to_clipboard",
		"tui_theme",
		"download_dir",
		"log_file",
		"log_level",
		"markdown.style",
	}
}

// SetValue updates a single configuration key from its string form
func SetValue(cfg *Config, key, value string) error {
	switch key {
	case "base_url":
		cfg.BaseURL = strings.TrimRight(value, "/")
	case "endpoints":
		var endpoints []string
		for _, e := range strings.Split(value, ",") {
			if e = strings.TrimSpace(e); e != "" {
				endpoints = append(endpoints, e)
			}
		}
		cfg.Endpoints = endpoints
	case "default_endpoint":
		cfg.DefaultEndpoint = value
	case "format_policy":
		cfg.FormatPolicy = value
	case "request_timeout_seconds", "copy_feedback_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		if key == "request_timeout_seconds" {
			cfg.RequestTimeoutSeconds = n
		} else {
			cfg.CopyFeedbackMillis = n
		}
	case "verbose", "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		if key == "verbose" {
			cfg.Verbose = b
		} else {
			cfg.CopyToClipboard = b
		}
	case "tui_theme":
		cfg.TUITheme = value
	case "download_dir":
		cfg.DownloadDir = value
	case "log_file":
		cfg.LogFile = value
	case "log_level":
		cfg.LogLevel = value
	case "markdown.style":
		cfg.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	return cfg.Validate()
}
