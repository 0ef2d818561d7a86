// Package config loads routelens CLI configuration from defaults, an
// optional routelens.yaml, ROUTELENS_* environment variables and explicitly
// set flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/session"
)

// ServiceConfig locates the data service.
type ServiceConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int           `koanf:"port"`
	AutoOpen      bool          `koanf:"auto_open"`
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
}

// SelectionConfig controls what setters do with values outside the
// cached options.
type SelectionConfig struct {
	Policy session.Policy `koanf:"policy"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// JournalConfig locates the request journal database.
type JournalConfig struct {
	Path string `koanf:"path"`
}

// Config holds all CLI configuration options.
type Config struct {
	Service      ServiceConfig   `koanf:"service"`
	UI           UIConfig        `koanf:"ui"`
	Selection    SelectionConfig `koanf:"selection"`
	Log          LogConfig       `koanf:"log"`
	Journal      JournalConfig   `koanf:"journal"`
	OutputFormat string          `koanf:"output"`
	Verbose      bool            `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultConfigFile = "routelens.yaml"
	DefaultBaseURL    = dataservice.DefaultBaseURL
	DefaultTimeout    = time.Duration(0) // zero means no timeout
	DefaultPort       = 8765
	DefaultSessionTTL = 2 * time.Hour
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
	DefaultJournal    = ":memory:"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	EnvPrefix         = "ROUTELENS_"
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Service:      ServiceConfig{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout},
		UI:           UIConfig{Port: DefaultPort, AutoOpen: true, SessionTTL: DefaultSessionTTL},
		Selection:    SelectionConfig{Policy: session.PolicyLenient},
		Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Journal:      JournalConfig{Path: DefaultJournal},
		OutputFormat: DefaultOutput,
	}
}
