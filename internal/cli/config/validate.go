package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/leapstack-labs/routelens/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Service.BaseURL)
	switch {
	case c.Service.BaseURL == "":
		errs = append(errs, errors.New("service.base_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("service.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("service.base_url %q must be an http or https URL", c.Service.BaseURL))
	}

	if c.Service.Timeout < 0 {
		errs = append(errs, fmt.Errorf("service.timeout must not be negative, got %s", c.Service.Timeout))
	}
	if c.UI.Port < 1 || c.UI.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port %d is out of range", c.UI.Port))
	}
	if c.UI.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("ui.session_ttl must be positive, got %s", c.UI.SessionTTL))
	}
	if !output.Valid(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output %q is not one of auto, text, markdown, json, yaml", c.OutputFormat))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level %q is not debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	if c.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required (use :memory: for no file)"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
