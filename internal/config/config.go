// Package config loads the YAML configuration shared by the CLI and the
// preview server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-productsheet/internal/fileutil"
	"github.com/alnah/go-productsheet/internal/render"
	"github.com/alnah/go-productsheet/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxURLLength  = 2048
	MaxPathLength = 4096
	MaxAddrLength = 255
)

// Export device modes.
const (
	DeviceAuto    = "auto"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultBackground = "#F6E2BE"
	DefaultAddr       = "127.0.0.1:8080"
	MaxScale          = 4
)

// appDir names the directory under the user config dir searched for configs.
const appDir = "fiche"

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config holds all configuration for generation, export and serving.
type Config struct {
	Webhook WebhookConfig         `yaml:"webhook"`
	Export  ExportConfig          `yaml:"export"`
	Assets  AssetsConfig          `yaml:"assets"`
	Style   render.StyleOverrides `yaml:"style"`
	Server  ServerConfig          `yaml:"server"`
	Session SessionConfig         `yaml:"session"`
}

// WebhookConfig points at the generation workflow.
type WebhookConfig struct {
	URL           string        `yaml:"url"`
	BadgesURL     string        `yaml:"badgesUrl"`     // Empty = <url>/badges
	BadgeImageURL string        `yaml:"badgeImageUrl"` // Empty = <url>/badge
	Timeout       time.Duration `yaml:"timeout"`       // 0 = 30s
}

// ExportConfig defines PDF export options.
type ExportConfig struct {
	OutputDir  string `yaml:"outputDir"`  // Empty = current directory
	Device     string `yaml:"device"`     // auto, mobile, desktop
	Scale      int    `yaml:"scale"`      // 0 = derived from device
	Background string `yaml:"background"` // Card background during capture
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// ServerConfig defines the preview API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SessionConfig defines where CLI sessions persist between invocations.
type SessionConfig struct {
	Dir string `yaml:"dir"` // Empty = user cache dir
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Webhook: WebhookConfig{Timeout: DefaultTimeout},
		Export:  ExportConfig{Device: DeviceAuto, Background: DefaultBackground},
		Style:   render.StyleOverrides{},
		Server:  ServerConfig{Addr: DefaultAddr},
	}
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = d.Webhook.Timeout
	}
	if c.Export.Device == "" {
		c.Export.Device = d.Export.Device
	}
	if c.Export.Background == "" {
		c.Export.Background = d.Export.Background
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Style == nil {
		c.Style = render.StyleOverrides{}
	}
}

// Validate checks field lengths and enumerations. Called automatically by
// LoadConfig; callers building a Config by hand should call it too.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"webhook.url", c.Webhook.URL, MaxURLLength},
		{"webhook.badgesUrl", c.Webhook.BadgesURL, MaxURLLength},
		{"webhook.badgeImageUrl", c.Webhook.BadgeImageURL, MaxURLLength},
		{"export.outputDir", c.Export.OutputDir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"session.dir", c.Session.Dir, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	for name, value := range map[string]string{
		"webhook.url":           c.Webhook.URL,
		"webhook.badgesUrl":     c.Webhook.BadgesURL,
		"webhook.badgeImageUrl": c.Webhook.BadgeImageURL,
	} {
		if err := validateURL(name, value); err != nil {
			return err
		}
	}

	if c.Webhook.Timeout < 0 {
		return fmt.Errorf("%w: webhook.timeout must be positive, got %s", ErrInvalidValue, c.Webhook.Timeout)
	}

	switch strings.ToLower(c.Export.Device) {
	case "", DeviceAuto, DeviceMobile, DeviceDesktop:
	default:
		return fmt.Errorf("%w: export.device %q (must be auto, mobile, or desktop)", ErrInvalidValue, c.Export.Device)
	}
	if c.Export.Scale < 0 || c.Export.Scale > MaxScale {
		return fmt.Errorf("%w: export.scale must be between 0 and %d, got %d", ErrInvalidValue, MaxScale, c.Export.Scale)
	}
	if c.Export.Background != "" && !hexColorPattern.MatchString(c.Export.Background) {
		return fmt.Errorf("%w: export.background %q (must be a hex color)", ErrInvalidValue, c.Export.Background)
	}

	if _, err := c.Style.Validate(); err != nil {
		return fmt.Errorf("%w: style: %v", ErrInvalidValue, err)
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s %q (must be an http(s) URL)", ErrInvalidValue, field, raw)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as a name in the working directory, then in the
// user config directory. There is no silent fallback when nothing is found.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cfg Config
	if err := yamlutil.DecodeStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath tries .yaml then .yml, first in the working directory,
// then in <user config dir>/fiche/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		p := name + ext
		if fileutil.FileExists(p) {
			return p, nil
		}
		tried = append(tried, p)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			p := filepath.Join(userConfigDir, appDir, name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
