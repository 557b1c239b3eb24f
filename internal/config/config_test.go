package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-productsheet/internal/render"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Webhook.Timeout != 30*time.Second {
		t.Errorf("Webhook.Timeout = %v, want 30s", cfg.Webhook.Timeout)
	}
	if cfg.Export.Device != DeviceAuto {
		t.Errorf("Export.Device = %q, want auto", cfg.Export.Device)
	}
	if cfg.Export.Background != "#F6E2BE" {
		t.Errorf("Export.Background = %q", cfg.Export.Background)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Style == nil || len(cfg.Style) != 0 {
		t.Errorf("Style = %v, want empty non-nil", cfg.Style)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{name: "empty", value: "", max: 10},
		{name: "at limit", value: "1234567890", max: 10},
		{name: "over limit", value: "12345678901", max: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.max)
			if tt.wantErr != errors.Is(err, ErrFieldTooLong) {
				t.Errorf("validateFieldLength() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name: "full valid",
			mutate: func(c *Config) {
				c.Webhook.URL = "https://n8n.example.com/webhook/fiche"
				c.Webhook.BadgesURL = "https://n8n.example.com/webhook/badges"
				c.Export.Device = "Mobile"
				c.Export.Scale = 2
				c.Style = render.StyleOverrides{"headerColor": "#60191A", "h1Size": "2.2"}
			},
		},
		{
			name:    "url too long",
			mutate:  func(c *Config) { c.Webhook.URL = "https://x/" + strings.Repeat("a", MaxURLLength) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "non-http url",
			mutate:  func(c *Config) { c.Webhook.URL = "ftp://n8n.example.com" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "relative badge image url",
			mutate:  func(c *Config) { c.Webhook.BadgeImageURL = "/badge" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Webhook.Timeout = -time.Second },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown device",
			mutate:  func(c *Config) { c.Export.Device = "tablet" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "scale too large",
			mutate:  func(c *Config) { c.Export.Scale = 5 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "background not hex",
			mutate:  func(c *Config) { c.Export.Background = "beige" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown style knob",
			mutate:  func(c *Config) { c.Style = render.StyleOverrides{"fontFamily": "serif"} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "invalid style value",
			mutate:  func(c *Config) { c.Style = render.StyleOverrides{"h1Weight": "heavy"} },
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "fiche.yaml", `webhook:
  url: "https://n8n.example.com/webhook/fiche"
  timeout: 45s
export:
  outputDir: "./out"
  device: desktop
  scale: 3
assets:
  basePath: "./assets"
style:
  headerColor: "#60191a"
  footerPadding: "40px"
server:
  addr: "127.0.0.1:9090"
session:
  dir: "/tmp/fiche"
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Webhook.URL != "https://n8n.example.com/webhook/fiche" || cfg.Webhook.Timeout != 45*time.Second {
			t.Errorf("Webhook = %+v", cfg.Webhook)
		}
		if cfg.Export.OutputDir != "./out" || cfg.Export.Device != DeviceDesktop || cfg.Export.Scale != 3 {
			t.Errorf("Export = %+v", cfg.Export)
		}
		if cfg.Export.Background != DefaultBackground {
			t.Errorf("Export.Background = %q, want default", cfg.Export.Background)
		}
		if cfg.Style["headerColor"] != "#60191a" || cfg.Style["footerPadding"] != "40px" {
			t.Errorf("Style = %v", cfg.Style)
		}
		if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Session.Dir != "/tmp/fiche" || cfg.Assets.BasePath != "./assets" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("partial file gets defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "fiche.yml", "webhook:\n  url: http://localhost:5678/webhook\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Webhook.Timeout != DefaultTimeout || cfg.Export.Device != DeviceAuto || cfg.Server.Addr != DefaultAddr {
			t.Errorf("defaults not applied: %+v", cfg)
		}
		if cfg.Style == nil {
			t.Error("Style is nil")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "webhook: [unclosed")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "unknown.yaml", "webhook:\n  retries: 3\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "device.yaml", "export:\n  device: tablet\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

// Changes the working directory, so it does not run in parallel.
func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "atelier.yml", "server:\n  addr: \"127.0.0.1:7000\"\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("atelier")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	_, err = LoadConfig("absent")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "absent.yaml") || !strings.Contains(err.Error(), "absent.yml") {
		t.Errorf("error should list tried paths: %v", err)
	}
}
