package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-productsheet/internal/config"
)

// envConfig holds configuration from FICHE_* environment variables.
type envConfig struct {
	ConfigPath string // FICHE_CONFIG: config file name or path

	// Webhook
	WebhookURL    string        // FICHE_WEBHOOK_URL
	BadgesURL     string        // FICHE_BADGES_URL
	BadgeImageURL string        // FICHE_BADGE_IMAGE_URL
	Timeout       time.Duration // FICHE_TIMEOUT

	// Export
	OutputDir string // FICHE_OUTPUT_DIR
	Device    string // FICHE_DEVICE: auto, mobile, desktop
	Scale     int    // FICHE_SCALE

	SessionDir string // FICHE_SESSION_DIR
	Addr       string // FICHE_ADDR
}

// knownEnvVars lists valid FICHE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"FICHE_CONFIG":          true,
	"FICHE_WEBHOOK_URL":     true,
	"FICHE_BADGES_URL":      true,
	"FICHE_BADGE_IMAGE_URL": true,
	"FICHE_TIMEOUT":         true,
	"FICHE_OUTPUT_DIR":      true,
	"FICHE_DEVICE":          true,
	"FICHE_SCALE":           true,
	"FICHE_SESSION_DIR":     true,
	"FICHE_ADDR":            true,
	"FICHE_CONTAINER":       true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and numbers are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("FICHE_CONFIG"),
		WebhookURL:    os.Getenv("FICHE_WEBHOOK_URL"),
		BadgesURL:     os.Getenv("FICHE_BADGES_URL"),
		BadgeImageURL: os.Getenv("FICHE_BADGE_IMAGE_URL"),
		OutputDir:     os.Getenv("FICHE_OUTPUT_DIR"),
		Device:        strings.ToLower(os.Getenv("FICHE_DEVICE")),
		SessionDir:    os.Getenv("FICHE_SESSION_DIR"),
		Addr:          os.Getenv("FICHE_ADDR"),
	}

	if timeout := os.Getenv("FICHE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if scale := os.Getenv("FICHE_SCALE"); scale != "" {
		if n, err := strconv.Atoi(scale); err == nil && n > 0 {
			cfg.Scale = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized FICHE_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "FICHE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig copies every set env value into cfg, replacing the file's.
// Precedence: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Webhook.URL, env.WebhookURL)
	setString(&cfg.Webhook.BadgesURL, env.BadgesURL)
	setString(&cfg.Webhook.BadgeImageURL, env.BadgeImageURL)
	if env.Timeout > 0 {
		cfg.Webhook.Timeout = env.Timeout
	}

	setString(&cfg.Export.OutputDir, env.OutputDir)
	setString(&cfg.Export.Device, env.Device)
	if env.Scale > 0 {
		cfg.Export.Scale = env.Scale
	}

	setString(&cfg.Session.Dir, env.SessionDir)
	setString(&cfg.Server.Addr, env.Addr)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
