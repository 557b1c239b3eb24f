package main

import (
	"io"
	"net/http"
	"os"
	"time"

	productsheet "github.com/alnah/go-productsheet"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Webhook replaces the client built from configuration.
	Webhook productsheet.Webhook
	// ServiceOptions are applied after the configured ones.
	ServiceOptions []productsheet.Option
	// HTTPClient is used by doctor to probe the webhook.
	HTTPClient *http.Client

	webhookURL string // set once configuration is resolved, for hints
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		HTTPClient: &http.Client{Timeout: doctorProbeTimeout},
	}
}
