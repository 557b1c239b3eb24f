package main

import (
	"context"
	"errors"
	"os"

	productsheet "github.com/alnah/go-productsheet"
	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/config"
	"github.com/alnah/go-productsheet/internal/content"
	"github.com/alnah/go-productsheet/internal/render"
	"github.com/alnah/go-productsheet/internal/webhook"
)

// Exit codes for the fiche CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or product name
	ExitWebhook = 3 // Generation workflow unreachable or failing
	ExitContent = 4 // Unusable AI content or missing session
	ExitExport  = 5 // Rendering, browser or PDF errors
)

// exitCodeFor returns the exit code for err, matching wrapped sentinels.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Export errors (exit 5)
	if errors.Is(err, productsheet.ErrRender) ||
		errors.Is(err, productsheet.ErrCapture) ||
		errors.Is(err, productsheet.ErrAssemble) ||
		errors.Is(err, productsheet.ErrBrowserConnect) ||
		errors.Is(err, productsheet.ErrPageLoad) ||
		errors.Is(err, productsheet.ErrExportInProgress) ||
		errors.Is(err, render.ErrRender) ||
		errors.Is(err, ErrWritePDF) {
		return ExitExport
	}

	// Content errors (exit 4)
	if errors.Is(err, content.ErrParse) ||
		errors.Is(err, content.ErrInputTooLarge) ||
		errors.Is(err, productsheet.ErrMissingContent) ||
		errors.Is(err, productsheet.ErrNoSessionContent) {
		return ExitContent
	}

	// Webhook errors (exit 3)
	if errors.Is(err, webhook.ErrTimeout) ||
		errors.Is(err, webhook.ErrConnection) ||
		errors.Is(err, webhook.ErrHTTPStatus) ||
		errors.Is(err, webhook.ErrInvalidResponse) ||
		errors.Is(err, webhook.ErrNoBadgeEndpoint) ||
		errors.Is(err, productsheet.ErrGenerationFailed) ||
		errors.Is(err, productsheet.ErrBadgeNotSVG) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitWebhook
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, webhook.ErrInvalidURL) ||
		errors.Is(err, productsheet.ErrNoWebhook) ||
		errors.Is(err, productsheet.ErrEmptyProductName) ||
		errors.Is(err, productsheet.ErrInvalidProductName) ||
		errors.Is(err, productsheet.ErrUnknownBadge) ||
		errors.Is(err, render.ErrUnknownStyle) ||
		errors.Is(err, render.ErrInvalidStyleValue) ||
		errors.Is(err, badge.ErrInvalidColor) {
		return ExitUsage
	}

	return ExitGeneral
}
