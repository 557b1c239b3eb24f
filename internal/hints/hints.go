// Package hints builds the "\n  hint: ..." suffixes the CLI appends to
// error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-productsheet/internal/fileutil"
)

// IsInContainer reports whether the process runs in a Docker container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI runners the sandbox hint cares about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect suggests the ROD_* variables that usually fix a
// headless Chrome that will not start.
func ForBrowserConnect() string {
	var hints []string
	sandboxed := IsInContainer()
	for _, k := range ciVars {
		sandboxed = sandboxed || os.Getenv(k) != ""
	}
	if sandboxed && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "export ROD_NO_SANDBOX=1 inside containers and CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "point ROD_BROWSER_BIN at an installed Chrome")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about raising the webhook timeout.
func ForTimeout() string {
	return format("generation can take a while; raise webhook.timeout or use --timeout")
}

// ForConnection returns a hint for unreachable webhook errors.
func ForConnection(webhookURL string) string {
	if webhookURL == "" {
		return ForMissingWebhook()
	}
	return format("check that " + webhookURL + " is reachable (fiche doctor)")
}

// ForMissingWebhook returns a hint when no webhook URL is configured.
func ForMissingWebhook() string {
	return format("set webhook.url in fiche.yaml or FICHE_WEBHOOK_URL")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the user config location that was searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/fiche.yaml"

	for _, p := range searchedPaths {
		if filepath.Base(filepath.Dir(p)) == "fiche" {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForNoSession returns a hint when a command needs a generated sheet.
func ForNoSession() string {
	return format("run `fiche generate <produit>` first, or pass the same --session-dir")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleKnob lists the knobs accepted by --style and the style config section.
func ForStyleKnob(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForProductName explains the accepted product name alphabet.
func ForProductName() string {
	return format("use letters (accents allowed), spaces, apostrophes and hyphens")
}

// format prefixes hint; empty stays empty.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
