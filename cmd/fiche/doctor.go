package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-productsheet/internal/config"
	"github.com/alnah/go-productsheet/internal/fileutil"
)

// doctorProbeTimeout bounds the webhook reachability probe.
const doctorProbeTimeout = 5 * time.Second

type level string

const (
	levelOK    level = "ok"
	levelWarn  level = "warn"
	levelError level = "error"
)

// Report statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// finding is one line of the report, filed under the check that produced it.
type finding struct {
	Check   string `json:"check"`
	Level   level  `json:"level"`
	Message string `json:"message"`
}

type doctorReport struct {
	Status   string      `json:"status"`
	Browser  browserInfo `json:"browser"`
	Config   configInfo  `json:"config"`
	Webhook  webhookInfo `json:"webhook"`
	Host     hostInfo    `json:"host"`
	Findings []finding   `json:"findings"`
}

type browserInfo struct {
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type configInfo struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type webhookInfo struct {
	Configured bool   `json:"configured"`
	URL        string `json:"url,omitempty"`
	Reachable  bool   `json:"reachable"`
	Status     int    `json:"status,omitempty"`
}

type hostInfo struct {
	Platform  string `json:"platform"`
	Container string `json:"container,omitempty"`
	CI        bool   `json:"ci"`
}

func (r *doctorReport) add(check string, lvl level, format string, args ...any) {
	r.Findings = append(r.Findings, finding{Check: check, Level: lvl, Message: fmt.Sprintf(format, args...)})
}

func (r *doctorReport) count(lvl level) int {
	n := 0
	for _, f := range r.Findings {
		if f.Level == lvl {
			n++
		}
	}
	return n
}

// runDoctorCmd prints the report. Warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	var jsonOut bool
	var configName string
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	fs.BoolVar(&jsonOut, "json", false, "print the report as JSON")
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	report := runDoctor(ctx, configName, env.HTTPClient)
	if jsonOut {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(ctx context.Context, configName string, client *http.Client) *doctorReport {
	r := &doctorReport{}

	checkBrowser(r)
	if cfg := checkConfig(r, configName); cfg != nil {
		checkWebhook(ctx, r, cfg, client)
	}
	checkHost(r)

	switch {
	case r.count(levelError) > 0:
		r.Status = statusErrors
	case r.count(levelWarn) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

func checkBrowser(r *doctorReport) {
	const check = "Browser"

	path := os.Getenv("ROD_BROWSER_BIN")
	if path == "" {
		var ok bool
		if path, ok = launcher.LookPath(); !ok {
			r.add(check, levelError, "Chrome/Chromium not found; install it or set ROD_BROWSER_BIN")
			return
		}
	}
	if !fileutil.FileExists(path) {
		r.add(check, levelError, "no browser at %s", path)
		return
	}
	r.Browser.Path = path
	r.Browser.Sandbox = os.Getenv("ROD_NO_SANDBOX") != "1"
	r.add(check, levelOK, "%s", path)

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path from ROD_BROWSER_BIN or rod lookup
	if err != nil {
		r.add(check, levelWarn, "version unknown: %v", err)
	} else {
		r.Browser.Version = strings.TrimSpace(string(out))
		r.add(check, levelOK, "%s", r.Browser.Version)
	}
	if r.Browser.Sandbox {
		r.add(check, levelOK, "sandbox on")
	} else {
		r.add(check, levelOK, "sandbox off (ROD_NO_SANDBOX=1)")
	}
}

// checkConfig loads the configuration other commands would see.
func checkConfig(r *doctorReport, name string) *config.Config {
	const check = "Configuration"

	cfg, err := loadConfig(name)
	if err != nil {
		r.Config.Error = err.Error()
		r.add(check, levelError, "invalid: %v", err)
		return nil
	}
	r.Config.Valid = true
	r.add(check, levelOK, "valid")
	return cfg
}

// checkWebhook sends a HEAD request. The workflow only accepts POST, so any
// HTTP answer means the host is up.
func checkWebhook(ctx context.Context, r *doctorReport, cfg *config.Config, client *http.Client) {
	const check = "Webhook"

	url := cfg.Webhook.URL
	if url == "" {
		r.add(check, levelWarn, "not configured; set webhook.url or FICHE_WEBHOOK_URL")
		return
	}
	r.Webhook.Configured = true
	r.Webhook.URL = url

	if client == nil {
		client = &http.Client{Timeout: doctorProbeTimeout}
	}
	ctx, cancel := context.WithTimeout(ctx, doctorProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		r.add(check, levelError, "unusable URL %s: %v", url, err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		r.add(check, levelError, "%s unreachable: %v", url, err)
		return
	}
	_ = resp.Body.Close()

	r.Webhook.Reachable = true
	r.Webhook.Status = resp.StatusCode
	if resp.StatusCode >= http.StatusInternalServerError {
		r.add(check, levelWarn, "%s answered HTTP %d", url, resp.StatusCode)
		return
	}
	r.add(check, levelOK, "%s (HTTP %d)", url, resp.StatusCode)
}

// checkHost records the platform and whether the browser sandbox will work.
func checkHost(r *doctorReport) {
	const check = "Host"

	r.Host.Platform = runtime.GOOS + "/" + runtime.GOARCH
	r.add(check, levelOK, "%s", r.Host.Platform)

	if ok, signal := isContainer(); ok {
		r.Host.Container = signal
		r.add(check, levelOK, "container (%s)", signal)
	}
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			r.Host.CI = true
			r.add(check, levelOK, "CI (%s)", v)
			break
		}
	}
	if (r.Host.Container != "" || r.Host.CI) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		r.add(check, levelWarn, "sandboxed host without ROD_NO_SANDBOX=1; Chrome may fail to start")
	}

	path, cleanup, err := fileutil.WriteTempFile("doctor", "txt")
	if err != nil {
		r.add(check, levelError, "temp dir %s not writable: %v", os.TempDir(), err)
		return
	}
	cleanup()
	r.add(check, levelOK, "temp dir writable (%s)", filepath.Dir(path))
}

// isContainer returns the first container signal found.
func isContainer() (bool, string) {
	switch {
	case os.Getenv("FICHE_CONTAINER") == "1":
		return true, "FICHE_CONTAINER=1"
	case fileutil.FileExists("/.dockerenv"):
		return true, "/.dockerenv"
	case os.Getenv("container") != "":
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

var levelTags = map[level]string{levelOK: "[OK]", levelWarn: "[WARN]", levelError: "[ERROR]"}

// printDoctorReport prints findings grouped by check, in the order the
// checks ran.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "fiche doctor")

	current := ""
	for _, f := range r.Findings {
		if f.Check != current {
			current = f.Check
			fmt.Fprintf(w, "\n%s\n", current)
		}
		fmt.Fprintf(w, "  %-7s %s\n", levelTags[f.Level], f.Message)
	}
	fmt.Fprintln(w)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to generate")
	case statusWarnings:
		fmt.Fprintf(w, "Status: Ready with %d warning(s)\n", r.count(levelWarn))
	default:
		fmt.Fprintf(w, "Status: Not ready (%d error(s))\n", r.count(levelError))
	}
}
