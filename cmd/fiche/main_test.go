package main

// Notes:
// - runMain: we test dispatch, exit codes and what reaches stdout/stderr.
//   The webhook, browser and PDF assembler are stubbed through Environment.
// - Tests that resolve configuration clear FICHE_* variables with t.Setenv,
//   so they cannot run in parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-productsheet/internal/webhook"
)

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Commands that need no configuration
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{"no command", []string{"fiche"}, ExitUsage, nil, []string{"Usage: fiche"}},
		{"unknown command", []string{"fiche", "bake"}, ExitUsage, nil, []string{"Unknown command: bake"}},
		{"version", []string{"fiche", "version"}, ExitSuccess, []string{"fiche " + Version}, nil},
		{"help", []string{"fiche", "help"}, ExitSuccess, []string{"generate", "serve"}, nil},
		{"help generate", []string{"fiche", "help", "generate"}, ExitSuccess, []string{"--badge", "--style"}, nil},
		{"help unknown", []string{"fiche", "help", "bake"}, ExitUsage, nil, []string{"Unknown command"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil, "")
			if code := runMain(tt.args, env); code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d", tt.args, code, tt.wantCode)
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Generate - Generation, export and the stored session
// ---------------------------------------------------------------------------

func TestRunMain_Generate(t *testing.T) {
	isolateConfig(t)

	sessionDir, outDir := t.TempDir(), t.TempDir()
	wh := &stubWebhook{response: fraiseResponse}
	env, stdout, stderr := testEnv(wh, "")

	code := runMain([]string{"fiche", "generate", "Fraise", "des", "bois",
		"--badge", "bio_atout", "--style", "headerColor=#60191a",
		"--session-dir", sessionDir, "-o", outDir, "--scale", "2"}, env)
	if code != ExitSuccess {
		t.Fatalf("generate = %d, stderr: %s", code, stderr.String())
	}

	want := filepath.Join(outDir, "Fiche_Fraise_des_bois_1700000000000.pdf")
	if got := strings.TrimSpace(stdout.String()); got != want {
		t.Errorf("printed path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("PDF content = %q", data)
	}
	if len(wh.products) != 1 || wh.products[0] != "Fraise des bois" {
		t.Errorf("webhook products = %v", wh.products)
	}

	t.Run("preview reads the stored session", func(t *testing.T) {
		env, stdout, stderr := testEnv(nil, "")
		if code := runMain([]string{"fiche", "preview", "--session-dir", sessionDir}, env); code != ExitSuccess {
			t.Fatalf("preview = %d, stderr: %s", code, stderr.String())
		}
		html := stdout.String()
		for _, want := range []string{"Fraise des bois", "#60191A", `data-badge-name="bio_atout"`} {
			if !strings.Contains(html, want) {
				t.Errorf("preview should contain %q", want)
			}
		}
	})

	t.Run("export writes again", func(t *testing.T) {
		again := t.TempDir()
		env, stdout, stderr := testEnv(nil, "")
		if code := runMain([]string{"fiche", "export", "--session-dir", sessionDir, "-o", again}, env); code != ExitSuccess {
			t.Fatalf("export = %d, stderr: %s", code, stderr.String())
		}
		if !strings.HasPrefix(strings.TrimSpace(stdout.String()), again) {
			t.Errorf("export path = %q, want under %q", stdout.String(), again)
		}
	})
}

func TestRunMain_GenerateNoExport(t *testing.T) {
	isolateConfig(t)

	sessionDir, outDir := t.TempDir(), t.TempDir()
	env, stdout, stderr := testEnv(&stubWebhook{response: fraiseResponse}, "")

	code := runMain([]string{"fiche", "generate", "Poire", "--no-export",
		"--session-dir", sessionDir, "-o", outDir}, env)
	if code != ExitSuccess {
		t.Fatalf("generate = %d, stderr: %s", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", stdout.String())
	}
	if !strings.Contains(stderr.String(), "session.json") {
		t.Errorf("stderr should name the session file, got %q", stderr.String())
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries, want 0", len(entries))
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Failures - Exit codes and hints for failing runs
// ---------------------------------------------------------------------------

func TestRunMain_Failures(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		name       string
		args       []string
		webhook    *stubWebhook
		wantCode   int
		wantStderr string
	}{
		{
			name:     "missing product name",
			args:     []string{"fiche", "generate"},
			webhook:  &stubWebhook{response: fraiseResponse},
			wantCode: ExitUsage,
		},
		{
			name:       "invalid product name",
			args:       []string{"fiche", "generate", "Fraise#1"},
			webhook:    &stubWebhook{response: fraiseResponse},
			wantCode:   ExitUsage,
			wantStderr: "hint: use letters",
		},
		{
			name:       "unknown style knob",
			args:       []string{"fiche", "generate", "Fraise", "--style", "shadow=1px"},
			webhook:    &stubWebhook{response: fraiseResponse},
			wantCode:   ExitUsage,
			wantStderr: "footerPadding",
		},
		{
			name:     "bad device",
			args:     []string{"fiche", "generate", "Fraise", "--device", "tablet"},
			webhook:  &stubWebhook{response: fraiseResponse},
			wantCode: ExitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"fiche", "generate", "Fraise", "--colour", "red"},
			webhook:  &stubWebhook{response: fraiseResponse},
			wantCode: ExitUsage,
		},
		{
			name:       "webhook unreachable",
			args:       []string{"fiche", "generate", "Fraise"},
			webhook:    &stubWebhook{err: webhook.ErrConnection},
			wantCode:   ExitWebhook,
			wantStderr: "hint:",
		},
		{
			name:     "server reports failure",
			args:     []string{"fiche", "generate", "Fraise"},
			webhook:  &stubWebhook{response: `{"success":false,"message":"quota"}`},
			wantCode: ExitWebhook,
		},
		{
			name:     "response without content",
			args:     []string{"fiche", "generate", "Fraise"},
			webhook:  &stubWebhook{response: `{"success":true}`},
			wantCode: ExitContent,
		},
		{
			name:       "export without session",
			args:       []string{"fiche", "export"},
			wantCode:   ExitContent,
			wantStderr: "fiche generate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env *Environment
			if tt.webhook != nil {
				env, _, _ = testEnv(tt.webhook, "")
			} else {
				env, _, _ = testEnv(nil, "")
			}
			stderr := env.Stderr.(interface{ String() string })

			args := append(tt.args, "--session-dir", t.TempDir(), "-o", t.TempDir())
			if code := runMain(args, env); code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr should contain %q, got %q", tt.wantStderr, stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Parse - Content parser command
// ---------------------------------------------------------------------------

func TestRunMain_Parse(t *testing.T) {
	isolateConfig(t)

	const xmlInput = `<fiche><titre>Miel de lavande</titre>` +
		`<slogan>Doux et floral</slogan></fiche>`

	t.Run("json from stdin", func(t *testing.T) {
		env, stdout, stderr := testEnv(nil, xmlInput)
		if code := runMain([]string{"fiche", "parse"}, env); code != ExitSuccess {
			t.Fatalf("parse = %d, stderr: %s", code, stderr.String())
		}
		for _, want := range []string{`"titre": "Miel de lavande"`, `"formatDetected"`} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("stdout should contain %q, got %s", want, stdout.String())
			}
		}
	})

	t.Run("yaml from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reponse.txt")
		if err := os.WriteFile(path, []byte(xmlInput), 0o600); err != nil {
			t.Fatal(err)
		}
		env, stdout, stderr := testEnv(nil, "")
		if code := runMain([]string{"fiche", "parse", path, "--format", "yaml"}, env); code != ExitSuccess {
			t.Fatalf("parse = %d, stderr: %s", code, stderr.String())
		}
		if !strings.Contains(stdout.String(), "titre: Miel de lavande") {
			t.Errorf("yaml output = %s", stdout.String())
		}
	})

	t.Run("bad format", func(t *testing.T) {
		env, _, _ := testEnv(nil, xmlInput)
		if code := runMain([]string{"fiche", "parse", "--format", "toml"}, env); code != ExitUsage {
			t.Errorf("parse --format toml = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		env, _, _ := testEnv(nil, "")
		if code := runMain([]string{"fiche", "parse", filepath.Join(t.TempDir(), "absent.txt")}, env); code != ExitUsage {
			t.Errorf("parse missing file = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("oversized input", func(t *testing.T) {
		env, _, stderr := testEnv(nil, strings.Repeat("a", 2<<20))
		if code := runMain([]string{"fiche", "parse"}, env); code != ExitContent {
			t.Errorf("parse oversized = %d, want %d", code, ExitContent)
		}
		if !strings.Contains(stderr.String(), "raw response") {
			t.Errorf("stderr should carry the snippet, got %q", stderr.String())
		}
	})
}
