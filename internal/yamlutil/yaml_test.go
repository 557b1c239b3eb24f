package yamlutil_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-productsheet/internal/yamlutil"
)

type webhookSection struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type testConfig struct {
	Webhook webhookSection    `yaml:"webhook"`
	Style   map[string]string `yaml:"style"`
}

// ---------------------------------------------------------------------------
// TestDecodeStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "known fields",
			data: []byte("webhook:\n  url: https://n8n.example.com/hook\n  timeout: 30s\nstyle:\n  headerColor: \"#E65B0C\"\n"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Webhook.URL != "https://n8n.example.com/hook" || cfg.Webhook.Timeout != "30s" {
					t.Errorf("Webhook = %+v", cfg.Webhook)
				}
				if cfg.Style["headerColor"] != "#E65B0C" {
					t.Errorf("Style = %v", cfg.Style)
				}
			},
		},
		{
			name: "accents survive",
			data: []byte("style:\n  note: \"Crème brûlée\"\n"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				if got := v.(*testConfig).Style["note"]; got != "Crème brûlée" {
					t.Errorf("note = %q", got)
				}
			},
		},
		{
			name:    "unknown field",
			data:    []byte("webhook:\n  url: x\n  retries: 3\n"),
			dest:    &testConfig{},
			wantErr: errors.New("yamlutil:"),
		},
		{
			name:    "malformed",
			data:    []byte("webhook: [unclosed"),
			dest:    &testConfig{},
			wantErr: errors.New("yamlutil:"),
		},
		{name: "empty", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrEmptyInput},
		{name: "blank", data: []byte("\n  \n"), dest: &testConfig{}, wantErr: yamlutil.ErrEmptyInput},
		{name: "nil destination", data: []byte("style: {}"), dest: nil, wantErr: yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.DecodeStrict(bytes.NewReader(tt.data), tt.dest)
			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantErr == nil:
				if tt.check != nil {
					tt.check(t, tt.dest)
				}
			case err == nil:
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			case !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), tt.wantErr.Error()):
				t.Fatalf("error = %q, want %q", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEncode - Writes readable YAML
// ---------------------------------------------------------------------------

type recipe struct {
	Name        string `yaml:"nom"`
	Ingredients string `yaml:"ingredients"`
}

func TestEncode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := yamlutil.Encode(&buf, map[string]any{
		"titre":    "Fraise",
		"recettes": []recipe{{Name: "Tarte", Ingredients: "Fraises\nSucre"}},
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"titre: Fraise", "recettes:", "nom: Tarte", "ingredients: |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	var back struct {
		Titre    string   `yaml:"titre"`
		Recettes []recipe `yaml:"recettes"`
	}
	if err := yamlutil.DecodeStrict(&buf, &back); err != nil {
		t.Fatalf("DecodeStrict() error = %v", err)
	}
	if back.Recettes[0].Ingredients != "Fraises\nSucre" {
		t.Errorf("ingredients = %q", back.Recettes[0].Ingredients)
	}
}

// ---------------------------------------------------------------------------
// TestDecodeStrict_SizeLimit
// ---------------------------------------------------------------------------

// Changes MaxInputSize, so it does not run in parallel.
func TestDecodeStrict_SizeLimit(t *testing.T) {
	orig := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = orig })
	yamlutil.MaxInputSize = 16

	long := "style:\n  headerColor: \"#E65B0C\"\n"
	err := yamlutil.DecodeStrict(strings.NewReader(long), &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("error = %v, want ErrInputTooLarge", err)
	}
	if !strings.Contains(err.Error(), "max 16") {
		t.Errorf("error should name the limit: %v", err)
	}

	if err := yamlutil.DecodeStrict(strings.NewReader("style: {}"), &testConfig{}); err != nil {
		t.Errorf("input under the limit: %v", err)
	}
}
