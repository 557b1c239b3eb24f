package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	productsheet "github.com/alnah/go-productsheet"
	"github.com/alnah/go-productsheet/internal/envelope"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Webhook, browser and PDF stand-ins
// ---------------------------------------------------------------------------

const fraiseResponse = `{"success":true,"pdfContent":{"titre":"Fraise des bois",` +
	`"slogan":"Le goût de l'été",` +
	`"caracteristiques":[{"type":"Goût","description":"Sucrée"}]}}`

type stubWebhook struct {
	mu       sync.Mutex
	response string
	err      error
	products []string
	badges   []envelope.BadgeOption
}

func (s *stubWebhook) Generate(_ context.Context, productName, _ string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, productName)
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.response), nil
}

func (s *stubWebhook) ListBadges(context.Context) []envelope.BadgeOption {
	return s.badges
}

func (s *stubWebhook) BadgeImageURL(name, cb string) string {
	return "https://badges.test/" + name + ".svg?cb=" + cb
}

type stubImages struct{}

func (stubImages) Fetch(context.Context, string) ([]byte, string, error) {
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect fill="#E65B0C"/></svg>`), "image/svg+xml", nil
}

func (stubImages) InlineHTML(_ context.Context, html string) (string, error) {
	return html, nil
}

type stubCapturer struct{}

func (stubCapturer) Capture(_ context.Context, _ string, opts productsheet.CaptureOptions) (*productsheet.Bitmap, error) {
	w := int(float64(opts.Width) * opts.Scale)
	return &productsheet.Bitmap{PNG: []byte("png"), Width: w, Height: w}, nil
}

func (stubCapturer) Close() error { return nil }

type stubAssembler struct{}

func (stubAssembler) Assemble(*productsheet.Bitmap, productsheet.Placement) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

var fixedNow = time.UnixMilli(1700000000000)

// testEnv returns an environment whose service never leaves the process.
func testEnv(wh productsheet.Webhook, stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdin:   strings.NewReader(stdin),
		Stdout:  stdout,
		Stderr:  stderr,
		Webhook: wh,
		ServiceOptions: []productsheet.Option{
			productsheet.WithImageSource(stubImages{}),
			productsheet.WithCapturer(stubCapturer{}),
			productsheet.WithAssembler(stubAssembler{}),
		},
	}
	return env, stdout, stderr
}

// isolateConfig keeps a developer's fiche.yaml and FICHE_* variables out of
// the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}
