package productsheet

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-productsheet/internal/envelope"
)

// Mock implementations for testing.

type mockWebhook struct {
	mu       sync.Mutex
	response []byte
	err      error
	badges   []envelope.BadgeOption
	calls    int
	product  string
	badge    string
}

func (m *mockWebhook) Generate(ctx context.Context, productName, badge string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.product = productName
	m.badge = badge
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockWebhook) ListBadges(ctx context.Context) []envelope.BadgeOption {
	return m.badges
}

func (m *mockWebhook) BadgeImageURL(name, cacheBuster string) string {
	return "https://badges.test/" + name + ".svg?cb=" + cacheBuster
}

type mockImages struct {
	mu      sync.Mutex
	svgs    map[string]string // keyed by URL prefix before '?'
	err     error
	fetched int
	inlined string
}

func (m *mockImages) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched++
	if m.err != nil {
		return nil, "", m.err
	}
	for prefix, svg := range m.svgs {
		if len(ref) >= len(prefix) && ref[:len(prefix)] == prefix {
			return []byte(svg), "image/svg+xml", nil
		}
	}
	return []byte("GIF89a"), "image/gif", nil
}

func (m *mockImages) InlineHTML(ctx context.Context, html string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inlined = html
	return html, nil
}

type mockCapturer struct {
	mu      sync.Mutex
	html    string
	opts    CaptureOptions
	bitmap  *Bitmap
	err     error
	block   chan struct{} // when set, Capture waits for it to close
	started chan struct{}
	closed  bool
}

func (m *mockCapturer) Capture(ctx context.Context, html string, opts CaptureOptions) (*Bitmap, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.html = html
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.bitmap != nil {
		return m.bitmap, nil
	}
	w := int(float64(CardWidthPx) * opts.Scale)
	return &Bitmap{PNG: []byte("png"), Width: w, Height: w * 4 / 3}, nil
}

func (m *mockCapturer) Close() error {
	m.closed = true
	return nil
}

type mockAssembler struct {
	mu        sync.Mutex
	bitmap    *Bitmap
	placement Placement
	err       error
}

func (m *mockAssembler) Assemble(bitmap *Bitmap, placement Placement) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bitmap = bitmap
	m.placement = placement
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.3 mock"), nil
}

// testFixture bundles a service with its mocks.
type testFixture struct {
	svc       *Service
	webhook   *mockWebhook
	images    *mockImages
	capturer  *mockCapturer
	assembler *mockAssembler
}

var fixedNow = time.UnixMilli(1700000000000)

func newFixture(t *testing.T, response string, opts ...Option) *testFixture {
	t.Helper()
	f := &testFixture{
		webhook:   &mockWebhook{response: []byte(response)},
		images:    &mockImages{svgs: map[string]string{}},
		capturer:  &mockCapturer{},
		assembler: &mockAssembler{},
	}
	base := []Option{
		WithWebhook(f.webhook),
		WithImageSource(f.images),
		WithCapturer(f.capturer),
		WithAssembler(f.assembler),
		WithClock(func() time.Time { return fixedNow }),
	}
	svc, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	f.svc = svc
	return f
}

// solidPNG returns a w x h opaque PNG.
func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 0xF6, G: 0xE2, B: 0xBE, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

const fraiseResponse = `{"success":true,"pdfContent":{` +
	`"titre":"Fraise des bois",` +
	`"caracteristiques":[{"type":"Goût","description":"Sucrée et parfumée"}],` +
	`"consommation":[],"recettes":[]}}`

const badgeSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50" viewBox="0 0 100 50">` +
	`<rect fill="#ff0000" width="100" height="50"/><circle stroke="#00ff00" cx="25" cy="25" r="10"/></svg>`
