package productsheet

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-productsheet/internal/store"
)

func TestExport_Pipeline(t *testing.T) {
	t.Parallel()

	f, sess, _ := newSession(t, "bio")

	var buf bytes.Buffer
	res, err := sess.Export(context.Background(), &buf, WithUserAgent("Mozilla/5.0 (X11; Linux x86_64)"))
	if err != nil {
		t.Fatalf("Export() unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output = %q, want PDF bytes", buf.String())
	}
	if res.Filename != "Fiche_Fraise_1700000000000.pdf" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if res.Size != buf.Len() {
		t.Errorf("Size = %d, want %d", res.Size, buf.Len())
	}

	if f.capturer.opts.Scale != DesktopScale || f.capturer.opts.Width != CardWidthPx {
		t.Errorf("capture options = %+v", f.capturer.opts)
	}
	if f.capturer.opts.BackgroundColor != DefaultBackground {
		t.Errorf("background = %q", f.capturer.opts.BackgroundColor)
	}
	if f.assembler.bitmap.Width != CardWidthPx*DesktopScale {
		t.Errorf("assembled bitmap width = %d, want %d", f.assembler.bitmap.Width, CardWidthPx*DesktopScale)
	}
	if p := f.assembler.placement; p.Width != PageWidthMM || p.Y <= 0 {
		t.Errorf("placement = %+v, want full width and centered", p)
	}
	if f.images.inlined == "" {
		t.Error("images were not inlined before capture")
	}
}

func TestExport_ScaleSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		svc  []Option
		opts []ExportOption
		want float64
	}{
		{"mobile agent", nil, []ExportOption{WithUserAgent("Mozilla/5.0 (Linux; Android 14)")}, MobileScale},
		{"device forced", []Option{WithDevice(DeviceMobile)}, nil, MobileScale},
		{"fixed scale beats device", []Option{WithDevice(DeviceMobile), WithScale(4)}, nil, 4},
		{"per export scale wins", []Option{WithScale(4)}, []ExportOption{WithExportScale(1)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, fraiseResponse, tt.svc...)
			sess, err := f.svc.Open(store.NewMemory(), "Fraise", &Document{Title: "Fraise"})
			if err != nil {
				t.Fatal(err)
			}
			res, err := sess.Export(context.Background(), &bytes.Buffer{}, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if f.capturer.opts.Scale != tt.want || float64(res.Scale) != tt.want {
				t.Errorf("scale = %v (result %d), want %v", f.capturer.opts.Scale, res.Scale, tt.want)
			}
		})
	}
}

func TestExport_InProgress(t *testing.T) {
	t.Parallel()

	f, sess, _ := newSession(t)
	f.capturer.block = make(chan struct{})
	f.capturer.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := sess.Export(context.Background(), &bytes.Buffer{})
		done <- err
	}()
	<-f.capturer.started

	if _, err := sess.Export(context.Background(), &bytes.Buffer{}); !errors.Is(err, ErrExportInProgress) {
		t.Errorf("concurrent Export() error = %v, want ErrExportInProgress", err)
	}
	// Edits stay available while an export runs.
	if err := sess.SetTitle("Fraise mara"); err != nil {
		t.Errorf("SetTitle() during export: %v", err)
	}

	close(f.capturer.block)
	if err := <-done; err != nil {
		t.Fatalf("first Export() error = %v", err)
	}
	f.capturer.started = nil
	f.capturer.block = nil
	if _, err := sess.Export(context.Background(), &bytes.Buffer{}); err != nil {
		t.Errorf("Export() after completion error = %v", err)
	}
}

func TestExport_ErrorWrapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(*testFixture)
		wantErr error
	}{
		{"capture failure", func(f *testFixture) { f.capturer.err = errors.New("boom") }, ErrCapture},
		{"browser failure kept", func(f *testFixture) { f.capturer.err = ErrBrowserConnect }, ErrBrowserConnect},
		{"assemble failure", func(f *testFixture) { f.assembler.err = errors.New("boom") }, ErrAssemble},
		{"context canceled", func(f *testFixture) { f.capturer.err = context.Canceled }, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, sess, _ := newSession(t)
			tt.setup(f)
			var buf bytes.Buffer
			if _, err := sess.Export(context.Background(), &buf); !errors.Is(err, tt.wantErr) {
				t.Errorf("Export() error = %v, want %v", err, tt.wantErr)
			}
			if buf.Len() != 0 {
				t.Error("nothing should be written on failure")
			}
		})
	}
}

func TestExport_RecoloredBadgeIsEmbedded(t *testing.T) {
	t.Parallel()

	f, sess, _ := newSession(t, "bio")
	f.images.svgs["https://badges.test/bio.svg"] = badgeSVG
	// Color set without ever fetching the palette.
	if err := sess.SetBadgeColor("bio", 1, "#0000FF"); err != nil {
		t.Fatal(err)
	}

	if _, err := sess.Export(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.capturer.html))
	if err != nil {
		t.Fatal(err)
	}
	src := doc.Find("img.badge-instance").AttrOr("src", "")
	if !strings.HasPrefix(src, "data:image/svg+xml;base64,") {
		t.Errorf("badge src = %.60q, want recolored data URI", src)
	}
}

func TestExport_CloneStyles(t *testing.T) {
	t.Parallel()

	f, sess, _ := newSession(t, "bio")
	if err := sess.SetStyles(StyleOverrides{
		"accentColor":   "#112233",
		"headerColor":   "#445566",
		"h1Weight":      "700",
		"sectionMargin": "8",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Export(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.capturer.html))
	if err != nil {
		t.Fatal(err)
	}
	style := func(sel string) string {
		return doc.Find(sel).First().AttrOr("style", "")
	}

	tests := []struct {
		selector string
		want     []string
	}{
		{"#pdfPreview", []string{"width:559px", "max-width:559px", "height:auto", "border-radius:0", "background:#F6E2BE", "flex-direction:column"}},
		{".header-orange-band", []string{"background:#445566"}},
		{".header-content", []string{"padding:10px 20px", "min-height:90px"}},
		{".header-content h1", []string{"font-weight:700", "color:white"}},
		{".badge-group", []string{"position:absolute", "gap:12px"}},
		{".badge-instance", []string{"position:absolute", "object-fit:contain", "left:", "bottom:"}},
		{"h2", []string{"margin-top:12px"}},
		{"ul li strong", []string{"color:#112233"}},
		{".otera-footer", []string{"padding:36px 20px", "margin-top:auto"}},
	}
	for _, tt := range tests {
		got := style(tt.selector)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("%s style = %q, missing %q", tt.selector, got, w)
			}
		}
	}
	if got := doc.Find("h2").Eq(1).AttrOr("style", ""); !strings.Contains(got, "margin:8px 20px 6px 20px") {
		t.Errorf("second h2 style = %q", got)
	}
	if !strings.Contains(doc.Find("head").Text(), "ul li::before { background: #112233") {
		t.Error("bullet accent rule missing from head")
	}
}

func TestExportFile(t *testing.T) {
	t.Parallel()

	_, sess, _ := newSession(t)
	dir := filepath.Join(t.TempDir(), "out")

	res, err := sess.ExportFile(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExportFile() unexpected error: %v", err)
	}
	if res.Path != filepath.Join(dir, "Fiche_Fraise_1700000000000.pdf") {
		t.Errorf("Path = %q", res.Path)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("file is not a PDF")
	}
}

func TestPDFAssembler(t *testing.T) {
	t.Parallel()

	bitmap := &Bitmap{PNG: solidPNG(t, 112, 160), Width: 112, Height: 160}
	out, err := newPDFAssembler().Assemble(bitmap, PlaceOnA5(112, 160, 2))
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output starts with %q", out[:min(8, len(out))])
	}

	if _, err := newPDFAssembler().Assemble(&Bitmap{}, Placement{}); !errors.Is(err, ErrAssemble) {
		t.Errorf("Assemble(empty) error = %v, want ErrAssemble", err)
	}
	if _, err := newPDFAssembler().Assemble(&Bitmap{PNG: []byte("nope")}, Placement{}); !errors.Is(err, ErrAssemble) {
		t.Errorf("Assemble(garbage) error = %v, want ErrAssemble", err)
	}
}

func TestParseRGBA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		r, g, b int
		ok      bool
	}{
		{"#F6E2BE", 0xF6, 0xE2, 0xBE, true},
		{"#abc", 0xAA, 0xBB, 0xCC, true},
		{"F6E2BE", 0xF6, 0xE2, 0xBE, true},
		{"#F6E2", 0, 0, 0, false},
		{"#GGGGGG", 0, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseRGBA(tt.in)
		if ok != tt.ok {
			t.Errorf("parseRGBA(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (got.R != tt.r || got.G != tt.g || got.B != tt.b) {
			t.Errorf("parseRGBA(%q) = %d,%d,%d", tt.in, got.R, got.G, got.B)
		}
	}
}
