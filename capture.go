package productsheet

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-productsheet/internal/fileutil"
	"github.com/alnah/go-productsheet/internal/process"
)

// cardSelector is the element captured from the export document.
const cardSelector = "#pdfPreview"

// rodCapturer implements Capturer with headless Chrome via go-rod.
// Rod downloads Chromium on first run if none is found.
type rodCapturer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

var _ Capturer = (*rodCapturer)(nil)

func newRodCapturer(timeout time.Duration) *rodCapturer {
	return &rodCapturer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (c *rodCapturer) ensureBrowser() error {
	if c.browser != nil {
		return nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// Chrome's sandbox needs user namespaces that CI runners and most
	// containers do not grant.
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.launcher = l
	c.browser = browser
	return nil
}

// Close releases the browser and its child processes.
func (c *rodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		if pid := c.launcher.PID(); pid > 0 {
			_ = process.KillTree(pid) // launcher.Kill below covers failures
		}
		c.launcher.Kill()
		c.launcher = nil
	}
	return err
}

// Capture loads html from a temporary file, sizes the viewport to the card
// and screenshots the card element as PNG.
func (c *rodCapturer) Capture(ctx context.Context, html string, opts CaptureOptions) (*Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	defer cleanup()

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(timeout)

	width := opts.Width
	if width <= 0 {
		width = CardWidthPx
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	if err := setViewport(page, width, 800, scale); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if rgba, ok := parseRGBA(opts.BackgroundColor); ok {
		if err := (proto.EmulationSetDefaultBackgroundColorOverride{Color: rgba}).Call(page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCapture, err)
		}
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	el, err := page.Element(cardSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", ErrCapture, cardSelector, err)
	}

	height := opts.Height
	if height <= 0 {
		obj, err := el.Eval(`() => Math.ceil(this.getBoundingClientRect().bottom + window.scrollY)`)
		if err != nil {
			return nil, fmt.Errorf("%w: measuring card: %v", ErrCapture, err)
		}
		height = obj.Value.Int()
	}
	// Element screenshots are cropped from the viewport, so it must hold
	// the whole card.
	if err := setViewport(page, width, max(height, 1), scale); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding screenshot: %v", ErrCapture, err)
	}
	return &Bitmap{PNG: data, Width: cfg.Width, Height: cfg.Height}, nil
}

func setViewport(page *rod.Page, width, height int, scale float64) error {
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
	})
}

// parseRGBA converts #RGB or #RRGGBB to an opaque DOM color.
func parseRGBA(hex string) (*proto.DOMRGBA, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, false
	}
	a := 1.0
	return &proto.DOMRGBA{
		R: int(v >> 16 & 0xFF),
		G: int(v >> 8 & 0xFF),
		B: int(v & 0xFF),
		A: &a,
	}, true
}
