package productsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/content"
	"github.com/alnah/go-productsheet/internal/fileutil"
	"github.com/alnah/go-productsheet/internal/render"
)

// ExportOption tunes one export.
type ExportOption func(*exportConfig)

type exportConfig struct {
	scale     int
	userAgent string
}

// WithExportScale fixes the capture scale for this export only.
// Panics unless 1 <= n <= MaxScale.
func WithExportScale(n int) ExportOption {
	if n < 1 || n > MaxScale {
		panic(fmt.Sprintf("productsheet: WithExportScale must be between 1 and %d", MaxScale))
	}
	return func(c *exportConfig) {
		c.scale = n
	}
}

// WithUserAgent lets device detection pick the scale from the requesting
// client's user agent.
func WithUserAgent(ua string) ExportOption {
	return func(c *exportConfig) {
		c.userAgent = ua
	}
}

// ExportResult describes a finished export.
type ExportResult struct {
	Filename  string
	Path      string // set by ExportFile
	Size      int
	Scale     int
	Placement Placement
	Duration  time.Duration
}

// Export renders the sheet to a single A5 page and writes the PDF to w.
// Only one export per session runs at a time; a concurrent call fails with
// ErrExportInProgress.
func (s *Session) Export(ctx context.Context, w io.Writer, opts ...ExportOption) (*ExportResult, error) {
	return s.export(ctx, opts, func(res *ExportResult, pdf []byte) error {
		_, err := w.Write(pdf)
		return err
	})
}

// ExportFile exports into dir under the generated filename. The file is
// written atomically.
func (s *Session) ExportFile(ctx context.Context, dir string, opts ...ExportOption) (*ExportResult, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return s.export(ctx, opts, func(res *ExportResult, pdf []byte) error {
		res.Path = filepath.Join(dir, res.Filename)
		return fileutil.WriteFileAtomic(res.Path, 0o644, func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		})
	})
}

// exportSnapshot is the session state an export works from.
type exportSnapshot struct {
	productName string
	doc         *content.Document
	names       []string
	layouts     []badge.Layout
	svgs        map[string]string
	styles      StyleOverrides
}

func (s *Session) export(ctx context.Context, opts []ExportOption, write func(*ExportResult, []byte) error) (res *ExportResult, err error) {
	if !s.exporting.TryLock() {
		return nil, ErrExportInProgress
	}
	defer s.exporting.Unlock()

	log := s.svc.log
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during export", zap.Any("panic", r))
			res, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	scale := s.exportScale(cfg)

	start := time.Now()
	snap := s.snapshot()

	if err := s.loadRecolored(ctx, snap); err != nil {
		return nil, err
	}

	refs := make([]render.BadgeRef, 0, len(snap.names))
	for slot, name := range snap.names {
		l := snap.layouts[slot]
		src := s.badgeURL(name)
		if svg, ok := snap.svgs[name]; ok && len(l.Colors) > 0 {
			src = badge.DataURI(badge.ApplyColors(svg, l.Colors))
		}
		refs = append(refs, render.BadgeRef{Slot: slot, Name: name, Src: src, Layout: &l})
	}

	page, err := s.svc.renderer.Render(snap.doc, refs, snap.styles)
	if err != nil {
		return nil, wrapIfNot(err, ErrRender)
	}
	if page, err = s.svc.images.InlineHTML(ctx, page); err != nil {
		return nil, err
	}
	page, err = buildExportClone(page, snap.styles, s.svc.cfg.background)
	if err != nil {
		return nil, err
	}
	rendered := time.Now()

	bitmap, err := s.svc.capturer.Capture(ctx, page, CaptureOptions{
		Scale:           float64(scale),
		Width:           CardWidthPx,
		BackgroundColor: s.svc.cfg.background,
	})
	if err != nil {
		return nil, wrapIfNot(err, ErrCapture, ErrBrowserConnect, ErrPageLoad)
	}
	captured := time.Now()

	placement := PlaceOnA5(bitmap.Width, bitmap.Height, float64(scale))
	pdf, err := s.svc.assembler.Assemble(bitmap, placement)
	if err != nil {
		return nil, wrapIfNot(err, ErrAssemble)
	}

	res = &ExportResult{
		Filename:  Filename(snap.productName, s.svc.now()),
		Size:      len(pdf),
		Scale:     scale,
		Placement: placement,
	}
	if err := write(res, pdf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	res.Duration = time.Since(start)

	log.Info("sheet exported",
		zap.String("file", res.Filename),
		zap.Int("scale", scale),
		zap.Int("bytes", res.Size),
		zap.Duration("render", rendered.Sub(start)),
		zap.Duration("capture", captured.Sub(rendered)),
		zap.Duration("total", res.Duration))
	return res, nil
}

// exportScale picks, in order: the per-export scale, the service's fixed
// scale, then the device rule.
func (s *Session) exportScale(cfg exportConfig) int {
	if cfg.scale > 0 {
		return cfg.scale
	}
	if s.svc.cfg.scale > 0 {
		return s.svc.cfg.scale
	}
	return ScaleFor(s.svc.cfg.device, cfg.userAgent)
}

func (s *Session) snapshot() exportSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := exportSnapshot{
		productName: s.productName,
		doc:         s.doc.Clone(),
		names:       append([]string{}, s.badges...),
		layouts:     make([]badge.Layout, len(s.badges)),
		svgs:        make(map[string]string, len(s.svgs)),
		styles:      s.styles.Clone(),
	}
	for slot, name := range s.badges {
		snap.layouts[slot] = s.book.Layout(slot, name)
	}
	for k, v := range s.svgs {
		snap.svgs[k] = v
	}
	return snap
}

// loadRecolored fetches the markup of recolored badges not seen yet. A badge
// that cannot be fetched is exported with its original colors.
func (s *Session) loadRecolored(ctx context.Context, snap exportSnapshot) error {
	for slot, name := range snap.names {
		if len(snap.layouts[slot].Colors) == 0 {
			continue
		}
		if _, ok := snap.svgs[name]; ok {
			continue
		}
		svg, err := s.fetchSVG(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.svc.log.Warn("exporting badge without recolor",
				zap.String("badge", name), zap.Error(err))
			continue
		}
		snap.svgs[name] = svg
		s.mu.Lock()
		s.svgs[name] = svg
		s.mu.Unlock()
	}
	return nil
}

// wrapIfNot wraps err with sentinel unless it already matches one of the
// accepted sentinels or is a context error.
func wrapIfNot(err, sentinel error, accepted ...error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, a := range append([]error{sentinel}, accepted...) {
		if errors.Is(err, a) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
