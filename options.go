package productsheet

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/assets"
	"github.com/alnah/go-productsheet/internal/badge"
)

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout    time.Duration
	device     string
	scale      int // 0 = derived from device
	background string
	styles     StyleOverrides
	keying     badge.Keying
	loader     assets.AssetLoader
}

// defaultTimeout bounds one capture when the context has no deadline.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the capture timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("productsheet: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l == nil {
			l = zap.NewNop()
		}
		s.log = l
	}
}

// WithWebhook sets the generation workflow client.
func WithWebhook(w Webhook) Option {
	return func(s *Service) {
		s.webhook = w
	}
}

// WithCapturer replaces the headless Chrome capturer.
func WithCapturer(c Capturer) Option {
	return func(s *Service) {
		s.capturer = c
	}
}

// WithAssembler replaces the PDF assembler.
func WithAssembler(a Assembler) Option {
	return func(s *Service) {
		s.assembler = a
	}
}

// WithImageSource replaces the image fetcher used for badges and inlining.
func WithImageSource(src ImageSource) Option {
	return func(s *Service) {
		s.images = src
	}
}

// WithAssetLoader renders with templates and styles from loader.
func WithAssetLoader(loader assets.AssetLoader) Option {
	if loader == nil {
		panic("productsheet: WithAssetLoader loader must not be nil")
	}
	return func(s *Service) {
		s.cfg.loader = loader
	}
}

// WithClock sets the time source used for export filenames.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("productsheet: WithClock func must not be nil")
	}
	return func(s *Service) {
		s.now = now
	}
}

// WithDevice selects the capture scale by device: auto, mobile or desktop.
// Panics on any other value.
func WithDevice(device string) Option {
	d := strings.ToLower(device)
	switch d {
	case DeviceAuto, DeviceMobile, DeviceDesktop:
	default:
		panic(fmt.Sprintf("productsheet: WithDevice unknown device %q", device))
	}
	return func(s *Service) {
		s.cfg.device = d
	}
}

// WithScale fixes the capture scale, overriding device detection.
// Panics unless 1 <= n <= MaxScale.
func WithScale(n int) Option {
	if n < 1 || n > MaxScale {
		panic(fmt.Sprintf("productsheet: WithScale must be between 1 and %d", MaxScale))
	}
	return func(s *Service) {
		s.cfg.scale = n
	}
}

// WithBackground sets the capture background color.
func WithBackground(hex string) Option {
	return func(s *Service) {
		if hex != "" {
			s.cfg.background = hex
		}
	}
}

// WithDefaultStyles sets the style overrides new sessions start from.
// Invalid entries are rejected when the service is built.
func WithDefaultStyles(styles StyleOverrides) Option {
	return func(s *Service) {
		s.cfg.styles = styles.Clone()
	}
}

// WithSlotKeying keys badge layouts by selection position instead of by
// badge name. Reordering the selection then swaps customizations.
func WithSlotKeying() Option {
	return func(s *Service) {
		s.cfg.keying = badge.KeyBySlot
	}
}
