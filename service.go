package productsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/assets"
	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/content"
	"github.com/alnah/go-productsheet/internal/envelope"
	"github.com/alnah/go-productsheet/internal/inline"
	"github.com/alnah/go-productsheet/internal/render"
	"github.com/alnah/go-productsheet/internal/store"
)

var productNamePattern = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s'-]+$`)

// ValidateProductName trims name and checks it only holds letters
// (accented Latin included), spaces, apostrophes and hyphens.
func ValidateProductName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyProductName
	}
	if !productNamePattern.MatchString(name) {
		return "", ErrInvalidProductName
	}
	return name, nil
}

// Service generates product sheets and opens editing sessions on them.
// It is safe for concurrent use; each Session serializes its own edits.
type Service struct {
	cfg       serviceConfig
	log       *zap.Logger
	webhook   Webhook
	images    ImageSource
	capturer  Capturer
	assembler Assembler
	renderer  *render.Renderer
	now       func() time.Time
}

// New creates a Service. Without WithWebhook, only Load and Open
// work; Generate fails with ErrNoWebhook.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{
			timeout:    defaultTimeout,
			device:     DeviceAuto,
			background: DefaultBackground,
			styles:     StyleOverrides{},
			keying:     badge.KeyByName,
			loader:     assets.NewEmbeddedLoader(),
		},
		log: zap.NewNop(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	styles, err := s.cfg.styles.Validate()
	if err != nil {
		return nil, err
	}
	s.cfg.styles = styles

	if s.renderer, err = render.NewRenderer(s.cfg.loader); err != nil {
		return nil, err
	}

	if s.images == nil {
		s.images = inline.New(inline.WithLogger(s.log))
	}
	if s.assembler == nil {
		s.assembler = newPDFAssembler()
	}
	// Create capturer if not injected (e.g., by tests)
	if s.capturer == nil {
		s.capturer = newRodCapturer(s.cfg.timeout)
	}

	return s, nil
}

// Close releases the browser, if one was started.
func (s *Service) Close() error {
	if s.capturer != nil {
		return s.capturer.Close()
	}
	return nil
}

// Generate asks the webhook for a sheet about productName, validates the
// response and opens a session on it. Nothing is written to st unless the
// response carries usable content. badges preselects badge names; the first
// is also sent to the webhook.
func (s *Service) Generate(ctx context.Context, productName string, st store.Store, badges ...string) (sess *Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic during generation", zap.Any("panic", r))
			sess, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	name, err := ValidateProductName(productName)
	if err != nil {
		return nil, err
	}
	if s.webhook == nil {
		return nil, ErrNoWebhook
	}

	var first string
	if len(badges) > 0 {
		first = badges[0]
	}

	start := s.now()
	raw, err := s.webhook.Generate(ctx, name, first)
	if err != nil {
		return nil, err
	}

	payload := envelope.UnwrapContent(raw)
	s.log.Debug("webhook response unwrapped",
		zap.String("shape", string(payload.Shape)),
		zap.Duration("elapsed", s.now().Sub(start)))

	if !payload.Success() {
		msg := payload.Error()
		if msg == "" {
			msg = unknownError
		}
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
	}

	value, ok := payload.Content()
	if !ok {
		return nil, ErrMissingContent
	}
	doc, err := envelope.DecodeDocument(value, s.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingContent, err)
	}
	// Server-suggested badges are never kept.
	doc.BadgeNames = nil

	if err := store.Clear(st); err != nil {
		return nil, err
	}
	if err := st.Set(store.KeyDebugRaw, string(raw)); err != nil {
		return nil, err
	}

	sess = s.newSession(st, name, doc)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.setBadgesLocked(badges)
	if err := sess.commitLocked(keyAll...); err != nil {
		return nil, err
	}

	s.log.Info("sheet generated",
		zap.String("product", name),
		zap.Int("features", len(doc.Features)),
		zap.Int("recipes", len(doc.Recipes)))
	return sess, nil
}

// Load reopens the session stored in st. It fails with ErrNoSessionContent
// when the document or the product name is missing.
func (s *Service) Load(st store.Store) (*Session, error) {
	raw, okContent, err := st.Get(store.KeyContent)
	if err != nil {
		return nil, err
	}
	name, okName, err := st.Get(store.KeyProductName)
	if err != nil {
		return nil, err
	}
	if !okContent || !okName || strings.TrimSpace(raw) == "" {
		return nil, ErrNoSessionContent
	}

	var doc content.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSessionContent, err)
	}
	doc.EnsureLists()

	sess := s.newSession(st, name, &doc)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.restoreLocked()
	if err := sess.renderLocked(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Open starts a session on doc without calling the webhook, for content
// produced by the content parser or edited by hand.
func (s *Service) Open(st store.Store, productName string, doc *Document) (*Session, error) {
	name, err := ValidateProductName(productName)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrMissingContent
	}
	d := doc.Clone()
	d.BadgeNames = nil
	if err := store.Clear(st); err != nil {
		return nil, err
	}

	sess := s.newSession(st, name, d)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.setBadgesLocked(doc.BadgeNames)
	if err := sess.commitLocked(keyAll...); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListBadges returns the badge options offered by the webhook, or none.
func (s *Service) ListBadges(ctx context.Context) []BadgeOption {
	if s.webhook == nil {
		return []BadgeOption{}
	}
	return s.webhook.ListBadges(ctx)
}
