package productsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/content"
	"github.com/alnah/go-productsheet/internal/render"
	"github.com/alnah/go-productsheet/internal/store"
)

// keyAll lists every key a session persists.
var keyAll = []string{
	store.KeyContent,
	store.KeyProductName,
	store.KeyBadgeNames,
	store.KeyBadgeLayouts,
	store.KeyStyles,
}

// Session is one product sheet being edited. Every mutation is persisted to
// the store and re-renders the preview before returning.
type Session struct {
	svc         *Service
	st          store.Store
	cacheBuster string

	mu          sync.Mutex
	productName string
	doc         *content.Document
	badges      []string
	book        *badge.Book
	drag        *badge.Drag
	styles      StyleOverrides
	svgs        map[string]string // badge markup by name, fetched for recoloring
	preview     string

	exporting sync.Mutex
}

func (s *Service) newSession(st store.Store, productName string, doc *content.Document) *Session {
	doc.EnsureLists()
	book := badge.NewBook(s.cfg.keying)
	return &Session{
		svc:         s,
		st:          st,
		cacheBuster: uuid.NewString(),
		productName: productName,
		doc:         doc,
		badges:      []string{},
		book:        book,
		drag:        badge.NewDrag(book),
		styles:      s.cfg.styles.Clone(),
		svgs:        make(map[string]string),
	}
}

// ProductName returns the name the sheet was generated for.
func (s *Session) ProductName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productName
}

// Document returns a copy of the current document.
func (s *Session) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Preview returns the rendered preview markup.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// BadgeNames returns the selected badges in display order.
func (s *Session) BadgeNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.badges...)
}

// Styles returns a copy of the active style overrides.
func (s *Session) Styles() StyleOverrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styles.Clone()
}

// Layout returns the layout of a selected badge.
func (s *Session) Layout(name string) (BadgeLayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, err := s.slotLocked(name)
	if err != nil {
		return BadgeLayout{}, err
	}
	return s.book.Layout(slot, name), nil
}

// End clears everything the session stored.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Clear(s.st)
}

// ---------------------------------------------------------------------------
// Content edits
// ---------------------------------------------------------------------------

// SetTitle replaces the sheet title.
func (s *Session) SetTitle(title string) error {
	return s.edit(func(d *content.Document) error {
		d.Title = strings.TrimSpace(title)
		return nil
	})
}

// SetSlogan replaces the slogan.
func (s *Session) SetSlogan(slogan string) error {
	return s.edit(func(d *content.Document) error {
		d.Slogan = strings.TrimSpace(slogan)
		return nil
	})
}

// AddFeature appends f with its label and description trimmed.
func (s *Session) AddFeature(f Feature) error {
	return s.edit(func(d *content.Document) error {
		d.Features = append(d.Features, trimFeature(f))
		return nil
	})
}

// UpdateFeature replaces feature i. It fails with ErrOutOfRange for a bad index.
func (s *Session) UpdateFeature(i int, f Feature) error {
	return s.edit(func(d *content.Document) error {
		if err := checkIndex(i, len(d.Features)); err != nil {
			return err
		}
		d.Features[i] = trimFeature(f)
		return nil
	})
}

// RemoveFeature deletes feature i.
func (s *Session) RemoveFeature(i int) error {
	return s.edit(func(d *content.Document) error {
		if err := checkIndex(i, len(d.Features)); err != nil {
			return err
		}
		d.Features = append(d.Features[:i], d.Features[i+1:]...)
		return nil
	})
}

// AddConsumptionIdea appends a consumption suggestion.
func (s *Session) AddConsumptionIdea(idea string) error {
	return s.edit(func(d *content.Document) error {
		d.ConsumptionIdeas = append(d.ConsumptionIdeas, strings.TrimSpace(idea))
		return nil
	})
}

// UpdateConsumptionIdea replaces suggestion i.
func (s *Session) UpdateConsumptionIdea(i int, idea string) error {
	return s.edit(func(d *content.Document) error {
		if err := checkIndex(i, len(d.ConsumptionIdeas)); err != nil {
			return err
		}
		d.ConsumptionIdeas[i] = strings.TrimSpace(idea)
		return nil
	})
}

// RemoveConsumptionIdea deletes suggestion i.
func (s *Session) RemoveConsumptionIdea(i int) error {
	return s.edit(func(d *content.Document) error {
		if err := checkIndex(i, len(d.ConsumptionIdeas)); err != nil {
			return err
		}
		d.ConsumptionIdeas = append(d.ConsumptionIdeas[:i], d.ConsumptionIdeas[i+1:]...)
		return nil
	})
}

// AddRecipe appends r. A recipe without a kind is sweet.
func (s *Session) AddRecipe(r Recipe) error {
	return s.edit(func(d *content.Document) error {
		d.Recipes = append(d.Recipes, normalizeRecipe(r))
		return nil
	})
}

// UpdateRecipe replaces recipe i; a recipe without a kind is sweet.
func (s *Session) UpdateRecipe(i int, r Recipe) error {
	return s.edit(func(d *content.Document) error {
		if err := checkIndex(i, len(d.Recipes)); err != nil {
			return err
		}
		d.Recipes[i] = normalizeRecipe(r)
		return nil
	})
}

// RemoveRecipe deletes recipe i.
func (s *Session) RemoveRecipe(i int) error {
	return s.edit(func(d *content.Document) error {
		if err := checkIndex(i, len(d.Recipes)); err != nil {
			return err
		}
		d.Recipes = append(d.Recipes[:i], d.Recipes[i+1:]...)
		return nil
	})
}

// ReplaceDocument swaps in doc wholesale. The badge selection is kept.
func (s *Session) ReplaceDocument(doc *Document) error {
	if doc == nil {
		return ErrMissingContent
	}
	return s.edit(func(d *content.Document) error {
		next := doc.Clone()
		next.BadgeNames = d.BadgeNames
		*d = *next
		return nil
	})
}

func (s *Session) edit(fn func(*content.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	s.doc.EnsureLists()
	return s.commitLocked(store.KeyContent)
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (have %d)", ErrOutOfRange, i, n)
	}
	return nil
}

func trimFeature(f Feature) Feature {
	return Feature{Label: strings.TrimSpace(f.Label), Description: strings.TrimSpace(f.Description)}
}

func normalizeRecipe(r Recipe) Recipe {
	if r.Kind == "" {
		r.Kind = content.Sweet
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Ingredients = strings.TrimSpace(r.Ingredients)
	r.Tip = strings.TrimSpace(r.Tip)
	return r
}

// ---------------------------------------------------------------------------
// Badges
// ---------------------------------------------------------------------------

// SetBadges replaces the selection. Blank and repeated names are dropped;
// layouts of deselected badges are discarded.
func (s *Session) SetBadges(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBadgesLocked(names)
	return s.commitLocked(store.KeyContent, store.KeyBadgeNames, store.KeyBadgeLayouts)
}

// AddBadge appends name to the selection if absent.
func (s *Session) AddBadge(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBadgesLocked(append(append([]string{}, s.badges...), name))
	return s.commitLocked(store.KeyContent, store.KeyBadgeNames, store.KeyBadgeLayouts)
}

// RemoveBadge deselects name.
func (s *Session) RemoveBadge(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.slotLocked(name); err != nil {
		return err
	}
	kept := make([]string, 0, len(s.badges))
	for _, n := range s.badges {
		if n != name {
			kept = append(kept, n)
		}
	}
	s.setBadgesLocked(kept)
	return s.commitLocked(store.KeyContent, store.KeyBadgeNames, store.KeyBadgeLayouts)
}

// SetBadgeHeight resizes a badge. Heights are clamped to the control range.
func (s *Session) SetBadgeHeight(name string, heightPx float64) error {
	return s.editBadge(name, func(slot int) error {
		s.book.SetHeight(slot, name, heightPx)
		return nil
	})
}

// SetBadgePosition moves a badge; percentages are clamped to [0,100].
func (s *Session) SetBadgePosition(name string, xPercent, yPercent float64) error {
	return s.editBadge(name, func(slot int) error {
		s.book.SetPosition(slot, name, xPercent, yPercent)
		return nil
	})
}

// SetBadgeColor overrides the colorSlot-th distinct color of a badge.
func (s *Session) SetBadgeColor(name string, colorSlot int, hex string) error {
	return s.editBadge(name, func(slot int) error {
		return s.book.SetColor(slot, name, colorSlot, hex)
	})
}

// ResetBadgeColors restores a badge's original colors.
func (s *Session) ResetBadgeColors(name string) error {
	return s.editBadge(name, func(slot int) error {
		s.book.ResetColors(slot, name)
		return nil
	})
}

// StartDrag begins dragging a badge whose rendered box is box, grabbed at
// pointer.
func (s *Session) StartDrag(name string, pointer badge.Point, box badge.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, err := s.slotLocked(name)
	if err != nil {
		return err
	}
	s.drag.Start(slot, name, pointer, box)
	return nil
}

// DragTo moves the dragged badge and persists its position. It reports
// false when no drag is active.
func (s *Session) DragTo(pointer badge.Point, container badge.Rect, badgeWidth, badgeHeight float64) (BadgeLayout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.drag.Move(pointer, container, badgeWidth, badgeHeight)
	if !ok {
		return BadgeLayout{}, false, nil
	}
	return l, true, s.commitLocked(store.KeyBadgeLayouts)
}

// EndDrag finishes the current drag.
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.End()
}

// BadgePalette returns the distinct colors of a badge image in document
// order; color slots passed to SetBadgeColor index into it. The markup is
// fetched once per session.
func (s *Session) BadgePalette(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	if _, err := s.slotLocked(name); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	svg, ok := s.svgs[name]
	s.mu.Unlock()

	if !ok {
		var err error
		if svg, err = s.fetchSVG(ctx, name); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.svgs[name] = svg
		err = s.renderLocked()
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return badge.ExtractColors(svg), nil
}

func (s *Session) fetchSVG(ctx context.Context, name string) (string, error) {
	src := s.badgeURL(name)
	if src == "" {
		return "", ErrNoWebhook
	}
	body, _, err := s.svc.images.Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	if !badge.IsSVG(body) {
		return "", fmt.Errorf("%w: %s", ErrBadgeNotSVG, name)
	}
	return string(body), nil
}

func (s *Session) badgeURL(name string) string {
	if s.svc.webhook == nil {
		return ""
	}
	return s.svc.webhook.BadgeImageURL(name, s.cacheBuster)
}

func (s *Session) editBadge(name string, fn func(slot int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, err := s.slotLocked(name)
	if err != nil {
		return err
	}
	if err := fn(slot); err != nil {
		return err
	}
	return s.commitLocked(store.KeyBadgeLayouts)
}

func (s *Session) slotLocked(name string) (int, error) {
	for i, n := range s.badges {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownBadge, name)
}

func (s *Session) setBadgesLocked(names []string) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	s.badges = out
	s.doc.BadgeNames = append([]string{}, out...)
	s.book.Retain(out)
	s.book.Ensure(out)
	for n := range s.svgs {
		if !seen[n] {
			delete(s.svgs, n)
		}
	}
}

// badgeRefsLocked resolves each selected badge to its image and layout.
// Recolored badges whose markup is known are embedded directly.
func (s *Session) badgeRefsLocked() []render.BadgeRef {
	refs := make([]render.BadgeRef, 0, len(s.badges))
	for slot, name := range s.badges {
		l := s.book.Layout(slot, name)
		src := s.badgeURL(name)
		if svg, ok := s.svgs[name]; ok && len(l.Colors) > 0 {
			src = badge.DataURI(badge.ApplyColors(svg, l.Colors))
		}
		refs = append(refs, render.BadgeRef{Slot: slot, Name: name, Src: src, Layout: &l})
	}
	return refs
}

// ---------------------------------------------------------------------------
// Styles
// ---------------------------------------------------------------------------

// SetStyle sets one style knob.
func (s *Session) SetStyle(name, value string) error {
	norm, err := render.NormalizeStyle(name, value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles[name] = norm
	return s.commitLocked(store.KeyStyles)
}

// SetStyles replaces every override with styles.
func (s *Session) SetStyles(styles StyleOverrides) error {
	valid, err := styles.Validate()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles = valid
	return s.commitLocked(store.KeyStyles)
}

// ResetStyles restores the service's default styles.
func (s *Session) ResetStyles() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles = s.svc.cfg.styles.Clone()
	return s.commitLocked(store.KeyStyles)
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// commitLocked re-renders, then writes the given keys.
func (s *Session) commitLocked(keys ...string) error {
	if err := s.renderLocked(); err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.persistLocked(k); err != nil {
			return fmt.Errorf("saving %s: %w", k, err)
		}
	}
	return nil
}

func (s *Session) renderLocked() error {
	out, err := s.svc.renderer.Render(s.doc, s.badgeRefsLocked(), s.styles)
	if err != nil {
		return err
	}
	s.preview = out
	return nil
}

func (s *Session) persistLocked(key string) error {
	switch key {
	case store.KeyContent:
		return s.setJSON(key, s.doc)
	case store.KeyProductName:
		return s.st.Set(key, s.productName)
	case store.KeyBadgeNames:
		if err := s.setJSON(key, s.badges); err != nil {
			return err
		}
		if len(s.badges) == 0 {
			return s.st.Delete(store.KeyBadgeName)
		}
		return s.st.Set(store.KeyBadgeName, s.badges[0])
	case store.KeyBadgeLayouts:
		return s.setJSON(key, s.book)
	case store.KeyStyles:
		return s.setJSON(key, s.styles)
	}
	return nil
}

func (s *Session) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.st.Set(key, string(data))
}

// restoreLocked reads the side documents of a stored session. Unreadable
// entries are logged and skipped.
func (s *Session) restoreLocked() {
	log := s.svc.log

	var names []string
	if raw, ok, _ := s.st.Get(store.KeyBadgeNames); ok {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			log.Warn("ignoring stored badge names", zap.Error(err))
		}
	}
	if len(names) == 0 {
		if legacy, ok, _ := s.st.Get(store.KeyBadgeName); ok && legacy != "" {
			names = []string{legacy}
		}
	}

	if raw, ok, _ := s.st.Get(store.KeyBadgeLayouts); ok {
		if err := json.Unmarshal([]byte(raw), s.book); err != nil {
			log.Warn("ignoring stored badge layouts", zap.Error(err))
		}
	}
	s.setBadgesLocked(names)

	if raw, ok, _ := s.st.Get(store.KeyStyles); ok {
		var stored StyleOverrides
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			log.Warn("ignoring stored styles", zap.Error(err))
			return
		}
		valid, err := stored.Validate()
		if err != nil {
			log.Warn("ignoring stored styles", zap.Error(err))
			return
		}
		s.styles = valid
	}
}
