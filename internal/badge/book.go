package badge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Keying selects how layouts are associated with badges.
type Keying int

const (
	// KeyByName keys layouts by badge name, so reordering the selection
	// keeps each badge's customization.
	KeyByName Keying = iota
	// KeyBySlot keys layouts by position in the selection.
	KeyBySlot
)

// ErrInvalidColor is returned for a color that is not #RRGGBB or #RGB.
var ErrInvalidColor = errors.New("invalid badge color")

// Book stores badge layouts for one editing session. A missing entry always
// resolves to the default for its slot. Book is not safe for concurrent use.
type Book struct {
	keying  Keying
	layouts map[string]Layout
}

// NewBook creates an empty Book.
func NewBook(keying Keying) *Book {
	return &Book{keying: keying, layouts: make(map[string]Layout)}
}

// Keying returns the book's keying mode.
func (b *Book) Keying() Keying {
	return b.keying
}

func (b *Book) key(slot int, name string) string {
	if b.keying == KeyBySlot || name == "" {
		return strconv.Itoa(slot)
	}
	return name
}

// Layout returns the stored layout for the badge, or its default.
func (b *Book) Layout(slot int, name string) Layout {
	if l, ok := b.layouts[b.key(slot, name)]; ok {
		return l.clone()
	}
	return DefaultLayout(slot)
}

// Has reports whether a layout is stored for the badge.
func (b *Book) Has(slot int, name string) bool {
	_, ok := b.layouts[b.key(slot, name)]
	return ok
}

// Ensure stores the default layout for every selected badge lacking one.
func (b *Book) Ensure(names []string) {
	for slot, name := range names {
		k := b.key(slot, name)
		if _, ok := b.layouts[k]; !ok {
			b.layouts[k] = DefaultLayout(slot)
		}
	}
}

// Set stores l for the badge, clamping the position to [0,100].
func (b *Book) Set(slot int, name string, l Layout) {
	l = l.clone()
	l.XPercent = clamp(l.XPercent, 0, 100)
	l.YPercent = clamp(l.YPercent, 0, 100)
	b.layouts[b.key(slot, name)] = l
}

// SetPosition moves the badge, keeping height and colors.
func (b *Book) SetPosition(slot int, name string, xPercent, yPercent float64) {
	l := b.Layout(slot, name)
	l.XPercent, l.YPercent = xPercent, yPercent
	b.Set(slot, name, l)
}

// SetHeight resizes the badge within [MinHeight, MaxHeight]. A zero height
// selects the slot default.
func (b *Book) SetHeight(slot int, name string, h float64) {
	l := b.Layout(slot, name)
	l.HeightPx = ClampHeight(h, DefaultLayout(slot).HeightPx)
	b.Set(slot, name, l)
}

// SetColor overrides one palette slot of the badge image.
func (b *Book) SetColor(slot int, name string, colorSlot int, hex string) error {
	norm, ok := NormalizeColor(hex)
	if !ok || colorSlot < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	l := b.Layout(slot, name)
	l.Colors[colorSlot] = norm
	b.Set(slot, name, l)
	return nil
}

// ResetColors drops every color override of the badge.
func (b *Book) ResetColors(slot int, name string) {
	l := b.Layout(slot, name)
	l.Colors = map[int]string{}
	b.Set(slot, name, l)
}

// Retain drops layouts of badges no longer selected.
func (b *Book) Retain(names []string) {
	keep := make(map[string]bool, len(names))
	for slot, name := range names {
		keep[b.key(slot, name)] = true
	}
	for k := range b.layouts {
		if !keep[k] {
			delete(b.layouts, k)
		}
	}
}

// Len returns the number of stored layouts.
func (b *Book) Len() int {
	return len(b.layouts)
}

// MarshalJSON encodes the stored layouts as an object keyed by badge key.
func (b *Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.layouts)
}

// UnmarshalJSON replaces the stored layouts. Entries are clamped on load.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw map[string]Layout
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.layouts = make(map[string]Layout, len(raw))
	for k, l := range raw {
		if l.Colors == nil {
			l.Colors = map[int]string{}
		}
		l.XPercent = clamp(l.XPercent, 0, 100)
		l.YPercent = clamp(l.YPercent, 0, 100)
		b.layouts[k] = l
	}
	return nil
}
