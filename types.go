package productsheet

import (
	"context"

	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/content"
	"github.com/alnah/go-productsheet/internal/envelope"
	"github.com/alnah/go-productsheet/internal/render"
)

// Content model re-exported for library users.
type (
	Document       = content.Document
	Feature        = content.Feature
	Recipe         = content.Recipe
	RecipeKind     = content.RecipeKind
	StyleOverrides = render.StyleOverrides
	BadgeLayout    = badge.Layout
	BadgeOption    = envelope.BadgeOption
)

// Recipe kinds.
const (
	Sweet  = content.Sweet
	Savory = content.Savory
)

// Bitmap is a captured PNG raster and its pixel size.
type Bitmap struct {
	PNG    []byte
	Width  int
	Height int
}

// CaptureOptions controls a capture. Width is the logical CSS width of the
// card; the bitmap is Width*Scale pixels wide. A zero Height captures the
// card's full content height.
type CaptureOptions struct {
	Scale           float64
	Width           int
	Height          int
	BackgroundColor string
}

// Placement is where a bitmap lands on the page, in millimeters.
type Placement struct {
	X, Y          float64
	Width, Height float64
}

// Capturer rasterizes the #pdfPreview element of an HTML document.
type Capturer interface {
	Capture(ctx context.Context, html string, opts CaptureOptions) (*Bitmap, error)
	Close() error
}

// Assembler encodes one bitmap onto a single A5 page.
type Assembler interface {
	Assemble(bitmap *Bitmap, placement Placement) ([]byte, error)
}

// Webhook is the remote generation workflow.
type Webhook interface {
	Generate(ctx context.Context, productName, badge string) ([]byte, error)
	ListBadges(ctx context.Context) []envelope.BadgeOption
	BadgeImageURL(name, cacheBuster string) string
}

// ImageSource fetches and embeds remote images.
type ImageSource interface {
	Fetch(ctx context.Context, ref string) ([]byte, string, error)
	InlineHTML(ctx context.Context, html string) (string, error)
}
