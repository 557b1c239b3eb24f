package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"sync"

	"github.com/alnah/go-productsheet/internal/assets"
	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/content"
)

// Fallbacks used when the document leaves a field empty.
const (
	DefaultHeading     = "Produit"
	DefaultRecipeName  = "Recette"
	DefaultFeatureType = "Caractéristique"
)

// Recipe markers.
const (
	SweetMarker  = "🍰"
	SavoryMarker = "🍽"
)

// BadgeRef is a badge image placed on the card. Slot is its position in the
// selection, which decides the primary/extra class and the default layout.
type BadgeRef struct {
	Slot   int
	Name   string
	Src    string
	Alt    string
	Layout *badge.Layout // nil renders the badge without inline positioning
}

// Renderer renders documents with a parsed card template and base stylesheet.
type Renderer struct {
	tmpl    *template.Template
	baseCSS string
}

// NewRenderer loads the card template and stylesheet from loader.
func NewRenderer(loader assets.AssetLoader) (*Renderer, error) {
	tmplContent, err := loader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	css, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	tmpl, err := template.New("card").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing card template: %v", ErrRender, err)
	}
	return &Renderer{tmpl: tmpl, baseCSS: css}, nil
}

var defaultRenderer = sync.OnceValues(func() (*Renderer, error) {
	return NewRenderer(assets.NewEmbeddedLoader())
})

// Render renders doc with the built-in card assets.
func Render(doc *content.Document, badges []BadgeRef, styles StyleOverrides) (string, error) {
	r, err := defaultRenderer()
	if err != nil {
		return "", err
	}
	return r.Render(doc, badges, styles)
}

type cardView struct {
	BaseCSS          template.CSS
	Title            string
	Slogan           string
	Badges           []badgeView
	Features         []content.Feature
	ConsumptionIdeas []string
	Recipes          []recipeView
}

type badgeView struct {
	Slot  int
	Name  string
	Src   any // template.URL once the scheme is known to be safe
	Alt   string
	Class string
	Style template.CSS
}

type recipeView struct {
	Marker      string
	Kind        string
	Name        string
	Ingredients string
	Tip         string
}

// Render produces the complete card document. A nil doc renders the empty
// card with every placeholder.
func (r *Renderer) Render(doc *content.Document, badges []BadgeRef, styles StyleOverrides) (string, error) {
	if doc == nil {
		doc = &content.Document{}
	}
	css, err := StyleCSS(styles)
	if err != nil {
		return "", err
	}

	view := cardView{
		BaseCSS:          template.CSS(r.baseCSS), // #nosec G203 -- trusted asset
		Title:            orDefault(doc.Title, DefaultHeading),
		Slogan:           orDefault(doc.Slogan, content.DefaultSlogan),
		Badges:           badgeViews(badges),
		Features:         featureViews(doc.Features),
		ConsumptionIdeas: nonBlank(doc.ConsumptionIdeas),
		Recipes:          recipeViews(doc.Recipes),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return InjectCSS(buf.String(), css), nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// featureViews drops features without a description.
func featureViews(features []content.Feature) []content.Feature {
	out := make([]content.Feature, 0, len(features))
	for _, f := range features {
		if strings.TrimSpace(f.Description) == "" {
			continue
		}
		out = append(out, content.Feature{
			Label:       orDefault(f.Label, DefaultFeatureType),
			Description: f.Description,
		})
	}
	return out
}

func recipeViews(recipes []content.Recipe) []recipeView {
	out := make([]recipeView, 0, len(recipes))
	for _, rc := range recipes {
		marker := SweetMarker
		if rc.Kind.IsSavory() {
			marker = SavoryMarker
		}
		out = append(out, recipeView{
			Marker:      marker,
			Kind:        string(rc.Kind),
			Name:        orDefault(rc.Name, DefaultRecipeName),
			Ingredients: rc.Ingredients,
			Tip:         rc.Tip,
		})
	}
	return out
}

func badgeViews(badges []BadgeRef) []badgeView {
	out := make([]badgeView, 0, len(badges))
	for _, b := range badges {
		class := "badge-instance extra-badge"
		if b.Slot == 0 {
			class = "badge-instance primary-badge"
		}
		alt := b.Alt
		if alt == "" {
			alt = b.Name
		}
		v := badgeView{
			Slot:  b.Slot,
			Name:  b.Name,
			Src:   b.Src,
			Alt:   alt,
			Class: class,
		}
		if SafeImageSource(b.Src) {
			v.Src = template.URL(b.Src) // #nosec G203 -- scheme checked
		}
		if b.Layout != nil {
			v.Style = PositionCSS(*b.Layout)
		}
		out = append(out, v)
	}
	return out
}

// SafeImageSource reports whether src may be emitted verbatim as an image
// source: http(s) URLs and data:image URIs.
func SafeImageSource(src string) bool {
	lower := strings.ToLower(strings.TrimSpace(src))
	return strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "data:image/")
}

// PositionCSS is the inline style that places a badge on the card.
func PositionCSS(l badge.Layout) template.CSS {
	return template.CSS("left:" + formatNumber(l.XPercent) + "%;" +
		"bottom:" + formatNumber(l.YPercent) + "%;" +
		"height:" + formatNumber(l.HeightPx) + "px;" +
		"width:auto;max-width:" + formatNumber(badge.MaxWidth) + "px;" +
		"z-index:" + strconv.Itoa(badge.ZIndex)) // #nosec G203 -- numeric only
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
