package render

import (
	"fmt"
	"regexp"
	"strings"
)

// StyleOverrides maps style knob names to CSS values, for example
// {"headerColor": "#E65B0C", "h1Size": "2rem"}. Values are stored in their
// normalized form (hex uppercased, units appended).
type StyleOverrides map[string]string

// Kind is the value class a knob accepts.
type Kind int

// Knob kinds.
const (
	KindColor  Kind = iota // #RGB or #RRGGBB
	KindRem                // 1.2 or 1.2rem
	KindWeight             // 100..900 by hundreds, normal, bold
	KindPx                 // 12 or 12px
)

// Knob describes one adjustable style property of the card.
type Knob struct {
	Name    string
	Kind    Kind
	Default string // applied by WithDefaults; empty means the stylesheet value
	rules   []knobRule
}

type knobRule struct {
	selector string
	property string
	format   string // %s is replaced by the value
}

// Knobs lists every style knob in emission order.
var Knobs = []Knob{
	{Name: "bgColor", Kind: KindColor, rules: []knobRule{{"#pdfPreview", "background", "%s"}}},
	{Name: "textColor", Kind: KindColor, rules: []knobRule{{"#pdfPreview", "color", "%s"}}},
	{Name: "headerColor", Kind: KindColor, rules: []knobRule{{"#pdfPreview .header-orange-band", "background", "%s"}}},
	{Name: "accentColor", Kind: KindColor, rules: []knobRule{
		{"#pdfPreview ul li strong, #pdfPreview .recipe strong, #pdfPreview .recipe p strong", "color", "%s"},
		{"#pdfPreview ul li::before", "background", "%s"},
		{"#pdfPreview .recipe", "border-left-color", "%s"},
	}},
	{Name: "h1Size", Kind: KindRem, rules: []knobRule{{"#pdfPreview .header-content h1", "font-size", "%s"}}},
	{Name: "h2Size", Kind: KindRem, rules: []knobRule{{"#pdfPreview h2", "font-size", "%s"}}},
	{Name: "textSize", Kind: KindRem, rules: []knobRule{{"#pdfPreview ul li, #pdfPreview .recipe p", "font-size", "%s"}}},
	{Name: "h1Weight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview .header-content h1", "font-weight", "%s"}}},
	{Name: "h2Weight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview h2", "font-weight", "%s"}}},
	{Name: "textWeight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview ul li, #pdfPreview .recipe p, #pdfPreview .recipe em", "font-weight", "%s"}}},
	{Name: "sloganWeight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview .header-content .slogan", "font-weight", "%s"}}},
	{Name: "strongWeight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview ul li strong", "font-weight", "%s"}}},
	{Name: "footerLogoWeight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview .otera-logo", "font-weight", "%s"}}},
	{Name: "footerTaglineWeight", Kind: KindWeight, rules: []knobRule{{"#pdfPreview .otera-tagline", "font-weight", "%s"}}},
	{Name: "headerPadding", Kind: KindPx, Default: "10px", rules: []knobRule{{"#pdfPreview .header-content", "padding", "%s 20px"}}},
	{Name: "firstH2MarginTop", Kind: KindPx, Default: "12px", rules: []knobRule{{"#pdfPreview h2:first-of-type, #pdfPreview .header-content + h2", "margin-top", "%s"}}},
	{Name: "sectionMargin", Kind: KindPx, Default: "4px", rules: []knobRule{{"#pdfPreview h2 ~ h2", "margin", "%s 20px 6px 20px"}}},
	{Name: "contentPadding", Kind: KindPx, Default: "20px", rules: []knobRule{
		{"#pdfPreview ul, #pdfPreview .recipe", "margin-left", "%s"},
		{"#pdfPreview ul, #pdfPreview .recipe", "margin-right", "%s"},
	}},
	{Name: "footerPadding", Kind: KindPx, Default: "36px", rules: []knobRule{{"#pdfPreview .otera-footer", "padding", "%s 20px"}}},
}

var knobIndex = func() map[string]*Knob {
	m := make(map[string]*Knob, len(Knobs))
	for i := range Knobs {
		m[Knobs[i].Name] = &Knobs[i]
	}
	return m
}()

var (
	hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	remPattern      = regexp.MustCompile(`^(\d{1,2}(?:\.\d{1,3})?)(?:rem)?$`)
	pxPattern       = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,2})?)(?:px)?$`)
	weightPattern   = regexp.MustCompile(`^[1-9]00$`)
)

// LookupKnob returns the knob registered under name.
func LookupKnob(name string) (Knob, bool) {
	k, ok := knobIndex[name]
	if !ok {
		return Knob{}, false
	}
	return *k, true
}

// NormalizeStyle validates value for the named knob and returns its
// canonical CSS form.
func NormalizeStyle(name, value string) (string, error) {
	k, ok := knobIndex[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	v := strings.TrimSpace(value)
	switch k.Kind {
	case KindColor:
		if hexColorPattern.MatchString(v) {
			return strings.ToUpper(v), nil
		}
	case KindRem:
		if m := remPattern.FindStringSubmatch(v); m != nil {
			return m[1] + "rem", nil
		}
	case KindPx:
		if m := pxPattern.FindStringSubmatch(v); m != nil {
			return m[1] + "px", nil
		}
	case KindWeight:
		if v == "normal" || v == "bold" || weightPattern.MatchString(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s=%q", ErrInvalidStyleValue, name, value)
}

// Validate normalizes every entry of s, returning a new map. Unknown knobs
// and malformed values are rejected.
func (s StyleOverrides) Validate() (StyleOverrides, error) {
	out := make(StyleOverrides, len(s))
	for name, value := range s {
		norm, err := NormalizeStyle(name, value)
		if err != nil {
			return nil, err
		}
		out[name] = norm
	}
	return out, nil
}

// Clone returns a copy of s.
func (s StyleOverrides) Clone() StyleOverrides {
	out := make(StyleOverrides, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// WithDefaults returns a copy of s in which every spacing knob that is not
// set carries its default value.
func (s StyleOverrides) WithDefaults() StyleOverrides {
	out := s.Clone()
	for _, k := range Knobs {
		if _, ok := out[k.Name]; !ok && k.Default != "" {
			out[k.Name] = k.Default
		}
	}
	return out
}

// Declaration is one CSS property assignment produced by a knob.
type Declaration struct {
	Selector string
	Property string
	Value    string
}

// Declarations expands s into CSS declarations in knob order. Values are
// validated first.
func (s StyleOverrides) Declarations() ([]Declaration, error) {
	valid, err := s.Validate()
	if err != nil {
		return nil, err
	}
	var decls []Declaration
	for _, k := range Knobs {
		value, ok := valid[k.Name]
		if !ok {
			continue
		}
		for _, r := range k.rules {
			decls = append(decls, Declaration{
				Selector: r.selector,
				Property: r.property,
				Value:    fmt.Sprintf(r.format, value),
			})
		}
	}
	return decls, nil
}

// StyleCSS builds the override stylesheet for s. An empty map yields "".
func StyleCSS(s StyleOverrides) (string, error) {
	decls, err := s.Declarations()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, d := range decls {
		fmt.Fprintf(&b, "%s { %s: %s !important; }\n", d.Selector, d.Property, d.Value)
	}
	return b.String(), nil
}
