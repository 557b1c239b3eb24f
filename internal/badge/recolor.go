package badge

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Palette presets offered by the color picker.
var Presets = []Preset{
	{Hex: "#E65B0C", Name: "Orange"},
	{Hex: "#F6E2BE", Name: "Beige"},
	{Hex: "#60191A", Name: "Bordeaux"},
	{Hex: "#B5DBE8", Name: "Bleu clair"},
	{Hex: "#000000", Name: "Noir"},
	{Hex: "#FFFFFF", Name: "Blanc"},
}

// Preset is a named picker color.
type Preset struct {
	Hex  string `json:"hex" yaml:"hex"`
	Name string `json:"name" yaml:"name"`
}

var (
	hex6Pattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	hex3Pattern = regexp.MustCompile(`^#[0-9A-Fa-f]{3}$`)
	rgbPattern  = regexp.MustCompile(`rgba?\((\d+),\s*(\d+),\s*(\d+)`)
)

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#FFFFFF",
	"red":    "#FF0000",
	"green":  "#008000",
	"blue":   "#0000FF",
	"yellow": "#FFFF00",
	"orange": "#FFA500",
	"purple": "#800080",
	"pink":   "#FFC0CB",
}

// paintAttrs are checked on every element, in this order.
var paintAttrs = []string{"fill", "stroke"}

// NormalizeColor converts a paint value to #RRGGBB. Six and three digit hex,
// rgb()/rgba() and a small table of names are recognized.
func NormalizeColor(c string) (string, bool) {
	c = strings.TrimSpace(c)
	switch {
	case hex6Pattern.MatchString(c):
		return strings.ToUpper(c), true
	case hex3Pattern.MatchString(c):
		return strings.ToUpper("#" + c[1:2] + c[1:2] + c[2:3] + c[2:3] + c[3:4] + c[3:4]), true
	}
	if m := rgbPattern.FindStringSubmatch(c); m != nil {
		var rgb [3]int
		for i := range rgb {
			n, err := strconv.Atoi(m[i+1])
			if err != nil {
				return "", false
			}
			rgb[i] = min(n, 255)
		}
		return fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2]), true
	}
	if hex, ok := namedColors[strings.ToLower(c)]; ok {
		return hex, true
	}
	return "", false
}

func paintable(v string) bool {
	return v != "" && v != "none" && v != "transparent" && !strings.HasPrefix(v, "url(")
}

// ExtractColors lists the distinct fill and stroke colors of svg in
// depth-first document order. The index of a color in this list is its
// color slot.
func ExtractColors(svg string) []string {
	palette := []string{}
	seen := make(map[string]bool)
	walkPaint(svg, func(value string) (string, bool) {
		if norm, ok := NormalizeColor(value); ok && !seen[norm] {
			seen[norm] = true
			palette = append(palette, norm)
		}
		return "", false
	})
	return palette
}

// ApplyColors substitutes overridden color slots in svg. Overrides whose
// slot is not in the image's palette are ignored.
func ApplyColors(svg string, overrides map[int]string) string {
	if len(overrides) == 0 {
		return svg
	}
	palette := ExtractColors(svg)
	replace := make(map[string]string, len(overrides))
	for slot, hex := range overrides {
		if slot >= 0 && slot < len(palette) && hex != "" {
			replace[palette[slot]] = hex
		}
	}
	if len(replace) == 0 {
		return svg
	}
	return walkPaint(svg, func(value string) (string, bool) {
		norm, ok := NormalizeColor(value)
		if !ok {
			return "", false
		}
		next, ok := replace[norm]
		return next, ok
	})
}

// DataURI embeds svg markup as a base64 data URI.
func DataURI(svg string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// walkPaint visits every paintable fill and stroke attribute in document
// order and returns the markup with the values fn chose to replace. Tokens
// are copied verbatim otherwise, so SVG casing (viewBox, linearGradient)
// survives the round trip.
func walkPaint(svg string, fn func(value string) (string, bool)) string {
	z := html.NewTokenizer(strings.NewReader(svg))
	var b strings.Builder
	b.Grow(len(svg))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}
		tok := z.Token()
		for _, name := range paintAttrs {
			value, ok := attrValue(tok.Attr, name)
			if !ok || !paintable(value) {
				continue
			}
			if next, replace := fn(value); replace {
				raw = setRawAttr(raw, name, next)
			}
		}
		b.WriteString(raw)
	}
}

func attrValue(attrs []html.Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// setRawAttr replaces the value of the first name attribute in a raw start
// tag, leaving every other byte untouched.
func setRawAttr(raw, name, value string) string {
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' && raw[i] != '/' {
		i++ // tag name
	}
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			return raw
		}
		keyStart := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		key := raw[keyStart:i]
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		var valStart, valEnd int
		if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
			q := raw[i]
			valStart = i + 1
			end := strings.IndexByte(raw[valStart:], q)
			if end < 0 {
				return raw
			}
			valEnd = valStart + end
			i = valEnd + 1
		} else {
			valStart = i
			for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' {
				i++
			}
			valEnd = i
		}
		if strings.EqualFold(key, name) {
			return raw[:valStart] + html.EscapeString(value) + raw[valEnd:]
		}
	}
	return raw
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
