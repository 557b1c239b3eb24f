package content

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	titlePattern       = regexp.MustCompile(`(?i)\*\*Titre\*\*\s*:\s*\*\*([^*]+)\*\*`)
	featuresHeading    = regexp.MustCompile(`(?i)\*\*Caractéristiques\*\*\s*:`)
	consumptionHeading = regexp.MustCompile(`(?i)\*\*3 Façons de le Consommer\*\*\s*:`)
	sweetHeading       = regexp.MustCompile(`(?i)\*\*Sucrée\*\*\s*:\s*\*\*([^*]+?)\*\*\.`)
	savoryHeading      = regexp.MustCompile(`(?i)\*\*Salée\*\*\s*:\s*\*\*([^*]+?)\*\*\.`)
	tipPattern         = regexp.MustCompile(`(?i)Astuce\s*:\s*([^.]+)`)
)

// Labels assigned to Markdown features by position.
var featureLabelCycle = []string{"Apparence", "Goût", "Nutrition"}

// Title separators that split a slogan off the title.
var sloganSeparators = []string{"–", "—"}

func parseMarkdown(raw string) *Document {
	doc := &Document{
		Features:         []Feature{},
		ConsumptionIdeas: []string{},
		Recipes:          []Recipe{},
	}

	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		doc.Title = strings.TrimSpace(m[1])
	}
	doc.Slogan = sloganFromTitle(doc.Title)

	if body, ok := section(raw, featuresHeading, "**3 Façons", "**Idées Recettes"); ok {
		for i, item := range bulletItems(body) {
			if item == "" {
				continue
			}
			label := defaultFeatureType
			if i < len(featureLabelCycle) {
				label = featureLabelCycle[i]
			}
			doc.Features = append(doc.Features, Feature{Label: label, Description: item})
		}
	}

	if body, ok := section(raw, consumptionHeading, "**Idées Recettes"); ok {
		for _, item := range bulletItems(body) {
			if item != "" {
				doc.ConsumptionIdeas = append(doc.ConsumptionIdeas, item)
			}
		}
	}

	if name, body, ok := recipeMatch(raw, sweetHeading, sweetEnd); ok {
		doc.Recipes = append(doc.Recipes, buildRecipe(Sweet, name, body, sweetTipFallback))
	}
	if name, body, ok := recipeMatch(raw, savoryHeading, savoryEnd); ok {
		doc.Recipes = append(doc.Recipes, buildRecipe(Savory, name, body, savoryTipFallback))
	}
	return doc
}

func sloganFromTitle(title string) string {
	for _, sep := range sloganSeparators {
		parts := strings.Split(title, sep)
		if len(parts) > 1 && parts[1] != "" {
			return strings.TrimSpace(parts[1])
		}
	}
	return DefaultSlogan
}

// section returns the text following heading. A section body never contains
// '*': it runs to the first '*', which must open one of the stop headings,
// or to the end of text. Later heading occurrences are tried when an earlier
// one does not close properly.
func section(raw string, heading *regexp.Regexp, stops ...string) (string, bool) {
	for _, loc := range heading.FindAllStringIndex(raw, -1) {
		rest := raw[loc[1]:]
		star := strings.IndexByte(rest, '*')
		if star < 0 {
			return rest, true
		}
		for _, stop := range stops {
			if hasPrefixFold(rest[star:], stop) {
				return rest[:star], true
			}
		}
	}
	return "", false
}

// sweetEnd ends a sweet recipe at the next "**Salée", a trailing "**" or the
// end of text.
func sweetEnd(rest string) (int, bool) {
	star := strings.IndexByte(rest, '*')
	if star < 0 {
		return len(rest), true
	}
	if hasPrefixFold(rest[star:], "**Salée") || rest[star:] == "**" {
		return star, true
	}
	return 0, false
}

// savoryEnd ends a savory recipe at the next "---" or the end of text.
func savoryEnd(rest string) (int, bool) {
	end := len(rest)
	if len(rest) > 1 {
		if i := strings.Index(rest[1:], "---"); i >= 0 {
			end = i + 1
		}
	}
	if star := strings.IndexByte(rest, '*'); star >= 0 && star < end {
		return 0, false
	}
	return end, true
}

func recipeMatch(raw string, heading *regexp.Regexp, endOf func(string) (int, bool)) (name, body string, ok bool) {
	for _, m := range heading.FindAllStringSubmatchIndex(raw, -1) {
		rest := raw[m[1]:]
		end, found := endOf(rest)
		if !found || end < 1 {
			continue
		}
		return strings.TrimSpace(raw[m[2]:m[3]]), strings.TrimSpace(rest[:end]), true
	}
	return "", "", false
}

func buildRecipe(kind RecipeKind, name, body, tipFallback string) Recipe {
	ingredients, _, _ := strings.Cut(body, ".")
	tip := tipFallback
	if m := tipPattern.FindStringSubmatch(body); m != nil {
		tip = strings.TrimSpace(m[1])
	}
	return Recipe{
		Kind:        kind,
		Name:        name,
		Ingredients: strings.TrimSpace(ingredients),
		Tip:         tip,
	}
}

// bulletItems returns the text after the "-" of every list item in body, in
// order. goldmark only locates the items; their text is cut from the source
// line so markers such as "1.", "#" or ">" inside an item are kept. Empty
// items are kept as "" so positional labels stay aligned.
func bulletItems(body string) []string {
	src := []byte(normalizeBullets(body))
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var items []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		list, ok := n.(*ast.List)
		if !ok || list.IsOrdered() || list.Marker != '-' {
			continue
		}
		for li := list.FirstChild(); li != nil; li = li.NextSibling() {
			items = append(items, itemLine(li, src))
		}
	}
	return items
}

// normalizeBullets rewrites every line starting with '-' as a well-formed
// list item on its own paragraph, so that a bare "-" or "-text" line is
// still read as an item and cannot be taken for a setext underline.
func normalizeBullets(body string) string {
	lines := strings.Split(body, "\n")
	var b strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
		b.WriteString("\n-")
		if item != "" {
			b.WriteByte(' ')
			b.WriteString(item)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// itemLine returns the source line holding the item's first block, minus
// the list marker. Items start on their own line after normalizeBullets.
func itemLine(li ast.Node, src []byte) string {
	for c := li.FirstChild(); c != nil; c = c.FirstChild() {
		lines := c.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		at := lines.At(0).Start
		start := bytes.LastIndexByte(src[:at], '\n') + 1
		end := len(src)
		if i := bytes.IndexByte(src[at:], '\n'); i >= 0 {
			end = at + i
		}
		line := strings.TrimSpace(string(src[start:end]))
		return strings.TrimSpace(strings.TrimPrefix(line, "-"))
	}
	return ""
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
