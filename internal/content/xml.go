package content

import "strings"

const (
	xmlRoot            = "<fiche>"
	xmlTitle           = "<titre>"
	defaultFeatureType = "Atout"
)

// isXMLDialect reports whether raw carries one of the XML dialect markers.
func isXMLDialect(raw string) bool {
	return strings.Contains(raw, xmlRoot) || strings.Contains(raw, xmlTitle)
}

// cleanXML strips code fences and any preamble before the root tag.
func cleanXML(raw string) string {
	s := removeFold(raw, "```xml")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, xmlRoot) {
		if i := strings.Index(s, xmlRoot); i >= 0 {
			s = s[i:]
		}
	}
	return s
}

// removeFold removes every ASCII case-insensitive occurrence of sub.
func removeFold(s, sub string) string {
	lower := asciiLower(s)
	sub = asciiLower(sub)
	var b strings.Builder
	last := 0
	for {
		i := strings.Index(lower[last:], sub)
		if i < 0 {
			break
		}
		b.WriteString(s[last : last+i])
		last += i + len(sub)
	}
	b.WriteString(s[last:])
	return b.String()
}

func parseXML(raw string) *Document {
	sc := newTagScanner(cleanXML(raw))
	doc := &Document{
		Title:            sc.content("titre"),
		Slogan:           sc.content("slogan"),
		Features:         []Feature{},
		ConsumptionIdeas: []string{},
		Recipes:          []Recipe{},
	}

	features := newTagScanner(sc.content("caracteristiques"))
	for _, el := range features.all("caracteristique") {
		label := attribute(el.open, "type")
		if label == "" {
			label = defaultFeatureType
		}
		doc.Features = append(doc.Features, Feature{
			Label:       label,
			Description: strings.TrimSpace(el.inner),
		})
	}

	ideas := newTagScanner(sc.content("consommation"))
	for _, el := range ideas.all("suggestion") {
		doc.ConsumptionIdeas = append(doc.ConsumptionIdeas, strings.TrimSpace(el.inner))
	}

	recipes := newTagScanner(sc.content("recettes"))
	for _, el := range recipes.all("recette") {
		item := newTagScanner(el.inner)
		doc.Recipes = append(doc.Recipes, Recipe{
			Kind:        ParseRecipeKind(attribute(el.open, "type")),
			Name:        item.content("nom"),
			Ingredients: item.content("ingredients"),
			Tip:         item.content("astuce"),
		})
	}
	return doc
}
