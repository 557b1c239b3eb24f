package productsheet

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fixed geometry of the export clone.
const (
	clonePadding     = "20px"
	cloneHeaderMin   = "90px"
	cloneFooterMin   = "50px"
	cloneBadgeGap    = "12px"
	cloneTitleMargin = "0 0 4px 0"
)

// buildExportClone rewrites the preview document for capture: the card is
// pinned to its nominal width with square corners, and every style override
// is applied inline so the capture never depends on stylesheet cascade.
func buildExportClone(page string, styles StyleOverrides, background string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	card := doc.Find(cardSelector)
	if card.Length() == 0 {
		return "", fmt.Errorf("%w: card element not found", ErrRender)
	}

	st := styles.WithDefaults()
	get := func(name, fallback string) string {
		if v := st[name]; v != "" {
			return v
		}
		return fallback
	}
	width := fmt.Sprintf("%dpx", CardWidthPx)

	setStyle(card, map[string]string{
		"width":           width,
		"max-width":       width,
		"min-width":       width,
		"height":          "auto",
		"padding":         "0",
		"overflow":        "hidden",
		"margin":          "0 auto",
		"position":        "relative",
		"box-sizing":      "border-box",
		"border-radius":   "0",
		"background":      get("bgColor", background),
		"display":         "flex",
		"flex-direction":  "column",
		"align-items":     "stretch",
		"justify-content": "flex-start",
		"color":           st["textColor"],
	})

	setStyle(card.Find(".header-orange-band"), map[string]string{
		"border-radius": "0",
		"background":    st["headerColor"],
	})
	setStyle(card.Find(".header-content"), map[string]string{
		"position":        "relative",
		"z-index":         "10",
		"padding":         get("headerPadding", "10px") + " " + clonePadding,
		"min-height":      cloneHeaderMin,
		"display":         "flex",
		"flex-direction":  "column",
		"justify-content": "center",
	})

	setStyle(card.Find(".badge-group"), map[string]string{
		"position":    "absolute",
		"display":     "flex",
		"align-items": "flex-end",
		"gap":         cloneBadgeGap,
		"margin":      "0",
		"padding":     "0",
		"z-index":     "100",
	})
	setStyle(card.Find(".badge-instance"), map[string]string{
		"position":   "absolute",
		"margin":     "0",
		"padding":    "0",
		"object-fit": "contain",
		"z-index":    "100",
	})

	setStyle(card.Find(".header-content h1"), map[string]string{
		"text-align":  "center",
		"margin":      cloneTitleMargin,
		"padding":     "0",
		"color":       "white",
		"font-size":   st["h1Size"],
		"font-weight": st["h1Weight"],
	})
	setStyle(card.Find(".header-content .slogan"), map[string]string{
		"text-align":  "center",
		"margin":      "0",
		"padding":     "0",
		"color":       "white",
		"font-weight": st["sloganWeight"],
	})

	card.Find("h2").Each(func(i int, h *goquery.Selection) {
		decl := map[string]string{
			"font-size":   st["h2Size"],
			"font-weight": st["h2Weight"],
		}
		if i == 0 {
			decl["margin-top"] = get("firstH2MarginTop", "12px")
		} else {
			decl["margin"] = get("sectionMargin", "4px") + " " + clonePadding + " 6px " + clonePadding
		}
		setStyle(h, decl)
	})

	setStyle(card.Find("ul li, .recipe p, .recipe em"), map[string]string{
		"font-size":   st["textSize"],
		"font-weight": st["textWeight"],
	})
	setStyle(card.Find("ul li strong"), map[string]string{
		"font-weight": st["strongWeight"],
	})
	setStyle(card.Find("ul li strong, .recipe strong, .recipe p strong"), map[string]string{
		"color": st["accentColor"],
	})
	setStyle(card.Find(".recipe"), map[string]string{
		"border-left-color": st["accentColor"],
	})
	pad := get("contentPadding", clonePadding)
	setStyle(card.Find("ul, .recipe"), map[string]string{
		"margin-left":  pad,
		"margin-right": pad,
	})

	setStyle(card.Find(".otera-footer"), map[string]string{
		"text-align":  "center",
		"margin-top":  "auto",
		"flex-shrink": "0",
		"min-height":  cloneFooterMin,
		"padding":     get("footerPadding", "36px") + " " + clonePadding,
	})
	setStyle(card.Find(".otera-logo"), map[string]string{"font-weight": st["footerLogoWeight"]})
	setStyle(card.Find(".otera-tagline"), map[string]string{"font-weight": st["footerTaglineWeight"]})

	// Bullet markers are pseudo-elements and cannot carry inline styles.
	if accent := st["accentColor"]; accent != "" {
		doc.Find("head").AppendHtml(
			"<style>" + cardSelector + " ul li::before { background: " + accent + " !important; }</style>")
	}

	return doc.Html()
}

// setStyle merges decl into the style attribute of every node in sel.
// Empty values are skipped and existing properties are overwritten in place.
func setStyle(sel *goquery.Selection, decl map[string]string) {
	sel.Each(func(_ int, node *goquery.Selection) {
		existing, _ := node.Attr("style")
		props, order := parseStyleAttr(existing)
		for _, name := range slices.Sorted(maps.Keys(decl)) {
			value := decl[name]
			if value == "" {
				continue
			}
			if _, ok := props[name]; !ok {
				order = append(order, name)
			}
			props[name] = value
		}
		if len(order) == 0 {
			return
		}
		var b strings.Builder
		for _, name := range order {
			b.WriteString(name)
			b.WriteByte(':')
			b.WriteString(props[name])
			b.WriteByte(';')
		}
		node.SetAttr("style", b.String())
	})
}

func parseStyleAttr(style string) (map[string]string, []string) {
	props := make(map[string]string)
	var order []string
	for _, part := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}
		if _, seen := props[name]; !seen {
			order = append(order, name)
		}
		props[name] = value
	}
	return props, order
}
