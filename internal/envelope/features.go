package envelope

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/content"
)

// defaultFeatureLabel is used when an entry carries no label alias.
const defaultFeatureLabel = "Caractéristique"

var (
	descriptionAliases = []string{"description", "value", "text"}
	labelAliases       = []string{"type", "nom", "label"}
)

// NormalizeFeatures accepts an array or a key-value object of feature
// entries. Non-object entries and entries without a non-blank description
// are dropped. The result is never nil.
func NormalizeFeatures(raw gjson.Result, log *zap.Logger) []content.Feature {
	entries := values(raw)
	out := make([]content.Feature, 0, len(entries))
	for _, e := range entries {
		if !e.IsObject() {
			continue
		}
		desc := firstString(e, descriptionAliases...)
		if desc == "" {
			continue
		}
		label := firstString(e, labelAliases...)
		if label == "" {
			label = defaultFeatureLabel
		}
		out = append(out, content.Feature{Label: label, Description: desc})
	}

	if len(entries) > 0 && len(out) == 0 && log != nil {
		log.Warn("every feature entry was filtered out",
			zap.Int("entries", len(entries)),
			zap.String("raw", content.Snippet(raw.Raw, 200)))
	}
	return out
}
