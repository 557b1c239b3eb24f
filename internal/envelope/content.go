package envelope

import (
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/content"
)

// Shape names a recognized webhook response layout.
type Shape string

const (
	ShapeArrayEnvelope  Shape = "array-envelope"
	ShapeArrayDirect    Shape = "array-direct"
	ShapeObjectEnvelope Shape = "object-envelope"
	ShapeBareObject     Shape = "bare-object"
	ShapePassThrough    Shape = "pass-through"
)

// envelopeKey is the conventional key nesting the real payload.
const envelopeKey = "json"

type matcher struct {
	shape Shape
	match func(gjson.Result) (gjson.Result, bool)
}

var contentMatchers = []matcher{
	{ShapeArrayEnvelope, func(v gjson.Result) (gjson.Result, bool) {
		if !v.IsArray() {
			return gjson.Result{}, false
		}
		inner := v.Get("0." + envelopeKey)
		return inner, truthy(inner)
	}},
	{ShapeArrayDirect, func(v gjson.Result) (gjson.Result, bool) {
		if !v.IsArray() {
			return gjson.Result{}, false
		}
		first := v.Get("0")
		return first, first.Get("success").Exists() || first.Get("pdfContent").Exists()
	}},
	{ShapeObjectEnvelope, func(v gjson.Result) (gjson.Result, bool) {
		if !v.IsObject() {
			return gjson.Result{}, false
		}
		inner := v.Get(envelopeKey)
		return inner, truthy(inner)
	}},
	{ShapeBareObject, func(v gjson.Result) (gjson.Result, bool) {
		return v, v.IsObject() && (v.Get("success").Exists() || v.Get("pdfContent").Exists())
	}},
}

// Payload is the unwrapped generation response.
type Payload struct {
	Shape Shape
	Value gjson.Result
}

// UnwrapContent decodes raw into a Payload using the first matching shape.
// Unmatched values are passed through as-is.
func UnwrapContent(raw []byte) Payload {
	v := gjson.ParseBytes(raw)
	for _, m := range contentMatchers {
		if inner, ok := m.match(v); ok {
			return Payload{Shape: m.shape, Value: inner}
		}
	}
	return Payload{Shape: ShapePassThrough, Value: v}
}

// Success reports the payload's success flag.
func (p Payload) Success() bool {
	return p.Value.Get("success").Bool()
}

// Error returns the payload's error message, if any.
func (p Payload) Error() string {
	return strings.TrimSpace(p.Value.Get("error").String())
}

// ProductName returns the product name echoed by the server, if any.
func (p Payload) ProductName() string {
	return firstTruthy(p.Value, "productName", "product", "nom")
}

// Content returns the pdfContent value and whether it is present.
func (p Payload) Content() (gjson.Result, bool) {
	c := p.Value.Get("pdfContent")
	return c, truthy(c)
}

// DecodeDocument builds a document from a pdfContent value. An object is
// decoded field by field with French or English keys; a string is handed to
// the content parser. Empty lists are replaced with their defaults. Badge
// fields suggested by the server are ignored.
func DecodeDocument(v gjson.Result, log *zap.Logger) (*content.Document, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if v.Type == gjson.String {
		res := content.Parse(v.Str)
		if !res.OK() {
			return nil, res.Err
		}
		return res.Document, nil
	}

	doc := &content.Document{
		Title:            firstTruthy(v, "titre", "title"),
		Slogan:           firstTruthy(v, "slogan"),
		Features:         NormalizeFeatures(pick(v, "caracteristiques", "features"), log),
		ConsumptionIdeas: decodeIdeas(pick(v, "consommation", "consumptionIdeas")),
		Recipes:          decodeRecipes(pick(v, "recettes", "recipes")),
	}
	content.FillLists(doc)
	return doc, nil
}

// pick returns the first alias present on v.
func pick(v gjson.Result, aliases ...string) gjson.Result {
	for _, key := range aliases {
		if r := v.Get(key); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func decodeIdeas(r gjson.Result) []string {
	out := []string{}
	for _, item := range values(r) {
		var s string
		switch {
		case item.Type == gjson.String:
			s = item.Str
		case item.IsObject():
			s = firstString(item, "suggestion", "text", "value")
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeRecipes(r gjson.Result) []content.Recipe {
	out := []content.Recipe{}
	for _, item := range values(r) {
		if !item.IsObject() {
			continue
		}
		out = append(out, content.Recipe{
			Kind:        content.ParseRecipeKind(firstString(item, "type", "kind")),
			Name:        firstString(item, "nom", "name"),
			Ingredients: firstString(item, "ingredients"),
			Tip:         firstString(item, "astuce", "tip"),
		})
	}
	return out
}
