package envelope

import (
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-productsheet/internal/content"
)

func TestUnwrapContent_Shapes(t *testing.T) {
	t.Parallel()

	const doc = `{"success":true,"pdfContent":{"titre":"Fraise"}}`

	tests := []struct {
		name      string
		raw       string
		wantShape Shape
		wantTitle string
	}{
		{name: "bare object", raw: doc, wantShape: ShapeBareObject, wantTitle: "Fraise"},
		{name: "array envelope", raw: `[{"json":` + doc + `}]`, wantShape: ShapeArrayEnvelope, wantTitle: "Fraise"},
		{name: "array direct", raw: `[` + doc + `]`, wantShape: ShapeArrayDirect, wantTitle: "Fraise"},
		{name: "object envelope", raw: `{"json":` + doc + `}`, wantShape: ShapeObjectEnvelope, wantTitle: "Fraise"},
		{name: "array envelope wins over direct", raw: `[{"json":` + doc + `,"success":false}]`, wantShape: ShapeArrayEnvelope, wantTitle: "Fraise"},
		{name: "falsy envelope ignored", raw: `{"json":null,"success":true,"pdfContent":{"titre":"Kiwi"}}`, wantShape: ShapeBareObject, wantTitle: "Kiwi"},
		{name: "unknown object passes through", raw: `{"foo":1}`, wantShape: ShapePassThrough},
		{name: "empty array passes through", raw: `[]`, wantShape: ShapePassThrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := UnwrapContent([]byte(tt.raw))
			if p.Shape != tt.wantShape {
				t.Errorf("Shape = %q, want %q", p.Shape, tt.wantShape)
			}
			c, ok := p.Content()
			if tt.wantTitle == "" {
				if ok {
					t.Errorf("Content() present, want absent")
				}
				return
			}
			if !ok {
				t.Fatal("Content() absent")
			}
			if got := c.Get("titre").String(); got != tt.wantTitle {
				t.Errorf("titre = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}

func TestPayload_SuccessAndError(t *testing.T) {
	t.Parallel()

	p := UnwrapContent([]byte(`{"success":false,"error":" quota dépassé "}`))
	if p.Success() {
		t.Error("Success() = true, want false")
	}
	if p.Error() != "quota dépassé" {
		t.Errorf("Error() = %q", p.Error())
	}

	p = UnwrapContent([]byte(`[{"json":{"success":true,"productName":"Fraise","pdfContent":{}}}]`))
	if got := p.ProductName(); got != "Fraise" {
		t.Errorf("ProductName() = %q, want Fraise", got)
	}
}

func TestDecodeDocument_Object(t *testing.T) {
	t.Parallel()

	raw := `{
		"titre": "Fraise des bois",
		"badge": "bio_atout",
		"caracteristiques": [{"type": "Goût", "description": "Sucrée et parfumée"}],
		"consommation": [],
		"recettes": []
	}`

	doc, err := DecodeDocument(gjson.Parse(raw), nil)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	want := []content.Feature{{Label: "Goût", Description: "Sucrée et parfumée"}}
	if !reflect.DeepEqual(doc.Features, want) {
		t.Errorf("Features = %+v, want %+v", doc.Features, want)
	}
	if !reflect.DeepEqual(doc.ConsumptionIdeas, content.DefaultConsumptionIdeas()) {
		t.Errorf("ConsumptionIdeas = %q, want defaults", doc.ConsumptionIdeas)
	}
	if !reflect.DeepEqual(doc.Recipes, content.DefaultRecipes()) {
		t.Errorf("Recipes = %+v, want defaults", doc.Recipes)
	}
	if len(doc.BadgeNames) != 0 {
		t.Errorf("BadgeNames = %q, want none from the payload", doc.BadgeNames)
	}
	if doc.Slogan != "" {
		t.Errorf("Slogan = %q, want empty", doc.Slogan)
	}
}

func TestDecodeDocument_EnglishKeysAndRecipes(t *testing.T) {
	t.Parallel()

	raw := `{
		"title": "Kiwi",
		"consumptionIdeas": ["Cru", "  ", 3, {"text": "En sorbet"}],
		"recipes": [{"kind": "savory", "name": "Ceviche", "ingredients": "Kiwi, poisson", "tip": "Bien frais"}, "oops"]
	}`

	doc, err := DecodeDocument(gjson.Parse(raw), zap.NewNop())
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if doc.Title != "Kiwi" {
		t.Errorf("Title = %q", doc.Title)
	}
	if !reflect.DeepEqual(doc.ConsumptionIdeas, []string{"Cru", "En sorbet"}) {
		t.Errorf("ConsumptionIdeas = %q", doc.ConsumptionIdeas)
	}
	want := []content.Recipe{{Kind: content.Savory, Name: "Ceviche", Ingredients: "Kiwi, poisson", Tip: "Bien frais"}}
	if !reflect.DeepEqual(doc.Recipes, want) {
		t.Errorf("Recipes = %+v, want %+v", doc.Recipes, want)
	}
	if !reflect.DeepEqual(doc.Features, content.DefaultFeatures()) {
		t.Errorf("Features = %+v, want defaults", doc.Features)
	}
}

func TestDecodeDocument_StringUsesParser(t *testing.T) {
	t.Parallel()

	raw := `"<fiche><titre>Poire</titre></fiche>"`
	doc, err := DecodeDocument(gjson.Parse(raw), nil)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if doc.Title != "Poire" || doc.Slogan != content.DefaultSlogan {
		t.Errorf("doc = %+v", doc)
	}
}

func TestNormalizeFeatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []content.Feature
	}{
		{
			name: "whitespace description dropped",
			raw:  `[{"type":"A","description":"  "},{"type":"B","description":"ok"}]`,
			want: []content.Feature{{Label: "B", Description: "ok"}},
		},
		{
			name: "all aliases empty dropped",
			raw:  `[{"description":"","value":"","text":""}]`,
			want: []content.Feature{},
		},
		{
			name: "value alias used when description empty",
			raw:  `[{"type":"Goût","description":"","value":"Acidulé"}]`,
			want: []content.Feature{{Label: "Goût", Description: "Acidulé"}},
		},
		{
			name: "non string description skipped",
			raw:  `[{"description":42,"text":"Texte"}]`,
			want: []content.Feature{{Label: "Caractéristique", Description: "Texte"}},
		},
		{
			name: "non objects dropped",
			raw:  `["chaine", 3, null, {"nom":"N","description":"d"}]`,
			want: []content.Feature{{Label: "N", Description: "d"}},
		},
		{
			name: "object input keeps document order",
			raw:  `{"z":{"type":"Z","description":"dernier"},"a":{"type":"A","description":"premier"}}`,
			want: []content.Feature{{Label: "Z", Description: "dernier"}, {Label: "A", Description: "premier"}},
		},
		{
			name: "absent",
			raw:  ``,
			want: []content.Feature{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeFeatures(gjson.Parse(tt.raw), nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeFeatures(%s) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeFeatures_LogsAnomaly(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	got := NormalizeFeatures(gjson.Parse(`[{"description":" "},"x"]`), zap.New(core))
	if len(got) != 0 {
		t.Fatalf("got %d features, want 0", len(got))
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d warnings, want 1", logs.Len())
	}

	core, logs = observer.New(zap.WarnLevel)
	NormalizeFeatures(gjson.Parse(`[]`), zap.New(core))
	if logs.Len() != 0 {
		t.Errorf("empty input logged %d warnings, want 0", logs.Len())
	}
}
