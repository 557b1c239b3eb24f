package content

import (
	"encoding/json"
	"strings"
)

// RecipeKind is the flavour of a recipe. The underlying value is the label
// shown on the card and used on the wire.
type RecipeKind string

const (
	Sweet  RecipeKind = "Sucrée"
	Savory RecipeKind = "Salée"
)

// ParseRecipeKind maps a free-form label to a kind. Anything that does not
// read as savory is sweet, which is the upstream default.
func ParseRecipeKind(s string) RecipeKind {
	switch foldAccents(strings.ToLower(strings.TrimSpace(s))) {
	case "salee", "sale", "savory", "savoury", "salty":
		return Savory
	}
	return Sweet
}

// IsSavory reports whether k is the savory kind.
func (k RecipeKind) IsSavory() bool {
	return k == Savory
}

// UnmarshalJSON accepts any label and normalizes it.
func (k *RecipeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = ParseRecipeKind(s)
	return nil
}

func foldAccents(s string) string {
	return strings.NewReplacer("é", "e", "è", "e", "ê", "e").Replace(s)
}

// Feature is one labeled characteristic of the product.
type Feature struct {
	Label       string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// Recipe is one recipe idea.
type Recipe struct {
	Kind        RecipeKind `json:"type" yaml:"type"`
	Name        string     `json:"nom" yaml:"nom"`
	Ingredients string     `json:"ingredients" yaml:"ingredients"`
	Tip         string     `json:"astuce" yaml:"astuce"`
}

// Document is the canonical product sheet.
//
// BadgeNames is chosen by the user only; it is never filled from the
// webhook payload.
type Document struct {
	Title            string    `json:"titre" yaml:"titre"`
	Slogan           string    `json:"slogan" yaml:"slogan"`
	Features         []Feature `json:"caracteristiques" yaml:"caracteristiques"`
	ConsumptionIdeas []string  `json:"consommation" yaml:"consommation"`
	Recipes          []Recipe  `json:"recettes" yaml:"recettes"`
	BadgeNames       []string  `json:"badgeNames,omitempty" yaml:"badgeNames,omitempty"`
}

// EnsureLists replaces nil list fields with empty slices.
func (d *Document) EnsureLists() {
	if d.Features == nil {
		d.Features = []Feature{}
	}
	if d.ConsumptionIdeas == nil {
		d.ConsumptionIdeas = []string{}
	}
	if d.Recipes == nil {
		d.Recipes = []Recipe{}
	}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Features = append([]Feature(nil), d.Features...)
	c.ConsumptionIdeas = append([]string(nil), d.ConsumptionIdeas...)
	c.Recipes = append([]Recipe(nil), d.Recipes...)
	c.BadgeNames = append([]string(nil), d.BadgeNames...)
	c.EnsureLists()
	return &c
}
