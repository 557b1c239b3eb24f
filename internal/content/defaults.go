package content

// Fallback values used when parsing yields nothing for a field.
const (
	DefaultTitle  = "Produit Gourmand"
	DefaultSlogan = "Un trésor de saveurs à découvrir"

	sweetTipFallback  = "Préparer avec soin pour un résultat optimal"
	savoryTipFallback = "Servir immédiatement pour une fraîcheur maximale"
)

// DefaultFeatures returns the canonical feature list.
func DefaultFeatures() []Feature {
	return []Feature{
		{Label: "Apparence", Description: "Un produit aux couleurs éclatantes et texture appétissante"},
		{Label: "Goût", Description: "Des saveurs authentiques qui réveillent les papilles"},
		{Label: "Nutrition", Description: "Riche en vitamines et nutriments essentiels"},
	}
}

// DefaultConsumptionIdeas returns the canonical consumption list.
func DefaultConsumptionIdeas() []string {
	return []string{
		"Nature, pour apprécier pleinement sa fraîcheur",
		"En salade composée avec des herbes aromatiques",
		"Cuisiné pour révéler tous ses arômes subtils",
	}
}

// DefaultRecipes returns the canonical recipe list.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			Kind:        Sweet,
			Name:        "Délice fruité maison",
			Ingredients: "Produit frais, sucre de canne, vanille",
			Tip:         "Servir bien frais pour exalter les saveurs",
		},
		{
			Kind:        Savory,
			Name:        "Plat savoureux et équilibré",
			Ingredients: "Produit frais, aromates, huile d'olive",
			Tip:         "Laisser reposer quelques minutes avant de déguster",
		},
	}
}

// FillLists replaces every empty list with its canonical default.
// Partially filled lists are left alone.
func FillLists(d *Document) {
	if len(d.Features) == 0 {
		d.Features = DefaultFeatures()
	}
	if len(d.ConsumptionIdeas) == 0 {
		d.ConsumptionIdeas = DefaultConsumptionIdeas()
	}
	if len(d.Recipes) == 0 {
		d.Recipes = DefaultRecipes()
	}
}

// ApplyDefaults fills empty lists and an empty title or slogan.
func ApplyDefaults(d *Document) {
	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if d.Slogan == "" {
		d.Slogan = DefaultSlogan
	}
	FillLists(d)
}
