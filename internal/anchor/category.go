package anchor

// Category groups intentions by life area.
type Category string

const (
	CategoryCareer         Category = "career"
	CategoryHealth         Category = "health"
	CategoryWealth         Category = "wealth"
	CategoryRelationships  Category = "relationships"
	CategoryPersonalGrowth Category = "personal_growth"
)

// CustomLabel is shown for any category outside the known set.
const CustomLabel = "Custom"

var categoryLabels = map[Category]string{
	CategoryCareer:         "Career",
	CategoryHealth:         "Health",
	CategoryWealth:         "Wealth",
	CategoryRelationships:  "Relationships",
	CategoryPersonalGrowth: "Personal Growth",
}

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryCareer,
		CategoryHealth,
		CategoryWealth,
		CategoryRelationships,
		CategoryPersonalGrowth,
	}
}

// CategoryLabel returns the display label for s.
func CategoryLabel(s string) string {
	if l, ok := categoryLabels[Category(s)]; ok {
		return l
	}
	return CustomLabel
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return CategoryLabel(string(c))
}
