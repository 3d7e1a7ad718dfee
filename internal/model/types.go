package model

// ScrapedRecipe is the normalized recipe produced by the extraction
// engine. Field names are part of the public API contract and must not
// change without a client migration.
type ScrapedRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Image        string   `json:"image,omitempty"`
	PrepTime     string   `json:"prepTime,omitempty"`
	CookTime     string   `json:"cookTime,omitempty"`
	TotalTime    string   `json:"totalTime,omitempty"`
	Servings     *int     `json:"servings,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	SourceURL    string   `json:"sourceUrl"`
	Tags         []string `json:"tags,omitempty"`
}

// Complete reports whether the recipe is usable on its own: a
// non-empty title plus at least one ingredient or instruction.
// Difficulty is never required; it is populated by downstream
// consumers, not by the extraction engine.
func (r *ScrapedRecipe) Complete() bool {
	if r == nil || r.Title == "" {
		return false
	}
	return len(r.Ingredients) > 0 || len(r.Instructions) > 0
}
