// Package recipe implements the multi-strategy recipe extraction
// engine: linked-data (JSON-LD), microdata, and heuristic CSS selector
// strategies tried in priority order over a parsed document, plus the
// field normalizers shared between them.
package recipe

import (
	"kidchef/internal/model"
)

// candidate is a partial-or-complete field set produced by a single
// strategy. A nil candidate means the page did not match the strategy
// at all; that is a normal outcome, not an error.
type candidate struct {
	Title        string
	Description  string
	Image        string
	PrepTime     string
	CookTime     string
	TotalTime    string
	Servings     *int
	Ingredients  []string
	Instructions []string
	Tags         []string
}

// usable reports whether the candidate is strong enough to win the
// orchestration: a non-empty title plus at least one ingredient or
// instruction.
func (c *candidate) usable() bool {
	if c == nil || c.Title == "" {
		return false
	}
	return len(c.Ingredients) > 0 || len(c.Instructions) > 0
}

// toModel shapes the winning candidate into the output schema.
func (c *candidate) toModel(sourceURL string) *model.ScrapedRecipe {
	return &model.ScrapedRecipe{
		Title:        c.Title,
		Description:  c.Description,
		Image:        c.Image,
		PrepTime:     c.PrepTime,
		CookTime:     c.CookTime,
		TotalTime:    c.TotalTime,
		Servings:     c.Servings,
		Ingredients:  c.Ingredients,
		Instructions: c.Instructions,
		SourceURL:    sourceURL,
		Tags:         c.Tags,
	}
}
