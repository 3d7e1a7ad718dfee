package recipe

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractMicrodata looks for the first element typed as a schema.org
// Recipe via inline microdata attributes and collects its itemprop
// descendants. A property with zero matches is simply absent.
func extractMicrodata(doc *goquery.Document) *candidate {
	scope := doc.Find(`[itemtype*="schema.org/Recipe"]`).First()
	if scope.Length() == 0 {
		return nil
	}

	prop := func(name string) []string {
		var out []string
		scope.Find(`[itemprop="` + name + `"]`).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text == "" {
				text = strings.TrimSpace(sel.AttrOr("content", ""))
			}
			if text != "" {
				out = append(out, text)
			}
		})
		return out
	}

	first := func(name string) string {
		if vals := prop(name); len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	title := first("name")
	if title == "" {
		return nil
	}

	var servings *int
	if yield := first("recipeYield"); yield != "" {
		servings = parseServings(yield)
	}

	return &candidate{
		Title:        title,
		Description:  first("description"),
		Image:        first("image"),
		PrepTime:     humanDuration(first("prepTime")),
		CookTime:     humanDuration(first("cookTime")),
		TotalTime:    humanDuration(first("totalTime")),
		Servings:     servings,
		Ingredients:  prop("recipeIngredient"),
		Instructions: cleanInstructions(prop("recipeInstructions")),
	}
}
