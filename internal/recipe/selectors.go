package recipe

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate selector patterns for pages with no machine-readable
// structured data, ordered from most specific to most generic. The
// generic tail entries are deliberate last resorts.
var (
	titleSelectors = []string{
		"h1.recipe-title",
		".recipe-header h1",
		".recipe-title",
		`[class*="recipe"] h1`,
		"h1",
	}

	ingredientSelectors = []string{
		".recipe-ingredients li",
		".ingredients-list li",
		".ingredients li",
		"ul.ingredients li",
		`[class*="ingredient"] li`,
		"li.ingredient",
	}

	instructionSelectors = []string{
		".recipe-instructions li",
		".instructions-list li",
		".instructions li",
		".directions li",
		".method li",
		`[class*="instruction"] li`,
		`[class*="direction"] li`,
		`[class*="step"] li`,
	}
)

// extractSelectors is the last-resort strategy: guess common site
// conventions with ordered CSS patterns. A title is mandatory, and a
// title alone is not sufficient evidence of a recipe page.
func extractSelectors(doc *goquery.Document) *candidate {
	title := firstNonEmptyText(doc, titleSelectors)
	if title == "" {
		return nil
	}

	ingredients := collectFirstMatch(doc, ingredientSelectors)
	instructions := cleanInstructions(collectFirstMatch(doc, instructionSelectors))
	if len(ingredients) == 0 && len(instructions) == 0 {
		return nil
	}

	return &candidate{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: instructions,
	}
}

// firstNonEmptyText tries each selector in order and returns the text
// of the first element with non-empty text.
func firstNonEmptyText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := strings.TrimSpace(s.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// collectFirstMatch returns all non-empty element texts under the first
// selector that yields at least one, never merging across selectors.
func collectFirstMatch(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		var out []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				out = append(out, text)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
