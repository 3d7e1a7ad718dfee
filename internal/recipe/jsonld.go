package recipe

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractJSONLD scans embedded linked-data blocks for a Recipe record.
// Blocks are visited in document order; a block that fails to parse is
// skipped, never aborting the scan. The first Recipe found wins.
func extractJSONLD(doc *goquery.Document) *candidate {
	var found *candidate

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(sel.Text()), &v); err != nil {
			return true // malformed block, try the next one
		}

		node := findRecipeNode(v)
		if node == nil {
			return true
		}

		found = mapRecipeNode(node)
		return false
	})

	return found
}

// findRecipeNode walks a parsed linked-data value looking for the first
// object whose @type is Recipe. The value is a tagged variant of
// {array, object, scalar}: arrays are searched in order, objects match
// on their type discriminator or recurse into an @graph wrapper.
func findRecipeNode(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if node := findRecipeNode(e); node != nil {
				return node
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

// isRecipeType matches a @type discriminator that is either the string
// "Recipe" or a list containing it.
func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// mapRecipeNode maps a Recipe object's fields onto the output schema.
// The title is taken verbatim from the name field.
func mapRecipeNode(node map[string]any) *candidate {
	ingredients := toList(node["recipeIngredient"])
	if len(ingredients) == 0 {
		// schema.org's pre-2017 property name, still in the wild.
		ingredients = toList(node["ingredients"])
	}

	tags := dedupe(append(toList(node["recipeCategory"]), toList(node["recipeCuisine"])...))

	return &candidate{
		Title:        textValue(node["name"]),
		Description:  strings.TrimSpace(flattenMarkup(textValue(node["description"]))),
		Image:        imageValue(node["image"]),
		PrepTime:     humanDuration(textValue(node["prepTime"])),
		CookTime:     humanDuration(textValue(node["cookTime"])),
		TotalTime:    humanDuration(textValue(node["totalTime"])),
		Servings:     parseServings(node["recipeYield"]),
		Ingredients:  ingredients,
		Instructions: cleanInstructions(toList(node["recipeInstructions"])),
		Tags:         tags,
	}
}
