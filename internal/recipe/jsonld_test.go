package recipe

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestJSONLDBasicRecipe(t *testing.T) {
	doc := mustDoc(t, `<html><head><script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@type": "Recipe",
		"name": "Grandma's Lasagna",
		"description": "A classic.",
		"image": "https://example.com/lasagna.jpg",
		"prepTime": "PT30M",
		"cookTime": "PT1H15M",
		"totalTime": "PT1H45M",
		"recipeYield": "8 servings",
		"recipeIngredient": ["1 lb pasta", "2 cups ricotta"],
		"recipeInstructions": [
			{"@type": "HowToStep", "text": "1. Boil the pasta"},
			{"@type": "HowToStep", "text": "Layer everything"}
		],
		"recipeCategory": ["dinner", "dinner"],
		"recipeCuisine": "italian"
	}
	</script></head><body></body></html>`)

	c := extractJSONLD(doc)
	if c == nil {
		t.Fatal("expected a match")
	}
	if c.Title != "Grandma's Lasagna" {
		t.Fatalf("title = %q, want exact name field", c.Title)
	}
	if c.PrepTime != "30min" || c.CookTime != "1h 15min" || c.TotalTime != "1h 45min" {
		t.Fatalf("durations = %q/%q/%q", c.PrepTime, c.CookTime, c.TotalTime)
	}
	if c.Servings == nil || *c.Servings != 8 {
		t.Fatalf("servings = %v, want 8", c.Servings)
	}
	if len(c.Ingredients) != 2 {
		t.Fatalf("ingredients = %v", c.Ingredients)
	}
	if !reflect.DeepEqual(c.Instructions, []string{"Boil the pasta", "Layer everything"}) {
		t.Fatalf("instructions = %v, want ordinal stripped", c.Instructions)
	}
	if !reflect.DeepEqual(c.Tags, []string{"dinner", "italian"}) {
		t.Fatalf("tags = %v, want deduplicated category+cuisine", c.Tags)
	}
	if c.Image != "https://example.com/lasagna.jpg" {
		t.Fatalf("image = %q", c.Image)
	}
}

func TestJSONLDSecondBlockWins(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">{"@type": "WebSite", "name": "Some Food Blog"}</script>
	<script type="application/ld+json">{"@type": "Recipe", "name": "Pancakes", "recipeIngredient": ["flour"]}</script>
	</head><body></body></html>`)

	c := extractJSONLD(doc)
	if c == nil {
		t.Fatal("expected match from second block")
	}
	if c.Title != "Pancakes" {
		t.Fatalf("title = %q, want %q", c.Title, "Pancakes")
	}
}

func TestJSONLDMalformedBlockIsSkipped(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">{not valid json</script>
	<script type="application/ld+json">{"@type": "Recipe", "name": "Soup", "recipeIngredient": ["water"]}</script>
	</head><body></body></html>`)

	c := extractJSONLD(doc)
	if c == nil {
		t.Fatal("malformed block must not abort the scan")
	}
	if c.Title != "Soup" {
		t.Fatalf("title = %q, want %q", c.Title, "Soup")
	}
}

func TestJSONLDGraphWrapper(t *testing.T) {
	doc := mustDoc(t, `<html><head><script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "page"},
			{"@type": ["Recipe", "Thing"], "name": "Brownies", "recipeIngredient": ["cocoa"]}
		]
	}
	</script></head><body></body></html>`)

	c := extractJSONLD(doc)
	if c == nil {
		t.Fatal("expected match inside @graph")
	}
	if c.Title != "Brownies" {
		t.Fatalf("title = %q, want %q", c.Title, "Brownies")
	}
}

func TestJSONLDTopLevelArray(t *testing.T) {
	doc := mustDoc(t, `<html><head><script type="application/ld+json">
	[
		{"@type": "BreadcrumbList"},
		{"@type": "Recipe", "name": "Toast", "recipeInstructions": "Toast the bread"}
	]
	</script></head><body></body></html>`)

	c := extractJSONLD(doc)
	if c == nil {
		t.Fatal("expected match inside top-level array")
	}
	if c.Title != "Toast" {
		t.Fatalf("title = %q", c.Title)
	}
	if !reflect.DeepEqual(c.Instructions, []string{"Toast the bread"}) {
		t.Fatalf("scalar instructions should normalize to a list, got %v", c.Instructions)
	}
}

func TestJSONLDNoRecipeAnywhere(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">{"@type": "NewsArticle", "name": "Headline"}</script>
	</head><body></body></html>`)

	if c := extractJSONLD(doc); c != nil {
		t.Fatalf("expected no match, got %+v", c)
	}
}

func TestJSONLDUnwrapsValueShapes(t *testing.T) {
	doc := mustDoc(t, `<html><head><script type="application/ld+json">
	{
		"@type": "Recipe",
		"name": {"@value": "Curry"},
		"description": {"text": "Spicy."},
		"recipeIngredient": ["rice"]
	}
	</script></head><body></body></html>`)

	c := extractJSONLD(doc)
	if c == nil {
		t.Fatal("expected a match")
	}
	if c.Title != "Curry" {
		t.Fatalf("title = %q", c.Title)
	}
	if c.Description != "Spicy." {
		t.Fatalf("description = %q", c.Description)
	}
}
