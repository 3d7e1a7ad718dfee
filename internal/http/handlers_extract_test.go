package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kidchef/internal/config"
	"kidchef/internal/store"
)

const recipePage = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Weeknight Tomato Soup",
  "description": "A quick soup.",
  "prepTime": "PT10M",
  "cookTime": "PT25M",
  "recipeYield": "4 servings",
  "recipeIngredient": ["2 cans tomatoes", "1 onion"],
  "recipeInstructions": ["1. Chop the onion.", "Simmer everything."]
}
</script>
</head><body><h1>Weeknight Tomato Soup</h1></body></html>`

func testServer() *Server {
	cfg := &config.Config{}
	cfg.Fetcher.TimeoutMs = 5000
	return NewServer(cfg, &store.Store{}, nil)
}

func postJSON(t *testing.T, s *Server, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	return resp
}

func TestExtractHandler_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(recipePage))
	}))
	defer upstream.Close()

	s := testServer()
	resp := postJSON(t, s, "/v1/extract", `{"url":"`+upstream.URL+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected success=true")
	}
	if body.Strategy != "jsonld" || body.Engine != "http" {
		t.Fatalf("expected jsonld/http, got %s/%s", body.Strategy, body.Engine)
	}
	if body.Data == nil || body.Data.Title != "Weeknight Tomato Soup" {
		t.Fatalf("unexpected recipe data: %+v", body.Data)
	}
	if body.Data.PrepTime != "10min" || body.Data.CookTime != "25min" {
		t.Fatalf("unexpected times: %q / %q", body.Data.PrepTime, body.Data.CookTime)
	}
	if body.Data.Servings == nil || *body.Data.Servings != 4 {
		t.Fatalf("unexpected servings: %v", body.Data.Servings)
	}
	if len(body.Data.Instructions) != 2 || body.Data.Instructions[0] != "Chop the onion." {
		t.Fatalf("unexpected instructions: %v", body.Data.Instructions)
	}
	if body.Data.SourceURL != upstream.URL {
		t.Fatalf("expected sourceUrl %q, got %q", upstream.URL, body.Data.SourceURL)
	}
}

func TestExtractHandler_MissingURL(t *testing.T) {
	s := testServer()
	resp := postJSON(t, s, "/v1/extract", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "BAD_REQUEST" {
		t.Fatalf("expected code BAD_REQUEST, got %q", body.Code)
	}
}

func TestExtractHandler_InvalidURL(t *testing.T) {
	s := testServer()
	resp := postJSON(t, s, "/v1/extract", `{"url":"ftp://example.com/soup"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "INVALID_URL" {
		t.Fatalf("expected code INVALID_URL, got %q", body.Code)
	}
	if body.ManualEntry {
		t.Fatalf("manualEntry should not be set for invalid URLs")
	}
}

func TestExtractHandler_NoRecipeFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>Just a blog post about knives.</p></body></html>`))
	}))
	defer upstream.Close()

	s := testServer()
	resp := postJSON(t, s, "/v1/extract", `{"url":"`+upstream.URL+`"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "NO_RECIPE_FOUND" {
		t.Fatalf("expected code NO_RECIPE_FOUND, got %q", body.Code)
	}
	if !body.ManualEntry {
		t.Fatalf("expected manualEntry=true for NO_RECIPE_FOUND")
	}
}

func TestExtractHandler_PageNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	s := testServer()
	resp := postJSON(t, s, "/v1/extract", `{"url":"`+upstream.URL+`/gone"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "PAGE_NOT_FOUND" {
		t.Fatalf("expected code PAGE_NOT_FOUND, got %q", body.Code)
	}
	if !body.ManualEntry {
		t.Fatalf("expected manualEntry=true for PAGE_NOT_FOUND")
	}
}

func TestExtractHandler_UpstreamServerError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	s := testServer()
	resp := postJSON(t, s, "/v1/extract", `{"url":"`+upstream.URL+`"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "NETWORK_ERROR" {
		t.Fatalf("expected code NETWORK_ERROR, got %q", body.Code)
	}
}

// Save validation runs before any database access, so the missing-field
// codes can be tested without Postgres.
func TestSaveRecipeHandler_Validation(t *testing.T) {
	s := testServer()

	resp := postJSON(t, s, "/v1/recipes", `{"recipe":{"title":"Soup","ingredients":["water"]}}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "MISSING_INSTRUCTIONS" {
		t.Fatalf("expected code MISSING_INSTRUCTIONS, got %q", body.Code)
	}

	resp = postJSON(t, s, "/v1/recipes", `{"recipe":{"title":"Soup","instructions":["boil"]}}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "MISSING_INGREDIENTS" {
		t.Fatalf("expected code MISSING_INGREDIENTS, got %q", body.Code)
	}

	resp = postJSON(t, s, "/v1/recipes", `{"recipe":{"ingredients":["water"],"instructions":["boil"]}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", resp.StatusCode)
	}
}

func TestHealthzShallow(t *testing.T) {
	s := testServer()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
