package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"kidchef/internal/config"
	"kidchef/internal/store"
)

// Test that authMiddleware is a no-op when auth is disabled.
func TestAuthMiddleware_Disabled(t *testing.T) {
	cfg := &config.Config{}
	st := &store.Store{}

	app := fiber.New()
	app.Use(authMiddleware(cfg, st))
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// Test that authMiddleware rejects a missing Authorization header.
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	st := &store.Store{}

	app := fiber.New()
	app.Use(authMiddleware(cfg, st))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "UNAUTHENTICATED" {
		t.Fatalf("expected code UNAUTHENTICATED, got %q", body.Code)
	}
}

// Test that authMiddleware rejects keys without the kidchef_ prefix
// before any database lookup happens.
func TestAuthMiddleware_BadPrefix(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	st := &store.Store{}

	app := fiber.New()
	app.Use(authMiddleware(cfg, st))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer sk-not-ours")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

// Test that adminOnlyMiddleware rejects non-admin keys.
func TestAdminOnlyMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("apiKey", store.APIKey{IsAdmin: false})
		return c.Next()
	})
	app.Use(adminOnlyMiddleware)
	app.Get("/admin-only", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin-only", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "FORBIDDEN" {
		t.Fatalf("expected code FORBIDDEN, got %q", body.Code)
	}
}

// Test that adminOnlyMiddleware rejects requests that never passed auth.
func TestAdminOnlyMiddleware_NoKey(t *testing.T) {
	app := fiber.New()
	app.Use(adminOnlyMiddleware)
	app.Get("/admin-only", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin-only", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
