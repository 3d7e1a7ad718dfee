package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"kidchef/internal/recipe"
	"kidchef/internal/services"
)

// extractHandler runs a single synchronous extraction: fetch the page,
// walk the strategy cascade, and return the normalized recipe.
func extractHandler(c *fiber.Ctx) error {
	var reqBody ExtractRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	if reqBody.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'url'",
		})
	}

	svc, ok := c.Locals("recipeService").(services.RecipeService)
	if !ok || svc == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "recipe service not configured",
		})
	}

	opts := services.ExtractOptions{}
	if reqBody.UseBrowser != nil {
		opts.UseBrowser = *reqBody.UseBrowser
	}
	if reqBody.Timeout != nil && *reqBody.Timeout > 0 {
		opts.TimeoutMs = *reqBody.Timeout
	}

	// Phase transitions are debug-logged per request so slow sites can
	// be diagnosed from the logs alone.
	if logVal := c.Locals("logger"); logVal != nil {
		if logger, ok := logVal.(*slog.Logger); ok {
			reqID := c.Locals("request_id")
			url := reqBody.URL
			opts.Progress = func(p recipe.Phase) {
				logger.Debug("extract phase", "request_id", reqID, "url", url, "phase", string(p))
			}
		}
	}

	// Bound the whole extraction; the fetcher applies its own timeout
	// but the cascade should not outlive the request either.
	timeoutMs := opts.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = 30000
	}
	ctx, cancel := context.WithTimeout(c.Context(), time.Duration(timeoutMs+5000)*time.Millisecond)
	defer cancel()

	ext, err := svc.Extract(ctx, reqBody.URL, opts)
	if err != nil {
		status, body := extractionError(err)
		return c.Status(status).JSON(body)
	}

	return c.JSON(ExtractResponse{
		Success:  true,
		Data:     ext.Recipe,
		Strategy: ext.Strategy,
		Engine:   ext.Engine,
		Cached:   ext.Strategy == "cache",
	})
}
