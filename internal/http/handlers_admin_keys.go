package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"kidchef/internal/store"
)

// createKeyHandler mints a new API key. The raw key is returned exactly
// once; only its hash is stored.
func createKeyHandler(c *fiber.Ctx) error {
	var reqBody CreateKeyRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}
	if reqBody.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'label'",
		})
	}

	st, ok := c.Locals("store").(*store.Store)
	if !ok || st == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "store not configured",
		})
	}

	raw, key, err := st.CreateRandomAPIKey(c.Context(), reqBody.Label, reqBody.IsAdmin, reqBody.RateLimitPerMinute)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to create API key",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(CreateKeyResponse{
		Success: true,
		ID:      key.ID.String(),
		Key:     raw,
		Label:   key.Label,
		IsAdmin: key.IsAdmin,
	})
}

func listKeysHandler(c *fiber.Ctx) error {
	st, ok := c.Locals("store").(*store.Store)
	if !ok || st == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "store not configured",
		})
	}

	keys, err := st.ListAPIKeys(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to list API keys",
		})
	}

	records := make([]KeyRecord, 0, len(keys))
	for _, k := range keys {
		rec := KeyRecord{
			ID:        k.ID.String(),
			Label:     k.Label,
			IsAdmin:   k.IsAdmin,
			CreatedAt: k.CreatedAt.UTC().Format(time.RFC3339),
		}
		if k.RateLimitPerMinute.Valid {
			rl := int(k.RateLimitPerMinute.Int32)
			rec.RateLimitPerMinute = &rl
		}
		records = append(records, rec)
	}
	return c.JSON(KeyListResponse{Success: true, Data: records})
}
