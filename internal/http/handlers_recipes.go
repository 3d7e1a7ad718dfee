package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kidchef/internal/model"
	"kidchef/internal/store"
)

// recipeRecord converts a stored row into its API representation,
// decoding the recipe JSON when present.
func recipeRecord(r store.Recipe) RecipeRecord {
	rec := RecipeRecord{
		ID:        r.ID.String(),
		SourceURL: r.SourceURL,
		Code:      r.Code.String,
		Error:     r.Error.String,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.Data.Valid {
		var parsed model.ScrapedRecipe
		if err := json.Unmarshal(r.Data.RawMessage, &parsed); err == nil {
			rec.Recipe = &parsed
		}
	}
	return rec
}

// saveRecipeHandler persists a recipe a user chose to keep. Extraction
// only needs a title plus either list, but a saved recipe must be
// cookable, so both ingredients and instructions are required here.
func saveRecipeHandler(c *fiber.Ctx) error {
	var reqBody SaveRecipeRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	rec := reqBody.Recipe
	if rec == nil || rec.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'recipe.title'",
		})
	}
	if len(rec.Instructions) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success:     false,
			Code:        "MISSING_INSTRUCTIONS",
			Error:       "Recipe has no instructions",
			Suggestion:  "Add at least one instruction step before saving.",
			ManualEntry: true,
		})
	}
	if len(rec.Ingredients) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Success:     false,
			Code:        "MISSING_INGREDIENTS",
			Error:       "Recipe has no ingredients",
			Suggestion:  "Add at least one ingredient before saving.",
			ManualEntry: true,
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

	data, err := json.Marshal(rec)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to encode recipe",
		})
	}

	row, err := st.InsertRecipe(c.Context(), uuid.New(), uuid.NullUUID{}, rec.SourceURL, rec.Title, data, nil, nil, true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to save recipe",
		})
	}

	record := recipeRecord(row)
	return c.Status(fiber.StatusCreated).JSON(RecipeResponse{Success: true, Data: &record})
}

// listRecipesHandler returns saved recipes, newest first.
func listRecipesHandler(c *fiber.Ctx) error {
	st, ok := c.Locals("store").(*store.Store)
	if !ok || st == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "store not configured",
		})
	}

	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := st.ListSavedRecipes(c.Context(), int32(limit))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to list recipes",
		})
	}

	records := make([]RecipeRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, recipeRecord(r))
	}
	return c.JSON(RecipeListResponse{Success: true, Data: records})
}

func getRecipeHandler(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Invalid recipe id",
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

	row, err := st.GetRecipeByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_FOUND",
				Error:   "Recipe not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to load recipe",
		})
	}

	record := recipeRecord(row)
	return c.JSON(RecipeResponse{Success: true, Data: &record})
}

func deleteRecipeHandler(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Invalid recipe id",
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

	n, err := st.DeleteRecipe(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to delete recipe",
		})
	}
	if n == 0 {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "Recipe not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
