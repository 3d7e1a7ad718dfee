package http

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kidchef/internal/jobs"
	"kidchef/internal/store"
)

// maxBatchURLs bounds how many pages one batch job may extract.
const maxBatchURLs = 50

// batchExtractInput is the jobs.input payload for a batch job. The
// worker decodes it back when executing.
type batchExtractInput struct {
	URLs       []string `json:"urls"`
	UseBrowser bool     `json:"useBrowser"`
}

// batchExtractHandler enqueues an asynchronous extraction over several
// URLs and returns the job id for polling.
func batchExtractHandler(c *fiber.Ctx) error {
	var reqBody BatchExtractRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	if len(reqBody.URLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'urls'",
		})
	}
	if len(reqBody.URLs) > maxBatchURLs {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BATCH_TOO_LARGE",
			Error:   fmt.Sprintf("Batch is limited to %d urls", maxBatchURLs),
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

	input := batchExtractInput{URLs: reqBody.URLs}
	if reqBody.UseBrowser != nil {
		input.UseBrowser = *reqBody.UseBrowser
	}

	job, err := st.InsertJob(c.Context(), uuid.New(), jobs.TypeBatchExtract, input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to enqueue batch job",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(BatchExtractResponse{
		Success: true,
		ID:      job.ID.String(),
		Status:  BatchStatus(job.Status),
		Total:   len(reqBody.URLs),
	})
}

// batchExtractStatusHandler reports job status plus all per-URL
// outcomes stored so far.
func batchExtractStatusHandler(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Invalid job id",
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

	job, err := st.GetJobByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Code:    "NOT_FOUND",
				Error:   "Batch job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to load batch job",
		})
	}

	rows, err := st.RecipesByJobID(c.Context(), job.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   "failed to load batch results",
		})
	}

	records := make([]RecipeRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, recipeRecord(r))
	}

	resp := BatchExtractResponse{
		Success: true,
		ID:      job.ID.String(),
		Status:  BatchStatus(job.Status),
		Total:   len(records),
		Data:    records,
	}
	if job.Error.Valid {
		resp.Error = job.Error.String
	}
	return c.JSON(resp)
}
