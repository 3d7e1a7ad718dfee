package http

import "kidchef/internal/model"

// ExtractRequest is the payload for POST /v1/extract.
type ExtractRequest struct {
	URL        string `json:"url"`
	UseBrowser *bool  `json:"useBrowser,omitempty"`
	Timeout    *int   `json:"timeout,omitempty"`
}

// ExtractResponse wraps a successful extraction.
type ExtractResponse struct {
	Success  bool                 `json:"success"`
	Data     *model.ScrapedRecipe `json:"data,omitempty"`
	Strategy string               `json:"strategy,omitempty"`
	Engine   string               `json:"engine,omitempty"`
	Cached   bool                 `json:"cached,omitempty"`
}

// ErrorResponse is the error envelope. Code is machine-readable;
// ManualEntry tells clients whether offering manual recipe entry is an
// appropriate fallback for this failure.
type ErrorResponse struct {
	Success     bool        `json:"success"`
	Code        string      `json:"code,omitempty"`
	Error       string      `json:"error"`
	Suggestion  string      `json:"suggestion,omitempty"`
	ManualEntry bool        `json:"manualEntry,omitempty"`
	Details     interface{} `json:"details,omitempty"`
}

// SaveRecipeRequest is the payload for POST /v1/recipes.
type SaveRecipeRequest struct {
	Recipe *model.ScrapedRecipe `json:"recipe"`
}

// RecipeRecord is a stored extraction row as exposed over the API.
// Failed batch entries carry a code and error instead of recipe data.
type RecipeRecord struct {
	ID        string               `json:"id"`
	SourceURL string               `json:"sourceUrl"`
	Recipe    *model.ScrapedRecipe `json:"recipe,omitempty"`
	Code      string               `json:"code,omitempty"`
	Error     string               `json:"error,omitempty"`
	CreatedAt string               `json:"createdAt"`
}

type RecipeResponse struct {
	Success bool          `json:"success"`
	Data    *RecipeRecord `json:"data,omitempty"`
	Code    string        `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type RecipeListResponse struct {
	Success bool           `json:"success"`
	Data    []RecipeRecord `json:"data"`
}

// BatchExtractRequest is the payload for POST /v1/batch/extract.
type BatchExtractRequest struct {
	URLs       []string `json:"urls"`
	UseBrowser *bool    `json:"useBrowser,omitempty"`
}

type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
)

type BatchExtractResponse struct {
	Success bool           `json:"success"`
	ID      string         `json:"id,omitempty"`
	Status  BatchStatus    `json:"status,omitempty"`
	Total   int            `json:"total,omitempty"`
	Data    []RecipeRecord `json:"data,omitempty"`
	Code    string         `json:"code,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CreateKeyRequest is the payload for POST /admin/keys.
type CreateKeyRequest struct {
	Label              string `json:"label"`
	IsAdmin            bool   `json:"isAdmin,omitempty"`
	RateLimitPerMinute *int   `json:"rateLimitPerMinute,omitempty"`
}

type CreateKeyResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Key     string `json:"key,omitempty"`
	Label   string `json:"label,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

type KeyRecord struct {
	ID                 string `json:"id"`
	Label              string `json:"label"`
	IsAdmin            bool   `json:"isAdmin"`
	RateLimitPerMinute *int   `json:"rateLimitPerMinute,omitempty"`
	CreatedAt          string `json:"createdAt"`
}

type KeyListResponse struct {
	Success bool        `json:"success"`
	Data    []KeyRecord `json:"data"`
}
