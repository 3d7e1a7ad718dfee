package http

import (
	"context"
	"errors"
	"net/http"

	"kidchef/internal/fetch"
	"kidchef/internal/recipe"
)

// failureInfo maps an extraction error onto an HTTP status, a stable
// machine-readable code, an actionable suggestion, and whether the
// client should offer manual entry as a fallback.
func failureInfo(err error) (status int, code, suggestion string, manualEntry bool) {
	switch {
	case errors.Is(err, fetch.ErrInvalidURL):
		return http.StatusBadRequest, "INVALID_URL",
			"Check that the link is a complete http(s) URL.", false
	case errors.Is(err, fetch.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT",
			"The site took too long to respond. Try again in a moment.", false
	case errors.Is(err, fetch.ErrPageNotFound):
		return http.StatusNotFound, "PAGE_NOT_FOUND",
			"The page no longer exists. Try a different recipe page or enter the recipe manually.", true
	case errors.Is(err, fetch.ErrRobotsDisallowed):
		return http.StatusForbidden, "ROBOTS_DISALLOWED",
			"This site does not allow automated reading. Enter the recipe manually.", true
	case errors.Is(err, recipe.ErrNoRecipeFound):
		return http.StatusUnprocessableEntity, "NO_RECIPE_FOUND",
			"No recipe was found on this page. Try a different recipe page or enter the recipe manually.", true
	case errors.Is(err, fetch.ErrHostUnreachable):
		return http.StatusBadGateway, "NETWORK_ERROR",
			"The site could not be reached. Check the address and try again.", false
	}

	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway, "NETWORK_ERROR",
			"The site returned an error. Try again later.", false
	}

	return http.StatusBadGateway, "NETWORK_ERROR",
		"Something went wrong fetching the page. Try again later.", false
}

// extractionError builds the error envelope for a failed extraction.
func extractionError(err error) (int, ErrorResponse) {
	status, code, suggestion, manual := failureInfo(err)
	return status, ErrorResponse{
		Success:     false,
		Code:        code,
		Error:       err.Error(),
		Suggestion:  suggestion,
		ManualEntry: manual,
	}
}
