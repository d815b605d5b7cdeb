package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// MapErrorToStatusCode translates store and domain errors into HTTP status
// codes. Unrecognized errors map to 500 so that nothing unexpected leaks
// out as a client error.
func MapErrorToStatusCode(err error) int {
	switch {
	case store.IsNotFoundError(err):
		return http.StatusNotFound
	case store.IsConflictError(err):
		return http.StatusConflict
	case store.IsInvalidError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidGrade):
		return http.StatusBadRequest
	case store.IsStorageError(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for the given error.
// Known sentinel errors produce their own text; everything else collapses
// to a generic message per status class so internal details never reach
// the client.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return "deck not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "card not found"
	case errors.Is(err, store.ErrDeckNameExists):
		return "a deck with that name already exists"
	case errors.Is(err, domain.ErrInvalidGrade):
		return "grade must be 1 (hard), 2 (medium), or 3 (easy)"
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest:
		return "invalid request"
	default:
		return "an internal error occurred"
	}
}
