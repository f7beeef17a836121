package httpx

import (
	"errors"
	"net/http"

	"github.com/sundayezeilo/readit/internal/errx"
)

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
func ErrorKindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Conflict:
		return http.StatusConflict
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Unauthenticated:
		return http.StatusUnauthorized
	case errx.Forbidden:
		return http.StatusForbidden
	case errx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKindToCode maps errx.Kind to error codes for JSON responses.
func ErrorKindToCode(kind errx.Kind) string {
	switch kind {
	case errx.NotFound:
		return "not_found"
	case errx.Conflict:
		return "conflict"
	case errx.Invalid:
		return "invalid_input"
	case errx.Unauthenticated:
		return "unauthorized"
	case errx.Forbidden:
		return "forbidden"
	case errx.Unavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// WriteUnauthorized writes the 401 body shared by every API route.
func WriteUnauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
}

// WriteServiceError writes the JSON error for err based on its kind. Invalid
// and Conflict errors expose their cause; every other kind gets fallback.
func WriteServiceError(w http.ResponseWriter, err error, fallback string) {
	kind := errx.KindOf(err)
	message := fallback
	var details any

	switch kind {
	case errx.Invalid, errx.Conflict, errx.NotFound:
		cause := errx.Cause(err)
		message = cause.Error()
		var verrs ValidationErrors
		if errors.As(cause, &verrs) {
			message = "request validation failed"
			details = verrs
		}
	case errx.Unauthenticated:
		WriteUnauthorized(w)
		return
	}

	WriteError(w, ErrorKindToStatus(kind), ErrorKindToCode(kind), message, details)
}
