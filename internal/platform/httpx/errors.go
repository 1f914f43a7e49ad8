package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for request-plumbing failures that happen before a domain
// service is reached. Domain packages keep their own error values and map
// them in their handlers.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// RespondError maps plumbing sentinels to RFC7807 responses. Anything
// unrecognized becomes an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
