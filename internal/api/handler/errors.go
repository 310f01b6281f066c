package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/skycastlabs/skycast-api/internal/api/response"
	"github.com/skycastlabs/skycast-api/internal/domain"
)

var validate = validator.New()

// exposeInternal controls whether unexpected errors leak detail to the
// client. Off in production.
var exposeInternal bool

// ExposeInternalErrors toggles diagnostic detail on 500 responses.
func ExposeInternalErrors(expose bool) {
	exposeInternal = expose
}

// writeError maps a service error to its HTTP status and a
// {"message": ...} body.
func writeError(w http.ResponseWriter, err error) {
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrMissingCoordinates),
		errors.Is(err, domain.ErrMissingCity):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCityNotFound):
		response.NotFound(w, err.Error())
	case errors.As(err, &upstreamErr):
		response.Error(w, upstreamErr.Status, upstreamErr.Message)
	default:
		log.Error().Err(err).Msg("unhandled request error")
		message := "internal server error"
		if exposeInternal {
			message = err.Error()
		}
		response.InternalError(w, message)
	}
}

// validationMessage turns the first validation failure into a
// client-facing message.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "invalid request body"
	}

	e := validationErrors[0]
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + e.Param() + " characters"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " failed validation on " + e.Tag()
	}
}
