package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/interview-coach/internal/extraction"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/question"
)

// HTTPStatus returns the appropriate HTTP status code for a domain error.
// Errors may arrive wrapped, so matching goes through errors.As.
func HTTPStatus(err error) int {
	var (
		cfgErr      *interview.InvalidConfigurationError
		stateErr    *interview.InvalidStateError
		orderErr    *interview.OutOfOrderError
		notDoneErr  *interview.NotCompletedError
		notFoundErr *interview.SessionNotFoundError
		contextErr  *question.InsufficientContextError
		formatErr   *extraction.UnsupportedFormatError
		extractErr  *extraction.ExtractionError
		validate    *ErrValidation
	)

	switch {
	case errors.As(err, &cfgErr), errors.As(err, &validate):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &stateErr), errors.As(err, &orderErr), errors.As(err, &notDoneErr):
		return http.StatusConflict
	case errors.As(err, &contextErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &formatErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extractErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}
