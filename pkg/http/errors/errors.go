// Package errors defines the domain failure taxonomy and the single HTTP
// boundary that translates failures into client responses. Every failure is
// logged at error severity with a fresh correlation id; the client sees the
// same id plus either the specific domain message or a generic text.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sentinel domain errors raised by repositories and services. Wrap them with
// fmt.Errorf("...: %w", Err...) to carry the client-visible detail.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
)

// ValidationError reports malformed or missing input, with field detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Envelope is the wire shape of every error response.
type Envelope struct {
	ID           string `json:"id"`
	ErrorMessage string `json:"errorMessage"`
}

const genericMessage = "Something went wrong! Please check the logs with the help of the provided id"

// Respond translates err into an HTTP status and the error envelope. The
// correlation id is generated here and logged alongside the full error before
// the response is written; unexpected errors never leak their text.
func Respond(w http.ResponseWriter, logger zerolog.Logger, err error) {
	errorID := uuid.New()

	logger.Error().
		Err(err).
		Str("error_id", errorID.String()).
		Msg("request failed")

	status := http.StatusInternalServerError
	message := genericMessage

	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Error()
	case errors.Is(err, ErrAlreadyExists):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	}

	writeEnvelope(w, status, Envelope{ID: errorID.String(), ErrorMessage: message})
}

// RespondMessage writes the envelope with an explicit status and message,
// for boundary checks that fail before any service call.
func RespondMessage(w http.ResponseWriter, logger zerolog.Logger, status int, message string) {
	errorID := uuid.New()

	logger.Error().
		Str("error_id", errorID.String()).
		Int("status", status).
		Msg(message)

	writeEnvelope(w, status, Envelope{ID: errorID.String(), ErrorMessage: message})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
