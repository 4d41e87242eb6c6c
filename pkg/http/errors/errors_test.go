package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondAndDecode(t *testing.T, err error) (int, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	Respond(rec, zerolog.Nop(), err)

	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	_, parseErr := uuid.Parse(env.ID)
	require.NoError(t, parseErr, "correlation id must be a uuid")
	return rec.Code, env
}

func TestRespondConflict(t *testing.T) {
	status, env := respondAndDecode(t, fmt.Errorf("question %q: %w", "Two Sum", ErrAlreadyExists))
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, env.ErrorMessage, "Two Sum")
	assert.Contains(t, env.ErrorMessage, "already exists")
}

func TestRespondNotFound(t *testing.T) {
	status, _ := respondAndDecode(t, fmt.Errorf("question: %w", ErrNotFound))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRespondUnauthorized(t *testing.T) {
	status, _ := respondAndDecode(t, fmt.Errorf("no caller identity: %w", ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRespondValidationCarriesFieldDetail(t *testing.T) {
	status, env := respondAndDecode(t, NewValidation("title", "title is required"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title: title is required", env.ErrorMessage)
}

func TestRespondUnexpectedErrorNeverLeaksDetail(t *testing.T) {
	status, env := respondAndDecode(t, errors.New("pq: connection refused at 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, env.ErrorMessage, "10.0.0.3")
	assert.Contains(t, env.ErrorMessage, "provided id")
}

func TestRespondMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondMessage(rec, zerolog.Nop(), http.StatusBadRequest, "Incorrect password!")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Incorrect password!", env.ErrorMessage)
	assert.NotEmpty(t, env.ID)
}
