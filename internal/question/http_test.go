package question

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsamate/dsamate/internal/identity"
	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

func newTestMux(seed ...Question) (*http.ServeMux, *fakeQuestionStore) {
	svc, questions, _ := newTestService(seed...)
	handlers := NewHTTPHandlers(svc, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/questions", handlers.List)
	mux.HandleFunc("GET /v1/questions/{id}", handlers.Get)
	mux.HandleFunc("POST /v1/questions", handlers.Create)
	mux.HandleFunc("POST /v1/questions/bulk", handlers.CreateBulk)
	mux.HandleFunc("POST /v1/questions/{id}/mark-solved", handlers.MarkSolved)
	return mux, questions
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httperrors.Envelope {
	t.Helper()
	var env httperrors.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	_, err := uuid.Parse(env.ID)
	require.NoError(t, err, "error envelope must carry a correlation id")
	return env
}

func TestListRejectsUnknownQueryParameter(t *testing.T) {
	mux, _ := newTestMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions?filter=title", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.ErrorMessage, "Invalid query parameters")
}

func TestListRejectsInvalidFilterColumn(t *testing.T) {
	mux, _ := newTestMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions?column=rating&query=5", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.ErrorMessage, "Invalid column to filter")
}

func TestListRejectsInvalidSortColumn(t *testing.T) {
	mux, _ := newTestMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions?sortBy=difficulty", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.ErrorMessage, "Invalid column to sortBy")
}

func TestListReturnsViews(t *testing.T) {
	mux, _ := newTestMux(
		seedQuestion("Two Sum", DifficultyEasy, TopicArray),
		seedQuestion("Three Sum", DifficultyMedium, TopicArray),
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions?pageNumber=1&pageSize=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var views []View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&views))
	assert.Len(t, views, 2)
}

func TestGetRejectsMalformedID(t *testing.T) {
	mux, _ := newTestMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnknownIDIs404(t *testing.T) {
	mux, _ := newTestMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	decodeEnvelope(t, rec)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	mux, _ := newTestMux(seedQuestion("Two Sum", DifficultyEasy, TopicArray))

	body, _ := json.Marshal(CreateInput{
		Title:       "Two Sum",
		Description: "find indices summing to target",
		Difficulty:  "Easy",
		Topic:       "Array",
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions", bytes.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.ErrorMessage, "already exists")
}

func TestCreateValidationFailureNamesField(t *testing.T) {
	mux, _ := newTestMux()

	body, _ := json.Marshal(CreateInput{Description: "d", Difficulty: "Easy", Topic: "Array"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.ErrorMessage, "title")
}

func TestMarkSolvedWithoutIdentityIs401(t *testing.T) {
	mux, _ := newTestMux(seedQuestion("Two Sum", DifficultyEasy, TopicArray))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions/"+uuid.NewString()+"/mark-solved", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkSolvedHappyPath(t *testing.T) {
	q := seedQuestion("Two Sum", DifficultyEasy, TopicArray)
	svc, _, statuses := newTestService(q)
	handlers := NewHTTPHandlers(svc, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/questions/{id}/mark-solved", handlers.MarkSolved)

	rc := reader()
	req := httptest.NewRequest(http.MethodPost, "/v1/questions/"+q.ID.String()+"/mark-solved", nil)
	req = req.WithContext(identity.IntoContext(req.Context(), rc))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := statuses.ForUser(context.Background(), rc.UserID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
