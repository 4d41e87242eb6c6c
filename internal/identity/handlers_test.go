package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	svc, _, _ := newTestIdentity(t)
	handlers := NewHTTPHandlers(svc, zerolog.Nop())

	rec := postJSON(t, handlers.Register,
		`{"username":"writer@example.com","password":"supersecret","roles":["Writer"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "User registration successful! Please login", body["message"])
}

func TestRegisterFailureIsGeneric400(t *testing.T) {
	svc, _, _ := newTestIdentity(t)
	handlers := NewHTTPHandlers(svc, zerolog.Nop())

	require.NoError(t, svc.Register(context.Background(), RegisterRequest{
		Username: "writer@example.com",
		Password: "supersecret",
	}))

	rec := postJSON(t, handlers.Register,
		`{"username":"writer@example.com","password":"supersecret"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env httperrors.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Something went wrong", env.ErrorMessage)
}

func TestLoginEndpointReturnsToken(t *testing.T) {
	svc, _, tokens := newTestIdentity(t)
	handlers := NewHTTPHandlers(svc, zerolog.Nop())

	require.NoError(t, svc.Register(context.Background(), RegisterRequest{
		Username: "reader@example.com",
		Password: "supersecret",
		Roles:    []string{RoleReader},
	}))

	rec := postJSON(t, handlers.Login,
		`{"username":"reader@example.com","password":"supersecret"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	claims, err := tokens.Validate(body["jwtToken"])
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", claims.Email)
}

func TestLoginErrorTexts(t *testing.T) {
	svc, _, _ := newTestIdentity(t)
	handlers := NewHTTPHandlers(svc, zerolog.Nop())

	require.NoError(t, svc.Register(context.Background(), RegisterRequest{
		Username: "reader@example.com",
		Password: "supersecret",
	}))

	rec := postJSON(t, handlers.Login, `{"username":"ghost@example.com","password":"supersecret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env httperrors.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Incorrect username", env.ErrorMessage)

	rec = postJSON(t, handlers.Login, `{"username":"reader@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env = httperrors.Envelope{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Incorrect password!", env.ErrorMessage)
}
