package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

// HTTPHandlers provides the auth endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for registration and login.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

// Register handles POST /v1/auth/register.
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.svc.Register(r.Context(), req); err != nil {
		var validationErr *httperrors.ValidationError
		if errors.As(err, &validationErr) {
			httperrors.Respond(w, h.logger, err)
			return
		}
		// Any identity-store failure surfaces as a 400, detail stays in the logs.
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Something went wrong")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "User registration successful! Please login",
	})
}

// Login handles POST /v1/auth/login.
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownUser):
			httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Incorrect username")
		case errors.Is(err, ErrBadPassword):
			httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Incorrect password!")
		default:
			httperrors.Respond(w, h.logger, err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"jwtToken": token})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("write response failed")
	}
}
