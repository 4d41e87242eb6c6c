package question

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dsamate/dsamate/internal/identity"
	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

var queryableColumns = []string{"title", "difficulty", "topic", "solved"}

var allowedParameters = []string{"column", "query", "sortBy", "isAscending", "pageNumber", "pageSize"}

// HTTPHandlers provides the question REST endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for the question endpoints.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

// List handles GET /v1/questions. Unknown query parameters and disallowed
// filter or sort columns are rejected here, before the engine runs.
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var extra []string
	for key := range values {
		if !containsFold(allowedParameters, key) {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("Invalid query parameters: %s. Allowed parameters are: %s",
				strings.Join(extra, ", "), strings.Join(allowedParameters, ", ")))
		return
	}

	column := values.Get("column")
	if column != "" && !containsFold(queryableColumns, column) {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("Invalid column to filter %s. Allowed columns are: %s",
				column, strings.Join(queryableColumns, ", ")))
		return
	}

	sortBy := values.Get("sortBy")
	if sortBy != "" && strings.ToLower(sortBy) != "title" {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("Invalid column to sortBy %s. Allowed column is title", sortBy))
		return
	}

	params := ListParams{
		Column:     column,
		Query:      values.Get("query"),
		SortBy:     sortBy,
		Ascending:  true,
		PageNumber: 1,
		PageSize:   10,
	}

	if raw := values.Get("isAscending"); raw != "" {
		ascending, err := strconv.ParseBool(raw)
		if err != nil {
			httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "isAscending must be a boolean")
			return
		}
		params.Ascending = ascending
	}

	var err error
	if params.PageNumber, err = positiveInt(values.Get("pageNumber"), 1); err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "pageNumber must be a positive integer")
		return
	}
	if params.PageSize, err = positiveInt(values.Get("pageSize"), 10); err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "pageSize must be a positive integer")
		return
	}

	views, err := h.svc.List(r.Context(), identity.FromContext(r.Context()), params)
	if err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	h.respondJSON(w, http.StatusOK, views)
}

// Get handles GET /v1/questions/{id}.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Invalid question id")
		return
	}

	view, err := h.svc.Get(r.Context(), identity.FromContext(r.Context()), id)
	if err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Create handles POST /v1/questions.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	view, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// CreateBulk handles POST /v1/questions/bulk.
func (h *HTTPHandlers) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var inputs []CreateInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	views, err := h.svc.CreateBulk(r.Context(), inputs)
	if err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	h.respondJSON(w, http.StatusOK, views)
}

// MarkSolved handles POST /v1/questions/{id}/mark-solved.
func (h *HTTPHandlers) MarkSolved(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondMessage(w, h.logger, http.StatusBadRequest, "Invalid question id")
		return
	}

	if err := h.svc.MarkSolved(r.Context(), identity.FromContext(r.Context()), id); err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Solved handles GET /v1/questions/solved.
func (h *HTTPHandlers) Solved(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.SolvedByUser(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	h.respondJSON(w, http.StatusOK, views)
}

// Progress handles GET /v1/questions/progress.
func (h *HTTPHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.svc.Progress(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		httperrors.Respond(w, h.logger, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("write response failed")
	}
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	return n, nil
}
