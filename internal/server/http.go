package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dsamate/dsamate/internal/config"
	"github.com/dsamate/dsamate/internal/identity"
	"github.com/dsamate/dsamate/internal/logging"
	"github.com/dsamate/dsamate/internal/question"
)

// NewHTTPServer wires all routes and the middleware chain for the API service.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	authHandlers *identity.HTTPHandlers,
	questionHandlers *question.HTTPHandlers,
	authMiddleware func(http.Handler) http.Handler,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandlers.Login)

	requireAuth := identity.RequireAuth(logger)
	requireWriter := identity.RequireRole(identity.RoleWriter, logger)

	mux.HandleFunc("GET /v1/questions", questionHandlers.List)
	mux.Handle("GET /v1/questions/solved", requireAuth(http.HandlerFunc(questionHandlers.Solved)))
	mux.Handle("GET /v1/questions/progress", requireAuth(http.HandlerFunc(questionHandlers.Progress)))
	mux.HandleFunc("GET /v1/questions/{id}", questionHandlers.Get)
	mux.Handle("POST /v1/questions", requireWriter(http.HandlerFunc(questionHandlers.Create)))
	mux.Handle("POST /v1/questions/bulk", requireWriter(http.HandlerFunc(questionHandlers.CreateBulk)))
	mux.Handle("POST /v1/questions/{id}/mark-solved", requireAuth(http.HandlerFunc(questionHandlers.MarkSolved)))

	var handler http.Handler = mux
	handler = authMiddleware(handler)
	handler = requestLogger(logger, handler)
	handler = metricsMiddleware(handler)
	handler = corsMiddleware(cfg.CORS, handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), logger)))
	})
}

func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	allowedOrigins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowedOrigins[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
