package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

type requestContextKey struct{}

// FromContext returns the caller identity resolved by Middleware, or nil for
// anonymous requests.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// IntoContext stores a resolved caller identity; exported for handler tests.
func IntoContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// Middleware validates bearer tokens and resolves the caller identity into
// the request context. Requests without an Authorization header pass through
// anonymously; the per-route gates decide what anonymous callers may do.
func Middleware(svc *Service, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httperrors.RespondMessage(w, logger, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			claims, err := svc.ValidateToken(parts[1])
			if err != nil {
				logger.Warn().Err(err).Msg("token validation failed")
				httperrors.RespondMessage(w, logger, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				httperrors.RespondMessage(w, logger, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			rc := &RequestContext{
				UserID: userID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			}
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), rc)))
		})
	}
}

// RequireAuth ensures the request carries a resolved caller identity.
func RequireAuth(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()) == nil {
				httperrors.RespondMessage(w, logger, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole ensures the caller holds the named role.
func RequireRole(role string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := FromContext(r.Context())
			if rc == nil {
				httperrors.RespondMessage(w, logger, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !rc.HasRole(role) {
				httperrors.RespondMessage(w, logger, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
