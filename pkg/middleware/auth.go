package middleware

import (
	"context"
	"net/http"
	apperrors "pawcare/pkg/errors"
	"pawcare/pkg/logger"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"

	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"

	RoleAdmin = "admin"

	maxUserIDLength = 128
)

// UserAuth trusts the identity headers set by the gateway in front of the
// service. Requests under /api/ without a user id are rejected unless their
// path is listed in publicPaths.
func UserAuth(log *logger.Logger, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			role := strings.ToLower(strings.TrimSpace(r.Header.Get(UserRoleHeader)))

			if len(userID) > maxUserIDLength {
				writeAppError(w, apperrors.Unauthorized("Invalid "+UserIDHeader+" header"))
				return
			}

			_, isPublic := public[r.URL.Path]
			if userID == "" && !isPublic && strings.HasPrefix(r.URL.Path, "/api/") {
				log.Warn("Missing user identity",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)
				writeAppError(w, apperrors.Unauthorized("Missing "+UserIDHeader+" header"))
				return
			}

			ctx := r.Context()
			if userID != "" {
				ctx = context.WithValue(ctx, UserIDKey, userID)
			}
			if role != "" {
				ctx = context.WithValue(ctx, UserRoleKey, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func RoleFrom(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

// RequireRole guards a single route.
func RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if UserIDFrom(r.Context()) == "" {
			writeAppError(w, apperrors.Unauthorized("Missing "+UserIDHeader+" header"))
			return
		}
		if RoleFrom(r.Context()) != role {
			writeAppError(w, apperrors.Forbidden("Insufficient role for this operation"))
			return
		}
		next(w, r, ps)
	}
}
