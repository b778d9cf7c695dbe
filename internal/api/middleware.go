package api

import (
	"net/http"
	"strings"

	"hrm.service/internal/api/handler"
	"hrm.service/internal/core"
	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
	"hrm.service/pkg/token"
)

// AuthMiddleware resolves the caller identity from the bearer token before
// protected routes run.
type AuthMiddleware struct {
	Tokens *token.Manager
	Users  repository.UserRepository
}

// Protect rejects requests without a valid bearer token and puts the
// resolved user on the request context.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			handler.RespondError(w, r, &core.Error{Status: http.StatusUnauthorized, Message: "Not authorized, no token"})
			return
		}

		userID, err := m.Tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			handler.RespondError(w, r, &core.Error{Status: http.StatusUnauthorized, Message: "Not authorized, token failed"})
			return
		}

		user, err := m.Users.FindByID(r.Context(), userID)
		if err != nil {
			handler.RespondError(w, r, err)
			return
		}
		if user == nil || !user.IsActive {
			handler.RespondError(w, r, &core.Error{Status: http.StatusUnauthorized, Message: "Not authorized, user not found"})
			return
		}

		next.ServeHTTP(w, r.WithContext(handler.ContextWithUser(r.Context(), user)))
	})
}

// RequireRoles admits the call iff the caller's role is in the permitted
// set. Runs after Protect, so a missing identity is a bug, not a 403.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := handler.UserFromContext(r.Context())
			if user == nil {
				handler.RespondError(w, r, &core.Error{Status: http.StatusUnauthorized, Message: "Not authorized, no token"})
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			handler.RespondError(w, r, &core.Error{Status: http.StatusForbidden, Message: "Role not authorized to access this resource"})
		})
	}
}
