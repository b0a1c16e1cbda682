package middleware

import (
	"context"
	"net/http"
	"strings"

	"filmsoc-backend/internal/auth"
	"filmsoc-backend/internal/repositories"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const UsernameKey contextKey = "username"
const IsAdminKey contextKey = "is_admin"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	memberRepo *repositories.MemberRepository
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, memberRepo *repositories.MemberRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		memberRepo: memberRepo,
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate is a middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// Check database for current member status so admin demotions
		// take effect immediately, not at token expiry
		member, err := m.memberRepo.Get(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Member not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, member.ID)
		ctx = context.WithValue(ctx, UsernameKey, member.Username)
		ctx = context.WithValue(ctx, IsAdminKey, member.IsAdmin)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is a middleware that ensures the member is a core-team admin.
// Must be chained after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, ok := GetIsAdminFromContext(r.Context())
		if !ok || !isAdmin {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts member ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUsernameFromContext extracts username from request context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetIsAdminFromContext extracts the admin flag from request context
func GetIsAdminFromContext(ctx context.Context) (bool, bool) {
	isAdmin, ok := ctx.Value(IsAdminKey).(bool)
	return isAdmin, ok
}
