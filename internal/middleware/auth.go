package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuscart/backend/internal/models"
)

type identityKey struct{}

// identity is what JWTAuth leaves in the request context.
type identity struct {
	username string
	role     models.Role
}

// JWTAuth accepts "Authorization: Bearer <token>" signed with HS256 and
// carrying sub, role and exp claims. A missing role means a regular user.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	key := func(*jwt.Token) (interface{}, error) { return []byte(jwtSecret), nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
			switch {
			case scheme == "" && !found:
				unauthorized(w, "Authorization header required")
				return
			case scheme != "Bearer" || raw == "":
				unauthorized(w, "Invalid authorization header format")
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, key); err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			id, ok := identityFromClaims(claims)
			if !ok {
				unauthorized(w, "Invalid token claims")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
		})
	}
}

func identityFromClaims(claims jwt.MapClaims) (identity, bool) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return identity{}, false
	}
	role, _ := claims["role"].(string)
	switch models.Role(role) {
	case "":
		return identity{username: sub, role: models.RoleUser}, true
	case models.RoleUser, models.RoleAdmin:
		return identity{username: sub, role: models.Role(role)}, true
	}
	return identity{}, false
}

// RequireAdmin must run after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRole(r.Context()) != models.RoleAdmin {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUsername(ctx context.Context) string {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id.username
}

func GetRole(ctx context.Context) models.Role {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id.role
}

// WithIdentity stores a username and role the way JWTAuth does.
func WithIdentity(ctx context.Context, username string, role models.Role) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{username: username, role: role})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(msg))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
