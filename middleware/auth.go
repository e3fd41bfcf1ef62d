package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lalit-mendapara/fittrack/config"
)

type contextKey string

const UserContextKey contextKey = "user_id"

// Auth requires "Authorization: Bearer <token>" and puts the resolved user id
// in the request context. The token is either an HS256 JWT whose sub claim is
// the user id (verified against JWT_SECRET), or, for local development, a
// bare numeric id.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: No Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}

		userID, err := resolveUserID(parts[1])
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resolveUserID(token string) (uint, error) {
	if strings.Contains(token, ".") {
		return userIDFromJWT(token)
	}
	// Bare numeric id, local use only.
	id, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func userIDFromJWT(raw string) (uint, error) {
	secret := config.GetEnv("JWT_SECRET", "dev-secret")

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// UserID extracts the authenticated user from a request context.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserContextKey).(uint)
	return id, ok
}
