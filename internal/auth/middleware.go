package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// CookieName is the session cookie the client holds.
const CookieName = "token"

type contextKey string

// UserIDKey is the context key under which the middleware stores the
// authenticated user's ID.
const UserIDKey = contextKey("userID")

// UserIDFromContext returns the authenticated user ID attached by
// Middleware, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}

// Middleware protects routes behind a valid session token. The token is
// read from the session cookie first, then from an Authorization bearer
// header.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			if cookie, err := r.Cookie(CookieName); err == nil {
				tokenStr = strings.TrimSpace(cookie.Value)
			}

			if tokenStr == "" {
				header := r.Header.Get("Authorization")
				if strings.HasPrefix(header, "Bearer ") {
					tokenStr = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
				}
			}

			if tokenStr == "" {
				unauthorized(w, "Not authorized. Please login again.")
				return
			}

			userID, err := ValidateToken(tokenStr, secret)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					unauthorized(w, "Session expired. Please login again.")
					return
				}
				unauthorized(w, "Invalid token. Please login again.")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
