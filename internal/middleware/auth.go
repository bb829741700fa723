package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const subjectKey contextKey = "auth.subject"

// Subject returns the authenticated principal stored by RequireStaff.
func Subject(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}

// RequireStaff gates staff-only endpoints behind an HS256 bearer token with
// a "staff" or "service" role claim. The marketplace identity provider
// issues the tokens; this only verifies them.
func RequireStaff(secret []byte) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeUnauthorized(w, "invalid token")
				return
			}

			role, _ := claims["role"].(string)
			if role != "staff" && role != "service" {
				writeUnauthorized(w, "insufficient role")
				return
			}

			sub, _ := claims["sub"].(string)
			next(w, r.WithContext(context.WithValue(r.Context(), subjectKey, sub)))
		}
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
