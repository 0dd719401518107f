package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sweetlayer/cakeshop/backend/internal/orders"
)

type contextKey string

const identityKey contextKey = "identity"

// JWTAuth validates a Bearer token and attaches the caller identity to the
// request context. The identity is opaque to the core: a subject string and
// an admin flag.
func JWTAuth(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header {
				http.Error(w, "Unauthorized: malformed authorization header", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Unauthorized: invalid claims", http.StatusUnauthorized)
				return
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				http.Error(w, "Unauthorized: missing subject", http.StatusUnauthorized)
				return
			}
			isAdmin, _ := claims["admin"].(bool)

			identity := orders.Identity{UserID: sub, Admin: isAdmin}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity attaches a caller identity to a context.
func WithIdentity(ctx context.Context, identity orders.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom extracts the caller identity placed by JWTAuth.
func IdentityFrom(ctx context.Context) (orders.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(orders.Identity)
	return identity, ok
}
