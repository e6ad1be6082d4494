package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/messagely/messagely-go/internal/crypto"
)

type contextKey string

const identityKey contextKey = "identity"

// tokenQueryParam is the query fallback for clients that cannot set headers.
const tokenQueryParam = "_token"

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*crypto.Claims, error)
}

// JWTAuth returns middleware that verifies the session token and stores the
// username it names as the request identity. The token comes from a Bearer
// Authorization header or, failing that, the _token query parameter.
func JWTAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing or malformed token")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		return token, found && token != ""
	}

	token := r.URL.Query().Get(tokenQueryParam)
	return token, token != ""
}

// WithIdentity returns a copy of ctx carrying the authenticated username.
func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, identityKey, username)
}

// IdentityFromContext extracts the authenticated username from the request context.
func IdentityFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(identityKey).(string)
	return username, ok && username != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
