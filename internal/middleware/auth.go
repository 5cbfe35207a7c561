package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"quill/internal/auth"
	"quill/internal/httputil"
)

// AuthMiddleware validates the bearer token and stores the caller's user ID
// in the request context. Requests without a valid token get a 401.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth applies AuthMiddleware only to paths under prefix.
// Everything else (health, metrics) stays public.
func RequireAuth(prefix string, verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	authenticate := AuthMiddleware(verifier, logger)
	return func(next http.Handler) http.Handler {
		protected := authenticate(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Let CORS preflight through unauthenticated
			if r.Method == http.MethodOptions || !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}
