package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"inkstone/internal/httputil"
)

// AuthMiddleware verifies the Bearer token on every request and puts the
// verified owning-user id into the request context. The core trusts this id
// without re-validating it downstream.
func AuthMiddleware(secret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Liveness probes carry no credentials.
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := verifyRequest(r, secret, logger)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing or invalid credentials")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}

func verifyRequest(r *http.Request, secret []byte, logger *slog.Logger) (string, bool) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return "", false
	}

	// Pin the algorithm so a token cannot downgrade to "none" or switch to
	// an asymmetric scheme.
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		logger.Debug("token rejected", "error", err)
		return "", false
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		logger.Debug("token missing subject claim")
		return "", false
	}
	return subject, true
}
