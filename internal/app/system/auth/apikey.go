// Package auth guards the JSON API with a shared API key.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// MinKeyLength is the shortest API key not reported as weak.
const MinKeyLength = 24

// APIKeyAuth returns middleware that requires "Authorization: Bearer <key>".
//
// Usage in a feature's routes.go:
//
//	r := chi.NewRouter()
//	r.Use(apicors.Middleware())
//	r.Use(auth.APIKeyAuth(apiKey, logger))
//
// Missing, malformed or wrong keys get 401 with a JSON error body. When no key
// is configured every request is rejected.
func APIKeyAuth(validKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	if validKey == "" {
		logger.Warn("API key not configured - all API requests will be rejected")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validKey == "" {
				logger.Warn("API request rejected: API key not configured",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				unauthorized(w, "API authentication not configured")
				return
			}

			provided, ok := BearerToken(r)
			if !ok {
				logger.Debug("API request rejected: missing or malformed Authorization header",
					zap.String("path", r.URL.Path),
				)
				unauthorized(w, "Missing or invalid Authorization header (expected: Bearer <api-key>)")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(validKey)) != 1 {
				logger.Warn("API request rejected: invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				unauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from a Bearer Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// IsWeakKey reports whether key is short or looks like a placeholder.
func IsWeakKey(key string) bool {
	if len(key) < MinKeyLength {
		return true
	}
	lower := strings.ToLower(key)
	for _, p := range []string{
		"dev-only",
		"change-me",
		"changeme",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
