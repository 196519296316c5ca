// Package apicors provides CORS middleware for the API-key protected JSON
// endpoints. No cookies are involved, so credentials are never allowed.
package apicors

import (
	"net/http"
	"strings"
)

const (
	allowMethods  = "GET, POST, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, Accept, X-Request-ID"
	exposeHeaders = "X-Request-ID"
	maxAge        = "86400" // 24 hours
)

// Middleware allows any origin.
func Middleware() func(http.Handler) http.Handler {
	return New(nil)
}

// New returns CORS middleware limited to the given origins. An empty list, or
// a list containing "*", allows any origin.
//
// Usage in a feature's routes.go:
//
//	r.Use(apicors.New(allowedOrigins))
//	r.Use(auth.APIKeyAuth(apiKey, logger))
func New(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	originSet := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			originSet[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else if origin := r.Header.Get("Origin"); origin != "" {
				// Unlisted origins get no header and the browser blocks them.
				if _, ok := originSet[origin]; ok {
					h.Set("Access-Control-Allow-Origin", origin)
				}
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParseOrigins splits a comma-separated origin list from configuration.
func ParseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
