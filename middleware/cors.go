package middleware

import (
	"net/http"
)

// CorsMiddleware answers preflight requests and sets CORS headers for the
// configured origins. "*" allows any origin, but only explicitly listed
// origins are told that credentials are allowed.
func CorsMiddleware(allowed []string) func(http.Handler) http.Handler {
	anyOrigin := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			anyOrigin = true
		}
		set[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Allow WebSocket connections
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			switch {
			case origin != "" && set[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			case origin != "" && anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			case origin == "" && anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
