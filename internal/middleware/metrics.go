package middleware

import (
	"crypto/subtle"
	"net/http"
)

// MetricsAuth returns middleware requiring basic authentication with the
// given credentials. If both username and password are empty, the check is
// disabled.
func MetricsAuth(username, password string) func(http.Handler) http.Handler {
	enabled := username != "" || password != ""

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				metricsUnauthorized(w)
				return
			}

			// Use constant-time comparison to prevent timing attacks
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

			if !userMatch || !passMatch {
				metricsUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// metricsUnauthorized sends a 401 response with WWW-Authenticate header.
func metricsUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
