package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersMiddleware adds HTTP security headers to all responses.
//
// The admin dashboard is embedded in iframes by the world client, so
// framing is not denied outright; instead CSP frame-ancestors carries the
// configured embedder origins.
type SecurityHeadersMiddleware struct {
	isSecure     bool     // Whether to enable HTTPS-specific headers (true in production)
	embedOrigins []string // Origins allowed to embed the dashboard in iframes
	csp          string
}

// NewSecurityHeadersMiddleware creates a new security headers middleware.
// Set isSecure to true in production to enable HSTS. embedOrigins lists the
// origins allowed to frame the dashboard; empty means only same-origin.
func NewSecurityHeadersMiddleware(isSecure bool, embedOrigins []string) *SecurityHeadersMiddleware {
	m := &SecurityHeadersMiddleware{
		isSecure:     isSecure,
		embedOrigins: embedOrigins,
	}
	m.csp = m.buildCSP()
	return m
}

// Handler returns middleware that sets security headers on all responses.
func (m *SecurityHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS - only in production with HTTPS
		if m.isSecure {
			// max-age=31536000 = 1 year
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		// Content Security Policy, including frame-ancestors in place of
		// the legacy X-Frame-Options header (which cannot express an
		// origin allowlist)
		w.Header().Set("Content-Security-Policy", m.csp)

		// Permissions Policy - disable browser features we don't need
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next.ServeHTTP(w, r)
	})
}

// buildCSP constructs the Content-Security-Policy header value.
func (m *SecurityHeadersMiddleware) buildCSP() string {
	frameAncestors := "'self'"
	if len(m.embedOrigins) > 0 {
		frameAncestors += " " + strings.Join(m.embedOrigins, " ")
	}

	return "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		// Images: self + data URIs + any HTTPS source (world previews live
		// on external object storage)
		"img-src 'self' data: https:; " +
		"font-src 'self'; " +
		"connect-src 'self'; " +
		// Who may embed us in an iframe
		"frame-ancestors " + frameAncestors + "; " +
		// Restrict base URI to prevent base tag injection
		"base-uri 'self'; " +
		// Restrict form actions to self
		"form-action 'self'"
}
