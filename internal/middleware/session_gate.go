package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/handler"
	"github.com/wanderspace/overseer/internal/metrics"
	"github.com/wanderspace/overseer/internal/session"
)

const (
	// LoginPath is where unauthenticated dashboard requests are sent.
	LoginPath = "/login"

	// RedirectParam carries the originally requested path through login so
	// the callback can send the user back where they started.
	RedirectParam = "redirect"

	// DefaultGatePrefix is the path prefix the gate guards when none is
	// configured.
	DefaultGatePrefix = "/admin"
)

// =============================================================================
// Session Gate
// =============================================================================

// SessionGate guards the dashboard path prefix with signed session tokens.
//
// Validation is purely local: the token is decoded and verified without any
// store or network lookup. That is what allows the gate to sit on every
// dashboard request, and what allows the _token URL parameter to work inside
// embedded iframes where third-party cookies are blocked.
//
// Flow for a guarded path:
//
//  1. Extract a candidate token: _token URL parameter first, then the
//     user_session cookie, then an Authorization bearer.
//  2. Decode and verify it. Forged, garbled and expired tokens are all
//     treated identically as "no session".
//  3. Valid: re-issue the user_session cookie with the session's remaining
//     lifetime, expose the re-encoded token in the x-session-token response
//     header when it did not arrive via the URL, attach the session to the
//     request context, and forward.
//  4. Invalid or absent: redirect to the login path with the original path
//     in the redirect query parameter.
type SessionGate struct {
	codec     *session.TokenCodec
	prefix    string
	loginPath string
	isSecure  bool
	logger    *slog.Logger
}

// NewSessionGate creates a gate guarding the given path prefix. An empty
// prefix guards DefaultGatePrefix. Set isSecure when the deployment serves
// HTTPS; it controls the Secure and SameSite cookie attributes.
func NewSessionGate(codec *session.TokenCodec, prefix string, isSecure bool, logger *slog.Logger) *SessionGate {
	if prefix == "" {
		prefix = DefaultGatePrefix
	}
	return &SessionGate{
		codec:     codec,
		prefix:    prefix,
		loginPath: LoginPath,
		isSecure:  isSecure,
		logger:    logger,
	}
}

// Handler returns the gate as wrapping middleware.
func (g *SessionGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.guards(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, fromURL := extractToken(r)
		if token == "" {
			g.redirectToLogin(w, r)
			return
		}

		id, data, err := g.codec.Decode(token)
		if err != nil {
			// Expired and forged tokens land here alike; neither is
			// surfaced to the user as anything but a login redirect.
			g.logger.Debug("session gate rejected token", "path", r.URL.Path, "error", err)
			g.redirectToLogin(w, r)
			return
		}

		// Re-encode rather than echo the inbound token, so the cookie
		// always carries a freshly minted blob for the same session.
		fresh, err := g.codec.Encode(id, data)
		if err != nil {
			handler.InternalErrorResponse(w, r, g.logger, err)
			return
		}

		SetSessionCookie(w, fresh, int(data.TTL(time.Now()).Seconds()), g.isSecure)
		if !fromURL {
			w.Header().Set(session.TokenHeader, fresh)
		}

		p := &auth.Principal{Kind: auth.KindSessionUser, Session: &data}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// guards reports whether the gate applies to the given path. The login
// path, the OIDC callback, API paths and the operational endpoints stay
// reachable without a session even when the guarded prefix covers them.
func (g *SessionGate) guards(path string) bool {
	if !strings.HasPrefix(path, g.prefix) {
		return false
	}
	if path == g.loginPath || path == "/healthz" || path == "/metrics" {
		return false
	}
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/oauth/") {
		return false
	}
	return true
}

// redirectToLogin sends the client to the login path, preserving the
// originally requested path (minus any _token parameter) for the
// post-login redirect.
func (g *SessionGate) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	metrics.SessionGateRedirects.Inc()

	q := r.URL.Query()
	q.Del(session.TokenParam)
	target := r.URL.Path
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}

	http.Redirect(w, r, g.loginPath+"?"+RedirectParam+"="+url.QueryEscape(target), http.StatusSeeOther)
}

// extractToken returns the candidate session token and whether it arrived
// via the _token URL parameter. Precedence: URL parameter, then cookie,
// then Authorization bearer.
func extractToken(r *http.Request) (token string, fromURL bool) {
	if t := r.URL.Query().Get(session.TokenParam); t != "" {
		return t, true
	}
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		return c.Value, false
	}
	if b := bearerToken(r); b != "" {
		return b, false
	}
	return "", false
}

// =============================================================================
// Cookie Helpers
// =============================================================================

// SetSessionCookie sets the session cookie on the response.
//
// Cookie Settings:
// - HttpOnly: true - Prevents JavaScript access (XSS protection)
// - Secure: set on HTTPS deployments
// - SameSite: None on HTTPS so the cookie travels into embedded iframes,
//   Lax on plain HTTP (browsers reject None without Secure)
// - Path: / - Cookie sent with all requests
// - MaxAge: the session's remaining lifetime in seconds
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     session.CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: sameSiteMode(isSecure),
	})
}

// ClearSessionCookie removes the session cookie from the client.
//
// This is done by setting MaxAge to -1, which tells the browser to delete
// the cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     session.CookiePath,
		MaxAge:   -1, // Delete immediately
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: sameSiteMode(isSecure),
	})
}

func sameSiteMode(isSecure bool) http.SameSite {
	if isSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
