// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file implements the login flow: the browser entry point that hands
// off to the OIDC provider, the provider callback that mints the local
// session, and logout.
//
// Routes:
//   - GET  /login          -> Login
//   - GET  /oauth/callback -> Callback
//   - POST /logout         -> Logout
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
	"github.com/wanderspace/overseer/internal/session"
)

// redirectParam carries the originally requested path through the login
// flow. The same name is used by the session gate when it bounces an
// unauthenticated dashboard request here.
const redirectParam = "redirect"

// LoginFlow is the slice of the OIDC client the login handlers use. It is an
// interface so tests can drive the flow without a live provider.
type LoginFlow interface {
	// Begin stores flow state on the response and returns the provider URL
	// to send the user to.
	Begin(w http.ResponseWriter, redirect string) (string, error)

	// Complete validates the provider callback and returns the verified
	// identity claims together with the post-login redirect target.
	Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.UpsertUserParams, string, error)
}

// AuthHandler handles the OIDC login flow.
type AuthHandler struct {
	flow     LoginFlow
	users    service.UserService
	store    session.Store
	codec    *session.TokenCodec
	isSecure bool
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. Set isSecure when the deployment
// serves HTTPS; it controls the Secure and SameSite cookie attributes.
func NewAuthHandler(
	flow LoginFlow,
	users service.UserService,
	store session.Store,
	codec *session.TokenCodec,
	isSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		flow:     flow,
		users:    users,
		store:    store,
		codec:    codec,
		isSecure: isSecure,
		logger:   logger,
	}
}

// RegisterRoutes registers the login flow routes on the provided mux. All
// three stay outside the session gate. limit rate-limits flow starts so a
// client cannot churn state cookies.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.Handle("GET /login", limit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("GET /oauth/callback", h.Callback)
	mux.HandleFunc("POST /logout", h.Logout)
}

// =============================================================================
// GET /login - Begin OIDC Flow
// =============================================================================

// Login hands the browser off to the OIDC provider. The redirect query
// parameter names where to land after login; it is kept inside the signed
// state cookie so the callback cannot be steered elsewhere.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	redirect := sanitizeRedirect(r.URL.Query().Get(redirectParam))

	authURL, err := h.flow.Begin(w, redirect)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// =============================================================================
// GET /oauth/callback - Complete OIDC Flow
// =============================================================================

// Callback finishes the provider roundtrip: verify the callback, upsert the
// local user, mint a store session, and send the browser to its post-login
// target carrying both the session cookie and the _token URL parameter.
// Iframe clients that cannot carry the cookie read the URL token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	const op = "auth.callback"

	claims, redirect, err := h.flow.Complete(r.Context(), w, r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.users.Upsert(r.Context(), claims)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	id, data, err := h.store.Create(r.Context(), session.CreateParams{
		UserID: user.ID.String(),
		UUID:   user.UUID,
		Email:  user.Email,
		Name:   user.Name,
		Tags:   user.Tags,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to create session"))
		return
	}

	token, err := h.codec.Encode(id, data)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to encode session token"))
		return
	}

	setSessionCookie(w, token, int(data.TTL(time.Now()).Seconds()), h.isSecure)

	h.logger.Info("user logged in",
		"user_id", user.ID,
		"uuid", user.UUID,
	)

	http.Redirect(w, r, appendTokenParam(redirect, token), http.StatusSeeOther)
}

// =============================================================================
// POST /logout - Process Logout
// =============================================================================

// Logout deletes the session record and clears the session cookie.
//
// Notes:
// - This operation is idempotent - calling without a session is fine
// - Always clear the cookie even if the store delete fails
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Iframe clients log out with the URL token; everyone else carries the
	// cookie.
	token := r.URL.Query().Get(session.TokenParam)
	if token == "" {
		if c, err := r.Cookie(session.CookieName); err == nil {
			token = c.Value
		}
	}

	if token != "" {
		if id, _, err := h.codec.Decode(token); err == nil {
			if err := h.store.Delete(r.Context(), id); err != nil {
				// Log and continue - the cookie will be cleared anyway
				h.logger.Warn("failed to delete session record", "error", err)
			}
		}
	}

	clearSessionCookie(w, h.isSecure)

	h.logger.Debug("user logged out")

	if acceptsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// =============================================================================
// Helper Functions
// =============================================================================

// sanitizeRedirect keeps post-login targets on this host. Anything that is
// not a plain local path falls back to the dashboard default.
func sanitizeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return ""
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return ""
	}
	return target
}

// appendTokenParam adds the session token to a local redirect target as the
// _token query parameter.
func appendTokenParam(target, token string) string {
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/admin"}
	}
	q := u.Query()
	q.Set(session.TokenParam, token)
	u.RawQuery = q.Encode()
	return u.String()
}

// =============================================================================
// Session Cookie Helpers
// =============================================================================

// These mirror the helpers in middleware/session_gate.go. The middleware
// package imports handler for error responses, so handler cannot import
// middleware; the cookie attributes must stay in sync across both copies.

// setSessionCookie sets the session cookie on the response.
//
// Cookie Settings:
// - HttpOnly: true - Prevents JavaScript access (XSS protection)
// - Secure: set on HTTPS deployments
// - SameSite: None on HTTPS so the cookie travels into embedded iframes,
//   Lax on plain HTTP (browsers reject None without Secure)
// - Path: / - Cookie sent with all requests
// - MaxAge: the session's remaining lifetime in seconds
func setSessionCookie(w http.ResponseWriter, token string, maxAge int, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     session.CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: sameSiteFor(isSecure),
	})
}

// clearSessionCookie removes the session cookie from the client.
//
// This is done by setting MaxAge to -1, which tells the browser to delete
// the cookie immediately.
func clearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     session.CookiePath,
		MaxAge:   -1, // Delete immediately
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: sameSiteFor(isSecure),
	})
}

func sameSiteFor(isSecure bool) http.SameSite {
	if isSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
