package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/session"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newGateCodec(t *testing.T) *session.TokenCodec {
	t.Helper()
	codec, err := session.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

// gateSession returns a session record expiring after the given lifetime.
func gateSession(ttl time.Duration) session.Data {
	now := time.Now()
	return session.Data{
		UserID:    uuid.NewString(),
		UUID:      "visitor-1",
		Email:     "ada@wanderspace.io",
		Name:      "Ada",
		Tags:      []string{"member"},
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// =============================================================================
// Session Gate Tests
// =============================================================================

func TestSessionGate_RedirectsWithoutToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gate := NewSessionGate(newGateCodec(t), "", false, logger)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if handlerCalled {
		t.Error("handler should not run without a session")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if loc.Path != "/login" {
		t.Errorf("expected redirect to /login, got %s", loc.Path)
	}
	if got := loc.Query().Get("redirect"); got != "/admin/overview" {
		t.Errorf("expected redirect param /admin/overview, got %q", got)
	}
}

func TestSessionGate_RedirectPreservesQueryWithoutToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gate := NewSessionGate(newGateCodec(t), "", false, logger)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// A garbled _token must not survive into the post-login redirect, but
	// the rest of the query string should.
	req := httptest.NewRequest("GET", "/admin/worlds?_token=garbage&tab=rooms", nil)
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if got := loc.Query().Get("redirect"); got != "/admin/worlds?tab=rooms" {
		t.Errorf("expected redirect param to keep tab and drop _token, got %q", got)
	}
}

func TestSessionGate_AllowsValidCookie(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	data := gateSession(time.Hour)
	token, err := codec.Encode("sess-1", data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var principal *auth.Principal
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = auth.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil {
		t.Fatal("expected principal in request context")
	}
	if principal.Kind != auth.KindSessionUser {
		t.Errorf("expected session user principal, got %v", principal.Kind)
	}
	if principal.Session == nil || principal.Session.UserID != data.UserID {
		t.Error("principal should carry the decoded session")
	}
}

func TestSessionGate_ReissuesCookieWithRemainingLifetime(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	// One hour left on the session: the cookie must not be stretched back
	// out to the full session lifetime.
	data := gateSession(time.Hour)
	token, err := codec.Encode("sess-1", data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	cookie := findCookie(t, rec, session.CookieName)
	if cookie == nil {
		t.Fatal("expected session cookie to be re-issued")
	}
	if cookie.Value == "" {
		t.Error("re-issued cookie should carry a token")
	}
	if cookie.MaxAge > 3600 || cookie.MaxAge < 3500 {
		t.Errorf("expected MaxAge near 3600s, got %d", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	// The re-issued token must decode to the same session.
	id, got, err := codec.Decode(cookie.Value)
	if err != nil {
		t.Fatalf("Decode re-issued cookie: %v", err)
	}
	if id != "sess-1" || got.UserID != data.UserID {
		t.Error("re-issued cookie should carry the same session")
	}
}

func TestSessionGate_AllowsURLToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	token, err := codec.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview?_token="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// URL tokens still produce a cookie so the next request can drop the
	// parameter, but the response header echo is suppressed: the token is
	// already in the caller's hands.
	if findCookie(t, rec, session.CookieName) == nil {
		t.Error("expected session cookie for URL token")
	}
	if rec.Header().Get(session.TokenHeader) != "" {
		t.Error("x-session-token should not be set for URL tokens")
	}
}

func TestSessionGate_SetsTokenHeaderForCookieAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	token, err := codec.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	header := rec.Header().Get(session.TokenHeader)
	if header == "" {
		t.Fatal("expected x-session-token header for cookie auth")
	}
	if _, _, err := codec.Decode(header); err != nil {
		t.Errorf("x-session-token should carry a valid token: %v", err)
	}
}

func TestSessionGate_AllowsBearerToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	token, err := codec.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionGate_RejectsExpiredToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	token, err := codec.Encode("sess-1", gateSession(-time.Minute))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect for expired token, got %d", rec.Code)
	}
}

func TestSessionGate_RejectsTamperedToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	token, err := codec.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token + "tampered"})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect for tampered token, got %d", rec.Code)
	}
}

func TestSessionGate_RejectsForeignToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gate := NewSessionGate(newGateCodec(t), "", false, logger)

	// Token minted under a different secret.
	foreign, err := session.NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, err := foreign.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect for foreign token, got %d", rec.Code)
	}
}

func TestSessionGate_URLTokenTakesPrecedence(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)
	gate := NewSessionGate(codec, "", false, logger)

	cookieToken, err := codec.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// A bad URL token loses to nothing: it is the first source consulted
	// and its rejection is final, even with a valid cookie alongside.
	req := httptest.NewRequest("GET", "/admin/overview?_token=garbage", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookieToken})
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect when URL token is invalid, got %d", rec.Code)
	}
}

func TestSessionGate_ExemptPaths(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	// Guard everything so the exemptions are what keeps these reachable.
	gate := NewSessionGate(newGateCodec(t), "/", false, logger)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := gate.Handler(handler)

	tests := []struct {
		path     string
		expected int
	}{
		{"/login", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/universes", http.StatusOK},
		{"/oauth/callback", http.StatusOK},
		{"/", http.StatusSeeOther},
		{"/overview", http.StatusSeeOther},
	}

	for _, tc := range tests {
		req := httptest.NewRequest("GET", tc.path, nil)
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		if rec.Code != tc.expected {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.expected, rec.Code)
		}
	}
}

func TestSessionGate_IgnoresUnguardedPrefix(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gate := NewSessionGate(newGateCodec(t), "/admin", false, logger)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/somewhere/else", nil)
	rec := httptest.NewRecorder()

	gate.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("paths outside the prefix should pass through, got %d", rec.Code)
	}
}

func TestSessionGate_CookieAttributesByScheme(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	codec := newGateCodec(t)

	token, err := codec.Encode("sess-1", gateSession(time.Hour))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// HTTPS: SameSite=None so the cookie travels into embedded iframes.
	secureGate := NewSessionGate(codec, "", true, logger)
	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	secureGate.Handler(handler).ServeHTTP(rec, req)

	cookie := findCookie(t, rec, session.CookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if !cookie.Secure {
		t.Error("expected Secure cookie on HTTPS")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("expected SameSite=None on HTTPS, got %v", cookie.SameSite)
	}

	// Plain HTTP: browsers reject None without Secure, fall back to Lax.
	plainGate := NewSessionGate(codec, "", false, logger)
	req = httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec = httptest.NewRecorder()
	plainGate.Handler(handler).ServeHTTP(rec, req)

	cookie = findCookie(t, rec, session.CookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Secure {
		t.Error("expected non-Secure cookie on plain HTTP")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax on plain HTTP, got %v", cookie.SameSite)
	}
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec, false)

	cookie := findCookie(t, rec, session.CookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Value != "" {
		t.Errorf("expected empty value, got %q", cookie.Value)
	}
	if cookie.MaxAge != -1 {
		t.Errorf("expected MaxAge -1, got %d", cookie.MaxAge)
	}
}
