package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/session"
)

// =============================================================================
// Mock UserService Implementation
// =============================================================================

// mockUserService implements the service.UserService interface for testing.
type mockUserService struct {
	UpsertFunc     func(ctx context.Context, params domain.UpsertUserParams) (*domain.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUUIDFunc  func(ctx context.Context, subject string) (*domain.User, error)
	ListFunc       func(ctx context.Context, params domain.ListUsersParams) (*domain.ListUsersResult, error)
	UpdateTagsFunc func(ctx context.Context, id uuid.UUID, tags []string) (*domain.User, error)
}

func (m *mockUserService) Upsert(ctx context.Context, params domain.UpsertUserParams) (*domain.User, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, params)
	}
	return nil, errors.New("UpsertFunc not implemented")
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented")
}

func (m *mockUserService) GetByUUID(ctx context.Context, subject string) (*domain.User, error) {
	if m.GetByUUIDFunc != nil {
		return m.GetByUUIDFunc(ctx, subject)
	}
	return nil, errors.New("GetByUUIDFunc not implemented")
}

func (m *mockUserService) List(ctx context.Context, params domain.ListUsersParams) (*domain.ListUsersResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, params)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *mockUserService) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) (*domain.User, error) {
	if m.UpdateTagsFunc != nil {
		return m.UpdateTagsFunc(ctx, id, tags)
	}
	return nil, errors.New("UpdateTagsFunc not implemented")
}

// =============================================================================
// Stub LoginFlow Implementation
// =============================================================================

// stubLoginFlow implements LoginFlow without a live provider.
type stubLoginFlow struct {
	BeginFunc    func(w http.ResponseWriter, redirect string) (string, error)
	CompleteFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.UpsertUserParams, string, error)
}

func (s *stubLoginFlow) Begin(w http.ResponseWriter, redirect string) (string, error) {
	if s.BeginFunc != nil {
		return s.BeginFunc(w, redirect)
	}
	return "", errors.New("BeginFunc not implemented")
}

func (s *stubLoginFlow) Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.UpsertUserParams, string, error) {
	if s.CompleteFunc != nil {
		return s.CompleteFunc(ctx, w, r)
	}
	return domain.UpsertUserParams{}, "", errors.New("CompleteFunc not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

func newTestCodec(t *testing.T) *session.TokenCodec {
	t.Helper()
	codec, err := session.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return codec
}

func newTestAuthHandler(t *testing.T, flow LoginFlow, users *mockUserService) (*AuthHandler, session.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := session.NewMemoryStore(0, logger)
	t.Cleanup(func() { store.Close() })
	return NewAuthHandler(flow, users, store, newTestCodec(t), false, logger), store
}

func findSessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	return nil
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLogin_RedirectsToProvider(t *testing.T) {
	var gotRedirect string
	flow := &stubLoginFlow{
		BeginFunc: func(w http.ResponseWriter, redirect string) (string, error) {
			gotRedirect = redirect
			return "https://id.example.com/authorize?state=abc", nil
		},
	}

	handler, _ := newTestAuthHandler(t, flow, &mockUserService{})

	req := httptest.NewRequest("GET", "/login?redirect=/admin/worlds", nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusFound)
	}
	if location := rec.Header().Get("Location"); location != "https://id.example.com/authorize?state=abc" {
		t.Errorf("Location = %q, want provider URL", location)
	}
	if gotRedirect != "/admin/worlds" {
		t.Errorf("flow received redirect %q, want /admin/worlds", gotRedirect)
	}
}

func TestLogin_UnsafeRedirectsDropped(t *testing.T) {
	unsafe := []string{
		"//evil.com/phish",
		"/\\evil.com",
		"https://evil.com",
		"javascript:alert(1)",
		"no-leading-slash",
	}

	for _, target := range unsafe {
		var gotRedirect string
		flow := &stubLoginFlow{
			BeginFunc: func(w http.ResponseWriter, redirect string) (string, error) {
				gotRedirect = redirect
				return "https://id.example.com/authorize", nil
			},
		}

		handler, _ := newTestAuthHandler(t, flow, &mockUserService{})

		req := httptest.NewRequest("GET", "/login?redirect="+url.QueryEscape(target), nil)
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		if gotRedirect != "" {
			t.Errorf("redirect %q passed to flow as %q, want empty", target, gotRedirect)
		}
	}
}

func TestLogin_FlowErrorReturnsResponse(t *testing.T) {
	flow := &stubLoginFlow{
		BeginFunc: func(w http.ResponseWriter, redirect string) (string, error) {
			return "", domain.Internal(errors.New("rand: entropy exhausted"), "oidc.begin", "failed to start login")
		},
	}

	handler, _ := newTestAuthHandler(t, flow, &mockUserService{})

	req := httptest.NewRequest("GET", "/login", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "entropy") {
		t.Errorf("response exposes underlying error: %s", rec.Body.String())
	}
}

// =============================================================================
// Callback Tests
// =============================================================================

func TestCallback_MintsSessionAndRedirects(t *testing.T) {
	userID := uuid.New()
	flow := &stubLoginFlow{
		CompleteFunc: func(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.UpsertUserParams, string, error) {
			return domain.UpsertUserParams{
				UUID:  "subject-1",
				Email: "explorer@example.com",
				Name:  "Explorer",
				Tags:  []string{"vip"},
			}, "/admin/universes", nil
		},
	}
	users := &mockUserService{
		UpsertFunc: func(ctx context.Context, params domain.UpsertUserParams) (*domain.User, error) {
			return &domain.User{
				ID:    userID,
				UUID:  params.UUID,
				Email: params.Email,
				Name:  params.Name,
				Tags:  params.Tags,
			}, nil
		},
	}

	handler, store := newTestAuthHandler(t, flow, users)

	req := httptest.NewRequest("GET", "/oauth/callback?code=abc&state=xyz", nil)
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	// The session cookie carries a decodable token
	cookie := findSessionCookie(rec.Result().Cookies())
	if cookie == nil {
		t.Fatal("session cookie not found in response")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if cookie.MaxAge <= 0 {
		t.Errorf("cookie MaxAge = %d, want positive", cookie.MaxAge)
	}

	// The redirect target carries the same token as a URL parameter for
	// iframe clients
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid Location header: %v", err)
	}
	if location.Path != "/admin/universes" {
		t.Errorf("redirect path = %q, want /admin/universes", location.Path)
	}
	urlToken := location.Query().Get(session.TokenParam)
	if urlToken == "" {
		t.Fatal("redirect target is missing the session token parameter")
	}
	if urlToken != cookie.Value {
		t.Error("URL token and cookie token differ")
	}

	// The token resolves to a live session record
	id, data, err := handler.codec.Decode(urlToken)
	if err != nil {
		t.Fatalf("token does not decode: %v", err)
	}
	if data.UserID != userID.String() {
		t.Errorf("session UserID = %q, want %q", data.UserID, userID)
	}
	if data.UUID != "subject-1" {
		t.Errorf("session UUID = %q, want subject-1", data.UUID)
	}
	if _, err := store.Get(context.Background(), id); err != nil {
		t.Errorf("session record not in store: %v", err)
	}
}

func TestCallback_ProviderErrorReturnsUnauthorized(t *testing.T) {
	flow := &stubLoginFlow{
		CompleteFunc: func(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.UpsertUserParams, string, error) {
			return domain.UpsertUserParams{}, "", domain.Unauthorized("oidc.complete", "Login failed, please try again")
		},
	}

	handler, _ := newTestAuthHandler(t, flow, &mockUserService{})

	req := httptest.NewRequest("GET", "/oauth/callback?error=access_denied", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.Callback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// No session cookie on a failed login
	if cookie := findSessionCookie(rec.Result().Cookies()); cookie != nil {
		t.Error("failed callback should not set a session cookie")
	}
}

// =============================================================================
// Logout Tests
// =============================================================================

func TestLogout_POST_ClearsCookieAndStore(t *testing.T) {
	handler, store := newTestAuthHandler(t, &stubLoginFlow{}, &mockUserService{})

	id, data, err := store.Create(context.Background(), session.CreateParams{
		UserID: uuid.NewString(),
		UUID:   "subject-1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token, err := handler.codec.Encode(id, data)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	// Verify the store record is gone
	if _, err := store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Get() after logout error = %v, want ErrNotFound", err)
	}

	// Verify cookie is cleared (MaxAge=-1)
	cookie := findSessionCookie(rec.Result().Cookies())
	if cookie == nil {
		t.Fatal("session cookie not found in response")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1 (deleted)", cookie.MaxAge)
	}
}

func TestLogout_POST_RedirectsToLogin(t *testing.T) {
	handler, _ := newTestAuthHandler(t, &stubLoginFlow{}, &mockUserService{})

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-valid-token"})
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	// A bogus token still logs out cleanly
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("Location = %q, want prefix /login", location)
	}
}

func TestLogout_JSONRequest_NoContent(t *testing.T) {
	handler, _ := newTestAuthHandler(t, &stubLoginFlow{}, &mockUserService{})

	req := httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestLogout_URLTokenFallback(t *testing.T) {
	handler, store := newTestAuthHandler(t, &stubLoginFlow{}, &mockUserService{})

	id, data, err := store.Create(context.Background(), session.CreateParams{
		UserID: uuid.NewString(),
		UUID:   "subject-1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token, err := handler.codec.Encode(id, data)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Iframe clients cannot always send the cookie; the URL token works too
	req := httptest.NewRequest("POST", "/logout?"+session.TokenParam+"="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if _, err := store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Get() after logout error = %v, want ErrNotFound", err)
	}
}

// =============================================================================
// sanitizeRedirect Tests
// =============================================================================

func TestSanitizeRedirect_RelativeURLs_Safe(t *testing.T) {
	safe := []string{
		"/admin",
		"/admin/worlds",
		"/admin/universes/abc?tab=members",
	}

	for _, target := range safe {
		if got := sanitizeRedirect(target); got != target {
			t.Errorf("sanitizeRedirect(%q) = %q, want unchanged", target, got)
		}
	}
}

func TestSanitizeRedirect_UnsafeURLs_Dropped(t *testing.T) {
	unsafe := []string{
		"",
		"//evil.com",
		"/\\evil.com",
		"https://evil.com",
		"http://evil.com/admin",
		"javascript:alert(1)",
		"admin",
	}

	for _, target := range unsafe {
		if got := sanitizeRedirect(target); got != "" {
			t.Errorf("sanitizeRedirect(%q) = %q, want empty", target, got)
		}
	}
}

func TestAppendTokenParam_PreservesQuery(t *testing.T) {
	got := appendTokenParam("/admin/worlds?tab=rooms", "tok123")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("appendTokenParam produced unparseable URL: %v", err)
	}
	if u.Path != "/admin/worlds" {
		t.Errorf("path = %q, want /admin/worlds", u.Path)
	}
	if u.Query().Get("tab") != "rooms" {
		t.Error("existing query parameter dropped")
	}
	if u.Query().Get(session.TokenParam) != "tok123" {
		t.Error("token parameter missing")
	}
}
