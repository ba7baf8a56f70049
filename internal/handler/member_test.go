package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
)

// =============================================================================
// Mock MemberService Implementation
// =============================================================================

// mockMemberService implements the service.MemberService interface for
// testing.
type mockMemberService struct {
	AddFunc          func(ctx context.Context, params domain.AddMemberParams) (*domain.Membership, error)
	GetFunc          func(ctx context.Context, universeID, userID uuid.UUID) (*domain.Membership, error)
	ListFunc         func(ctx context.Context, universeID uuid.UUID) ([]domain.Membership, error)
	UpdateRoleFunc   func(ctx context.Context, universeID, userID uuid.UUID, role domain.Role) (*domain.Membership, error)
	RemoveFunc       func(ctx context.Context, universeID, userID uuid.UUID) error
	CreateInviteFunc func(ctx context.Context, params domain.CreateInviteParams) (*domain.InviteCredentials, error)
	ListInvitesFunc  func(ctx context.Context, universeID uuid.UUID) ([]domain.Invite, error)
	RevokeInviteFunc func(ctx context.Context, universeID, inviteID uuid.UUID) error
	AcceptInviteFunc func(ctx context.Context, token string, user *domain.User) (*domain.Membership, error)
}

func (m *mockMemberService) Add(ctx context.Context, params domain.AddMemberParams) (*domain.Membership, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, params)
	}
	return nil, errors.New("AddFunc not implemented")
}

func (m *mockMemberService) Get(ctx context.Context, universeID, userID uuid.UUID) (*domain.Membership, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, universeID, userID)
	}
	return nil, errors.New("GetFunc not implemented")
}

func (m *mockMemberService) List(ctx context.Context, universeID uuid.UUID) ([]domain.Membership, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, universeID)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *mockMemberService) UpdateRole(ctx context.Context, universeID, userID uuid.UUID, role domain.Role) (*domain.Membership, error) {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, universeID, userID, role)
	}
	return nil, errors.New("UpdateRoleFunc not implemented")
}

func (m *mockMemberService) Remove(ctx context.Context, universeID, userID uuid.UUID) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, universeID, userID)
	}
	return errors.New("RemoveFunc not implemented")
}

func (m *mockMemberService) CreateInvite(ctx context.Context, params domain.CreateInviteParams) (*domain.InviteCredentials, error) {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, params)
	}
	return nil, errors.New("CreateInviteFunc not implemented")
}

func (m *mockMemberService) ListInvites(ctx context.Context, universeID uuid.UUID) ([]domain.Invite, error) {
	if m.ListInvitesFunc != nil {
		return m.ListInvitesFunc(ctx, universeID)
	}
	return nil, errors.New("ListInvitesFunc not implemented")
}

func (m *mockMemberService) RevokeInvite(ctx context.Context, universeID, inviteID uuid.UUID) error {
	if m.RevokeInviteFunc != nil {
		return m.RevokeInviteFunc(ctx, universeID, inviteID)
	}
	return errors.New("RevokeInviteFunc not implemented")
}

func (m *mockMemberService) AcceptInvite(ctx context.Context, token string, user *domain.User) (*domain.Membership, error) {
	if m.AcceptInviteFunc != nil {
		return m.AcceptInviteFunc(ctx, token, user)
	}
	return nil, errors.New("AcceptInviteFunc not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

func newTestMemberHandler(members *mockMemberService) *MemberHandler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewMemberHandler(members, logger)
}

// sessionPrincipal builds a signed-in user principal.
func sessionPrincipal(user *domain.User) *auth.Principal {
	return &auth.Principal{
		Kind: auth.KindSessionUser,
		User: user,
	}
}

// withPrincipal attaches a principal the way the authorizer middleware does.
func withPrincipal(req *http.Request, p *auth.Principal) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

// =============================================================================
// Role Enforcement Tests
// =============================================================================

func TestListMembers_Unauthenticated_Unauthorized(t *testing.T) {
	handler := newTestMemberHandler(&mockMemberService{})

	req := httptest.NewRequest("GET", "/api/universes/"+uuid.NewString()+"/members", nil)
	req.SetPathValue("id", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestListMembers_NonMember_Forbidden(t *testing.T) {
	universeID := uuid.New()
	user := &domain.User{ID: uuid.New(), UUID: "subject-1"}

	members := &mockMemberService{
		GetFunc: func(ctx context.Context, uID, userID uuid.UUID) (*domain.Membership, error) {
			return nil, domain.NotFound("member.get", "membership", userID.String())
		},
	}
	handler := newTestMemberHandler(members)

	req := httptest.NewRequest("GET", "/api/universes/"+universeID.String()+"/members", nil)
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	handler.List(rec, withPrincipal(req, sessionPrincipal(user)))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// Non-members must not learn whether the universe exists
	if strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("response leaks membership lookup result: %s", rec.Body.String())
	}
}

func TestListMembers_Member_OK(t *testing.T) {
	universeID := uuid.New()
	user := &domain.User{ID: uuid.New(), UUID: "subject-1"}

	members := &mockMemberService{
		GetFunc: func(ctx context.Context, uID, userID uuid.UUID) (*domain.Membership, error) {
			return &domain.Membership{UniverseID: uID, UserID: userID, Role: domain.RoleMember}, nil
		},
		ListFunc: func(ctx context.Context, uID uuid.UUID) ([]domain.Membership, error) {
			return []domain.Membership{
				{ID: uuid.New(), UniverseID: uID, UserID: user.ID, Role: domain.RoleMember, UserEmail: "explorer@example.com"},
			}, nil
		},
	}
	handler := newTestMemberHandler(members)

	req := httptest.NewRequest("GET", "/api/universes/"+universeID.String()+"/members", nil)
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	handler.List(rec, withPrincipal(req, sessionPrincipal(user)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Members []struct {
			Role      string `json:"role"`
			UserEmail string `json:"userEmail"`
		} `json:"members"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(body.Members) != 1 {
		t.Fatalf("members count = %d, want 1", len(body.Members))
	}
	if body.Members[0].Role != "member" {
		t.Errorf("role = %q, want member", body.Members[0].Role)
	}
	if body.Members[0].UserEmail != "explorer@example.com" {
		t.Errorf("userEmail = %q, want explorer@example.com", body.Members[0].UserEmail)
	}
}

func TestAddMember_EditorRole_Forbidden(t *testing.T) {
	universeID := uuid.New()
	user := &domain.User{ID: uuid.New(), UUID: "subject-1"}

	members := &mockMemberService{
		GetFunc: func(ctx context.Context, uID, userID uuid.UUID) (*domain.Membership, error) {
			return &domain.Membership{UniverseID: uID, UserID: userID, Role: domain.RoleEditor}, nil
		},
	}
	handler := newTestMemberHandler(members)

	body := strings.NewReader(`{"userId":"` + uuid.NewString() + `","role":"member"}`)
	req := httptest.NewRequest("POST", "/api/universes/"+universeID.String()+"/members", body)
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	handler.Add(rec, withPrincipal(req, sessionPrincipal(user)))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), "admin role") {
		t.Errorf("response should name the missing role: %s", rec.Body.String())
	}
}

func TestAddMember_AdminToken_Bypasses(t *testing.T) {
	universeID := uuid.New()
	newUserID := uuid.New()

	var gotParams domain.AddMemberParams
	members := &mockMemberService{
		GetFunc: func(ctx context.Context, uID, userID uuid.UUID) (*domain.Membership, error) {
			t.Error("admin token should not trigger a membership lookup")
			return nil, domain.NotFound("member.get", "membership", userID.String())
		},
		AddFunc: func(ctx context.Context, params domain.AddMemberParams) (*domain.Membership, error) {
			gotParams = params
			return &domain.Membership{
				ID:         uuid.New(),
				UniverseID: params.UniverseID,
				UserID:     params.UserID,
				Role:       params.Role,
			}, nil
		},
	}
	handler := newTestMemberHandler(members)

	body := strings.NewReader(`{"userId":"` + newUserID.String() + `","role":"editor"}`)
	req := httptest.NewRequest("POST", "/api/universes/"+universeID.String()+"/members", body)
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	handler.Add(rec, withPrincipal(req, &auth.Principal{Kind: auth.KindAdminToken, SuperAdmin: true}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusCreated)
	}
	if gotParams.UserID != newUserID {
		t.Errorf("Add received UserID %v, want %v", gotParams.UserID, newUserID)
	}
	if gotParams.InvitedBy != nil {
		t.Error("admin token has no user row, InvitedBy should be nil")
	}
}

func TestAddMember_MalformedUserID_Invalid(t *testing.T) {
	universeID := uuid.New()
	handler := newTestMemberHandler(&mockMemberService{})

	body := strings.NewReader(`{"userId":"not-a-uuid","role":"member"}`)
	req := httptest.NewRequest("POST", "/api/universes/"+universeID.String()+"/members", body)
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	handler.Add(rec, withPrincipal(req, &auth.Principal{Kind: auth.KindAdminToken, SuperAdmin: true}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// =============================================================================
// Invite Tests
// =============================================================================

func TestCreateInvite_AdminToken_Rejected(t *testing.T) {
	universeID := uuid.New()
	handler := newTestMemberHandler(&mockMemberService{})

	body := strings.NewReader(`{"email":"new@example.com","role":"member"}`)
	req := httptest.NewRequest("POST", "/api/universes/"+universeID.String()+"/invites", body)
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	// The admin token passes the role gate but has no user row to record as
	// the invite's creator
	handler.CreateInvite(rec, withPrincipal(req, &auth.Principal{Kind: auth.KindAdminToken, SuperAdmin: true}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "signed-in session") {
		t.Errorf("response should explain the session requirement: %s", rec.Body.String())
	}
}

func TestCreateInvite_ReturnsTokenOnce(t *testing.T) {
	universeID := uuid.New()
	admin := &domain.User{ID: uuid.New(), UUID: "subject-admin"}

	members := &mockMemberService{
		GetFunc: func(ctx context.Context, uID, userID uuid.UUID) (*domain.Membership, error) {
			return &domain.Membership{UniverseID: uID, UserID: userID, Role: domain.RoleAdmin}, nil
		},
		CreateInviteFunc: func(ctx context.Context, params domain.CreateInviteParams) (*domain.InviteCredentials, error) {
			return &domain.InviteCredentials{
				Invite: &domain.Invite{
					ID:         uuid.New(),
					UniverseID: params.UniverseID,
					Email:      params.Email,
					Role:       params.Role,
					CreatedBy:  params.CreatedBy,
				},
				Token: "raw-invite-token",
			}, nil
		},
	}
	handler := newTestMemberHandler(members)

	body := strings.NewReader(`{"email":"new@example.com","role":"member"}`)
	req := httptest.NewRequest("POST", "/api/universes/"+universeID.String()+"/invites", body)
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", universeID.String())
	rec := httptest.NewRecorder()

	handler.CreateInvite(rec, withPrincipal(req, sessionPrincipal(admin)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusCreated)
	}

	var out struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if out.Token != "raw-invite-token" {
		t.Errorf("token = %q, want the raw invite token", out.Token)
	}
	if out.Email != "new@example.com" {
		t.Errorf("email = %q, want new@example.com", out.Email)
	}
}

func TestAcceptInvite_NoUser_Unauthorized(t *testing.T) {
	handler := newTestMemberHandler(&mockMemberService{})

	body := strings.NewReader(`{"token":"some-token"}`)
	req := httptest.NewRequest("POST", "/api/invites/accept", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Service tokens cannot redeem invites
	handler.AcceptInvite(rec, withPrincipal(req, &auth.Principal{Kind: auth.KindServiceToken, Bot: &domain.Bot{}}))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAcceptInvite_SessionUser_Created(t *testing.T) {
	user := &domain.User{ID: uuid.New(), UUID: "subject-1", Email: "new@example.com"}

	var gotToken string
	members := &mockMemberService{
		AcceptInviteFunc: func(ctx context.Context, token string, u *domain.User) (*domain.Membership, error) {
			gotToken = token
			return &domain.Membership{
				ID:         uuid.New(),
				UniverseID: uuid.New(),
				UserID:     u.ID,
				Role:       domain.RoleMember,
			}, nil
		},
	}
	handler := newTestMemberHandler(members)

	body := strings.NewReader(`{"token":"raw-invite-token"}`)
	req := httptest.NewRequest("POST", "/api/invites/accept", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.AcceptInvite(rec, withPrincipal(req, sessionPrincipal(user)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusCreated)
	}
	if gotToken != "raw-invite-token" {
		t.Errorf("service received token %q, want raw-invite-token", gotToken)
	}
}
