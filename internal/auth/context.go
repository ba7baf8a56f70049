// Package auth defines the authenticated principal and its context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/session"
)

// Kind identifies how a request authenticated.
type Kind int

const (
	// KindAdminToken is a bearer of the static admin API token.
	KindAdminToken Kind = iota + 1

	// KindSessionUser is a human with a signed session token, either from
	// the dashboard cookie or an OIDC access token.
	KindSessionUser

	// KindServiceToken is a bot authenticating with its service token.
	KindServiceToken
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindAdminToken:
		return "admin_token"
	case KindSessionUser:
		return "session_user"
	case KindServiceToken:
		return "service_token"
	default:
		return "unknown"
	}
}

// Principal is the single authorization result every guarded route sees.
// Exactly one of Session/User or Bot is populated, depending on Kind.
type Principal struct {
	Kind Kind

	// Session and User are set for KindSessionUser. User is the loaded
	// database row for the session's subject and may carry fresher tags
	// than the session snapshot.
	Session *session.Data
	User    *domain.User

	// Bot is set for KindServiceToken.
	Bot *domain.Bot

	// SuperAdmin is true for admin-token bearers and for session users on
	// the super-admin allowlist.
	SuperAdmin bool
}

// UserID returns the acting user's row ID, or uuid.Nil for principals
// without a user row.
func (p *Principal) UserID() uuid.UUID {
	if p == nil || p.User == nil {
		return uuid.Nil
	}
	return p.User.ID
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFrom retrieves the authenticated principal from the context.
//
// Returns nil if the request did not authenticate.
//
// Usage:
//
//	p := auth.PrincipalFrom(r.Context())
//	if p == nil {
//	    // Handle unauthenticated request
//	}
func PrincipalFrom(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// PrincipalFromRequest retrieves the principal from the request context.
//
// This is a convenience wrapper around PrincipalFrom that takes the request
// directly.
func PrincipalFromRequest(r *http.Request) *Principal {
	return PrincipalFrom(r.Context())
}

// UserFrom retrieves the authenticated user row from the context.
//
// Returns nil for admin-token and service-token principals, which act
// without a user row.
func UserFrom(ctx context.Context) *domain.User {
	p := PrincipalFrom(ctx)
	if p == nil {
		return nil
	}
	return p.User
}

// WithPrincipal stores a principal in the context.
//
// This is typically called by authorization middleware after resolving
// the request's credentials.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
