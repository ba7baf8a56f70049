// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file holds the per-universe role checks. Authentication happens in
// the middleware layer; by the time a request reaches these helpers it
// carries a resolved principal, and what remains is deciding whether that
// principal may act on the target universe.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/service"
)

// requireUniverseRole checks that the request principal may act on the
// universe with at least minRole. Admin-token bearers and super admins
// always pass; everyone else needs a membership carrying the role.
func requireUniverseRole(ctx context.Context, members service.MemberService, universeID uuid.UUID, minRole domain.Role) error {
	const op = "handler.universe_role"

	p := auth.PrincipalFrom(ctx)
	if p == nil {
		return domain.Unauthorized(op, "Authentication required")
	}
	if p.Kind == auth.KindAdminToken || p.SuperAdmin {
		return nil
	}
	if p.Kind != auth.KindSessionUser || p.User == nil {
		return domain.Forbidden(op, "You don't have permission to access this universe")
	}

	m, err := members.Get(ctx, universeID, p.User.ID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			// Non-members learn nothing beyond "not yours".
			return domain.Forbidden(op, "You don't have permission to access this universe")
		}
		return err
	}
	if !m.Role.AtLeast(minRole) {
		return domain.Errorf(domain.EFORBIDDEN, op, "This action requires the %s role", minRole)
	}
	return nil
}

// isPlatformAdmin reports whether the principal is the admin token or a
// super-admin session.
func isPlatformAdmin(p *auth.Principal) bool {
	return p != nil && (p.Kind == auth.KindAdminToken || p.SuperAdmin)
}
