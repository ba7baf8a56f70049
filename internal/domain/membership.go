package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents a member's level of control inside a universe.
type Role string

const (
	// RoleMember can view the universe and its worlds.
	RoleMember Role = "member"

	// RoleEditor can create and modify worlds and rooms.
	RoleEditor Role = "editor"

	// RoleAdmin can manage members, bots, templates, and universe settings.
	RoleAdmin Role = "admin"
)

// roleRank orders roles for AtLeast comparisons.
var roleRank = map[Role]int{
	RoleMember: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is a recognized value.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// Membership ties a user to a universe with a role.
type Membership struct {
	ID         uuid.UUID
	UniverseID uuid.UUID
	UserID     uuid.UUID
	Role       Role
	InvitedBy  *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined user fields, populated on list queries.
	UserUUID  string
	UserEmail string
	UserName  string
}

// AddMemberParams contains parameters for directly adding a member.
type AddMemberParams struct {
	UniverseID uuid.UUID
	UserID     uuid.UUID
	Role       Role
	InvitedBy  *uuid.UUID
}

// Validate checks member addition parameters.
func (p AddMemberParams) Validate() error {
	const op = "membership.validate"

	if p.UniverseID == uuid.Nil {
		return Invalid(op, "universe ID is required")
	}
	if p.UserID == uuid.Nil {
		return Invalid(op, "user ID is required")
	}
	if !p.Role.IsValid() {
		return Invalid(op, "role must be one of member, editor, admin")
	}
	return nil
}

// Invite is a pending offer of membership, addressed to an email.
// The raw token is returned to the creator exactly once; only its SHA-256
// hash is stored.
type Invite struct {
	ID         uuid.UUID
	UniverseID uuid.UUID
	Email      string
	Role       Role
	TokenHash  string
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// IsExpired returns true if the invite can no longer be accepted.
func (i *Invite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsAccepted returns true if the invite has already been used.
func (i *Invite) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// InviteCredentials pairs an invite with its raw accept token. Returned
// exactly once from create; delivery to the invitee happens out of band.
type InviteCredentials struct {
	Invite *Invite
	Token  string // Raw accept token, never stored
}

// CreateInviteParams contains parameters for creating an invite.
type CreateInviteParams struct {
	UniverseID uuid.UUID
	Email      string
	Role       Role
	CreatedBy  uuid.UUID
}

// Validate checks invite creation parameters.
func (p CreateInviteParams) Validate() error {
	const op = "invite.validate"

	if p.UniverseID == uuid.Nil {
		return Invalid(op, "universe ID is required")
	}
	if !ValidEmail(strings.TrimSpace(p.Email)) {
		return Invalid(op, "email is not a valid address")
	}
	if !p.Role.IsValid() {
		return Invalid(op, "role must be one of member, editor, admin")
	}
	return nil
}
