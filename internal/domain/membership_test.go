package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		other Role
		want  bool
	}{
		{name: "admin outranks editor", role: RoleAdmin, other: RoleEditor, want: true},
		{name: "admin outranks member", role: RoleAdmin, other: RoleMember, want: true},
		{name: "editor outranks member", role: RoleEditor, other: RoleMember, want: true},
		{name: "member does not outrank editor", role: RoleMember, other: RoleEditor, want: false},
		{name: "editor does not outrank admin", role: RoleEditor, other: RoleAdmin, want: false},
		{name: "role matches itself", role: RoleEditor, other: RoleEditor, want: true},
		{name: "unknown role outranks nothing", role: Role("owner"), other: RoleMember, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.other))
		})
	}
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleMember.IsValid())
	assert.True(t, RoleEditor.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("owner").IsValid())
}
