package auth

import (
	"strings"

	"github.com/bitswalk/bazaar/src/common/errors"
)

// Role is the closed set of account roles
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Roles lists every valid role
var Roles = []Role{RoleBuyer, RoleSeller, RoleAdmin}

// SelfServiceRoles are the roles an account may pick at registration
var SelfServiceRoles = []Role{RoleBuyer, RoleSeller}

// ParseRole converts s to a Role, rejecting anything outside the enumeration
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", errors.ErrInvalidRole.WithMessagef("Invalid role %q", s)
	}
	return r, nil
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// IsSelfService reports whether r may be chosen at registration
func (r Role) IsSelfService() bool {
	return r == RoleBuyer || r == RoleSeller
}

func (r Role) String() string {
	return string(r)
}
