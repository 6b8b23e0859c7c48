package auth

import (
	"testing"

	"github.com/bitswalk/bazaar/src/common/errors"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"buyer", RoleBuyer, false},
		{"seller", RoleSeller, false},
		{"admin", RoleAdmin, false},
		{" Seller ", RoleSeller, false},
		{"root", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrInvalidRole) {
				t.Errorf("ParseRole(%q) error = %v, want ErrInvalidRole", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSelfServiceRoles(t *testing.T) {
	if RoleAdmin.IsSelfService() {
		t.Error("admin must not be self-service")
	}
	for _, r := range SelfServiceRoles {
		if !r.IsSelfService() {
			t.Errorf("%s should be self-service", r)
		}
	}
}
