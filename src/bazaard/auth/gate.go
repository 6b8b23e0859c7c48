package auth

import (
	"context"

	"github.com/bitswalk/bazaar/src/common/errors"
)

// Policy is the role requirement of a protected operation
type Policy int

const (
	// PolicyAnyActive admits every active account
	PolicyAnyActive Policy = iota
	PolicyAdmin
	PolicySeller
	PolicyBuyer
)

func (p Policy) String() string {
	switch p {
	case PolicyAnyActive:
		return "any active account"
	case PolicyAdmin:
		return "admin"
	case PolicySeller:
		return "seller"
	case PolicyBuyer:
		return "buyer"
	}
	return "unknown"
}

// Allows reports whether an account holding role satisfies p
func (p Policy) Allows(role Role) bool {
	switch p {
	case PolicyAnyActive:
		return role.IsValid()
	case PolicyAdmin:
		return role == RoleAdmin
	case PolicySeller:
		return role == RoleSeller
	case PolicyBuyer:
		return role == RoleBuyer
	}
	return false
}

// Gate authorizes requests by resolving the caller and checking its current role
type Gate struct {
	resolver *Resolver
}

// NewGate creates a Gate
func NewGate(resolver *Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Authorize resolves bearer and checks the account's live role against p.
// A role recorded in the token but since changed by an admin has no effect.
func (g *Gate) Authorize(ctx context.Context, bearer string, p Policy) (*Account, error) {
	account, err := g.resolver.Resolve(ctx, bearer)
	if err != nil {
		return nil, err
	}
	if !p.Allows(account.Role) {
		return nil, errors.ErrForbidden.WithMessagef("Only %s accounts can perform this action", p)
	}
	return account, nil
}

// RequireAdmin authorizes admin accounts
func (g *Gate) RequireAdmin(ctx context.Context, bearer string) (*Account, error) {
	return g.Authorize(ctx, bearer, PolicyAdmin)
}

// RequireSeller authorizes seller accounts
func (g *Gate) RequireSeller(ctx context.Context, bearer string) (*Account, error) {
	return g.Authorize(ctx, bearer, PolicySeller)
}

// RequireBuyer authorizes buyer accounts
func (g *Gate) RequireBuyer(ctx context.Context, bearer string) (*Account, error) {
	return g.Authorize(ctx, bearer, PolicyBuyer)
}

// RequireAnyActive authorizes any active account
func (g *Gate) RequireAnyActive(ctx context.Context, bearer string) (*Account, error) {
	return g.Authorize(ctx, bearer, PolicyAnyActive)
}
