package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/bitswalk/bazaar/src/common/errors"
)

// Resolver turns a bearer token into the live account it names
type Resolver struct {
	tokens   *TokenService
	accounts AccountStore
}

// NewResolver creates a Resolver
func NewResolver(tokens *TokenService, accounts AccountStore) *Resolver {
	return &Resolver{tokens: tokens, accounts: accounts}
}

// Resolve verifies bearer as an access token and loads its account, which
// must still be active. Authentication failures are ErrTokenExpired,
// ErrTokenMalformed, ErrWrongTokenType or ErrAccountNotFound; any other error
// comes from the store.
func (r *Resolver) Resolve(ctx context.Context, bearer string) (*Account, error) {
	return r.resolve(ctx, bearer, TokenTypeAccess)
}

// ResolveRefresh is Resolve for refresh tokens
func (r *Resolver) ResolveRefresh(ctx context.Context, refresh string) (*Account, error) {
	return r.resolve(ctx, refresh, TokenTypeRefresh)
}

func (r *Resolver) resolve(ctx context.Context, raw string, typ TokenType) (*Account, error) {
	claims, err := r.tokens.Verify(raw, typ)
	if err != nil {
		return nil, err
	}

	account, err := r.accounts.GetActiveByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrAccountNotFound.WithCause(err)
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, errors.ErrAccountNotFound
	}

	if account.Role != claims.Role {
		log.Debug("Account role changed since token issuance",
			"account_id", account.ID, "token_role", claims.Role, "role", account.Role)
	}
	return account, nil
}

// IsAuthError reports whether err is one of the authentication-stage
// failures that are reported to clients as a generic 401
func IsAuthError(err error) bool {
	switch {
	case errors.Is(err, errors.ErrNoToken),
		errors.Is(err, errors.ErrTokenExpired),
		errors.Is(err, errors.ErrTokenMalformed),
		errors.Is(err, errors.ErrWrongTokenType),
		errors.Is(err, errors.ErrAccountNotFound):
		return true
	}
	return false
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.ErrNoToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.ErrNoToken
	}
	return token, nil
}

// Authenticator checks email/password pairs against active accounts
type Authenticator struct {
	accounts AccountStore
	hasher   PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(accounts AccountStore, hasher PasswordHasher) *Authenticator {
	return &Authenticator{accounts: accounts, hasher: hasher}
}

// Authenticate returns the active account for email when password matches,
// and ErrInvalidCredentials otherwise. Unknown emails still pay for one hash
// comparison.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := a.accounts.GetActiveByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, errors.ErrUserNotFound) {
			return nil, err
		}
		a.hasher.Verify(password, a.dummy())
		return nil, errors.ErrInvalidCredentials
	}

	if !a.hasher.Verify(password, account.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}
	return account, nil
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash("bazaar-unknown-account")
	})
	return a.dummyHash
}
