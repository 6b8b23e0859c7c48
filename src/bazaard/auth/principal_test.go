package auth

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/bitswalk/bazaar/src/common/errors"
	"golang.org/x/crypto/bcrypt"
)

// memoryAccounts is an in-memory AccountStore
type memoryAccounts struct {
	byEmail map[string]*Account
	err     error
}

func newMemoryAccounts(accounts ...*Account) *memoryAccounts {
	m := &memoryAccounts{byEmail: make(map[string]*Account)}
	for _, a := range accounts {
		m.byEmail[a.Email] = a
	}
	return m
}

func (m *memoryAccounts) GetActiveByEmail(_ context.Context, email string) (*Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.byEmail[email]
	if !ok || !a.IsActive {
		return nil, errors.ErrUserNotFound
	}
	copied := *a
	return &copied, nil
}

func testAccount(id int64, email string, role Role) *Account {
	a := NewAccount(email, "", role)
	a.ID = id
	return a
}

func TestResolveActiveAccount(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	seller := testAccount(7, "seller@example.com", RoleSeller)
	resolver := NewResolver(svc, newMemoryAccounts(seller))

	token, _ := svc.IssueAccess(seller.Identity(), clock.Now())
	got, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != seller.ID || got.Email != seller.Email {
		t.Fatalf("Resolve = %+v, want account %d", got, seller.ID)
	}
}

func TestResolveDeactivatedAccount(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	buyer := testAccount(3, "buyer@example.com", RoleBuyer)
	store := newMemoryAccounts(buyer)
	resolver := NewResolver(svc, store)

	token, _ := svc.IssueAccess(buyer.Identity(), clock.Now())
	if _, err := resolver.Resolve(context.Background(), token); err != nil {
		t.Fatalf("Resolve before deactivation failed: %v", err)
	}

	buyer.IsActive = false
	_, err := resolver.Resolve(context.Background(), token)
	if !errors.Is(err, errors.ErrAccountNotFound) {
		t.Fatalf("Resolve after deactivation error = %v, want ErrAccountNotFound", err)
	}
	if !IsAuthError(err) {
		t.Fatal("deactivated account must be an authentication failure")
	}
}

func TestResolveUnknownAccount(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	resolver := NewResolver(svc, newMemoryAccounts())

	token, _ := svc.IssueAccess(Identity{Email: "ghost@example.com", Role: RoleBuyer, AccountID: 99}, clock.Now())
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, errors.ErrAccountNotFound) {
		t.Fatalf("Resolve error = %v, want ErrAccountNotFound", err)
	}
}

func TestResolveRejectsRefreshToken(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	buyer := testAccount(3, "buyer@example.com", RoleBuyer)
	resolver := NewResolver(svc, newMemoryAccounts(buyer))

	pair, _ := svc.IssuePair(buyer.Identity(), clock.Now())
	if _, err := resolver.Resolve(context.Background(), pair.RefreshToken); !errors.Is(err, errors.ErrWrongTokenType) {
		t.Fatalf("Resolve(refresh) error = %v, want ErrWrongTokenType", err)
	}
	if _, err := resolver.ResolveRefresh(context.Background(), pair.AccessToken); !errors.Is(err, errors.ErrWrongTokenType) {
		t.Fatalf("ResolveRefresh(access) error = %v, want ErrWrongTokenType", err)
	}
	if _, err := resolver.ResolveRefresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("ResolveRefresh failed: %v", err)
	}
}

func TestResolveStoreFailureIsNotAuthError(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	buyer := testAccount(3, "buyer@example.com", RoleBuyer)
	store := newMemoryAccounts(buyer)
	store.err = errors.ErrDatabaseQuery.WithCause(stderrors.New("disk I/O error"))
	resolver := NewResolver(svc, store)

	token, _ := svc.IssueAccess(buyer.Identity(), clock.Now())
	_, err := resolver.Resolve(context.Background(), token)
	if !errors.Is(err, errors.ErrDatabaseQuery) {
		t.Fatalf("Resolve error = %v, want ErrDatabaseQuery", err)
	}
	if IsAuthError(err) {
		t.Fatal("store failures must not be reported as authentication failures")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
	}

	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("BearerToken(%q) = %q, %v; want %q", tt.header, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, errors.ErrNoToken) {
			t.Errorf("BearerToken(%q) error = %v, want ErrNoToken", tt.header, err)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	active := NewAccount("active@example.com", hash, RoleBuyer)
	active.ID = 1
	inactive := NewAccount("gone@example.com", hash, RoleSeller)
	inactive.ID = 2
	inactive.IsActive = false

	authn := NewAuthenticator(newMemoryAccounts(active, inactive), hasher)
	ctx := context.Background()

	got, err := authn.Authenticate(ctx, "active@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("Authenticate returned account %d", got.ID)
	}

	for _, tc := range []struct{ email, password string }{
		{"active@example.com", "wrong-pass"},
		{"gone@example.com", "s3cret-pass"},
		{"nobody@example.com", "s3cret-pass"},
	} {
		if _, err := authn.Authenticate(ctx, tc.email, tc.password); !errors.Is(err, errors.ErrInvalidCredentials) {
			t.Errorf("Authenticate(%s) error = %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}
