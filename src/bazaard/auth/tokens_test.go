package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// testClock is a settable clock
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func newTestTokenService(t *testing.T, clock *testClock) *TokenService {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SecretKey = testSecret
	svc, err := NewTokenService(cfg, clock.Now)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	return svc
}

var sellerIdentity = Identity{Email: "seller@example.com", Role: RoleSeller, AccountID: 7}

func TestAccessTokenExpiryBoundary(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	issued := clock.Now()

	token, err := svc.IssueAccess(sellerIdentity, issued)
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	clock.now = issued.Add(svc.AccessTTL() - time.Second)
	claims, err := svc.Verify(token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("token rejected one second before expiry: %v", err)
	}
	if claims.Identity != sellerIdentity {
		t.Fatalf("claims identity = %+v, want %+v", claims.Identity, sellerIdentity)
	}
	if !claims.ExpiresAt.Equal(issued.Add(30 * time.Minute)) {
		t.Fatalf("ExpiresAt = %v, want %v", claims.ExpiresAt, issued.Add(30*time.Minute))
	}

	clock.now = issued.Add(svc.AccessTTL() + time.Second)
	if _, err := svc.Verify(token, TokenTypeAccess); !errors.Is(err, errors.ErrTokenExpired) {
		t.Fatalf("Verify after expiry error = %v, want ErrTokenExpired", err)
	}
}

func TestRefreshTokenExpiryBoundary(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)
	issued := clock.Now()

	token, err := svc.IssueRefresh(sellerIdentity, issued)
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	clock.now = issued.Add(7*24*time.Hour - time.Second)
	claims, err := svc.Verify(token, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("refresh token rejected before expiry: %v", err)
	}
	if claims.Type != TokenTypeRefresh {
		t.Fatalf("claims type = %q", claims.Type)
	}

	clock.now = issued.Add(7*24*time.Hour + time.Second)
	if _, err := svc.Verify(token, TokenTypeRefresh); !errors.Is(err, errors.ErrTokenExpired) {
		t.Fatalf("Verify after expiry error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenTypeConfusion(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)

	pair, err := svc.IssuePair(sellerIdentity, clock.Now())
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	if _, err := svc.Verify(pair.RefreshToken, TokenTypeAccess); !errors.Is(err, errors.ErrWrongTokenType) {
		t.Errorf("refresh token used as access: error = %v, want ErrWrongTokenType", err)
	}
	if _, err := svc.Verify(pair.AccessToken, TokenTypeRefresh); !errors.Is(err, errors.ErrWrongTokenType) {
		t.Errorf("access token used as refresh: error = %v, want ErrWrongTokenType", err)
	}
	if _, err := svc.Verify(pair.AccessToken, TokenTypeAccess); err != nil {
		t.Errorf("access token rejected: %v", err)
	}
	if _, err := svc.Verify(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Errorf("refresh token rejected: %v", err)
	}
}

func TestRefreshReissueKeepsOldTokenValid(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)

	first, _ := svc.IssueRefresh(sellerIdentity, clock.Now())
	second, _ := svc.IssueRefresh(sellerIdentity, clock.Now())
	if first == second {
		t.Fatal("refresh tokens issued at the same instant should differ")
	}

	for _, tok := range []string{first, second} {
		if _, err := svc.Verify(tok, TokenTypeRefresh); err != nil {
			t.Fatalf("refresh token rejected after reissue: %v", err)
		}
	}
}

func signRaw(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign raw token: %v", err)
	}
	return s
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(t, clock)

	valid, _ := svc.IssueAccess(sellerIdentity, clock.Now())
	exp := clock.Now().Add(time.Hour).Unix()
	full := func() jwt.MapClaims {
		return jwt.MapClaims{"sub": "seller@example.com", "role": "seller", "id": 7, "exp": exp, "iss": "bazaard"}
	}

	noID := full()
	delete(noID, "id")
	badRole := full()
	badRole["role"] = "superuser"
	noExp := full()
	delete(noExp, "exp")
	wrongIssuer := full()
	wrongIssuer["iss"] = "someone-else"
	unknownType := full()
	unknownType["token_type"] = "session"

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", errors.ErrTokenMalformed},
		{"empty", "", errors.ErrTokenMalformed},
		{"tampered signature", tampered, errors.ErrTokenMalformed},
		{"other secret", signRaw(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), full()), errors.ErrTokenMalformed},
		{"other algorithm", signRaw(t, jwt.SigningMethodHS512, testSecret, full()), errors.ErrTokenMalformed},
		{"alg none", signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, full()), errors.ErrTokenMalformed},
		{"missing id", signRaw(t, jwt.SigningMethodHS256, testSecret, noID), errors.ErrTokenMalformed},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, testSecret, badRole), errors.ErrTokenMalformed},
		{"missing exp", signRaw(t, jwt.SigningMethodHS256, testSecret, noExp), errors.ErrTokenMalformed},
		{"wrong issuer", signRaw(t, jwt.SigningMethodHS256, testSecret, wrongIssuer), errors.ErrTokenMalformed},
		{"unknown token type", signRaw(t, jwt.SigningMethodHS256, testSecret, unknownType), errors.ErrWrongTokenType},
		{"hand-signed access", signRaw(t, jwt.SigningMethodHS256, testSecret, full()), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token, TokenTypeAccess)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Verify error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Verify error = %v, want %v", err, tt.want)
			}
			if !IsAuthError(err) {
				t.Fatalf("%v should be an authentication error", err)
			}
		})
	}
}

func TestNewTokenServiceValidatesConfig(t *testing.T) {
	base := DefaultConfig()
	base.SecretKey = testSecret

	noSecret := base
	noSecret.SecretKey = nil
	rsa := base
	rsa.Algorithm = "RS256"
	zeroTTL := base
	zeroTTL.AccessTTL = 0

	for name, cfg := range map[string]Config{"no secret": noSecret, "rsa": rsa, "zero ttl": zeroTTL} {
		if _, err := NewTokenService(cfg, nil); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := NewTokenService(base, nil); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestIssueRejectsIncompleteIdentity(t *testing.T) {
	svc := newTestTokenService(t, newTestClock())
	if _, err := svc.IssueAccess(Identity{Email: "x@example.com", Role: "root", AccountID: 1}, time.Now()); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := svc.IssueAccess(Identity{Role: RoleBuyer, AccountID: 1}, time.Now()); err == nil {
		t.Fatal("expected error for missing email")
	}
}
