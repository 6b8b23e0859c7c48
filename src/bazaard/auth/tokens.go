package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds the token settings. It is read once at construction and never
// changes afterwards.
type Config struct {
	SecretKey []byte
	// Algorithm is an HMAC JWT algorithm name (HS256, HS384, HS512)
	Algorithm  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultConfig returns the token settings used when nothing is configured.
// SecretKey is left empty and must be provided.
func DefaultConfig() Config {
	return Config{
		Algorithm:  "HS256",
		Issuer:     "bazaard",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// Clock returns the current time
type Clock func() time.Time

// TokenService issues and verifies access and refresh tokens
type TokenService struct {
	cfg    Config
	method *jwt.SigningMethodHMAC
	now    Clock
	parser *jwt.Parser
}

// NewTokenService validates cfg and returns a TokenService. A nil clock means time.Now.
func NewTokenService(cfg Config, clock Clock) (*TokenService, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, fmt.Errorf("token secret key is empty")
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "HS256"
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive (access %s, refresh %s)", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if clock == nil {
		clock = time.Now
	}

	// copy the key so later writes to the caller's slice cannot change it
	cfg.SecretKey = append([]byte(nil), cfg.SecretKey...)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithTimeFunc(clock),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &TokenService{
		cfg:    cfg,
		method: method,
		now:    clock,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Now returns the service clock's current time
func (s *TokenService) Now() time.Time {
	return s.now()
}

// AccessTTL returns the configured access token lifetime
func (s *TokenService) AccessTTL() time.Duration {
	return s.cfg.AccessTTL
}

// jwtClaims is the wire form of a token. Access tokens leave TokenType empty.
type jwtClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	AccountID int64  `json:"id"`
	TokenType string `json:"token_type,omitempty"`
}

// IssueAccess signs an access token for id valid from now for AccessTTL
func (s *TokenService) IssueAccess(id Identity, now time.Time) (string, error) {
	return s.issue(id, now, s.cfg.AccessTTL, "")
}

// IssueRefresh signs a refresh token for id valid from now for RefreshTTL.
// Previously issued refresh tokens remain valid until they expire.
func (s *TokenService) IssueRefresh(id Identity, now time.Time) (string, error) {
	return s.issue(id, now, s.cfg.RefreshTTL, TokenTypeRefresh)
}

// IssuePair signs both tokens at the same instant
func (s *TokenService) IssuePair(id Identity, now time.Time) (*TokenPair, error) {
	access, err := s.IssueAccess(id, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefresh(id, now)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) issue(id Identity, now time.Time, ttl time.Duration, typ TokenType) (string, error) {
	if id.Email == "" || id.AccountID == 0 || !id.Role.IsValid() {
		return "", fmt.Errorf("cannot issue token for incomplete identity %+v", id)
	}

	now = now.UTC()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.cfg.Issuer,
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      string(id.Role),
		AccountID: id.AccountID,
		TokenType: string(typ),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.cfg.SecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature, algorithm, expiry and claim shape and
// that it is of the expected type. It returns ErrTokenExpired,
// ErrTokenMalformed or ErrWrongTokenType.
func (s *TokenService) Verify(raw string, expected TokenType) (*Claims, error) {
	token, err := s.parser.ParseWithClaims(raw, &jwtClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.cfg.SecretKey, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired.WithCause(err)
		}
		return nil, errors.ErrTokenMalformed.WithCause(err)
	}

	wc, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrTokenMalformed
	}

	role := Role(wc.Role)
	if wc.Subject == "" || wc.AccountID == 0 || !role.IsValid() {
		return nil, errors.ErrTokenMalformed.WithMessage("Token is missing required claims")
	}

	typ, err := parseTokenType(wc.TokenType)
	if err != nil {
		return nil, err
	}
	if typ != expected {
		return nil, errors.ErrWrongTokenType.WithMessagef("Expected %s token, got %s", expected, typ)
	}

	claims := &Claims{
		Identity: Identity{
			Email:     wc.Subject,
			Role:      role,
			AccountID: wc.AccountID,
		},
		Type:    typ,
		TokenID: wc.ID,
	}
	if wc.IssuedAt != nil {
		claims.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		claims.ExpiresAt = wc.ExpiresAt.Time
	}
	return claims, nil
}

func parseTokenType(s string) (TokenType, error) {
	switch TokenType(s) {
	case "", TokenTypeAccess:
		return TokenTypeAccess, nil
	case TokenTypeRefresh:
		return TokenTypeRefresh, nil
	}
	return "", errors.ErrWrongTokenType.WithMessagef("Unknown token type %q", s)
}
