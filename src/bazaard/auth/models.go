package auth

import "time"

// Account is a marketplace user. Accounts are deactivated, never deleted.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAccount builds an active account ready to be inserted
func NewAccount(email, passwordHash string, role Role) *Account {
	now := time.Now().UTC()
	return &Account{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Identity returns the claims a token issued for a should carry
func (a *Account) Identity() Identity {
	return Identity{
		Email:     a.Email,
		Role:      a.Role,
		AccountID: a.ID,
	}
}

// Identity is the account snapshot embedded in a token at issuance
type Identity struct {
	Email     string
	Role      Role
	AccountID int64
}

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is a verified token's content
type Claims struct {
	Identity
	Type      TokenType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is what a successful login returns
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
