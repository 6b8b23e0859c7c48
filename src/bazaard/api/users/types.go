package users

import (
	"github.com/bitswalk/bazaar/src/bazaard/auth"
)

// Handler handles account HTTP requests: registration, token exchange and
// admin account management
type Handler struct {
	accounts      *auth.AccountRepository
	hasher        auth.PasswordHasher
	authenticator *auth.Authenticator
	tokens        *auth.TokenService
	resolver      *auth.Resolver
}

// Config contains configuration options for the Handler
type Config struct {
	Accounts *auth.AccountRepository
	Hasher   auth.PasswordHasher
	Tokens   *auth.TokenService
	Resolver *auth.Resolver
}

// RegisterRequest is the body of POST /users
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"buyer@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"correct horse battery"`
	// Role is buyer or seller; admins are created with `bazaard admin create`
	Role string `json:"role" example:"buyer"`
}

// LoginRequest is the OAuth2 password form of POST /users/token
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// RefreshRequest is the body of the refresh-token and access-token exchanges
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RoleUpdateRequest is the body of PUT /users/:user_id
type RoleUpdateRequest struct {
	Role string `json:"role" binding:"required" example:"seller"`
}

// TokenResponse carries newly issued tokens. Each endpoint fills the tokens it issues.
type TokenResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type" example:"bearer"`
}
