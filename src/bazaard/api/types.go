package api

import (
	"github.com/bitswalk/bazaar/src/bazaard/api/base"
	"github.com/bitswalk/bazaar/src/bazaard/api/categories"
	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/api/products"
	"github.com/bitswalk/bazaar/src/bazaard/api/reviews"
	"github.com/bitswalk/bazaar/src/bazaard/api/users"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/bitswalk/bazaar/src/bazaard/storage"
)

// ErrorResponse is an alias to common.ErrorResponse
type ErrorResponse = common.ErrorResponse

// API holds all handler instances and dependencies
type API struct {
	Base       *base.Handler
	Users      *users.Handler
	Categories *categories.Handler
	Products   *products.Handler
	Reviews    *reviews.Handler

	// Direct dependencies for middleware
	tokens      *auth.TokenService
	gate        *auth.Gate
	rateLimiter *RateLimiter
	storage     storage.Backend
}

// Config contains API configuration options
type Config struct {
	Database *db.Database
	// Storage is optional; without it the product image endpoints answer 503
	Storage      storage.Backend
	Tokens       *auth.TokenService
	Hasher       auth.PasswordHasher
	MaxImageSize int64
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *RateLimiter
}
