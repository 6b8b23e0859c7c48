// Package api wires the bazaard HTTP handlers, the role gate middleware and
// rate limiting onto a gin router.
package api

import (
	"context"
	"time"

	"github.com/bitswalk/bazaar/src/bazaard/api/base"
	"github.com/bitswalk/bazaar/src/bazaard/api/categories"
	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/api/products"
	"github.com/bitswalk/bazaar/src/bazaard/api/reviews"
	"github.com/bitswalk/bazaar/src/bazaard/api/users"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/bitswalk/bazaar/src/common/version"
)

// SetLogger sets the logger for the api package and subpackages
func SetLogger(l *logs.Logger) {
	common.SetLogger(l)
	common.SetAuditLogger(l)
	users.SetLogger(l)
	products.SetLogger(l)
}

// SetVersionInfo sets the version info for the api package and subpackages
func SetVersionInfo(v *version.Info) {
	base.SetVersionInfo(v)
}

// New creates a new API instance with all subpackage handlers
func New(cfg Config) *API {
	accounts := auth.NewAccountRepository(cfg.Database.DB())
	resolver := auth.NewResolver(cfg.Tokens, accounts)

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(0)
	}

	pingers := []base.Pinger{cfg.Database}
	if cfg.Storage != nil {
		pingers = append(pingers, base.PingFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return cfg.Storage.Ping(ctx)
		}))
	}

	return &API{
		Base: base.NewHandler(pingers...),

		Users: users.NewHandler(users.Config{
			Accounts: accounts,
			Hasher:   hasher,
			Tokens:   cfg.Tokens,
			Resolver: resolver,
		}),

		Categories: categories.NewHandler(categories.Config{
			CategoryRepo: db.NewCategoryRepository(cfg.Database),
		}),

		Products: products.NewHandler(products.Config{
			ProductRepo:  db.NewProductRepository(cfg.Database),
			CategoryRepo: db.NewCategoryRepository(cfg.Database),
			Storage:      cfg.Storage,
			MaxImageSize: cfg.MaxImageSize,
		}),

		Reviews: reviews.NewHandler(reviews.Config{
			ReviewRepo: db.NewReviewRepository(cfg.Database),
		}),

		tokens:      cfg.Tokens,
		gate:        auth.NewGate(resolver),
		rateLimiter: cfg.RateLimiter,
		storage:     cfg.Storage,
	}
}

// HasStorage returns true if an image storage backend is configured
func (a *API) HasStorage() bool {
	return a.storage != nil
}
