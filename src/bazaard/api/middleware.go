package api

import (
	"fmt"

	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/gin-gonic/gin"
)

// gated returns middleware admitting only callers whose bearer token resolves
// to an active account satisfying p. The account is stored for handlers.
func (a *API) gated(p auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			common.AbortAuthError(c, err)
			return
		}

		account, err := a.gate.Authorize(c.Request.Context(), bearer, p)
		if err != nil {
			common.AbortAuthError(c, err)
			return
		}

		common.SetAccount(c, account)
		c.Next()
	}
}

// rateLimitAuth returns middleware that rate-limits the unauthenticated
// account endpoints per client IP.
func (a *API) rateLimitAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.rateLimiter == nil {
			c.Next()
			return
		}
		if !a.rateLimiter.Allow("auth:"+c.ClientIP(), a.rateLimiter.config.AuthRequestsPerMin) {
			common.AbortTooManyRequests(c, "Too many authentication attempts, retry later")
			return
		}
		c.Next()
	}
}

// rateLimitAPI returns middleware that rate-limits general API endpoints per
// account when the request carries a valid access token, per IP otherwise.
func (a *API) rateLimitAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.rateLimiter == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if bearer, err := auth.BearerToken(c.GetHeader("Authorization")); err == nil {
			if claims, err := a.tokens.Verify(bearer, auth.TokenTypeAccess); err == nil {
				key = fmt.Sprintf("user:%d", claims.AccountID)
			}
		}

		if !a.rateLimiter.Allow(key, a.rateLimiter.config.APIRequestsPerMin) {
			common.AbortTooManyRequests(c, "Rate limit exceeded, retry later")
			return
		}
		c.Next()
	}
}
