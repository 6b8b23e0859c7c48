// Package auth authenticates marketplace accounts and authorizes their
// requests.
//
// Passwords are hashed with bcrypt. Logins mint a pair of HS256 JWTs: a
// short-lived access token and a longer-lived refresh token marked with
// token_type "refresh". Tokens are stateless; nothing is stored server side
// and nothing is revoked. On every protected request the access token is
// verified, the account it names is reloaded from the store and must still be
// active, and the account's current role is checked against the route policy.
package auth

import (
	"github.com/bitswalk/bazaar/src/common/logs"
)

var log = logs.New(logs.Config{Output: logs.OutputStdout, Level: "info", Prefix: "auth"})

// SetLogger sets the package-level logger
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}
