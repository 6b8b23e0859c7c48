package common

import (
	"net/http"
	"strconv"

	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/gin-gonic/gin"
)

var log = logs.NewDefault()

// SetLogger sets the logger for the common api package
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}

// accountKey is the gin context key under which the gate stores the caller
const accountKey = "account"

// CredentialsMessage is the only detail an unauthenticated caller receives
const CredentialsMessage = "Could not validate credentials"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Not Found"`
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"Product with id 3 not found or inactive"`
}

// StatusResponse is returned by soft deletes
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Product marked as inactive"`
}

// SetAccount stores the authorized account for downstream handlers
func SetAccount(c *gin.Context, account *auth.Account) {
	c.Set(accountKey, account)
}

// GetAccountFromContext retrieves the account stored by the gate middleware
func GetAccountFromContext(c *gin.Context) *auth.Account {
	if v, exists := c.Get(accountKey); exists {
		if account, ok := v.(*auth.Account); ok {
			return account
		}
	}
	return nil
}

// ParseID reads a positive integer path parameter. On failure a 400 has
// already been written.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// RespondError writes err as an ErrorResponse. Errors that are not
// *errors.Error are logged and reported as 500 without detail.
func RespondError(c *gin.Context, err error) {
	var e *errors.Error
	if !errors.As(err, &e) {
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		e = errors.ErrInternal
	} else if e.HTTPStatus >= http.StatusInternalServerError {
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	c.JSON(e.HTTPStatus, ErrorResponse{
		Error:   http.StatusText(e.HTTPStatus),
		Code:    e.HTTPStatus,
		Message: e.Message,
	})
}

// AbortAuthError ends a request whose caller could not be authorized.
// Authentication failures share one 401 body; the cause is logged at debug.
func AbortAuthError(c *gin.Context, err error) {
	switch {
	case auth.IsAuthError(err):
		log.Debug("Authentication failed", "path", c.FullPath(), "cause", errors.GetCode(err), "client_ip", c.ClientIP())
		AbortUnauthorized(c, CredentialsMessage)
	case errors.Is(err, errors.ErrForbidden):
		var e *errors.Error
		errors.As(err, &e)
		AbortForbidden(c, e.Message)
	default:
		RespondError(c, err)
		c.Abort()
	}
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Bad Request",
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// Unauthorized sends a 401 with the bearer challenge header
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "Unauthorized",
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}

// Forbidden sends a 403 Forbidden response
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   "Forbidden",
		Code:    http.StatusForbidden,
		Message: message,
	})
}

// AbortUnauthorized aborts the request with a 401 and the bearer challenge header
func AbortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "Unauthorized",
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}

// AbortForbidden aborts the request with a 403 Forbidden response
func AbortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error:   "Forbidden",
		Code:    http.StatusForbidden,
		Message: message,
	})
}

// AbortTooManyRequests aborts the request with a 429 Too Many Requests response
func AbortTooManyRequests(c *gin.Context, message string) {
	c.Header("Retry-After", "60")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   "Too Many Requests",
		Code:    http.StatusTooManyRequests,
		Message: message,
	})
}
