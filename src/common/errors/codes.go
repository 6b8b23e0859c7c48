package errors

import "net/http"

const (
	CodeNotFound       Code = "not_found"
	CodeAlreadyExists  Code = "already_exists"
	CodeInvalidRequest Code = "invalid_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeConflict       Code = "conflict"
	CodeInternal       Code = "internal_error"
	CodeUnavailable    Code = "unavailable"
	CodeRateLimited    Code = "rate_limited"
)

// ============================================================================
// Authentication Errors
// ============================================================================

// Every authentication-stage error carries 401. Handlers collapse them into a
// single generic response; the distinct codes exist for logs and tests.
var (
	// ErrInvalidCredentials is returned when the email/password pair does not match an active account
	ErrInvalidCredentials = New(DomainAuth, "invalid_credentials", http.StatusUnauthorized,
		"Incorrect email or password")

	// ErrTokenExpired is returned when the token's expiry is not after the current time
	ErrTokenExpired = New(DomainAuth, "token_expired", http.StatusUnauthorized,
		"Token has expired")

	// ErrTokenMalformed is returned for bad signatures, unexpected algorithms and missing claims
	ErrTokenMalformed = New(DomainAuth, "token_malformed", http.StatusUnauthorized,
		"Malformed token")

	// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa
	ErrWrongTokenType = New(DomainAuth, "wrong_token_type", http.StatusUnauthorized,
		"Wrong token type")

	// ErrNoToken is returned when the Authorization header is missing or not a bearer token
	ErrNoToken = New(DomainAuth, "no_token", http.StatusUnauthorized,
		"No authentication token provided")

	// ErrAccountNotFound is returned when a verified token names no active account
	ErrAccountNotFound = New(DomainAuth, "account_not_found", http.StatusUnauthorized,
		"Account not found or inactive")

	// ErrForbidden is returned when the authenticated account lacks the required role
	ErrForbidden = New(DomainAuth, CodeForbidden, http.StatusForbidden,
		"Insufficient permissions")

	// ErrOwnershipViolation is returned when an account mutates a resource it does not own
	ErrOwnershipViolation = New(DomainAuth, "ownership_violation", http.StatusForbidden,
		"You do not own this resource")
)

// ============================================================================
// User Errors
// ============================================================================

var (
	ErrUserNotFound = New(DomainUser, CodeNotFound, http.StatusNotFound,
		"User not found")

	ErrEmailAlreadyExists = New(DomainUser, "email_exists", http.StatusConflict,
		"Email already registered")

	ErrInvalidRole = New(DomainUser, "invalid_role", http.StatusBadRequest,
		"Invalid role")
)

// ============================================================================
// Catalog Errors
// ============================================================================

var (
	ErrCategoryNotFound = New(DomainCategory, CodeNotFound, http.StatusNotFound,
		"Category not found")

	ErrParentCategoryNotFound = New(DomainCategory, "parent_not_found", http.StatusBadRequest,
		"Parent category not found")

	ErrCategorySelfParent = New(DomainCategory, "self_parent", http.StatusBadRequest,
		"Category cannot be its own parent")

	ErrCategoryInactive = New(DomainCategory, "inactive", http.StatusBadRequest,
		"Category is inactive")

	ErrProductNotFound = New(DomainProduct, CodeNotFound, http.StatusNotFound,
		"Product not found or inactive")

	ErrInvalidPriceRange = New(DomainProduct, "invalid_price_range", http.StatusBadRequest,
		"min_price cannot be greater than max_price")

	ErrReviewNotFound = New(DomainReview, CodeNotFound, http.StatusNotFound,
		"Review not found")

	ErrReviewExists = New(DomainReview, CodeAlreadyExists, http.StatusConflict,
		"You have already reviewed this product")
)

// ============================================================================
// Storage Errors
// ============================================================================

var (
	ErrStorageNotFound = New(DomainStorage, CodeNotFound, http.StatusNotFound,
		"Object not found in storage")

	ErrStorageUploadFailed = New(DomainStorage, "upload_failed", http.StatusInternalServerError,
		"Failed to upload object to storage")

	ErrStorageUnavailable = New(DomainStorage, CodeUnavailable, http.StatusServiceUnavailable,
		"Storage backend unavailable")
)

// ============================================================================
// Database Errors
// ============================================================================

var (
	ErrDatabaseQuery = New(DomainDatabase, "query_failed", http.StatusInternalServerError,
		"Database query failed")

	ErrDatabaseTransaction = New(DomainDatabase, "transaction_failed", http.StatusInternalServerError,
		"Database transaction failed")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrValidationFailed = New(DomainValidation, "validation_failed", http.StatusBadRequest,
		"Validation failed")

	ErrInvalidJSON = New(DomainValidation, "invalid_json", http.StatusBadRequest,
		"Invalid JSON")
)

// ============================================================================
// Internal Errors
// ============================================================================

var (
	ErrInternal = New(DomainInternal, CodeInternal, http.StatusInternalServerError,
		"Internal server error")

	ErrRateLimited = New(DomainInternal, CodeRateLimited, http.StatusTooManyRequests,
		"Too many requests")
)
