package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/meinhoongagan/findam/models"
)

// ErrKind groups errors by how the transport should answer them.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 500
)

const (
	CodeValidationFailed       = "validation_failed"
	CodeWeakPassword           = "weak_password"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeAuthenticationRequired = "authentication_required"
	CodeRoleNotEligible        = "role_not_eligible"
	CodeEmailTaken             = "email_taken"
	CodeAlreadyRegistered      = "already_registered"
	CodeProviderNotFound       = "provider_not_found"
	CodeInvalidOrExpiredToken  = "invalid_or_expired_token"
	CodeQueryFailed            = "query_failed"
	CodeRateLimited            = "rate_limited"
	CodeInternal               = "internal_error"
)

// HTTPStatus is the status code a transport answers with for errors of kind k.
func (k ErrKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type returned by every service. Message is safe to show
// to clients; Cause is for logs only.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string

	// Fields lists the offending input fields for validation errors.
	Fields []string
	// Provider is set on AlreadyRegistered so callers can redirect to it.
	Provider *models.Provider

	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code, so errors.Is(err, ErrEmailTaken()) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// AsError extracts the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

func ErrValidation(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: msg, Fields: fields}
}

func ErrWeakPassword() *Error {
	return &Error{Kind: KindValidation, Code: CodeWeakPassword, Message: "password must be at least 6 characters", Fields: []string{"password"}}
}

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
func ErrInvalidCredentials() *Error {
	return &Error{Kind: KindAuth, Code: CodeInvalidCredentials, Message: "invalid credentials"}
}

func ErrAuthenticationRequired() *Error {
	return &Error{Kind: KindAuth, Code: CodeAuthenticationRequired, Message: "authentication required"}
}

func ErrRoleNotEligible() *Error {
	return &Error{Kind: KindForbidden, Code: CodeRoleNotEligible, Message: "only provider accounts can register a business"}
}

func ErrEmailTaken() *Error {
	return &Error{Kind: KindConflict, Code: CodeEmailTaken, Message: "email already in use"}
}

func ErrAlreadyRegistered(existing *models.Provider) *Error {
	return &Error{Kind: KindConflict, Code: CodeAlreadyRegistered, Message: "a business is already registered for this account", Provider: existing}
}

func ErrProviderNotFound() *Error {
	return &Error{Kind: KindNotFound, Code: CodeProviderNotFound, Message: "Provider not found"}
}

func ErrInvalidOrExpiredToken() *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidOrExpiredToken, Message: "Invalid or expired reset link"}
}

func ErrRateLimited() *Error {
	return &Error{Kind: KindRateLimited, Code: CodeRateLimited, Message: "too many requests, try again later"}
}

func ErrQueryFailed(cause error) *Error {
	return &Error{Kind: KindInfrastructure, Code: CodeQueryFailed, Message: "failed to fetch providers", Cause: cause}
}

func ErrInternal(cause error) *Error {
	return &Error{Kind: KindInfrastructure, Code: CodeInternal, Message: "something went wrong", Cause: cause}
}
