// Package apperr defines the typed business errors returned by services and
// how they translate into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse failure class of a business error.
type Kind string

const (
	KindUnauthorized Kind = "Unauthorized"
	KindForbidden    Kind = "Forbidden"
	KindNotFound     Kind = "NotFound"
	KindConflict     Kind = "Conflict"
	KindInvalidState Kind = "InvalidState"
	KindRateLimited  Kind = "RateLimited"
	KindInternal     Kind = "Internal"
)

// Code is the machine-readable error code surfaced to clients.
type Code string

const (
	CodeLoginOrPasswordIncorrect        Code = "LoginOrPasswordIncorrect"
	CodeUserAlreadyExists               Code = "UserAlreadyExists"
	CodeUserNotFound                    Code = "UserNotFound"
	CodeUnauthorized                    Code = "Unauthorized"
	CodeWishNotFound                    Code = "WishNotFound"
	CodeWishesNotFound                  Code = "WishesNotFound"
	CodeWishRaisedIsRatherThanPrice     Code = "WishRaisedIsRatherThanPrice"
	CodeConflictUpdateWishPrice         Code = "ConflictUpdateWishPrice"
	CodeConflictDeleteFundedWish        Code = "ConflictDeleteFundedWish"
	CodeConflictUpdateOfferTooMuchMoney Code = "ConflictUpdateOfferTooMuchMoney"
	CodeConflictCreateOwnWishOffer      Code = "ConflictCreateOwnWishOffer"
	CodeWishlistNotFound                Code = "WishlistNotFound"
	CodeOfferNotFound                   Code = "OfferNotFound"
	CodeEmptyItemsID                    Code = "EmptyItemsId"
	CodeConflictUpdateOtherWish         Code = "ConflictUpdateOtherWish"
	CodeConflictDeleteOtherWish         Code = "ConflictDeleteOtherWish"
	CodeConflictUpdateOtherWishlist     Code = "ConflictUpdateOtherWishlist"
	CodeConflictDeleteOtherWishlist     Code = "ConflictDeleteOtherWishlist"
	CodeValidationFailed                Code = "ValidationFailed"
	CodeInvalidAmount                   Code = "InvalidAmount"
	CodeTooManyRequests                 Code = "TooManyRequests"
	CodeInternal                        Code = "InternalError"
)

// Error is a business error with a kind, a client-facing code and message,
// and an optional underlying cause.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind and code so sentinel-style comparisons
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

// StatusOf maps a kind to its HTTP status.
func StatusOf(k Kind) int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind and code.
func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, code Code, format string, args ...any) *Error {
	return New(kind, code, fmt.Sprintf(format, args...))
}

// Wrap attaches cause to a new error of the given kind and code.
func Wrap(err error, kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: err}
}

// Internal wraps an unexpected failure (database, hashing, signing).
func Internal(err error, operation string) *Error {
	return Wrap(err, KindInternal, CodeInternal, "internal error: "+operation)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
