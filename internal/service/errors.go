package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package matches exactly one of
// these through errors.Is; the sentinel text doubles as the wire name.
var (
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrBadCredentials   = errors.New("bad_credentials")
	ErrBadRequest       = errors.New("bad_request")
	ErrAccountNotActive = errors.New("account_not_active")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidToken     = errors.New("invalid_token")
	ErrForbidden        = errors.New("forbidden")
	ErrDelivery         = errors.New("delivery_error")
	ErrStore            = errors.New("store_error")
	ErrPartialSuccess   = errors.New("partial_success")
)

var kinds = []error{
	ErrPartialSuccess,
	ErrConflict,
	ErrUnauthorized,
	ErrBadCredentials,
	ErrAccountNotActive,
	ErrNotFound,
	ErrInvalidToken,
	ErrForbidden,
	ErrDelivery,
	ErrBadRequest,
	ErrStore,
}

// Error is the single structured failure type of the auth core.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// storeFailure surfaces an unexpected persistence error as a client-facing
// bad request that still matches ErrStore.
func storeFailure(err error) *Error {
	return &Error{
		Kind:    ErrBadRequest,
		Message: err.Error(),
		Cause:   fmt.Errorf("%w: %w", ErrStore, err),
	}
}

// partialSuccess reports that the state change committed but the follow-up
// notification could not be delivered.
func partialSuccess(message string, cause error) *Error {
	return &Error{
		Kind:    ErrPartialSuccess,
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDelivery, cause),
	}
}

// KindOf returns the kind of err. Errors from outside the package are treated
// as bad requests.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrBadRequest
}
