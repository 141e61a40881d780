package common

import "errors"

// Kind is a stable, machine-readable error category reported to clients.
type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindUnauthorized    Kind = "unauthorized"
	KindTokenExpired    Kind = "token_expired"
	KindBadCredentials  Kind = "bad_credentials"
	KindProductNotFound Kind = "product_not_found"
	KindCartNotFound    Kind = "cart_not_found"
	KindUserNotFound    Kind = "user_not_found"
	KindNotFound        Kind = "not_found"
	KindEmailTaken      Kind = "email_taken"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal_error"
)

// kindTable is checked in order; more specific sentinels come first.
var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrTokenExpired, KindTokenExpired},
	{ErrBadCredentials, KindBadCredentials},
	{ErrMalformedToken, KindUnauthorized},
	{ErrInvalidSignature, KindUnauthorized},
	{ErrUnknownSubject, KindUnauthorized},
	{ErrInvalidToken, KindUnauthorized},
	{ErrorUnauthorized, KindUnauthorized},
	{ErrProductNotFound, KindProductNotFound},
	{ErrCartNotFound, KindCartNotFound},
	{ErrUserNotFound, KindUserNotFound},
	{ErrorNotFound, KindNotFound},
	{ErrEmailTaken, KindEmailTaken},
	{ErrUnavailable, KindUnavailable},
	{ErrVersionConflict, KindUnavailable},
}

// KindOf classifies err. Unknown errors are reported as KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindInternal
}
