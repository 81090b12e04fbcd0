package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user with email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrMailQueueFull      = errors.New("mail queue is full")

	// ErrExpiredToken and ErrMalformedToken are returned by the session codec.
	ErrExpiredToken   = errors.New("token has expired")
	ErrMalformedToken = errors.New("token is malformed")

	// ErrInvalidToken is returned for action-link tokens that fail to decode.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredOrInvalid is returned by the refresh endpoint.
	ErrExpiredOrInvalid = errors.New("invalid or expired token")
)

// Machine-readable reasons carried by AuthError.
const (
	ReasonMissingCredentials   = "missing_credentials"
	ReasonInvalidToken         = "invalid_token"
	ReasonExpiredToken         = "expired_token"
	ReasonRevokedToken         = "revoked_token"
	ReasonAccessTokenRequired  = "access_token_required"
	ReasonRefreshTokenRequired = "refresh_token_required"
	ReasonMissingIdentity      = "missing_identity"
	ReasonUnknownUser          = "unknown_user"
	ReasonAccountNotVerified   = "account_not_verified"
	ReasonNotPermitted         = "not_permitted"
)

// AuthError is a guard failure. Kind is ErrUnauthenticated or ErrForbidden.
type AuthError struct {
	Kind       error
	Reason     string
	Message    string
	Resolution string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Kind
}

// Unauthenticated builds a 401-class guard failure.
func Unauthenticated(reason, msg, resolution string) *AuthError {
	return &AuthError{Kind: ErrUnauthenticated, Reason: reason, Message: msg, Resolution: resolution}
}

// Forbidden builds a 403-class guard failure.
func Forbidden(reason, msg, resolution string) *AuthError {
	return &AuthError{Kind: ErrForbidden, Reason: reason, Message: msg, Resolution: resolution}
}
