package app

import "errors"

// Component-level failure taxonomy. Handlers map these onto HTTP statuses:
// ErrInvalidInput 400, ErrInvalidCredential 401, ErrNotFound 404,
// ErrUpstream 502, anything else 500.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidIDToken    = errors.New("invalid google id token")
	ErrNotFound          = errors.New("not found")
	ErrUpstream          = errors.New("upstream service failed")
)
